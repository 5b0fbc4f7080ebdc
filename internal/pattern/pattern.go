// Package pattern defines the canonical design pattern names and the
// declarative rule table used by the generic detector.
package pattern

import "strings"

// Name is one of the canonical Gang-of-Four pattern names.
type Name string

// Canonical pattern names.
const (
	Singleton             Name = "Singleton"
	Factory               Name = "Factory"
	AbstractFactory       Name = "AbstractFactory"
	Builder               Name = "Builder"
	Prototype             Name = "Prototype"
	Adapter               Name = "Adapter"
	Bridge                Name = "Bridge"
	Composite             Name = "Composite"
	Decorator             Name = "Decorator"
	Facade                Name = "Facade"
	Flyweight             Name = "Flyweight"
	Proxy                 Name = "Proxy"
	ChainOfResponsibility Name = "ChainOfResponsibility"
	Command               Name = "Command"
	Interpreter           Name = "Interpreter"
	Iterator              Name = "Iterator"
	Mediator              Name = "Mediator"
	Memento               Name = "Memento"
	Observer              Name = "Observer"
	State                 Name = "State"
	Strategy              Name = "Strategy"
	TemplateMethod        Name = "TemplateMethod"
	Visitor               Name = "Visitor"
)

var canonical = []Name{
	Singleton,
	Factory,
	AbstractFactory,
	Builder,
	Prototype,
	Adapter,
	Bridge,
	Composite,
	Decorator,
	Facade,
	Flyweight,
	Proxy,
	ChainOfResponsibility,
	Command,
	Interpreter,
	Iterator,
	Mediator,
	Memento,
	Observer,
	State,
	Strategy,
	TemplateMethod,
	Visitor,
}

// All returns the 23 pattern names in canonical order.
func All() []Name {
	out := make([]Name, len(canonical))
	copy(out, canonical)
	return out
}

// Index returns the canonical position of n, or -1 when n is unknown.
func Index(n Name) int {
	for i, known := range canonical {
		if known == n {
			return i
		}
	}
	return -1
}

// Known reports whether n is a canonical pattern name.
func Known(n Name) bool {
	return Index(n) >= 0
}

// Parse resolves a user-supplied name case-insensitively.
func Parse(raw string) (Name, bool) {
	value := strings.TrimSpace(raw)
	for _, known := range canonical {
		if strings.EqualFold(string(known), value) {
			return known, true
		}
	}
	return "", false
}

// Lower returns the lowercase form used for path and text hints.
func (n Name) Lower() string {
	return strings.ToLower(string(n))
}
