package detector

import (
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/pattern"
)

// Registry maps every canonical pattern to the detector that scores it.
// Patterns without a specialized detector fall back to Generic bound to the
// pattern's rule. A Registry is immutable after construction and safe for
// concurrent use.
type Registry struct {
	byPattern map[pattern.Name]Detector
}

// NewRegistry builds a registry over table. A nil table uses the built-in
// rules.
func NewRegistry(table *pattern.Table) *Registry {
	if table == nil {
		table = pattern.DefaultTable()
	}
	r := &Registry{byPattern: make(map[pattern.Name]Detector, len(pattern.All()))}
	for _, d := range Specialized() {
		r.byPattern[d.Pattern()] = d
	}
	for _, name := range pattern.All() {
		if _, ok := r.byPattern[name]; ok {
			continue
		}
		r.byPattern[name] = NewGeneric(table.Rule(name))
	}
	return r
}

// For returns the detector for n. Unknown names get a generic detector with
// an empty rule, which can only score on the path hint.
func (r *Registry) For(n pattern.Name) Detector {
	if d, ok := r.byPattern[n]; ok {
		return d
	}
	return NewGeneric(pattern.Rule{Pattern: n, MinConfidence: pattern.DefaultMinConfidence})
}

// All returns the detectors in canonical pattern order.
func (r *Registry) All() []Detector {
	names := pattern.All()
	out := make([]Detector, 0, len(names))
	for _, name := range names {
		out = append(out, r.For(name))
	}
	return out
}
