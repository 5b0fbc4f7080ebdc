// Package features extracts lexical and structural facts from TypeScript
// source text. Extraction is regex based and never fails: text without
// recognizable constructs yields empty features.
package features

import (
	"regexp"
	"strings"
)

var (
	classRe          = regexp.MustCompile(`(?:export\s+)?(?:abstract\s+)?class\s+(\w+)`)
	interfaceRe      = regexp.MustCompile(`(?:export\s+)?interface\s+(\w+)`)
	methodRe         = regexp.MustCompile(`(?:public|private|protected)?\s*(?:static\s+)?(?:async\s+)?(\w+)\s*\([^)]*\)\s*(?::\s*[^{]+)?{`)
	importRe         = regexp.MustCompile(`import\s+.*?from\s+['"]([^'"]+)['"]`)
	decoratorRe      = regexp.MustCompile(`@(\w+)\s*\(`)
	privateCtorRe    = regexp.MustCompile(`private\s+constructor\s*\(`)
	staticInstanceRe = regexp.MustCompile(`(?i)private\s+static\s+\w*instance`)
	abstractMethodRe = regexp.MustCompile(`abstract\s+\w+\s*\(`)
	fluentReturnRe   = regexp.MustCompile(`return\s+this\s*;`)
	extendsRe        = regexp.MustCompile(`class\s+(\w+)\s+extends\s+(\w+)`)
	implementsRe     = regexp.MustCompile(`class\s+(\w+)(?:\s+extends\s+\w+)?\s+implements\s+([\w,\s]+)`)
)

// Identifiers that the method expression picks up from control-flow
// statements such as "if (x) {".
var controlKeywords = map[string]bool{
	"if":     true,
	"for":    true,
	"while":  true,
	"switch": true,
	"catch":  true,
	"with":   true,
}

// Extension is an "extends" edge.
type Extension struct {
	Class string `json:"class"`
	Super string `json:"super"`
}

// Implementation lists the interfaces a class declares it implements.
type Implementation struct {
	Class      string   `json:"class"`
	Interfaces []string `json:"interfaces"`
}

// Features is a read-only view over one source text.
type Features struct {
	Classes         []string         `json:"classes"`
	Interfaces      []string         `json:"interfaces"`
	Methods         []string         `json:"methods"`
	Imports         []string         `json:"imports"`
	Decorators      []string         `json:"decorators"`
	Extends         []Extension      `json:"extends"`
	Implements      []Implementation `json:"implements"`
	PrivateCtor     bool             `json:"private_constructor"`
	StaticInstance  bool             `json:"static_instance"`
	FluentReturn    bool             `json:"fluent_return"`
	AbstractMethods int              `json:"abstract_methods"`
}

// Extract computes the features of text.
func Extract(text string) Features {
	return Features{
		Classes:         Classes(text),
		Interfaces:      Interfaces(text),
		Methods:         Methods(text),
		Imports:         Imports(text),
		Decorators:      Decorators(text),
		Extends:         extensions(text),
		Implements:      implementations(text),
		PrivateCtor:     privateCtorRe.MatchString(text),
		StaticInstance:  staticInstanceRe.MatchString(text),
		FluentReturn:    fluentReturnRe.MatchString(text),
		AbstractMethods: len(abstractMethodRe.FindAllStringIndex(text, -1)),
	}
}

// Classes returns declared class names in source order.
func Classes(text string) []string { return submatches(classRe, text, 1) }

// Interfaces returns declared interface names in source order.
func Interfaces(text string) []string { return submatches(interfaceRe, text, 1) }

// Imports returns the module paths of import-from clauses.
func Imports(text string) []string { return submatches(importRe, text, 1) }

// Decorators returns the names of decorator calls like @Injectable().
func Decorators(text string) []string { return submatches(decoratorRe, text, 1) }

// Methods returns method names of signatures followed by an opening block.
func Methods(text string) []string {
	all := submatches(methodRe, text, 1)
	out := all[:0]
	for _, name := range all {
		if controlKeywords[name] {
			continue
		}
		out = append(out, name)
	}
	return out
}

func extensions(text string) []Extension {
	matches := extendsRe.FindAllStringSubmatch(text, -1)
	out := make([]Extension, 0, len(matches))
	for _, m := range matches {
		out = append(out, Extension{Class: m[1], Super: m[2]})
	}
	return out
}

func implementations(text string) []Implementation {
	matches := implementsRe.FindAllStringSubmatch(text, -1)
	out := make([]Implementation, 0, len(matches))
	for _, m := range matches {
		var names []string
		for _, part := range strings.Split(m[2], ",") {
			name := strings.TrimSpace(part)
			if name != "" {
				names = append(names, name)
			}
		}
		out = append(out, Implementation{Class: m[1], Interfaces: names})
	}
	return out
}

func submatches(re *regexp.Regexp, text string, group int) []string {
	matches := re.FindAllStringSubmatch(text, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m[group])
	}
	return out
}

// HasClassOrInterface reports whether any class or interface is declared.
func (f Features) HasClassOrInterface() bool {
	return len(f.Classes) > 0 || len(f.Interfaces) > 0
}
