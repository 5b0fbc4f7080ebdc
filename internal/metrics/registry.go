package metrics

import (
	"fmt"
	"strings"
)

var registry = []Definition{
	count("CM001", "bytes", "File size measured in bytes.", true,
		func(doc *Document) int { return doc.ByteCount() }),
	count("CM002", "total-lines", "Total line count.", true,
		func(doc *Document) int { return doc.LineCount() }),
	count("CM003", "code-lines", "Lines that are not blank and not line comments.", true,
		func(doc *Document) int { return doc.CodeLineCount() }),
	count("CM004", "classes", "Declared classes.", true,
		func(doc *Document) int { return len(doc.Features().Classes) }),
	count("CM005", "interfaces", "Declared interfaces.", true,
		func(doc *Document) int { return len(doc.Features().Interfaces) }),
	count("CM006", "methods", "Method declarations with a body.", true,
		func(doc *Document) int { return len(doc.Features().Methods) }),
	count("CM007", "imports", "Import-from module paths.", true,
		func(doc *Document) int { return len(doc.Features().Imports) }),
	{
		ID:           "CM008",
		Name:         "comment-ratio",
		Description:  "Share of non-blank lines that are comments.",
		Kind:         KindRatio,
		Default:      true,
		DefaultOrder: OrderAsc,
		Compute: func(doc *Document) Value {
			code, comments := doc.CodeLineCount(), doc.CommentLineCount()
			if code+comments == 0 {
				return None
			}
			return Some(float64(comments) / float64(code+comments))
		},
	},
	flag("CM009", "has-abstract", "An abstract class is declared.",
		func(doc *Document) bool { return doc.HasAbstractClass() }),
	flag("CM010", "has-implements", "A class implements an interface.",
		func(doc *Document) bool { return doc.HasImplements() }),
	flag("CM011", "has-extends", "A class extends another.",
		func(doc *Document) bool { return doc.HasExtends() }),
}

func count(id, name, desc string, def bool, fn func(*Document) int) Definition {
	return Definition{
		ID:           id,
		Name:         name,
		Description:  desc,
		Kind:         KindCount,
		Default:      def,
		DefaultOrder: OrderDesc,
		Compute:      func(doc *Document) Value { return Some(float64(fn(doc))) },
	}
}

func flag(id, name, desc string, fn func(*Document) bool) Definition {
	return Definition{
		ID:           id,
		Name:         name,
		Description:  desc,
		Kind:         KindFlag,
		DefaultOrder: OrderDesc,
		Compute: func(doc *Document) Value {
			if fn(doc) {
				return Some(1)
			}
			return Some(0)
		},
	}
}

// All returns every metric in ID order.
func All() []Definition {
	return append([]Definition(nil), registry...)
}

// Defaults returns the metrics shown when none are selected.
func Defaults() []Definition {
	var out []Definition
	for _, def := range registry {
		if def.Default {
			out = append(out, def)
		}
	}
	return out
}

// Lookup finds a metric by ID (any case) or by name.
func Lookup(query string) (Definition, bool) {
	q := strings.TrimSpace(query)
	for _, def := range registry {
		if q != "" && (strings.EqualFold(def.ID, q) || def.Name == strings.ToLower(q)) {
			return def, true
		}
	}
	return Definition{}, false
}

// Resolve maps metric names or IDs to definitions, dropping repeats.
// No names selects Defaults.
func Resolve(names []string) ([]Definition, error) {
	if len(names) == 0 {
		return Defaults(), nil
	}
	seen := make(map[string]bool, len(names))
	var defs []Definition
	for _, name := range names {
		def, ok := Lookup(name)
		if !ok {
			return nil, fmt.Errorf("unknown metric %q (available: %s)", name, strings.Join(metricNames(), ", "))
		}
		if !seen[def.ID] {
			seen[def.ID] = true
			defs = append(defs, def)
		}
	}
	return defs, nil
}

func metricNames() []string {
	out := make([]string, len(registry))
	for i, def := range registry {
		out[i] = def.Name
	}
	return out
}

// SplitList parses a comma-separated list, dropping empty items.
func SplitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
