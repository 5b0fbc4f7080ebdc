package metrics

import (
	"fmt"
	"strings"
)

// Order is the direction files are ranked in.
type Order string

const (
	OrderAsc  Order = "asc"
	OrderDesc Order = "desc"
)

// ParseOrder accepts asc, desc and their long forms.
func ParseOrder(raw string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "asc", "ascending":
		return OrderAsc, nil
	case "desc", "descending":
		return OrderDesc, nil
	}
	return "", fmt.Errorf("unknown order %q (supported: asc, desc)", raw)
}

// Kind selects how a metric value is rendered.
type Kind int

const (
	// KindCount is a non-negative whole number.
	KindCount Kind = iota
	// KindRatio is a share between 0 and 1.
	KindRatio
	// KindFlag is 1 when a construct is present and 0 otherwise.
	KindFlag
)

// Value is one measurement. Valid is false when the metric does not apply
// to the file, e.g. a comment ratio over a file with no non-blank lines.
type Value struct {
	N     float64
	Valid bool
}

// Some wraps a measured number.
func Some(n float64) Value { return Value{N: n, Valid: true} }

// None is the value of a metric that does not apply.
var None = Value{}

// Definition describes a TypeScript file metric.
type Definition struct {
	ID           string
	Name         string
	Description  string
	Kind         Kind
	Default      bool
	DefaultOrder Order
	Compute      func(doc *Document) Value
}
