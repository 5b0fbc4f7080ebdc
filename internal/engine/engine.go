// Package engine ranks every canonical design pattern against a source file.
package engine

import (
	"sort"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/detector"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/pattern"
)

// Report is the ranked list of matched detections for one file, sorted by
// confidence descending with ties in canonical pattern order.
type Report struct {
	Detections []detector.Detection `json:"detections"`
}

// Best returns the highest-confidence detection, if any.
func (r Report) Best() (detector.Detection, bool) {
	if len(r.Detections) == 0 {
		return detector.Detection{}, false
	}
	return r.Detections[0], true
}

// Confidence returns the confidence reported for p, or false when p was
// not matched.
func (r Report) Confidence(p pattern.Name) (float64, bool) {
	for _, d := range r.Detections {
		if d.Pattern == p {
			return d.Confidence, true
		}
	}
	return 0, false
}

// Top returns at most n leading detections.
func (r Report) Top(n int) []detector.Detection {
	if n <= 0 {
		return nil
	}
	if n > len(r.Detections) {
		n = len(r.Detections)
	}
	return r.Detections[:n]
}

// Patterns lists the matched pattern names in rank order.
func (r Report) Patterns() []pattern.Name {
	out := make([]pattern.Name, len(r.Detections))
	for i, d := range r.Detections {
		out[i] = d.Pattern
	}
	return out
}

// Engine evaluates every canonical pattern against a source. It holds no
// mutable state and is safe for concurrent use.
type Engine struct {
	table    *pattern.Table
	registry *detector.Registry
	metrics  *Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithMetrics records detection counts on m.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New returns an engine over the built-in rule table.
func New(opts ...Option) *Engine {
	return NewWithRules(pattern.DefaultTable(), opts...)
}

// NewWithRules returns an engine over table. A nil table uses the built-in
// rules.
func NewWithRules(table *pattern.Table, opts ...Option) *Engine {
	if table == nil {
		table = pattern.DefaultTable()
	}
	e := &Engine{table: table, registry: detector.NewRegistry(table)}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Rules returns the rule table the engine was built with.
func (e *Engine) Rules() *pattern.Table { return e.table }

// Detect scores text found at path against all patterns and returns the
// matched ones ranked. Detect never fails; unrecognizable input yields an
// empty report.
func (e *Engine) Detect(text, path string) Report {
	src := detector.NewSource(path, text)

	var matched []detector.Detection
	for _, d := range e.registry.All() {
		det := d.Detect(src)
		if det.Matched {
			matched = append(matched, det)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Confidence > matched[j].Confidence
	})

	rep := Report{Detections: matched}
	e.metrics.observe(rep)
	return rep
}

// Accepts reports whether the best detection of rep clears the minimum
// confidence configured for its pattern.
func (e *Engine) Accepts(rep Report) (detector.Detection, bool) {
	best, ok := rep.Best()
	if !ok {
		return best, false
	}
	return best, best.Confidence >= e.table.MinConfidence(best.Pattern)
}
