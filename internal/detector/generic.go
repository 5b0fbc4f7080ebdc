package detector

import (
	"strings"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/pattern"
)

// Generic weights.
const (
	genericKeywordWeight = 0.1
	genericKeywordCap    = 0.3
	genericStructural    = 0.2
	genericPathHint      = 0.3
)

// Generic scores a pattern from its declarative rule: keyword density,
// the first matching structural expression, and the pattern name in the
// path.
type Generic struct {
	rule pattern.Rule
}

// NewGeneric binds a generic detector to rule.
func NewGeneric(rule pattern.Rule) *Generic {
	return &Generic{rule: rule}
}

// Pattern implements Detector.
func (g *Generic) Pattern() pattern.Name { return g.rule.Pattern }

// Method implements Detector.
func (g *Generic) Method() Method { return MethodGeneric }

// Detect implements Detector.
func (g *Generic) Detect(src *Source) Detection {
	lowerText := src.LowerText()

	hits := 0
	s := newScorer(g.rule.Pattern, MethodGeneric)
	for _, kw := range g.rule.Keywords {
		if strings.Contains(lowerText, strings.ToLower(kw)) {
			hits++
			s.signals = append(s.signals, "keyword "+kw)
		}
	}
	if hits > 0 {
		s.score += min(float64(hits)*genericKeywordWeight, genericKeywordCap)
	}

	for _, re := range g.rule.Structural {
		matched := satisfied(func() bool { return re.MatchString(src.Text) })
		if matched {
			s.score += genericStructural
			s.signals = append(s.signals, "structural "+strings.TrimPrefix(re.String(), "(?i)"))
			break
		}
	}

	s.contains(genericPathHint, "pattern name in path", src.LowerPath(), g.rule.Pattern.Lower())

	threshold := g.rule.MinConfidence
	if threshold <= 0 {
		threshold = pattern.DefaultMinConfidence
	}
	return s.result(threshold)
}
