package detector

import (
	"math"
	"regexp"
	"strings"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/pattern"
)

// scorer accumulates weighted criteria for one pattern.
type scorer struct {
	pattern pattern.Name
	method  Method
	score   float64
	signals []string
}

func newScorer(p pattern.Name, m Method) *scorer {
	return &scorer{pattern: p, method: m}
}

// check adds weight when cond reports true. A criterion that panics counts
// as not satisfied.
func (s *scorer) check(weight float64, signal string, cond func() bool) *scorer {
	if satisfied(cond) {
		s.score += weight
		s.signals = append(s.signals, signal)
	}
	return s
}

// match adds weight when re matches text.
func (s *scorer) match(weight float64, signal string, re *regexp.Regexp, text string) *scorer {
	return s.check(weight, signal, func() bool { return re.MatchString(text) })
}

// contains adds weight when needle occurs in haystack.
func (s *scorer) contains(weight float64, signal string, haystack, needle string) *scorer {
	return s.check(weight, signal, func() bool { return strings.Contains(haystack, needle) })
}

// result clamps the accumulated score and applies threshold.
func (s *scorer) result(threshold float64) Detection {
	confidence := clamp(s.score)
	return Detection{
		Pattern:    s.pattern,
		Confidence: confidence,
		Method:     s.method,
		Matched:    confidence >= threshold,
		Signals:    s.signals,
	}
}

func satisfied(cond func() bool) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return cond()
}

// clamp bounds score to [0, 1] after rounding off accumulated float error,
// so that 0.35+0.15 compares equal to a 0.5 threshold.
func clamp(score float64) float64 {
	score = math.Round(score*1e9) / 1e9
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
