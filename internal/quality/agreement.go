package quality

import (
	"fmt"
	"sort"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/pattern"
)

// NoPrediction labels files the engine matched no pattern for.
const NoPrediction = "none"

// PatternAgreement scores the engine against one label.
type PatternAgreement struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	Support   int     `json:"support"`
}

// Agreement compares the engine's top label with the assigned labels.
type Agreement struct {
	Total          int                               `json:"total"`
	Agreement      float64                           `json:"agreement"`
	PerPattern     map[pattern.Name]PatternAgreement `json:"per_pattern"`
	ConfusionCases []string                          `json:"confusion_cases"`
}

type agreementCounts struct {
	tp int
	fp int
	fn int
	n  int
}

// EvaluateAgreement treats each analysis' assigned label as ground truth
// and its top detection as the prediction. Unreadable files are skipped.
func EvaluateAgreement(analyses []FileAnalysis) *Agreement {
	counts := make(map[pattern.Name]*agreementCounts)
	ensure := func(p pattern.Name) *agreementCounts {
		c, ok := counts[p]
		if !ok {
			c = &agreementCounts{}
			counts[p] = c
		}
		return c
	}

	matches, total := 0, 0
	confusions := []string{}
	for _, a := range analyses {
		if a.Hash == "" {
			continue
		}
		total++
		actual := ensure(a.Assigned)
		actual.n++
		predicted := a.Predicted()
		if predicted == a.Assigned {
			actual.tp++
			matches++
			continue
		}
		actual.fn++
		label := NoPrediction
		if predicted != "" {
			ensure(predicted).fp++
			label = string(predicted)
		}
		confusions = append(confusions, fmt.Sprintf("%s predicted=%s actual=%s", a.File, label, a.Assigned))
	}
	sort.Strings(confusions)

	per := make(map[pattern.Name]PatternAgreement, len(counts))
	for p, c := range counts {
		per[p] = PatternAgreement{
			Precision: ratio(c.tp, c.tp+c.fp),
			Recall:    ratio(c.tp, c.tp+c.fn),
			Support:   c.n,
		}
	}
	return &Agreement{
		Total:          total,
		Agreement:      ratio(matches, total),
		PerPattern:     per,
		ConfusionCases: confusions,
	}
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
