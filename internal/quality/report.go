package quality

import (
	"fmt"
	"strings"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/corpus"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/detector"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/pattern"
)

// Report limits and thresholds.
const (
	MaxMisclassified    = 50
	MisclassifiedDetail = 3
	LowQualityScore     = 0.7
	UnderRepresented    = 0.3
	OverRepresented     = 2.0
	ManyMisclassified   = 10
)

// Summary holds the dataset totals.
type Summary struct {
	TotalFiles   int     `json:"total_files"`
	ValidFiles   int     `json:"valid_files"`
	InvalidFiles int     `json:"invalid_files"`
	Duplicates   int     `json:"duplicates"`
	QualityScore float64 `json:"quality_score"`
}

// Misclassified describes one invalid file.
type Misclassified struct {
	File     string               `json:"file"`
	Assigned pattern.Name         `json:"assigned"`
	Detected []detector.Detection `json:"detected"`
	Reason   string               `json:"reason"`
}

// Report is the exported validation report.
type Report struct {
	Summary             Summary              `json:"summary"`
	PatternDistribution map[pattern.Name]int `json:"pattern_distribution"`
	Misclassified       []Misclassified      `json:"misclassified_samples"`
	Recommendations     []string             `json:"recommendations"`
	Agreement           *Agreement           `json:"agreement,omitempty"`
	DuplicateGroups     [][]string           `json:"duplicate_groups,omitempty"`

	// InvalidTotal counts every invalid file, including those beyond
	// MaxMisclassified.
	InvalidTotal int `json:"-"`
}

// Build aggregates analyses into a report. The quality score is
// (valid - duplicates) / total, and 0 for an empty dataset.
func Build(analyses []FileAnalysis) *Report {
	rep := &Report{
		PatternDistribution: make(map[pattern.Name]int),
		Misclassified:       []Misclassified{},
	}
	for _, a := range analyses {
		rep.Summary.TotalFiles++
		rep.PatternDistribution[a.Assigned]++
		if a.Valid {
			rep.Summary.ValidFiles++
			continue
		}
		rep.Summary.InvalidFiles++
		rep.InvalidTotal++
		if len(rep.Misclassified) < MaxMisclassified {
			detail := a.Detected
			if len(detail) > MisclassifiedDetail {
				detail = detail[:MisclassifiedDetail]
			}
			rep.Misclassified = append(rep.Misclassified, Misclassified{
				File:     a.File,
				Assigned: a.Assigned,
				Detected: detail,
				Reason:   a.Reason,
			})
		}
	}

	rep.DuplicateGroups = duplicateGroups(analyses)
	for _, g := range rep.DuplicateGroups {
		rep.Summary.Duplicates += len(g) - 1
	}
	if rep.Summary.TotalFiles > 0 {
		rep.Summary.QualityScore = float64(rep.Summary.ValidFiles-rep.Summary.Duplicates) /
			float64(rep.Summary.TotalFiles)
	}
	rep.Agreement = EvaluateAgreement(analyses)
	rep.Recommendations = Recommend(rep.PatternDistribution, rep.InvalidTotal, rep.Summary.Duplicates, rep.Summary.QualityScore)
	return rep
}

// Recommend suggests follow-ups for a dataset. dist counts files per
// pattern; patterns without files are reported as missing.
func Recommend(dist map[pattern.Name]int, misclassified, duplicates int, score float64) []string {
	recs := []string{}
	if score < LowQualityScore {
		recs = append(recs, fmt.Sprintf(
			"Low quality score (%.1f%%). Review the invalid files manually.", score*100))
	}

	var present []pattern.Name
	total := 0
	for _, p := range pattern.All() {
		if n := dist[p]; n > 0 {
			present = append(present, p)
			total += n
		}
	}
	if len(present) > 0 {
		mean := float64(total) / float64(len(present))
		var under, over []string
		for _, p := range present {
			n := float64(dist[p])
			if n < mean*UnderRepresented {
				under = append(under, string(p))
			}
			if n > mean*OverRepresented {
				over = append(over, string(p))
			}
		}
		if len(under) > 0 {
			recs = append(recs, fmt.Sprintf(
				"Under-represented patterns: %s. Mine more examples of these patterns.", strings.Join(under, ", ")))
		}
		if len(over) > 0 {
			recs = append(recs, fmt.Sprintf(
				"Over-represented patterns: %s. Consider undersampling to balance the dataset.", strings.Join(over, ", ")))
		}
	}

	if duplicates > 0 {
		recs = append(recs, fmt.Sprintf(
			"Found %d duplicates. Run the cleanup with --remove-duplicates.", duplicates))
	}
	if misclassified > ManyMisclassified {
		recs = append(recs, fmt.Sprintf(
			"%d files possibly misclassified. Review them or re-run mining with improved detectors.", misclassified))
	}

	var missing []string
	for _, p := range pattern.All() {
		if dist[p] == 0 {
			missing = append(missing, string(p))
		}
	}
	if len(missing) > 0 {
		recs = append(recs, fmt.Sprintf(
			"Patterns without samples: %s. Add pattern-specific educational repositories.", strings.Join(missing, ", ")))
	}
	return recs
}

// LoadReport reads a report exported by WriteReport.
func LoadReport(path string) (*Report, error) {
	rep, err := corpus.ReadJSON[Report](path)
	if err != nil {
		return nil, err
	}
	return &rep, nil
}

// WriteReport exports rep as indented JSON.
func WriteReport(path string, rep *Report) error {
	return corpus.WriteJSON(path, rep)
}
