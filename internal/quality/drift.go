package quality

import "github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/pattern"

// PatternDrift is the change in one pattern's file count.
type PatternDrift struct {
	Baseline  int `json:"baseline"`
	Candidate int `json:"candidate"`
	Delta     int `json:"delta"`
}

// Drift compares two validation reports.
type Drift struct {
	TotalDelta      int                           `json:"total_delta"`
	ValidDelta      int                           `json:"valid_delta"`
	DuplicatesDelta int                           `json:"duplicates_delta"`
	QualityDelta    float64                       `json:"quality_delta"`
	AgreementDelta  float64                       `json:"agreement_delta"`
	ByPattern       map[pattern.Name]PatternDrift `json:"by_pattern"`
}

// CompareReports returns how candidate differs from baseline.
func CompareReports(baseline, candidate *Report) *Drift {
	by := make(map[pattern.Name]PatternDrift)
	for p, n := range baseline.PatternDistribution {
		by[p] = PatternDrift{Baseline: n, Delta: -n}
	}
	for p, n := range candidate.PatternDistribution {
		d := by[p]
		d.Candidate = n
		d.Delta = n - d.Baseline
		by[p] = d
	}

	return &Drift{
		TotalDelta:      candidate.Summary.TotalFiles - baseline.Summary.TotalFiles,
		ValidDelta:      candidate.Summary.ValidFiles - baseline.Summary.ValidFiles,
		DuplicatesDelta: candidate.Summary.Duplicates - baseline.Summary.Duplicates,
		QualityDelta:    candidate.Summary.QualityScore - baseline.Summary.QualityScore,
		AgreementDelta:  agreementOf(candidate) - agreementOf(baseline),
		ByPattern:       by,
	}
}

func agreementOf(r *Report) float64 {
	if r.Agreement == nil {
		return 0
	}
	return r.Agreement.Agreement
}
