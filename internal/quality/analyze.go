// Package quality checks a labeled dataset against the detection engine:
// per-file validity, duplicates, a quality score, label agreement and
// recommendations for the next mining run.
package quality

import (
	"fmt"
	"os"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/corpus"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/detector"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/engine"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/metrics"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/pattern"
)

// Validation thresholds.
const (
	// MinCodeLines is the smallest number of code lines a valid file has.
	MinCodeLines = 5
	// AssignedConfidenceFloor keeps a file whose top detection differs from
	// its label as long as the label itself scored at least this much.
	AssignedConfidenceFloor = 0.3
)

// Reasons recorded for each analyzed file.
const (
	ReasonOK          = "ok"
	ReasonTooSmall    = "file too small (fewer than 5 code lines)"
	ReasonNoTypes     = "no classes or interfaces"
	ReasonNoDetection = "no design pattern detected"
)

// FileAnalysis is the verdict for one labeled file.
type FileAnalysis struct {
	File     string               `json:"file"`
	Assigned pattern.Name         `json:"assigned"`
	Detected []detector.Detection `json:"detected"`
	Valid    bool                 `json:"valid"`
	Reason   string               `json:"reason"`
	Metrics  metrics.Summary      `json:"metrics"`
	Hash     string               `json:"hash,omitempty"`
}

// Predicted returns the engine's top label, or "" when nothing matched.
func (a FileAnalysis) Predicted() pattern.Name {
	if len(a.Detected) == 0 {
		return ""
	}
	return a.Detected[0].Pattern
}

// Analyze judges text labeled as assigned. The checks run in order and the
// first failing one decides the reason:
//
//  1. fewer than MinCodeLines code lines
//  2. no class and no interface declarations
//  3. a different top detection while assigned scored below
//     AssignedConfidenceFloor (or was not matched)
//  4. no detection at all
//
// path is passed to the engine, so a dataset-relative path keeps the label
// directory visible to path hints.
func Analyze(d engine.Detector, text, path string, assigned pattern.Name) FileAnalysis {
	summary := metrics.Summarize(text)
	rep := d.Detect(text, path)
	a := FileAnalysis{
		File:     path,
		Assigned: assigned,
		Detected: rep.Detections,
		Valid:    true,
		Reason:   ReasonOK,
		Metrics:  summary,
		Hash:     corpus.NormalizedHash(text),
	}
	if a.Detected == nil {
		a.Detected = []detector.Detection{}
	}

	switch {
	case summary.CodeLines < MinCodeLines:
		a.Valid, a.Reason = false, ReasonTooSmall
	case summary.Classes == 0 && summary.Interfaces == 0:
		a.Valid, a.Reason = false, ReasonNoTypes
	case len(rep.Detections) > 0:
		best := rep.Detections[0].Pattern
		if best == assigned {
			break
		}
		if conf, _ := rep.Confidence(assigned); conf < AssignedConfidenceFloor {
			a.Valid = false
			a.Reason = fmt.Sprintf("detected pattern (%s) differs from assigned (%s)", best, assigned)
		}
	default:
		a.Valid, a.Reason = false, ReasonNoDetection
	}
	return a
}

// AnalyzeFile reads file and analyzes it. An unreadable file is invalid
// and carries no hash.
func AnalyzeFile(d engine.Detector, file, path string, assigned pattern.Name) FileAnalysis {
	content, err := os.ReadFile(file)
	if err != nil {
		return FileAnalysis{
			File:     path,
			Assigned: assigned,
			Detected: []detector.Detection{},
			Reason:   fmt.Sprintf("error reading file: %v", err),
		}
	}
	return Analyze(d, string(content), path, assigned)
}
