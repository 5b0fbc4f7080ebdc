// Package detector scores source text against individual design patterns.
//
// Each detector sums independent weighted criteria and clamps the total to
// [0, 1]. Seven patterns have hand-tuned specialized detectors; every other
// pattern is scored by the rule-driven Generic detector.
package detector

import (
	"strings"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/features"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/pattern"
)

// Method records which kind of detector produced a Detection.
type Method string

// Detection methods.
const (
	MethodSpecialized Method = "specialized"
	MethodGeneric     Method = "generic"
)

// Detection is the outcome of scoring one pattern against one source.
type Detection struct {
	Pattern    pattern.Name `json:"pattern"`
	Confidence float64      `json:"confidence"`
	Method     Method       `json:"method"`
	Matched    bool         `json:"-"`
	Signals    []string     `json:"signals,omitempty"`
}

// Source is the input to a detector. Features must be derived from Text.
type Source struct {
	Path     string
	Text     string
	Features features.Features

	lowerText string
	lowerPath string
}

// NewSource extracts features from text and prepares a Source.
func NewSource(path, text string) *Source {
	return &Source{
		Path:      path,
		Text:      text,
		Features:  features.Extract(text),
		lowerText: strings.ToLower(text),
		lowerPath: strings.ToLower(path),
	}
}

// LowerText returns the lowercased text.
func (s *Source) LowerText() string {
	if s.lowerText == "" && s.Text != "" {
		s.lowerText = strings.ToLower(s.Text)
	}
	return s.lowerText
}

// LowerPath returns the lowercased path.
func (s *Source) LowerPath() string {
	if s.lowerPath == "" && s.Path != "" {
		s.lowerPath = strings.ToLower(s.Path)
	}
	return s.lowerPath
}

// Detector scores a single pattern.
type Detector interface {
	Pattern() pattern.Name
	Method() Method
	Detect(src *Source) Detection
}
