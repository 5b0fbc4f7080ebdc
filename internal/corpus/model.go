package corpus

import (
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/detector"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/pattern"
)

// Split label constants.
const (
	SplitTrain = "train"
	SplitTest  = "test"
)

// Metadata file names written next to the labeled dataset.
const (
	MetadataFile        = "dataset_metadata_v2.json"
	CuratedMetadataFile = "curated_metadata.json"
	MetadataVersion     = "2.0"
)

// Repository identifies one source repository to mine.
type Repository struct {
	FullName string `json:"full_name"`
	CloneURL string `json:"clone_url"`
	Stars    int    `json:"stars"`
}

// Sample is one accepted file in the mined dataset. Code is kept in
// memory for saving and never serialized into metadata.
type Sample struct {
	Pattern      pattern.Name    `json:"pattern_name"`
	Confidence   float64         `json:"confidence_score"`
	Method       detector.Method `json:"detection_method"`
	Repository   string          `json:"source_repo"`
	FilePath     string          `json:"file_path"`
	SavedPath    string          `json:"saved_path,omitempty"`
	RelatedFiles []string        `json:"related_files"`
	Classes      []string        `json:"class_names"`
	Interfaces   []string        `json:"interface_names"`
	Methods      []string        `json:"method_signatures"`
	Imports      []string        `json:"imports"`
	Lines        int             `json:"lines_of_code"`
	HasTests     bool            `json:"has_tests"`
	Hash         string          `json:"file_hash"`
	Split        string          `json:"split"`
	Code         string          `json:"-"`
}

// DatasetMetadata summarizes a mining run.
type DatasetMetadata struct {
	Version             string               `json:"version"`
	RunID               string               `json:"run_id"`
	GeneratedAt         string               `json:"generated_at"`
	TotalSamples        int                  `json:"total_samples"`
	ReposProcessed      int                  `json:"repos_processed"`
	PatternDistribution map[pattern.Name]int `json:"pattern_distribution"`
	Samples             []Sample             `json:"samples"`
}

// CuratedSample is one file copied from a curated repository.
type CuratedSample struct {
	Pattern       pattern.Name `json:"pattern"`
	Repository    string       `json:"repo"`
	File          string       `json:"file"`
	Confidence    float64      `json:"confidence"`
	Detected      pattern.Name `json:"detected,omitempty"`
	DetectedScore float64      `json:"detected_confidence,omitempty"`
	Hash          string       `json:"file_hash"`
	Split         string       `json:"split"`
	Code          string       `json:"-"`
}

// CuratedMetadata summarizes a curated mining run.
type CuratedMetadata struct {
	Type         string               `json:"type"`
	RunID        string               `json:"run_id"`
	GeneratedAt  string               `json:"generated_at"`
	TotalSamples int                  `json:"total_samples"`
	Distribution map[pattern.Name]int `json:"distribution"`
	Samples      []CuratedSample      `json:"samples"`
}

func distribution(names []pattern.Name) map[pattern.Name]int {
	out := make(map[pattern.Name]int)
	for _, n := range names {
		out[n]++
	}
	return out
}
