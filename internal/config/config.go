package config

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/pattern"
)

// ErrInvalid wraps every validation failure returned by Load and Validate.
var ErrInvalid = errors.New("invalid config")

// Config is the top-level configuration.
type Config struct {
	Ignore   []string           `yaml:"ignore"`
	Mine     MineConfig         `yaml:"mine"`
	Curate   CurateConfig       `yaml:"curate"`
	Validate ValidateConfig     `yaml:"validate"`
	Embed    EmbedConfig        `yaml:"embed"`
	Storage  StorageConfig      `yaml:"storage"`
	Rules    map[string]RuleCfg `yaml:"rules"`
}

// MineConfig drives repository mining.
type MineConfig struct {
	Out          string   `yaml:"out" validate:"required"`
	Queries      []string `yaml:"queries"`
	Repos        []string `yaml:"repos"`
	MinStars     int      `yaml:"min-stars" validate:"gte=0"`
	MaxRepos     int      `yaml:"max-repos" validate:"gte=1"`
	Workers      int      `yaml:"workers" validate:"gte=0"`
	CloneDir     string   `yaml:"clone-dir"`
	IndexDir     string   `yaml:"index-dir"`
	Exclude      []string `yaml:"exclude"`
	GitHubURL    string   `yaml:"github-url" validate:"omitempty,url"`
	RequestsPerS float64  `yaml:"requests-per-second" validate:"gte=0"`
	Upload       bool     `yaml:"upload"`
}

// CurateConfig drives curated mining.
type CurateConfig struct {
	Catalog  string `yaml:"catalog"`
	Out      string `yaml:"out" validate:"required"`
	CloneDir string `yaml:"clone-dir"`
}

// ValidateConfig drives dataset validation.
type ValidateConfig struct {
	Dataset string `yaml:"dataset" validate:"required"`
	Export  string `yaml:"export"`
	HTML    string `yaml:"html"`
	Workers int    `yaml:"workers" validate:"gte=0"`
}

// EmbedConfig drives embedding generation.
type EmbedConfig struct {
	Dataset       string   `yaml:"dataset" validate:"required"`
	Output        string   `yaml:"output" validate:"required"`
	BaseURL       string   `yaml:"base-url" validate:"required,url"`
	Models        []string `yaml:"models" validate:"min=1,dive,required"`
	MaxChars      int      `yaml:"max-chars" validate:"gte=0"`
	ChunkSize     int      `yaml:"chunk-size" validate:"gte=0"`
	ChunkOverlap  int      `yaml:"chunk-overlap" validate:"gte=0"`
	WeaviateURL   string   `yaml:"weaviate-url" validate:"omitempty,url"`
	WeaviateClass string   `yaml:"weaviate-class"`
}

// StorageConfig names the S3-compatible bucket the dataset is uploaded to.
// Credentials come from the environment.
type StorageConfig struct {
	Endpoint string `yaml:"endpoint" validate:"required_with=Bucket"`
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	UseSSL   bool   `yaml:"use-ssl"`
}

// RuleCfg is a YAML union: a number sets min_confidence only, a mapping
// overrides any of keywords, class_patterns and min_confidence.
type RuleCfg struct {
	pattern.RuleSpec
}

// UnmarshalYAML implements custom YAML unmarshalling for RuleCfg.
// It handles two forms:
//   - 0.7 -> MinConfidence=0.7
//   - {keywords: [...], class_patterns: [...], min_confidence: 0.7}
func (r *RuleCfg) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var f float64
		if err := value.Decode(&f); err != nil {
			return fmt.Errorf("invalid rule config: %w", err)
		}
		r.RuleSpec = pattern.RuleSpec{MinConfidence: f}
		return nil
	}

	if value.Kind == yaml.MappingNode {
		var spec pattern.RuleSpec
		if err := value.Decode(&spec); err != nil {
			return fmt.Errorf("invalid rule config: %w", err)
		}
		r.RuleSpec = spec
		return nil
	}

	return fmt.Errorf("rule config must be a number or a mapping, got %v", value.Kind)
}

// MarshalYAML writes the shorthand form when only the threshold is set.
func (r RuleCfg) MarshalYAML() (any, error) {
	if len(r.Keywords) == 0 && len(r.ClassPatterns) == 0 {
		return r.MinConfidence, nil
	}
	return r.RuleSpec, nil
}
