package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/pattern"
)

const configFileName = ".patternctl.yml"

// Default locations and limits.
const (
	DefaultMineOut       = "dataset_ground_truth_v2"
	DefaultCurateOut     = "dataset_curated"
	DefaultReport        = "dataset_quality_report.json"
	DefaultEmbedOutput   = "embeddings_dataset.json"
	DefaultOllamaURL     = "http://localhost:11434/v1"
	DefaultMinStars      = 10
	DefaultMaxRepos      = 200
	DefaultMaxEmbedChars = 12000
)

// DefaultQueries are the repository search queries used when none are
// configured.
var DefaultQueries = []string{
	"design-patterns typescript language:TypeScript stars:>50",
	"typescript patterns GoF language:TypeScript",
	"typescript design patterns examples language:TypeScript",
	"nestjs modules language:TypeScript stars:>100",
	"inversify language:TypeScript",
	"rxjs operators language:TypeScript",
	"clean-architecture typescript language:TypeScript",
	"hexagonal architecture typescript language:TypeScript",
	"domain-driven-design typescript language:TypeScript",
	"typescript enterprise language:TypeScript stars:>200",
	"typescript framework language:TypeScript stars:>500",
}

// DefaultModels are the embedding models tried when none are configured.
var DefaultModels = []string{
	"nomic-embed-text:latest",
	"qwen2.5-coder:7b",
	"llama3.2:latest",
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads and parses a config file at the given path. The result is
// merged over Defaults and validated.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	merged := Merge(Defaults(), &cfg)
	if err := Validate(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Resolve loads the config at path, or the discovered one when path is
// empty, or Defaults when there is none. It returns the path used.
func Resolve(path, startDir string) (*Config, string, error) {
	if path == "" {
		found, err := Discover(startDir)
		if err != nil {
			return nil, "", err
		}
		path = found
	}
	if path == "" {
		return Defaults(), "", nil
	}
	cfg, err := Load(path)
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// Validate checks struct constraints and the rule overrides.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if cfg.Embed.ChunkSize > 0 && cfg.Embed.ChunkOverlap >= cfg.Embed.ChunkSize {
		return fmt.Errorf("%w: embed.chunk-overlap must be smaller than embed.chunk-size", ErrInvalid)
	}
	for name, rc := range cfg.Rules {
		if rc.MinConfidence < 0 || rc.MinConfidence > 1 {
			return fmt.Errorf("%w: rules.%s.min_confidence must be within [0, 1]", ErrInvalid, name)
		}
	}
	if _, errs := cfg.Table(); len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}
	return nil
}

// Discover walks up the directory tree from startDir looking for a
// .patternctl.yml config file. It stops searching when it encounters a .git
// directory (the repository root) or reaches the filesystem root.
// Returns the path to the config file, or "" if none was found.
func Discover(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving absolute path: %w", err)
	}

	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}

		gitDir := filepath.Join(dir, ".git")
		if info, err := os.Stat(gitDir); err == nil && info.IsDir() {
			return "", nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Mine: MineConfig{
			Out:      DefaultMineOut,
			Queries:  append([]string(nil), DefaultQueries...),
			MinStars: DefaultMinStars,
			MaxRepos: DefaultMaxRepos,
		},
		Curate: CurateConfig{
			Out: DefaultCurateOut,
		},
		Validate: ValidateConfig{
			Dataset: DefaultMineOut,
			Export:  DefaultReport,
		},
		Embed: EmbedConfig{
			Dataset:  DefaultMineOut,
			Output:   DefaultEmbedOutput,
			BaseURL:  DefaultOllamaURL,
			Models:   append([]string(nil), DefaultModels...),
			MaxChars: DefaultMaxEmbedChars,
		},
	}
}

// Table compiles the rule overrides on top of the built-in rules.
func (c *Config) Table() (*pattern.Table, []error) {
	overrides := make(map[pattern.Name]pattern.RuleSpec, len(c.Rules))
	var errs []error
	for raw, rc := range c.Rules {
		name, ok := pattern.Parse(raw)
		if !ok {
			errs = append(errs, fmt.Errorf("unknown pattern in rules: %q", raw))
			continue
		}
		overrides[name] = rc.RuleSpec
	}
	table, tableErrs := pattern.NewTable(overrides)
	return table, append(errs, tableErrs...)
}

// Secrets are credentials read from the environment.
type Secrets struct {
	GitHubToken string
	S3AccessKey string
	S3SecretKey string
}

// LoadSecrets loads envFile (when it exists) into the process environment
// without overriding variables that are already set, then reads the
// credentials.
func LoadSecrets(envFile string) (Secrets, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Secrets{}, fmt.Errorf("loading %s: %w", envFile, err)
		}
	}
	return Secrets{
		GitHubToken: os.Getenv("GITHUB_TOKEN"),
		S3AccessKey: os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey: os.Getenv("S3_SECRET_KEY"),
	}, nil
}
