package corpus

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/pattern"
)

// DefaultCuratedConfidence applies to catalog entries without a confidence.
const DefaultCuratedConfidence = 0.8

//go:embed catalog.yaml
var builtinCatalog []byte

// CatalogEntry is one curated repository and where its patterns live.
type CatalogEntry struct {
	Name        string  `yaml:"name" json:"name"`
	URL         string  `yaml:"url" json:"url"`
	Description string  `yaml:"description" json:"description"`
	Confidence  float64 `yaml:"confidence" json:"confidence"`
	CommitSHA   string  `yaml:"commit_sha" json:"commit_sha,omitempty"`
	// Root, when absolute, points at a local checkout and skips git.
	Root     string              `yaml:"root" json:"root,omitempty"`
	Patterns map[string][]string `yaml:"patterns" json:"patterns"`
}

// Catalog lists curated repositories.
type Catalog struct {
	Repositories []CatalogEntry `yaml:"repositories" json:"repositories"`
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() (Catalog, error) {
	return ParseCatalog(builtinCatalog)
}

// LoadCatalog reads a catalog from a YAML file.
func LoadCatalog(path string) (Catalog, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("read catalog: %w", err)
	}
	return ParseCatalog(content)
}

// ParseCatalog decodes, defaults and validates a YAML catalog.
func ParseCatalog(content []byte) (Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(content, &cat); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog yaml: %w", err)
	}
	for i := range cat.Repositories {
		if cat.Repositories[i].Confidence == 0 {
			cat.Repositories[i].Confidence = DefaultCuratedConfidence
		}
	}
	if err := cat.validate(); err != nil {
		return Catalog{}, err
	}
	return cat, nil
}

func (c Catalog) validate() error {
	if len(c.Repositories) == 0 {
		return fmt.Errorf("catalog has no repositories")
	}
	seen := make(map[string]bool, len(c.Repositories))
	for _, e := range c.Repositories {
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("catalog repository name is required")
		}
		if seen[e.Name] {
			return fmt.Errorf("duplicate catalog repository: %s", e.Name)
		}
		seen[e.Name] = true
		if e.Confidence < 0 || e.Confidence > 1 {
			return fmt.Errorf("repository %s confidence must be between 0 and 1", e.Name)
		}
		for raw, globs := range e.Patterns {
			if _, ok := pattern.Parse(raw); !ok {
				return fmt.Errorf("repository %s: unknown pattern %q", e.Name, raw)
			}
			for _, g := range globs {
				if !doublestar.ValidatePattern(g) {
					return fmt.Errorf("repository %s: invalid glob %q", e.Name, g)
				}
			}
		}
	}
	return nil
}

// Select returns the entries whose names are in names, in catalog order.
// An empty names keeps every entry.
func (c Catalog) Select(names []string) (Catalog, error) {
	if len(names) == 0 {
		return c, nil
	}
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[strings.ToLower(n)] = true
	}
	var out Catalog
	for _, e := range c.Repositories {
		if want[strings.ToLower(e.Name)] {
			out.Repositories = append(out.Repositories, e)
			delete(want, strings.ToLower(e.Name))
		}
	}
	if len(want) > 0 {
		missing := make([]string, 0, len(want))
		for n := range want {
			missing = append(missing, n)
		}
		sort.Strings(missing)
		return Catalog{}, fmt.Errorf("unknown catalog repositories: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

// PatternGlobs returns the entry's globs keyed by canonical pattern name,
// in canonical order.
func (e CatalogEntry) PatternGlobs() []PatternLocation {
	byName := make(map[pattern.Name][]string, len(e.Patterns))
	for raw, globs := range e.Patterns {
		if n, ok := pattern.Parse(raw); ok {
			byName[n] = append(byName[n], globs...)
		}
	}
	var out []PatternLocation
	for _, n := range pattern.All() {
		if globs, ok := byName[n]; ok {
			out = append(out, PatternLocation{Pattern: n, Globs: globs})
		}
	}
	return out
}

// PatternLocation pairs a pattern with the globs that locate it.
type PatternLocation struct {
	Pattern pattern.Name
	Globs   []string
}
