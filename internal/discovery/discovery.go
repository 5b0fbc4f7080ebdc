// Package discovery finds TypeScript source files by expanding glob patterns.
package discovery

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultSkipDirs are directory names never descended into.
var DefaultSkipDirs = []string{"node_modules", "dist", "build", ".git", "coverage"}

// SourcePatterns match TypeScript sources.
var SourcePatterns = []string{"**/*.ts"}

// DeclarationPatterns match TypeScript declaration files.
var DeclarationPatterns = []string{"**/*.d.ts"}

// Options controls how file discovery behaves.
type Options struct {
	// Patterns is the list of glob patterns to match files against.
	// An empty or nil list means no files are discovered.
	Patterns []string

	// Exclude drops files matching any of these patterns.
	Exclude []string

	// BaseDir is the directory to walk from. Defaults to "." if empty.
	BaseDir string

	// SkipDirs are directory base names that are not descended into.
	SkipDirs []string
}

// Discover walks BaseDir and returns files matching any of the configured
// glob patterns. Results are deduplicated and sorted.
func Discover(opts Options) ([]string, error) {
	if len(opts.Patterns) == 0 {
		return nil, nil
	}

	baseDir := opts.BaseDir
	if baseDir == "" {
		baseDir = "."
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return nil, err
	}

	validPatterns := validatePatterns(opts.Patterns)
	if len(validPatterns) == 0 {
		return nil, nil
	}

	skip := make(map[string]bool, len(opts.SkipDirs))
	for _, d := range opts.SkipDirs {
		skip[d] = true
	}

	w := &walker{
		absBase:  absBase,
		patterns: validPatterns,
		exclude:  validatePatterns(opts.Exclude),
		skipDirs: skip,
		seen:     make(map[string]bool),
	}

	if err := filepath.Walk(absBase, w.visit); err != nil {
		return nil, err
	}

	sort.Strings(w.result)
	return w.result, nil
}

// Sources discovers TypeScript sources under dir, skipping DefaultSkipDirs
// and declaration files.
func Sources(dir string) ([]string, error) {
	return Discover(Options{
		Patterns: SourcePatterns,
		Exclude:  DeclarationPatterns,
		BaseDir:  dir,
		SkipDirs: DefaultSkipDirs,
	})
}

// Expand turns a mix of files and directories into a sorted list of files.
// Directories contribute their TypeScript sources.
func Expand(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		files := []string{p}
		if info.IsDir() {
			if files, err = Sources(p); err != nil {
				return nil, err
			}
		}
		for _, f := range files {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// validatePatterns returns patterns that are syntactically valid.
func validatePatterns(patterns []string) []string {
	valid := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if doublestar.ValidatePattern(p) {
			valid = append(valid, p)
		}
	}
	return valid
}

// walker holds state for the directory walk.
type walker struct {
	absBase  string
	patterns []string
	exclude  []string
	skipDirs map[string]bool
	seen     map[string]bool
	result   []string
}

// visit is the filepath.WalkFunc callback.
func (w *walker) visit(path string, info os.FileInfo, walkErr error) error {
	if walkErr != nil {
		return walkErr
	}

	rel, err := filepath.Rel(w.absBase, path)
	if err != nil || rel == "." {
		return nil
	}
	rel = filepath.ToSlash(rel)

	if info.IsDir() {
		if w.skipDirs[info.Name()] {
			return filepath.SkipDir
		}
		return nil
	}

	if matchesAny(w.patterns, rel) && !matchesAny(w.exclude, rel) {
		w.addFile(path)
	}
	return nil
}

// matchesAny returns true if rel matches any of the patterns.
func matchesAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		matched, err := doublestar.Match(p, rel)
		if err == nil && matched {
			return true
		}
	}
	return false
}

// addFile adds a file to the result set if not already seen.
func (w *walker) addFile(path string) {
	if !w.seen[path] {
		w.seen[path] = true
		w.result = append(w.result, path)
	}
}
