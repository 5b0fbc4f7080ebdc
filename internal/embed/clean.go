// Package embed turns a labeled dataset into per-model embedding vectors
// served by an OpenAI-compatible endpoint such as Ollama.
package embed

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

// DefaultMaxChars bounds the cleaned text sent to a model.
const DefaultMaxChars = 12000

var (
	blockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
	lineCommentRe  = regexp.MustCompile(`//[^\n]*`)
)

// Clean strips block and line comments, trims every line, drops blank
// lines and joins the rest with single spaces. The result is cut to at
// most maxChars characters; maxChars <= 0 uses DefaultMaxChars.
func Clean(code string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	code = blockCommentRe.ReplaceAllString(code, "")
	code = lineCommentRe.ReplaceAllString(code, "")

	var kept []string
	for _, line := range strings.Split(code, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	cleaned := strings.Join(kept, " ")
	if utf8.RuneCountInString(cleaned) <= maxChars {
		return cleaned
	}
	n := 0
	for i := range cleaned {
		if n == maxChars {
			return cleaned[:i]
		}
		n++
	}
	return cleaned
}

// File is one labeled dataset file.
type File struct {
	Path  string
	Label string
	Name  string
}

// Files lists the .ts files one level below each directory of dir. The
// directory name is the label. Directories and files are sorted by name.
func Files(dir string) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []File
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		labelDir := filepath.Join(dir, e.Name())
		children, err := os.ReadDir(labelDir)
		if err != nil {
			return nil, err
		}
		var names []string
		for _, c := range children {
			if !c.IsDir() && strings.HasSuffix(c.Name(), ".ts") {
				names = append(names, c.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			out = append(out, File{Path: filepath.Join(labelDir, name), Label: e.Name(), Name: name})
		}
	}
	return out, nil
}
