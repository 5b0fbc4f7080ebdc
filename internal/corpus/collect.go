package corpus

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-enry/go-enry/v2"
	"github.com/gobwas/glob"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/discovery"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/log"
)

// Mining source filter limits.
const (
	MaxSourceBytes     = 500000
	MaxLineLength      = 500
	MinMeaningfulLines = 10
)

// Curated source filter limits.
const (
	MinCuratedBytes = 100
	MaxCuratedBytes = 200000
)

var (
	rejectedNameParts = []string{"test", "spec", ".d.ts", "mock"}
	minedMarkers      = []string{"class ", "interface ", "abstract "}
	curatedMarkers    = []string{"class ", "interface ", "function ", "export "}
)

// Candidates returns the TypeScript sources under root that do not match any
// exclude glob. Globs are matched against the slash-separated path relative
// to root and against the base name.
func Candidates(root string, exclude []string, logger *slog.Logger) ([]string, error) {
	logger = log.OrDiscard(logger)
	files, err := discovery.Sources(root)
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	if len(exclude) == 0 {
		return files, nil
	}

	globs := make([]glob.Glob, 0, len(exclude))
	for _, p := range exclude {
		g, err := glob.Compile(p, '/')
		if err != nil {
			logger.Warn("invalid exclude pattern", "pattern", p, "err", err)
			continue
		}
		globs = append(globs, g)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	out := files[:0]
	for _, f := range files {
		rel, err := filepath.Rel(absRoot, f)
		if err != nil {
			rel = f
		}
		if !excluded(globs, filepath.ToSlash(rel)) {
			out = append(out, f)
		}
	}
	return out, nil
}

func excluded(globs []glob.Glob, rel string) bool {
	base := filepath.Base(rel)
	for _, g := range globs {
		if g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}

// Rejection explains why a candidate file was not considered.
type Rejection string

// Rejection reasons.
const (
	Accepted         Rejection = ""
	RejectName       Rejection = "test, spec, mock or declaration file"
	RejectSize       Rejection = "size out of range"
	RejectEmpty      Rejection = "empty"
	RejectLongLine   Rejection = "minified or long lines"
	RejectNoTypes    Rejection = "no type declarations"
	RejectTooShort   Rejection = "too few meaningful lines"
	RejectVendored   Rejection = "vendored"
	RejectGenerated  Rejection = "generated"
	RejectUnreadable Rejection = "unreadable"
)

// CheckMinedSource applies the mining filter to a file's name and content.
// path should be relative to the repository root.
func CheckMinedSource(path string, content []byte) Rejection {
	if nameRejected(path) {
		return RejectName
	}
	if len(content) > MaxSourceBytes {
		return RejectSize
	}
	if len(content) == 0 {
		return RejectEmpty
	}
	if enry.IsVendor(filepath.ToSlash(path)) {
		return RejectVendored
	}
	if enry.IsGenerated(path, content) {
		return RejectGenerated
	}

	text := string(content)
	lines := strings.Split(text, "\n")
	for _, line := range lines {
		if len(line) > MaxLineLength {
			return RejectLongLine
		}
	}
	if !containsAny(text, minedMarkers) {
		return RejectNoTypes
	}
	if meaningfulLines(lines) < MinMeaningfulLines {
		return RejectTooShort
	}
	return Accepted
}

// CheckCuratedSource applies the looser curated filter.
func CheckCuratedSource(path string, content []byte) Rejection {
	if nameRejected(path) {
		return RejectName
	}
	if len(content) < MinCuratedBytes || len(content) > MaxCuratedBytes {
		return RejectSize
	}
	if !containsAny(string(content), curatedMarkers) {
		return RejectNoTypes
	}
	return Accepted
}

// ReadSource reads the file at path and applies check to its path relative
// to root, returning the content when the file is accepted.
func ReadSource(root, path string, check func(string, []byte) Rejection) ([]byte, Rejection) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, RejectUnreadable
	}
	if info.Size() > MaxSourceBytes {
		return nil, RejectSize
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, RejectUnreadable
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	if r := check(filepath.ToSlash(rel), content); r != Accepted {
		return nil, r
	}
	return content, Accepted
}

func nameRejected(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	return containsAny(name, rejectedNameParts)
}

func containsAny(s string, parts []string) bool {
	for _, p := range parts {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func meaningfulLines(lines []string) int {
	n := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "//") {
			n++
		}
	}
	return n
}
