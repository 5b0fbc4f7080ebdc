package corpus

import (
	"os"
	"path/filepath"
	"strings"
)

// MaxRelatedFiles caps the related files recorded per sample.
const MaxRelatedFiles = 10

var importSuffixes = []string{".ts", ".tsx", "/index.ts"}

// RelatedFiles returns files that travel with path: relative imports that
// resolve on disk, then the other TypeScript sources in the same directory.
// Lookup problems shrink the result and are never reported.
func RelatedFiles(path string, imports []string) []string {
	dir := filepath.Dir(path)
	seen := map[string]bool{path: true}
	var related []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			related = append(related, p)
		}
	}

	for _, imp := range imports {
		if !strings.HasPrefix(imp, ".") {
			continue
		}
		base := filepath.Join(dir, filepath.FromSlash(imp))
		for _, suffix := range importSuffixes {
			candidate := base
			if !strings.HasSuffix(base, filepath.FromSlash(suffix)) {
				candidate = base + filepath.FromSlash(suffix)
			}
			if isRegularFile(candidate) {
				add(candidate)
				break
			}
		}
	}

	entries, err := os.ReadDir(dir)
	if err == nil {
		for _, e := range entries {
			name := e.Name()
			if e.IsDir() || !strings.HasSuffix(name, ".ts") || strings.HasSuffix(name, ".d.ts") {
				continue
			}
			add(filepath.Join(dir, name))
		}
	}

	if len(related) > MaxRelatedFiles {
		related = related[:MaxRelatedFiles]
	}
	return related
}

func hasTestFile(paths []string) bool {
	for _, p := range paths {
		name := strings.ToLower(p)
		if strings.Contains(name, "test") || strings.Contains(name, "spec") {
			return true
		}
	}
	return false
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
