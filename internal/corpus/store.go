package corpus

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/pattern"
)

// Store writes labeled files into <Dir>/<Pattern>/. It is safe for
// concurrent use.
type Store struct {
	Dir string
	mu  sync.Mutex
}

// Prepare creates the output directory and one subdirectory per pattern.
func (s *Store) Prepare(patterns []pattern.Name) error {
	for _, p := range patterns {
		dir := filepath.Join(s.Dir, string(p))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// Save writes code as <owner_repo>__<basename of file> under the pattern
// directory. An existing name gets an _N suffix before the extension. The
// returned path is the file written.
func (s *Store) Save(p pattern.Name, repo, file, code string) (string, error) {
	dir := filepath.Join(s.Dir, string(p))
	name := StoredName(repo, file)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory %s: %w", dir, err)
	}

	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	dest := filepath.Join(dir, name)
	for n := 1; ; n++ {
		_, err := os.Stat(dest)
		if errors.Is(err, os.ErrNotExist) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", dest, err)
		}
		dest = filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, n, ext))
	}
	if err := os.WriteFile(dest, []byte(code), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", dest, err)
	}
	return dest, nil
}

// StoredName is the file name used for file from repo.
func StoredName(repo, file string) string {
	return strings.ReplaceAll(repo, "/", "_") + "__" + filepath.Base(filepath.FromSlash(file))
}
