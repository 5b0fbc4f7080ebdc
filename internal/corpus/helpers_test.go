package corpus

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

const singletonTS = `export class Config {
  private static instance: Config;
  private values: string[] = [];

  private constructor() {}

  public static getInstance(): Config {
    if (!Config.instance) {
      Config.instance = new Config();
    }
    return Config.instance;
  }

  get(key: string): string {
    return key;
  }
}
`

// fakeGitRunner materializes a fixed file tree for every clone of a known
// remote and records the commands it was asked to run.
type fakeGitRunner struct {
	mu    sync.Mutex
	trees map[string]map[string]string
	calls [][]string
}

func (f *fakeGitRunner) Run(_ context.Context, args []string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string(nil), args...))
	f.mu.Unlock()

	if len(args) == 0 || args[0] != "clone" {
		return nil, nil
	}
	remote := args[len(args)-2]
	dest := args[len(args)-1]
	tree, ok := f.trees[remote]
	if !ok {
		return nil, errString("fatal: repository not found")
	}
	for rel, content := range tree {
		path := filepath.Join(dest, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (f *fakeGitRunner) commands(name string) [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out [][]string
	for _, c := range f.calls {
		for _, a := range c {
			if a == name {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

type errString string

func (e errString) Error() string { return string(e) }

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", rel, err)
		}
	}
}

func padded(text string, lines int) string {
	var b strings.Builder
	b.WriteString(text)
	for i := 0; i < lines; i++ {
		b.WriteString("const v")
		b.WriteString(strings.Repeat("x", i+1))
		b.WriteString(" = 1;\n")
	}
	return b.String()
}
