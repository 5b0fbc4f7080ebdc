package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/pattern"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunner_RanksFiles(t *testing.T) {
	dir := t.TempDir()
	b := writeFile(t, dir, "b.ts", observerTS)
	a := writeFile(t, dir, "a.ts", singletonTS)

	runner := &Runner{Detector: New(), Workers: 2}
	result := runner.Run(context.Background(), []string{b, a})

	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(result.Files))
	}
	if result.Files[0].Path != a {
		t.Errorf("expected results sorted by path, first is %s", result.Files[0].Path)
	}
	best, ok := result.Files[0].Report.Best()
	if !ok || best.Pattern != pattern.Singleton {
		t.Errorf("expected Singleton for %s, got %+v", a, best)
	}
}

func TestRunner_UnreadableFileIsRecorded(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.ts", singletonTS)
	missing := filepath.Join(dir, "missing.ts")

	runner := &Runner{Detector: New()}
	result := runner.Run(context.Background(), []string{missing, good})

	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 error, got %d: %v", len(result.Errors), result.Errors)
	}
	if len(result.Files) != 1 || result.Files[0].Path != good {
		t.Errorf("expected only %s to be ranked, got %+v", good, result.Files)
	}
}

func TestRunner_IgnorePatterns(t *testing.T) {
	dir := t.TempDir()
	kept := writeFile(t, dir, "src/a.ts", singletonTS)
	skipped := writeFile(t, dir, "src/a.spec.ts", singletonTS)

	runner := &Runner{Detector: New(), Ignore: []string{"*.spec.ts", "[invalid"}}
	result := runner.Run(context.Background(), []string{kept, skipped})

	if len(result.Files) != 1 || result.Files[0].Path != kept {
		t.Errorf("expected only %s, got %+v", kept, result.Files)
	}
}

func TestRunner_WithCache(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.ts", singletonTS)

	cache, err := NewCache(New(), 0)
	if err != nil {
		t.Fatal(err)
	}
	runner := &Runner{Detector: cache}
	runner.Run(context.Background(), []string{a, a})

	if cache.Len() != 1 {
		t.Errorf("expected one cached report, got %d", cache.Len())
	}
}

func TestRunner_CanceledContext(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.ts", singletonTS)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := (&Runner{Detector: New()}).Run(ctx, []string{a})
	if len(result.Files) != 0 {
		t.Errorf("expected no files after cancellation, got %d", len(result.Files))
	}
	if len(result.Errors) == 0 {
		t.Error("expected the cancellation to be reported")
	}
}
