package corpus

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/pattern"
)

func TestDefaultCatalog(t *testing.T) {
	t.Parallel()

	cat, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	if got := len(cat.Repositories); got != 7 {
		t.Fatalf("repositories = %d, want 7", got)
	}

	guru := cat.Repositories[0]
	if guru.Name != "RefactoringGuru/design-patterns-typescript" || guru.Confidence != 0.95 {
		t.Fatalf("unexpected first entry: %+v", guru)
	}
	locs := guru.PatternGlobs()
	if len(locs) != 22 {
		t.Fatalf("RefactoringGuru patterns = %d, want 22", len(locs))
	}
	for _, loc := range locs {
		if loc.Pattern == pattern.Interpreter {
			t.Fatal("RefactoringGuru has no Interpreter sample")
		}
		if loc.Pattern == pattern.Factory && loc.Globs[0] != "src/FactoryMethod/**/*.ts" {
			t.Fatalf("Factory globs = %v", loc.Globs)
		}
	}

	torok := cat.Repositories[5]
	if got := len(torok.PatternGlobs()); got != len(pattern.All()) {
		t.Fatalf("torokmark patterns = %d, want %d", got, len(pattern.All()))
	}
}

func TestPatternGlobs_CanonicalOrder(t *testing.T) {
	t.Parallel()

	entry := CatalogEntry{Patterns: map[string][]string{
		"visitor":   {"v/*.ts"},
		"Singleton": {"s/*.ts"},
		"observer":  {"o/*.ts"},
	}}
	locs := entry.PatternGlobs()
	want := []pattern.Name{pattern.Singleton, pattern.Observer, pattern.Visitor}
	if len(locs) != len(want) {
		t.Fatalf("locations = %+v", locs)
	}
	for i := range want {
		if locs[i].Pattern != want[i] {
			t.Fatalf("locations[%d] = %s, want %s", i, locs[i].Pattern, want[i])
		}
	}
}

func TestParseCatalog_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		yaml string
		want string
	}{
		{name: "empty", yaml: "repositories: []\n", want: "no repositories"},
		{name: "missing name", yaml: "repositories:\n  - url: x\n", want: "name is required"},
		{name: "duplicate", yaml: "repositories:\n  - name: a/b\n  - name: a/b\n", want: "duplicate"},
		{name: "unknown pattern", yaml: "repositories:\n  - name: a/b\n    patterns:\n      Repository: [\"x\"]\n", want: "unknown pattern"},
		{name: "confidence", yaml: "repositories:\n  - name: a/b\n    confidence: 1.5\n", want: "between 0 and 1"},
		{name: "bad glob", yaml: "repositories:\n  - name: a/b\n    patterns:\n      State: [\"src/[\"]\n", want: "invalid glob"},
		{name: "bad yaml", yaml: "repositories: [\n", want: "parse catalog yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseCatalog([]byte(tt.yaml))
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("ParseCatalog error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestLoadCatalog_DefaultsConfidence(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "catalog.yml")
	content := "repositories:\n  - name: me/patterns\n    root: /tmp\n    patterns:\n      State: [\"state/*.ts\"]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if got := cat.Repositories[0].Confidence; got != DefaultCuratedConfidence {
		t.Fatalf("confidence = %v, want %v", got, DefaultCuratedConfidence)
	}
}

func TestCatalogSelect(t *testing.T) {
	t.Parallel()

	cat, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog: %v", err)
	}
	sel, err := cat.Select([]string{"reactivex/rxjs", "nestjs/nest"})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(sel.Repositories) != 2 || sel.Repositories[0].Name != "nestjs/nest" {
		t.Fatalf("Select kept %+v", sel.Repositories)
	}
	if _, err := cat.Select([]string{"nobody/nothing"}); err == nil {
		t.Fatal("expected unknown repository error")
	}
}
