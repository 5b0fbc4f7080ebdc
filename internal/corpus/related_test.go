package corpus

import (
	"path/filepath"
	"testing"
)

func TestRelatedFiles(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"src/app/main.ts":       "",
		"src/app/helper.ts":     "",
		"src/app/types.d.ts":    "",
		"src/app/README.md":     "",
		"src/shared/model.ts":   "",
		"src/shared/view.tsx":   "",
		"src/widgets/index.ts":  "",
		"src/widgets/button.ts": "",
	})
	main := filepath.Join(root, "src", "app", "main.ts")

	got := RelatedFiles(main, []string{
		"../shared/model",
		"../shared/view",
		"../widgets",
		"./missing",
		"lodash",
	})
	want := []string{
		filepath.Join(root, "src", "shared", "model.ts"),
		filepath.Join(root, "src", "shared", "view.tsx"),
		filepath.Join(root, "src", "widgets", "index.ts"),
		filepath.Join(root, "src", "app", "helper.ts"),
	}
	if len(got) != len(want) {
		t.Fatalf("RelatedFiles = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("RelatedFiles[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestRelatedFiles_ExtensionAlreadyPresent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a/main.ts": "",
		"b/dep.ts":  "",
	})
	got := RelatedFiles(filepath.Join(root, "a", "main.ts"), []string{"../b/dep.ts"})
	if len(got) != 1 || got[0] != filepath.Join(root, "b", "dep.ts") {
		t.Fatalf("RelatedFiles = %v", got)
	}
}

func TestRelatedFiles_Limit(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	files := map[string]string{"main.ts": ""}
	for _, c := range "abcdefghijklmn" {
		files[string(c)+".ts"] = ""
	}
	writeTree(t, root, files)

	got := RelatedFiles(filepath.Join(root, "main.ts"), nil)
	if len(got) != MaxRelatedFiles {
		t.Fatalf("len = %d, want %d", len(got), MaxRelatedFiles)
	}
}

func TestHasTestFile(t *testing.T) {
	t.Parallel()

	if hasTestFile([]string{"src/a.ts", "src/b.ts"}) {
		t.Fatal("unexpected test file")
	}
	if !hasTestFile([]string{"src/a.ts", "src/a.Spec.ts"}) {
		t.Fatal("expected spec file to count")
	}
}
