package corpus

import (
	"path/filepath"
	"testing"
)

func TestNormalizedHash_IgnoresFormattingAndComments(t *testing.T) {
	t.Parallel()

	a := "class A {\n  run(): void {}\n}\n"
	b := "// header\nclass   A {\n\n  /* doc\n spans lines */\n  run(): void {} // trailing\n}"
	if NormalizedHash(a) != NormalizedHash(b) {
		t.Fatal("expected formatting-only variants to share a hash")
	}
	if NormalizedHash(a) == NormalizedHash("class B {}") {
		t.Fatal("expected different code to hash differently")
	}
	if got := len(NormalizedHash("")); got != 32 {
		t.Fatalf("hash length = %d, want 32", got)
	}
}

func TestNormalizedHash_LineCommentDoesNotSwallowFile(t *testing.T) {
	t.Parallel()

	a := "// c\nclass A {}\n"
	b := "// c\nclass B {}\n"
	if NormalizedHash(a) == NormalizedHash(b) {
		t.Fatal("code after a line comment must contribute to the hash")
	}
}

func TestMemoryIndex(t *testing.T) {
	t.Parallel()

	idx := NewMemoryIndex()
	testHashIndex(t, idx)
	if idx.Len() != 1 {
		t.Fatalf("Len = %d, want 1", idx.Len())
	}
}

func TestBadgerIndex_InMemory(t *testing.T) {
	t.Parallel()

	idx, err := OpenBadgerIndex("")
	if err != nil {
		t.Fatalf("OpenBadgerIndex: %v", err)
	}
	defer func() { _ = idx.Close() }()
	testHashIndex(t, idx)
}

func TestBadgerIndex_PersistsAcrossOpens(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "index")
	idx, err := OpenBadgerIndex(dir)
	if err != nil {
		t.Fatalf("OpenBadgerIndex: %v", err)
	}
	if _, err := idx.Add("abc"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenBadgerIndex(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	seen, err := reopened.Seen("abc")
	if err != nil || !seen {
		t.Fatalf("Seen after reopen = %v, %v; want true", seen, err)
	}
}

func testHashIndex(t *testing.T, idx HashIndex) {
	t.Helper()

	seen, err := idx.Seen("h1")
	if err != nil || seen {
		t.Fatalf("Seen(h1) before add = %v, %v", seen, err)
	}
	added, err := idx.Add("h1")
	if err != nil || !added {
		t.Fatalf("first Add = %v, %v; want true", added, err)
	}
	added, err = idx.Add("h1")
	if err != nil || added {
		t.Fatalf("second Add = %v, %v; want false", added, err)
	}
	seen, err = idx.Seen("h1")
	if err != nil || !seen {
		t.Fatalf("Seen(h1) after add = %v, %v", seen, err)
	}
}

func TestDuplicateGroups(t *testing.T) {
	t.Parallel()

	groups := DuplicateGroups(
		[]string{"a.ts", "b.ts", "c.ts", "d.ts"},
		[]string{"x", "y", "x", "x"},
	)
	if len(groups) != 1 {
		t.Fatalf("groups = %v, want one group", groups)
	}
	got := groups["x"]
	if len(got) != 3 || got[0] != "a.ts" || got[2] != "d.ts" {
		t.Fatalf("group x = %v", got)
	}
}
