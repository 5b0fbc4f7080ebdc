package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestClonerFetch_ShallowClone(t *testing.T) {
	t.Parallel()

	runner := &fakeGitRunner{trees: map[string]map[string]string{
		"https://github.com/acme/app.git": {"src/a.ts": "class A {}"},
	}}
	cloner := &Cloner{Dir: t.TempDir(), Runner: runner}

	root, err := cloner.Fetch(context.Background(), Checkout{Repository: "acme/app"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "src", "a.ts")); err != nil {
		t.Fatalf("expected cloned file: %v", err)
	}
	clones := runner.commands("clone")
	if len(clones) != 1 {
		t.Fatalf("clone commands = %v", clones)
	}
	if got := strings.Join(clones[0], " "); !strings.Contains(got, "--depth 1") {
		t.Fatalf("clone args = %q, want shallow clone", got)
	}

	if err := cloner.Remove(root); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Fatalf("expected clone removed, stat err = %v", err)
	}
}

func TestClonerFetch_PinnedCommit(t *testing.T) {
	t.Parallel()

	runner := &fakeGitRunner{trees: map[string]map[string]string{
		"https://github.com/acme/app.git": {"docs/x.ts": "class X {}"},
	}}
	cloner := &Cloner{Dir: t.TempDir(), Runner: runner}

	root, err := cloner.Fetch(context.Background(), Checkout{
		Repository: "https://github.com/acme/app",
		CommitSHA:  "abc123",
		Root:       "docs",
	})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if filepath.Base(root) != "docs" {
		t.Fatalf("root = %s, want docs subdirectory", root)
	}
	if got := runner.commands("--no-checkout"); len(got) != 1 {
		t.Fatalf("no-checkout clones = %v", got)
	}
	checkout := runner.commands("checkout")
	if len(checkout) != 1 || checkout[0][len(checkout[0])-1] != "abc123" {
		t.Fatalf("checkout commands = %v", checkout)
	}
}

func TestClonerFetch_LocalRootSkipsGit(t *testing.T) {
	t.Parallel()

	local := t.TempDir()
	runner := &fakeGitRunner{}
	cloner := &Cloner{Dir: t.TempDir(), Runner: runner}

	root, err := cloner.Fetch(context.Background(), Checkout{Repository: "me/local", Root: local})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if root != filepath.Clean(local) {
		t.Fatalf("root = %s, want %s", root, local)
	}
	if len(runner.calls) != 0 {
		t.Fatalf("git was invoked: %v", runner.calls)
	}
	if err := cloner.Remove(root); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := os.Stat(local); err != nil {
		t.Fatalf("local root must survive Remove: %v", err)
	}

	if _, err := cloner.Fetch(context.Background(), Checkout{Root: filepath.Join(local, "missing")}); err == nil {
		t.Fatal("expected missing local root error")
	}
}

func TestClonerFetch_RepositoryNotFound(t *testing.T) {
	t.Parallel()

	cloner := &Cloner{Dir: t.TempDir(), Runner: &fakeGitRunner{}}
	_, err := cloner.Fetch(context.Background(), Checkout{Repository: "acme/missing"})
	if err == nil || !strings.Contains(err.Error(), "not found or inaccessible") {
		t.Fatalf("expected classified error, got %v", err)
	}
}

func TestNormalizeRepository(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{in: "acme/app", want: "https://github.com/acme/app.git"},
		{in: "github.com/acme/app", want: "https://github.com/acme/app.git"},
		{in: "https://github.com/acme/app/", want: "https://github.com/acme/app.git"},
		{in: "https://github.com/acme/app.git", want: "https://github.com/acme/app.git"},
		{in: "git@github.com:acme/app.git", want: "git@github.com:acme/app.git"},
		{in: "./local", want: "./local"},
	}
	for _, tt := range tests {
		got, err := normalizeRepository(tt.in)
		if err != nil {
			t.Fatalf("normalizeRepository(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("normalizeRepository(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if _, err := normalizeRepository("  "); err == nil {
		t.Fatal("expected error for empty repository")
	}
}

func TestClassifyGitError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		msg  string
		want string
	}{
		{msg: "fatal: could not resolve host: github.com", want: "network error"},
		{msg: "fatal: couldn't find remote ref abc", want: "commit not found"},
		{msg: "something else", want: "something else"},
	}
	for _, tt := range tests {
		got := classifyGitError(errors.New(tt.msg), "r", "abc")
		if !strings.Contains(got.Error(), tt.want) {
			t.Fatalf("classifyGitError(%q) = %v, want containing %q", tt.msg, got, tt.want)
		}
	}
}
