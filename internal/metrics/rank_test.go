package metrics

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func mustLookup(t *testing.T, name string) Definition {
	t.Helper()
	def, ok := Lookup(name)
	if !ok {
		t.Fatalf("metric %s not found", name)
	}
	return def
}

func row(path, name string, v Value) Row {
	return Row{Path: path, Values: map[string]Value{name: v}}
}

func paths(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Path
	}
	return out
}

func ranks(rows []Row) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.Rank
	}
	return out
}

func TestRank_TiesShareRankAndKeepInputOrder(t *testing.T) {
	def := mustLookup(t, "classes")
	rows := []Row{
		row("z.ts", "classes", Some(2)),
		row("c.ts", "classes", Some(1)),
		row("a.ts", "classes", Some(2)),
		row("b.ts", "classes", Some(5)),
	}

	Rank(rows, def, OrderDesc)

	if got, want := paths(rows), []string{"b.ts", "z.ts", "a.ts", "c.ts"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
	if got, want := ranks(rows), []int{1, 2, 2, 4}; !reflect.DeepEqual(got, want) {
		t.Fatalf("ranks = %v, want %v", got, want)
	}
}

func TestRank_MissingValuesLast(t *testing.T) {
	def := mustLookup(t, "comment-ratio")
	rows := []Row{
		row("blank.ts", "comment-ratio", None),
		row("b.ts", "comment-ratio", Some(0.4)),
		row("a.ts", "comment-ratio", Some(0.1)),
	}

	Rank(rows, def, OrderAsc)

	if got, want := paths(rows), []string{"a.ts", "b.ts", "blank.ts"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
	if rows[2].Rank != 3 {
		t.Fatalf("missing value rank = %d, want 3", rows[2].Rank)
	}
}

func TestTop_KeepsTieAtCutoff(t *testing.T) {
	rows := []Row{{Path: "a", Rank: 1}, {Path: "b", Rank: 2}, {Path: "c", Rank: 2}, {Path: "d", Rank: 4}}

	if got := paths(Top(rows, 2)); !reflect.DeepEqual(got, []string{"a", "b", "c"}) {
		t.Fatalf("Top(2) = %v", got)
	}
	if got := Top(rows, 0); len(got) != 4 {
		t.Fatalf("Top(0) len = %d, want 4", len(got))
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		metric string
		value  Value
		text   string
		json   any
	}{
		{"bytes", Some(12.4), "12", int64(12)},
		{"comment-ratio", Some(0.1254), "12.5%", 0.125},
		{"comment-ratio", None, "-", nil},
		{"has-extends", Some(1), "yes", true},
		{"has-extends", Some(0), "no", false},
	}
	for _, tt := range tests {
		def := mustLookup(t, tt.metric)
		if got := Format(def, tt.value); got != tt.text {
			t.Errorf("Format(%s, %v) = %q, want %q", tt.metric, tt.value, got, tt.text)
		}
		if got := JSON(def, tt.value); got != tt.json {
			t.Errorf("JSON(%s, %v) = %v, want %v", tt.metric, tt.value, got, tt.json)
		}
	}
}

func TestCollect_KeepsPathOrder(t *testing.T) {
	dir := t.TempDir()
	var files []string
	for i, src := range []string{sampleTS, "export const x = 1;\n", sampleTS} {
		path := filepath.Join(dir, string(rune('a'+i))+".ts")
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
		files = append(files, path)
	}

	rows, err := Collect(context.Background(), files, []Definition{mustLookup(t, "classes")})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if got := paths(rows); !reflect.DeepEqual(got, files) {
		t.Fatalf("paths = %v, want %v", got, files)
	}
	want := []float64{2, 0, 2}
	for i, r := range rows {
		if r.Values["classes"].N != want[i] {
			t.Errorf("%s classes = %v, want %v", r.Path, r.Values["classes"].N, want[i])
		}
	}

	if _, err := Collect(context.Background(), []string{filepath.Join(dir, "missing.ts")}, All()); err == nil {
		t.Fatal("expected error for missing file")
	}
}
