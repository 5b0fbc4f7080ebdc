package metrics

import (
	"math"
	"strings"
	"testing"
)

func TestParseOrder(t *testing.T) {
	tests := []struct {
		raw  string
		want Order
	}{
		{"asc", OrderAsc},
		{" Descending ", OrderDesc},
		{"DESC", OrderDesc},
	}
	for _, tt := range tests {
		got, err := ParseOrder(tt.raw)
		if err != nil {
			t.Fatalf("ParseOrder(%q): %v", tt.raw, err)
		}
		if got != tt.want {
			t.Errorf("ParseOrder(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}

	for _, raw := range []string{"", "sideways"} {
		if _, err := ParseOrder(raw); err == nil {
			t.Errorf("ParseOrder(%q): expected error", raw)
		}
	}
}

func TestResolve_Defaults(t *testing.T) {
	defs, err := Resolve(nil)
	if err != nil {
		t.Fatalf("Resolve defaults: %v", err)
	}
	if len(defs) == 0 {
		t.Fatal("expected default metrics")
	}
	if defs[0].ID != "CM001" {
		t.Fatalf("first default metric = %q, want CM001", defs[0].ID)
	}
}

func TestResolve_UnknownMetricHasActionableError(t *testing.T) {
	_, err := Resolve([]string{"bogus"})
	if err == nil {
		t.Fatal("expected unknown metric error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "unknown metric") {
		t.Fatalf("error = %q, expected unknown metric message", msg)
	}
	if !strings.Contains(msg, "available:") {
		t.Fatalf("error = %q, expected available list", msg)
	}
}

func TestResolve_DedupesByID(t *testing.T) {
	defs, err := Resolve([]string{"classes", "cm004", " code-lines "})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("len = %d, want 2", len(defs))
	}
	if defs[1].Name != "code-lines" {
		t.Fatalf("second metric = %q, want code-lines", defs[1].Name)
	}
}

func TestAll_OrderedByID(t *testing.T) {
	defs := All()
	for i := 1; i < len(defs); i++ {
		if defs[i].ID <= defs[i-1].ID {
			t.Fatalf("metrics out of order: %s after %s", defs[i].ID, defs[i-1].ID)
		}
	}
	for _, def := range Defaults() {
		if def.Kind == KindFlag {
			t.Errorf("flag metric %s should not be a default", def.Name)
		}
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList(" classes, methods , ,imports ")
	want := []string{"classes", "methods", "imports"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (%v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("item %d = %q, want %q", i, got[i], want[i])
		}
	}
}

const sampleTS = `import { Shape } from './shape';
import { Logger } from "../log";

// Circle draws itself.
export abstract class Base {}

export class Circle extends Base implements Shape {
  draw(): void {
    console.log('circle');
  }
}

interface Printable {}
`

func TestBuiltins_Computable(t *testing.T) {
	src := []byte(sampleTS)
	doc := NewDocument("circle.ts", src)

	values := doc.Measure(All()).Values
	for name, v := range values {
		if !v.Valid {
			t.Fatalf("metric %s unexpectedly missing", name)
		}
	}

	want := map[string]float64{
		"bytes":          float64(len(src)),
		"total-lines":    14,
		"code-lines":     9,
		"classes":        2,
		"interfaces":     1,
		"methods":        1,
		"imports":        2,
		"has-abstract":   1,
		"has-implements": 1,
		"has-extends":    1,
	}
	for name, n := range want {
		if values[name].N != n {
			t.Errorf("%s = %.0f, want %.0f", name, values[name].N, n)
		}
	}
	if math.Abs(values["comment-ratio"].N-0.1) > 1e-9 {
		t.Errorf("comment-ratio = %f, want 0.1", values["comment-ratio"].N)
	}
}

func TestCommentRatio_UnavailableForBlankFile(t *testing.T) {
	def, ok := Lookup("comment-ratio")
	if !ok {
		t.Fatal("comment-ratio metric not found")
	}
	if v := def.Compute(NewDocument("blank.ts", []byte("\n\n"))); v.Valid {
		t.Fatalf("expected missing value, got %v", v.N)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleTS)
	if s.CodeLines != 9 || s.Classes != 2 || s.Interfaces != 1 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if !s.HasAbstract || !s.HasImplements || !s.HasExtends {
		t.Fatalf("expected all structural flags, got %+v", s)
	}

	empty := Summarize("")
	if empty.TotalLines != 1 || empty.CodeLines != 0 || empty.HasExtends {
		t.Fatalf("unexpected empty summary %+v", empty)
	}
}
