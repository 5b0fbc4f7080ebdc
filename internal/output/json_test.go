package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestJSONFormatter_FieldNamesAndValues(t *testing.T) {
	f := &JSONFormatter{}
	var buf bytes.Buffer

	if err := f.Format(&buf, sampleReports()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatalf("output is not valid JSON: %v\noutput: %s", err, buf.String())
	}
	if len(raw) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(raw))
	}

	first := raw[0]
	if first["path"] != "src/config.ts" {
		t.Errorf("path: got %v", first["path"])
	}
	best, ok := first["best"].(map[string]any)
	if !ok {
		t.Fatalf("best: got %T", first["best"])
	}
	if best["pattern"] != "Singleton" || best["confidence"] != 0.9 || best["method"] != "specialized" {
		t.Errorf("best: got %v", best)
	}
	dets, ok := first["detections"].([]any)
	if !ok || len(dets) != 2 {
		t.Fatalf("detections: got %v", first["detections"])
	}

	second := raw[1]
	if second["best"] != nil {
		t.Errorf("expected null best for undetected file, got %v", second["best"])
	}
	if d, ok := second["detections"].([]any); !ok || len(d) != 0 {
		t.Errorf("expected empty detections array, got %v", second["detections"])
	}
}

func TestJSONFormatter_EmptyProducesArray(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{}).Format(&buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("got %q, want []", got)
	}
}

func TestJSONFormatter_SignalsNeverNull(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONFormatter{}).Format(&buf, sampleReports()); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), `"signals": null`) {
		t.Errorf("signals should be an empty array, got %s", buf.String())
	}
}
