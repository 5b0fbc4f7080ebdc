package output

import (
	"encoding/json"
	"io"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/engine"
)

// JSONFormatter outputs detection results as a JSON array.
type JSONFormatter struct{}

type jsonDetection struct {
	Pattern    string   `json:"pattern"`
	Confidence float64  `json:"confidence"`
	Method     string   `json:"method"`
	Signals    []string `json:"signals"`
}

type jsonFile struct {
	Path       string          `json:"path"`
	Best       *jsonDetection  `json:"best"`
	Detections []jsonDetection `json:"detections"`
}

// Format writes results as a pretty-printed JSON array.
// An empty slice of results produces [].
func (f *JSONFormatter) Format(w io.Writer, files []engine.FileReport) error {
	items := make([]jsonFile, 0, len(files))
	for _, fr := range files {
		item := jsonFile{Path: fr.Path, Detections: make([]jsonDetection, 0, len(fr.Report.Detections))}
		for _, d := range fr.Report.Detections {
			signals := d.Signals
			if signals == nil {
				signals = []string{}
			}
			item.Detections = append(item.Detections, jsonDetection{
				Pattern:    string(d.Pattern),
				Confidence: d.Confidence,
				Method:     string(d.Method),
				Signals:    signals,
			})
		}
		if len(item.Detections) > 0 {
			best := item.Detections[0]
			item.Best = &best
		}
		items = append(items, item)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}
