package output

import (
	"io"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/engine"
)

// Formatter defines the interface for outputting detection results.
type Formatter interface {
	Format(w io.Writer, files []engine.FileReport) error
}

// New returns the formatter registered under name ("text" or "json").
func New(name string, color bool, top int) (Formatter, bool) {
	switch name {
	case "", "text":
		return &TextFormatter{Color: color, Top: top}, true
	case "json":
		return &JSONFormatter{}, true
	default:
		return nil, false
	}
}
