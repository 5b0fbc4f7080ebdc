package output

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/engine"
)

var (
	pathStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	patternStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("170")).Bold(true)
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// TextFormatter outputs detections in human-readable text format, one line
// per detection. Top limits the detections printed per file (default 1).
// When Signals is true, each detection is followed by the criteria that
// fired.
type TextFormatter struct {
	Color   bool
	Top     int
	Signals bool
}

// Format writes each detection in the pattern:
// path pattern confidence method
// Files without a detection print a single "path -" line.
func (f *TextFormatter) Format(w io.Writer, files []engine.FileReport) error {
	top := f.Top
	if top <= 0 {
		top = 1
	}
	for _, fr := range files {
		dets := fr.Report.Top(top)
		if len(dets) == 0 {
			if _, err := fmt.Fprintf(w, "%s %s\n", f.style(pathStyle, fr.Path), f.style(mutedStyle, "-")); err != nil {
				return err
			}
			continue
		}
		for _, d := range dets {
			_, err := fmt.Fprintf(w, "%s %s %s %s\n",
				f.style(pathStyle, fr.Path),
				f.style(patternStyle, string(d.Pattern)),
				f.style(scoreStyle, fmt.Sprintf("%.2f", d.Confidence)),
				f.style(mutedStyle, string(d.Method)))
			if err != nil {
				return err
			}
			if !f.Signals {
				continue
			}
			for _, s := range d.Signals {
				if _, err := fmt.Fprintf(w, "  - %s\n", s); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (f *TextFormatter) style(s lipgloss.Style, text string) string {
	if !f.Color {
		return text
	}
	return s.Render(text)
}
