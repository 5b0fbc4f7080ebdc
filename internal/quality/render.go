package quality

import (
	"bytes"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/pattern"
)

// MaxPrintedMisclassified bounds the misclassified files printed by
// WriteSummary.
const MaxPrintedMisclassified = 10

const maxBar = 30

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	barStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
)

// SummaryWriter prints a report for a terminal.
type SummaryWriter struct {
	Color bool
}

// Write prints the totals, the per-pattern distribution, the first
// misclassified files and the recommendations.
func (s SummaryWriter) Write(w io.Writer, dataset string, rep *Report) error {
	var b strings.Builder
	fmt.Fprintln(&b, s.style(titleStyle, "DATASET QUALITY REPORT"))
	fmt.Fprintf(&b, "%s %s\n", s.style(labelStyle, "dataset:"), dataset)
	fmt.Fprintf(&b, "%s %d\n", s.style(labelStyle, "total files:"), rep.Summary.TotalFiles)
	fmt.Fprintf(&b, "%s %s\n", s.style(labelStyle, "valid:"), s.style(goodStyle, fmt.Sprint(rep.Summary.ValidFiles)))
	fmt.Fprintf(&b, "%s %s\n", s.style(labelStyle, "invalid:"), s.style(badStyle, fmt.Sprint(rep.Summary.InvalidFiles)))
	fmt.Fprintf(&b, "%s %d\n", s.style(labelStyle, "duplicates:"), rep.Summary.Duplicates)
	score := fmt.Sprintf("%.1f%%", rep.Summary.QualityScore*100)
	if rep.Summary.QualityScore < LowQualityScore {
		score = s.style(badStyle, score)
	} else {
		score = s.style(goodStyle, score)
	}
	fmt.Fprintf(&b, "%s %s\n", s.style(labelStyle, "quality score:"), score)

	fmt.Fprintf(&b, "\n%s\n", s.style(titleStyle, "DISTRIBUTION BY PATTERN"))
	for _, name := range sortedPatterns(rep) {
		n := rep.PatternDistribution[name]
		fmt.Fprintf(&b, "  %-25s %4d %s\n", name, n, s.style(barStyle, strings.Repeat("█", min(n, maxBar))))
	}

	if len(rep.Misclassified) > 0 {
		fmt.Fprintf(&b, "\n%s\n", s.style(titleStyle,
			fmt.Sprintf("POSSIBLY MISCLASSIFIED FILES (%d)", len(rep.Misclassified))))
		for _, m := range rep.Misclassified[:min(len(rep.Misclassified), MaxPrintedMisclassified)] {
			fmt.Fprintf(&b, "  %s\n", path.Base(m.File))
			fmt.Fprintf(&b, "    %s %s\n", s.style(labelStyle, "assigned:"), m.Assigned)
			fmt.Fprintf(&b, "    %s %s\n", s.style(labelStyle, "reason:"), m.Reason)
		}
	}

	if len(rep.Recommendations) > 0 {
		fmt.Fprintf(&b, "\n%s\n", s.style(titleStyle, "RECOMMENDATIONS"))
		for _, r := range rep.Recommendations {
			fmt.Fprintf(&b, "  - %s\n", r)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func (s SummaryWriter) style(st lipgloss.Style, text string) string {
	if !s.Color {
		return text
	}
	return st.Render(text)
}

// Markdown renders rep as a markdown document.
func Markdown(dataset string, rep *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Dataset quality report\n\n")
	fmt.Fprintf(&b, "Dataset: `%s`\n\n", dataset)
	b.WriteString("| metric | value |\n|---|---|\n")
	fmt.Fprintf(&b, "| total files | %d |\n", rep.Summary.TotalFiles)
	fmt.Fprintf(&b, "| valid files | %d |\n", rep.Summary.ValidFiles)
	fmt.Fprintf(&b, "| invalid files | %d |\n", rep.Summary.InvalidFiles)
	fmt.Fprintf(&b, "| duplicates | %d |\n", rep.Summary.Duplicates)
	fmt.Fprintf(&b, "| quality score | %.1f%% |\n", rep.Summary.QualityScore*100)
	if rep.Agreement != nil {
		fmt.Fprintf(&b, "| label agreement | %.1f%% |\n", rep.Agreement.Agreement*100)
	}

	b.WriteString("\n## Distribution\n\n| pattern | files | precision | recall |\n|---|---|---|---|\n")
	for _, name := range sortedPatterns(rep) {
		precision, recall := "-", "-"
		if rep.Agreement != nil {
			if pa, ok := rep.Agreement.PerPattern[name]; ok {
				precision = fmt.Sprintf("%.2f", pa.Precision)
				recall = fmt.Sprintf("%.2f", pa.Recall)
			}
		}
		fmt.Fprintf(&b, "| %s | %d | %s | %s |\n", name, rep.PatternDistribution[name], precision, recall)
	}

	if len(rep.Misclassified) > 0 {
		b.WriteString("\n## Misclassified samples\n\n| file | assigned | detected | reason |\n|---|---|---|---|\n")
		for _, m := range rep.Misclassified {
			detected := make([]string, len(m.Detected))
			for i, d := range m.Detected {
				detected[i] = fmt.Sprintf("%s %.2f", d.Pattern, d.Confidence)
			}
			fmt.Fprintf(&b, "| `%s` | %s | %s | %s |\n", m.File, m.Assigned,
				escapeCell(strings.Join(detected, ", ")), escapeCell(m.Reason))
		}
	}

	if len(rep.Recommendations) > 0 {
		b.WriteString("\n## Recommendations\n\n")
		for _, r := range rep.Recommendations {
			fmt.Fprintf(&b, "- %s\n", r)
		}
	}
	return b.String()
}

// WriteHTML renders the markdown report to HTML.
func WriteHTML(w io.Writer, dataset string, rep *Report) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(dataset, rep)), &buf); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func sortedPatterns(rep *Report) []pattern.Name {
	names := make([]pattern.Name, 0, len(rep.PatternDistribution))
	for p := range rep.PatternDistribution {
		names = append(names, p)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}
