package metrics

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/features"
)

var (
	abstractClassRe = regexp.MustCompile(`abstract\s+class`)
	implementsRe    = regexp.MustCompile(`implements\s+\w+`)
	extendsRe       = regexp.MustCompile(`extends\s+\w+`)
)

// Document is the shared metric input for a single TypeScript file.
// Derived values are computed lazily and cached.
type Document struct {
	Path   string
	Source []byte

	text  string
	lines []string

	features      features.Features
	featuresReady bool
}

// NewDocument constructs a Document wrapper for metric computation.
func NewDocument(path string, source []byte) *Document {
	text := string(source)
	return &Document{
		Path:   path,
		Source: source,
		text:   text,
		lines:  strings.Split(text, "\n"),
	}
}

// ReadDocument loads the file at path.
func ReadDocument(path string) (*Document, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return NewDocument(path, source), nil
}

// Text returns the source as a string.
func (d *Document) Text() string { return d.text }

// ByteCount returns raw file byte count.
func (d *Document) ByteCount() int {
	return len(d.Source)
}

// LineCount returns the number of newline-separated lines, counting the
// trailing segment after the last newline.
func (d *Document) LineCount() int {
	return len(d.lines)
}

// CodeLineCount returns lines that are neither blank nor line comments.
func (d *Document) CodeLineCount() int {
	n := 0
	for _, l := range d.lines {
		l = strings.TrimSpace(l)
		if l != "" && !strings.HasPrefix(l, "//") {
			n++
		}
	}
	return n
}

// CommentLineCount returns lines that start a comment.
func (d *Document) CommentLineCount() int {
	n := 0
	for _, l := range d.lines {
		l = strings.TrimSpace(l)
		if strings.HasPrefix(l, "//") || strings.HasPrefix(l, "/*") || strings.HasPrefix(l, "*") {
			n++
		}
	}
	return n
}

// Features returns the structural features of the source.
func (d *Document) Features() features.Features {
	if !d.featuresReady {
		d.features = features.Extract(d.text)
		d.featuresReady = true
	}
	return d.features
}

// HasAbstractClass reports an abstract class declaration.
func (d *Document) HasAbstractClass() bool { return abstractClassRe.MatchString(d.text) }

// HasImplements reports an implements clause.
func (d *Document) HasImplements() bool { return implementsRe.MatchString(d.text) }

// HasExtends reports an extends clause.
func (d *Document) HasExtends() bool { return extendsRe.MatchString(d.text) }

// Summary is the fixed set of code metrics recorded per dataset file.
type Summary struct {
	TotalLines    int  `json:"total_lines"`
	CodeLines     int  `json:"code_lines"`
	Classes       int  `json:"classes"`
	Interfaces    int  `json:"interfaces"`
	Methods       int  `json:"methods"`
	Imports       int  `json:"imports"`
	HasAbstract   bool `json:"has_abstract"`
	HasImplements bool `json:"has_implements"`
	HasExtends    bool `json:"has_extends"`
}

// Summarize computes the Summary of text.
func Summarize(text string) Summary {
	d := NewDocument("", []byte(text))
	f := d.Features()
	return Summary{
		TotalLines:    d.LineCount(),
		CodeLines:     d.CodeLineCount(),
		Classes:       len(f.Classes),
		Interfaces:    len(f.Interfaces),
		Methods:       len(f.Methods),
		Imports:       len(f.Imports),
		HasAbstract:   d.HasAbstractClass(),
		HasImplements: d.HasImplements(),
		HasExtends:    d.HasExtends(),
	}
}
