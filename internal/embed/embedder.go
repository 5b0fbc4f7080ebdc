package embed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tmc/langchaingo/textsplitter"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/log"
)

var tracer = otel.Tracer("patternctl.embed")

// separators split TypeScript near declarations before falling back to
// lines and words.
var separators = []string{
	"\nexport ", "\nclass ", "\ninterface ", "\nfunction ",
	"\npublic ", "\nprivate ", "\nprotected ",
	"\n", " ", "",
}

// Record is one embedded file.
type Record struct {
	Filename   string               `json:"filename"`
	Label      string               `json:"label"`
	Embeddings map[string][]float32 `json:"embeddings"`
}

// Sink receives the records of a run.
type Sink interface {
	Store(ctx context.Context, records []Record) error
}

// Embedder embeds dataset files with every model in Models.
type Embedder struct {
	Client   Client
	Models   []string
	MaxChars int
	// ChunkSize > 0 embeds the cleaned text in chunks and keeps the mean
	// vector.
	ChunkSize    int
	ChunkOverlap int
	Logger       *slog.Logger
}

type prepared struct {
	file File
	text string
}

// Run embeds files. For each model, files are embedded in order; a model
// the server does not serve is abandoned at its first ErrModelNotFound and
// other per-file errors are logged and skipped. Only files with at least
// one vector are returned, in input order.
func (e *Embedder) Run(ctx context.Context, files []File) ([]Record, error) {
	ctx, span := tracer.Start(ctx, "Embedder.Run",
		trace.WithAttributes(attribute.Int("embed.files", len(files))))
	defer span.End()

	logger := log.OrDiscard(e.Logger)
	if e.Client == nil {
		return nil, errors.New("embedder requires a client")
	}
	e.checkModels(ctx, logger)

	items := make([]prepared, 0, len(files))
	for _, f := range files {
		content, err := os.ReadFile(f.Path)
		if err != nil {
			logger.Warn("reading file", "path", f.Path, "err", err)
			continue
		}
		text := Clean(string(content), e.MaxChars)
		if len(items) == 0 {
			logger.Debug("cleaned sample", "file", f.Name, "original", len(content), "cleaned", len(text))
		}
		items = append(items, prepared{file: f, text: text})
	}

	vectors := make([]map[string][]float32, len(items))
	for i := range vectors {
		vectors[i] = make(map[string][]float32)
	}
	for _, model := range e.Models {
		logger.Info("embedding", "model", model, "files", len(items))
		for i, it := range items {
			if it.text == "" {
				continue
			}
			vec, err := e.embed(ctx, model, it.text)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				if errors.Is(err, ErrModelNotFound) {
					logger.Warn("model not served, skipping it", "model", model)
					break
				}
				logger.Warn("embedding failed", "model", model, "file", it.file.Name, "err", err)
				continue
			}
			vectors[i][model] = vec
		}
	}

	records := []Record{}
	for i, it := range items {
		if len(vectors[i]) == 0 {
			continue
		}
		records = append(records, Record{Filename: it.file.Name, Label: it.file.Label, Embeddings: vectors[i]})
	}
	span.SetAttributes(attribute.Int("embed.records", len(records)))
	return records, nil
}

func (e *Embedder) checkModels(ctx context.Context, logger *slog.Logger) {
	served, err := e.Client.Models(ctx)
	if err != nil {
		logger.Warn("could not list models", "err", err)
		return
	}
	if missing := MissingModels(served, e.Models); len(missing) > 0 {
		logger.Warn("models missing or tagged differently", "missing", missing, "served", served)
	}
}

func (e *Embedder) embed(ctx context.Context, model, text string) ([]float32, error) {
	if e.ChunkSize <= 0 {
		return e.Client.Embed(ctx, model, text)
	}
	chunks, err := e.split(text)
	if err != nil {
		return nil, err
	}
	vecs := make([][]float32, 0, len(chunks))
	for _, c := range chunks {
		v, err := e.Client.Embed(ctx, model, c)
		if err != nil {
			return nil, err
		}
		vecs = append(vecs, v)
	}
	return Mean(vecs)
}

func (e *Embedder) split(text string) ([]string, error) {
	overlap := e.ChunkOverlap
	if overlap >= e.ChunkSize {
		overlap = e.ChunkSize / 10
	}
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(e.ChunkSize),
		textsplitter.WithChunkOverlap(overlap),
		textsplitter.WithSeparators(separators),
	)
	chunks, err := splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("split text: %w", err)
	}
	if len(chunks) == 0 {
		return []string{text}, nil
	}
	return chunks, nil
}

// Mean averages vectors of equal length.
func Mean(vecs [][]float32) ([]float32, error) {
	if len(vecs) == 0 {
		return nil, errors.New("no vectors to average")
	}
	out := make([]float32, len(vecs[0]))
	for _, v := range vecs {
		if len(v) != len(out) {
			return nil, fmt.Errorf("vector length %d, want %d", len(v), len(out))
		}
		for i, x := range v {
			out[i] += x
		}
	}
	n := float32(len(vecs))
	for i := range out {
		out[i] /= n
	}
	return out, nil
}

// WriteRecords writes records as a compact JSON list.
func WriteRecords(path string, records []Record) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	content, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal embeddings: %w", err)
	}
	return os.WriteFile(path, content, 0o644)
}
