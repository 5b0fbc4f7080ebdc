package corpus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/engine"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/log"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/pattern"
)

// Curator copies files from catalog repositories into the dataset under
// the pattern the catalog assigns them.
type Curator struct {
	Catalog Catalog
	// Engine, when set, records its own top detection next to each sample.
	Engine       engine.Detector
	Cloner       *Cloner
	Store        *Store
	TestFraction float64
	Logger       *slog.Logger
	Now          func() time.Time
}

// Run processes every catalog entry and writes the curated metadata.
// Repositories that cannot be fetched are logged and skipped.
func (c *Curator) Run(ctx context.Context) (*CuratedMetadata, error) {
	logger := log.OrDiscard(c.Logger)
	if c.Store == nil || c.Cloner == nil {
		return nil, errors.New("curator requires a store and a cloner")
	}
	if err := c.Store.Prepare(pattern.All()); err != nil {
		return nil, err
	}

	var samples []CuratedSample
	for _, entry := range c.Catalog.Repositories {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		logger.Info("curating repository", "repo", entry.Name)
		got, err := c.CurateRepository(ctx, entry)
		if err != nil {
			logger.Warn("skipping repository", "repo", entry.Name, "err", err)
			continue
		}
		samples = append(samples, got...)
	}

	names := make([]pattern.Name, len(samples))
	for i, s := range samples {
		names[i] = s.Pattern
	}
	if samples == nil {
		samples = []CuratedSample{}
	}
	meta := &CuratedMetadata{
		Type:         "curated",
		RunID:        uuid.NewString(),
		GeneratedAt:  now(c.Now).UTC().Format(time.RFC3339),
		TotalSamples: len(samples),
		Distribution: distribution(names),
		Samples:      samples,
	}
	if err := WriteJSON(filepath.Join(c.Store.Dir, CuratedMetadataFile), meta); err != nil {
		return meta, err
	}
	return meta, nil
}

// CurateRepository fetches one catalog entry and saves its matching files.
func (c *Curator) CurateRepository(ctx context.Context, entry CatalogEntry) ([]CuratedSample, error) {
	ctx, span := tracer.Start(ctx, "Curator.CurateRepository",
		trace.WithAttributes(attribute.String("corpus.repo", entry.Name)))
	defer span.End()

	logger := log.OrDiscard(c.Logger)
	remote := entry.URL
	if remote == "" {
		remote = entry.Name
	}
	root, err := c.Cloner.Fetch(ctx, Checkout{Repository: remote, CommitSHA: entry.CommitSHA, Root: entry.Root})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer func() {
		if err := c.Cloner.Remove(root); err != nil {
			logger.Warn("removing clone", "dir", root, "err", err)
		}
	}()

	var samples []CuratedSample
	for _, loc := range entry.PatternGlobs() {
		files, err := matchGlobs(root, loc.Globs)
		if err != nil {
			return nil, err
		}
		for _, rel := range files {
			path := filepath.Join(root, filepath.FromSlash(rel))
			content, rej := ReadSource(root, path, CheckCuratedSource)
			if rej != Accepted {
				logger.Debug("rejected", "path", rel, "reason", string(rej))
				continue
			}
			s, err := c.save(entry, loc.Pattern, rel, string(content))
			if err != nil {
				return nil, err
			}
			samples = append(samples, s)
		}
	}
	span.SetAttributes(attribute.Int("corpus.samples", len(samples)))
	return samples, nil
}

func (c *Curator) save(entry CatalogEntry, p pattern.Name, rel, code string) (CuratedSample, error) {
	hash := NormalizedHash(code)
	s := CuratedSample{
		Pattern:    p,
		Repository: entry.Name,
		File:       rel,
		Confidence: entry.Confidence,
		Hash:       hash,
		Split:      SplitFor(hash, c.TestFraction),
		Code:       code,
	}
	if c.Engine != nil {
		if best, ok := c.Engine.Detect(code, rel).Best(); ok {
			s.Detected = best.Pattern
			s.DetectedScore = best.Confidence
		}
	}
	if _, err := c.Store.Save(p, entry.Name, rel, code); err != nil {
		return CuratedSample{}, fmt.Errorf("save %s: %w", rel, err)
	}
	return s, nil
}

// matchGlobs returns the TypeScript files under root matching any glob, as
// sorted slash-separated relative paths without duplicates.
func matchGlobs(root string, globs []string) ([]string, error) {
	fsys := os.DirFS(root)
	seen := make(map[string]bool)
	var out []string
	for _, g := range globs {
		matches, err := doublestar.Glob(fsys, g, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", g, err)
		}
		for _, m := range matches {
			if !strings.HasSuffix(m, ".ts") || strings.HasSuffix(m, ".d.ts") || seen[m] {
				continue
			}
			seen[m] = true
			out = append(out, m)
		}
	}
	sort.Strings(out)
	return out, nil
}
