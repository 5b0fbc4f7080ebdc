package quality

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/corpus"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/engine"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/log"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/pattern"
)

var tracer = otel.Tracer("patternctl.quality")

// Validator analyzes every file of a dataset laid out as
// <Dir>/<Pattern>/*.ts.
type Validator struct {
	Engine  engine.Detector
	Dir     string
	Workers int
	Logger  *slog.Logger
}

type labeledFile struct {
	path     string
	rel      string
	assigned pattern.Name
}

// Run analyzes the dataset and builds its report. Pattern directories are
// visited in canonical order and files by name, so the report is stable.
func (v *Validator) Run(ctx context.Context) (*Report, error) {
	ctx, span := tracer.Start(ctx, "Validator.Run",
		trace.WithAttributes(attribute.String("quality.dataset", v.Dir)))
	defer span.End()

	analyses, err := v.analyzeAll(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	rep := Build(analyses)
	span.SetAttributes(
		attribute.Int("quality.files", rep.Summary.TotalFiles),
		attribute.Int("quality.invalid", rep.Summary.InvalidFiles),
		attribute.Int("quality.duplicates", rep.Summary.Duplicates),
	)
	return rep, nil
}

func (v *Validator) analyzeAll(ctx context.Context) ([]FileAnalysis, error) {
	if v.Engine == nil {
		return nil, errors.New("validator requires an engine")
	}
	logger := log.OrDiscard(v.Logger)
	files, err := datasetFiles(v.Dir)
	if err != nil {
		return nil, err
	}
	logger.Info("analyzing dataset", "dir", v.Dir, "files", len(files))

	workers := v.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	analyses := make([]FileAnalysis, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, f := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a := AnalyzeFile(v.Engine, f.path, f.rel, f.assigned)
			if !a.Valid {
				logger.Debug("invalid sample", "file", f.rel, "reason", a.Reason)
			}
			analyses[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return analyses, nil
}

// datasetFiles lists the .ts files directly under each canonical pattern
// directory of dir. Missing pattern directories are skipped.
func datasetFiles(dir string) ([]labeledFile, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dataset %s: not a directory", dir)
	}
	var out []labeledFile
	for _, p := range pattern.All() {
		entries, err := os.ReadDir(filepath.Join(dir, string(p)))
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".ts") {
				continue
			}
			names = append(names, e.Name())
		}
		sort.Strings(names)
		for _, name := range names {
			out = append(out, labeledFile{
				path:     filepath.Join(dir, string(p), name),
				rel:      string(p) + "/" + name,
				assigned: p,
			})
		}
	}
	return out, nil
}

// CleanDuplicates removes every file of each duplicate group except the
// first. Paths are relative to dir. With dryRun nothing is removed. It
// returns the number of files removed, or that would be removed.
func CleanDuplicates(dir string, groups [][]string, dryRun bool, logger *slog.Logger) (int, error) {
	logger = log.OrDiscard(logger)
	removed := 0
	for _, group := range groups {
		for _, rel := range group[min(1, len(group)):] {
			path := filepath.Join(dir, filepath.FromSlash(rel))
			if dryRun {
				logger.Info("would remove duplicate", "file", rel, "keeps", group[0])
				removed++
				continue
			}
			if err := os.Remove(path); err != nil {
				return removed, fmt.Errorf("remove duplicate: %w", err)
			}
			logger.Info("removed duplicate", "file", rel, "keeps", group[0])
			removed++
		}
	}
	return removed, nil
}

// duplicateGroups groups analyses by content hash, each group in analysis
// order and groups ordered by their first file.
func duplicateGroups(analyses []FileAnalysis) [][]string {
	var paths, hashes []string
	for _, a := range analyses {
		if a.Hash == "" {
			continue
		}
		paths = append(paths, a.File)
		hashes = append(hashes, a.Hash)
	}
	byHash := corpus.DuplicateGroups(paths, hashes)
	groups := make([][]string, 0, len(byHash))
	for _, g := range byHash {
		groups = append(groups, g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i][0] < groups[j][0] })
	return groups
}
