package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/log"
)

// Detector is satisfied by *Engine and *Cache.
type Detector interface {
	Detect(text, path string) Report
}

// Runner reads files from disk and ranks each one.
type Runner struct {
	Detector Detector
	Ignore   []string
	Workers  int
	Logger   *slog.Logger
}

// FileReport is the ranked report for one file.
type FileReport struct {
	Path   string `json:"path"`
	Report Report `json:"report"`
}

// Result holds the output of a run.
type Result struct {
	Files  []FileReport
	Errors []error
}

// Run ranks the files at the given paths and returns a Result sorted by
// path. Unreadable files are recorded in Errors and skipped.
func (r *Runner) Run(ctx context.Context, paths []string) *Result {
	logger := log.OrDiscard(r.Logger)
	ignore := compileIgnore(r.Ignore, logger)

	workers := r.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	var (
		mu  sync.Mutex
		res = &Result{}
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, path := range paths {
		if isIgnored(ignore, path) {
			logger.Debug("ignored", "path", path)
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			source, err := os.ReadFile(path)
			if err != nil {
				logger.Warn("skipping unreadable file", "path", path, "err", err)
				mu.Lock()
				res.Errors = append(res.Errors, fmt.Errorf("reading %q: %w", path, err))
				mu.Unlock()
				return nil
			}
			rep := r.Detector.Detect(string(source), path)
			mu.Lock()
			res.Files = append(res.Files, FileReport{Path: path, Report: rep})
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		res.Errors = append(res.Errors, err)
	}

	sort.Slice(res.Files, func(i, j int) bool {
		return res.Files[i].Path < res.Files[j].Path
	})
	return res
}

func compileIgnore(patterns []string, logger *slog.Logger) []glob.Glob {
	var out []glob.Glob
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			logger.Warn("invalid ignore pattern", "pattern", p, "err", err)
			continue
		}
		out = append(out, g)
	}
	return out
}

// isIgnored returns true if the file path matches any ignore pattern.
func isIgnored(globs []glob.Glob, path string) bool {
	cleanPath := filepath.Clean(path)
	for _, g := range globs {
		if g.Match(path) || g.Match(cleanPath) || g.Match(filepath.Base(path)) {
			return true
		}
	}
	return false
}
