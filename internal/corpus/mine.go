package corpus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/engine"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/features"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/github"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/log"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/pattern"
)

var tracer = otel.Tracer("patternctl.corpus")

// Mining limits.
const (
	DefaultMinStars   = 10
	DefaultMaxRepos   = 200
	DefaultClonePause = 500 * time.Millisecond
	MaxMethods        = 20
)

// Searcher finds candidate repositories for a query.
type Searcher interface {
	SearchRepositories(ctx context.Context, query string) ([]github.Repository, error)
}

// Miner searches, clones and scans repositories, keeping every file whose
// best detection clears its pattern's minimum confidence.
type Miner struct {
	Engine *engine.Engine
	// Detector overrides Engine for scoring, e.g. an *engine.Cache.
	Detector engine.Detector
	Searcher Searcher
	Cloner   *Cloner
	Store    *Store
	Index    HashIndex

	Queries []string
	// Repos are mined before any search, without the star filter.
	Repos    []string
	MinStars int
	MaxRepos int
	Exclude  []string
	Workers  int
	// ClonePause spaces out consecutive repositories. Zero disables it.
	ClonePause   time.Duration
	TestFraction float64

	Logger *slog.Logger
	Now    func() time.Time
}

// Run mines until the queries are exhausted, MaxRepos repositories were
// processed, or ctx is done. Per-repository failures are logged and do not
// stop the run. The metadata is written to the store directory even when
// the run ends early; the returned error reports why it ended early.
func (m *Miner) Run(ctx context.Context) (*DatasetMetadata, error) {
	logger := log.OrDiscard(m.Logger)
	if m.Engine == nil || m.Store == nil || m.Cloner == nil {
		return nil, errors.New("miner requires an engine, a store and a cloner")
	}
	if m.Index == nil {
		m.Index = NewMemoryIndex()
	}
	if err := m.Store.Prepare(pattern.All()); err != nil {
		return nil, err
	}

	maxRepos := m.MaxRepos
	if maxRepos <= 0 {
		maxRepos = DefaultMaxRepos
	}
	pace := rate.NewLimiter(rate.Inf, 1)
	if m.ClonePause > 0 {
		pace = rate.NewLimiter(rate.Every(m.ClonePause), 1)
	}

	var (
		samples   []Sample
		processed = make(map[string]bool)
		runErr    error
	)
	mineOne := func(repo Repository) error {
		if err := pace.Wait(ctx); err != nil {
			return err
		}
		logger.Info("mining repository", "repo", repo.FullName, "stars", repo.Stars,
			"progress", fmt.Sprintf("%d/%d", len(processed)+1, maxRepos))
		got, err := m.MineRepository(ctx, repo)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("skipping repository", "repo", repo.FullName, "err", err)
			return nil
		}
		processed[repo.FullName] = true
		samples = append(samples, got...)
		if len(got) > 0 {
			logger.Info("patterns found", "repo", repo.FullName, "count", len(got))
		}
		return nil
	}

	for _, name := range m.Repos {
		if len(processed) >= maxRepos {
			break
		}
		if processed[name] {
			continue
		}
		if runErr = mineOne(Repository{FullName: name, CloneURL: name}); runErr != nil {
			break
		}
	}

	if runErr == nil && m.Searcher != nil {
		runErr = m.searchAndMine(ctx, maxRepos, processed, mineOne, logger)
	}

	meta := m.metadata(samples, len(processed))
	if err := WriteJSON(filepath.Join(m.Store.Dir, MetadataFile), meta); err != nil {
		return meta, err
	}
	return meta, runErr
}

func (m *Miner) searchAndMine(
	ctx context.Context,
	maxRepos int,
	processed map[string]bool,
	mineOne func(Repository) error,
	logger *slog.Logger,
) error {
	for _, query := range m.Queries {
		if len(processed) >= maxRepos {
			return nil
		}
		logger.Info("searching", "query", query)
		results, err := m.Searcher.SearchRepositories(ctx, query)
		if err != nil {
			if errors.Is(err, github.ErrRateLimited) || ctx.Err() != nil {
				return err
			}
			logger.Warn("search failed", "query", query, "err", err)
			continue
		}
		for _, repo := range SelectRepositories(results, processed, m.MinStars, maxRepos-len(processed)) {
			if len(processed) >= maxRepos {
				return nil
			}
			if err := mineOne(repo); err != nil {
				return err
			}
		}
	}
	return nil
}

// SelectRepositories filters search results in order: already processed
// repositories and those under minStars are skipped, and at most limit are
// returned. minStars <= 0 uses DefaultMinStars.
func SelectRepositories(results []github.Repository, processed map[string]bool, minStars, limit int) []Repository {
	if minStars <= 0 {
		minStars = DefaultMinStars
	}
	var out []Repository
	seen := make(map[string]bool)
	for _, r := range results {
		if len(out) >= limit {
			break
		}
		if processed[r.FullName] || seen[r.FullName] || r.Stars < minStars {
			continue
		}
		seen[r.FullName] = true
		cloneURL := r.CloneURL
		if cloneURL == "" {
			cloneURL = r.FullName
		}
		out = append(out, Repository{FullName: r.FullName, CloneURL: cloneURL, Stars: r.Stars})
	}
	return out
}

// MineRepository clones repo, scans its sources and saves the accepted
// samples. The clone is removed afterwards.
func (m *Miner) MineRepository(ctx context.Context, repo Repository) ([]Sample, error) {
	ctx, span := tracer.Start(ctx, "Miner.MineRepository",
		trace.WithAttributes(attribute.String("corpus.repo", repo.FullName)))
	defer span.End()

	samples, err := m.mineRepository(ctx, repo)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("corpus.samples", len(samples)))
	return samples, nil
}

func (m *Miner) mineRepository(ctx context.Context, repo Repository) ([]Sample, error) {
	logger := log.OrDiscard(m.Logger)
	root, err := m.Cloner.Fetch(ctx, Checkout{Repository: repo.CloneURL})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := m.Cloner.Remove(root); err != nil {
			logger.Warn("removing clone", "dir", root, "err", err)
		}
	}()

	root, err = filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	files, err := Candidates(root, m.Exclude, logger)
	if err != nil {
		return nil, err
	}

	workers := m.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	found := make([]*Sample, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, err := m.analyzeFile(root, path, repo.FullName)
			if err != nil {
				logger.Warn("skipping file", "path", path, "err", err)
				return nil
			}
			found[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Hashes are claimed in path order so the first of several identical
	// files always wins.
	sort.SliceStable(found, func(i, j int) bool {
		return found[i] != nil && (found[j] == nil || found[i].FilePath < found[j].FilePath)
	})
	var samples []Sample
	for _, s := range found {
		if s == nil {
			break
		}
		added, err := m.Index.Add(s.Hash)
		if err != nil {
			return nil, err
		}
		if !added {
			logger.Debug("duplicate", "path", s.FilePath)
			continue
		}
		saved, err := m.Store.Save(s.Pattern, repo.FullName, s.FilePath, s.Code)
		if err != nil {
			return nil, err
		}
		s.SavedPath = saved
		samples = append(samples, *s)
	}
	return samples, nil
}

// analyzeFile scores one candidate and returns nil when it is rejected.
// Hashes already in the index are skipped before detection; claiming the
// hash is left to the caller.
func (m *Miner) analyzeFile(root, path, repo string) (*Sample, error) {
	content, rej := ReadSource(root, path, CheckMinedSource)
	if rej != Accepted {
		log.OrDiscard(m.Logger).Debug("rejected", "path", path, "reason", string(rej))
		return nil, nil
	}
	text := string(content)
	hash := NormalizedHash(text)
	if seen, err := m.Index.Seen(hash); err != nil || seen {
		return nil, err
	}

	rel := relPath(root, path)
	rep := m.detector().Detect(text, DetectPath(repo, rel))
	best, ok := m.Engine.Accepts(rep)
	if !ok {
		return nil, nil
	}

	feats := features.Extract(text)
	related := RelatedFiles(path, feats.Imports)
	relatedRel := make([]string, len(related))
	for i, r := range related {
		relatedRel[i] = relPath(root, r)
	}
	methods := feats.Methods
	if len(methods) > MaxMethods {
		methods = methods[:MaxMethods]
	}

	return &Sample{
		Pattern:      best.Pattern,
		Confidence:   best.Confidence,
		Method:       best.Method,
		Repository:   repo,
		FilePath:     rel,
		RelatedFiles: relatedRel,
		Classes:      feats.Classes,
		Interfaces:   feats.Interfaces,
		Methods:      methods,
		Imports:      feats.Imports,
		Lines:        lineCount(text),
		HasTests:     hasTestFile(relatedRel),
		Hash:         hash,
		Split:        SplitFor(hash, m.TestFraction),
		Code:         text,
	}, nil
}

// DetectPath is the path handed to the engine for file rel of repo. It
// keeps the repository name so names like "observer-utils" still count as
// path hints.
func DetectPath(repo, rel string) string {
	return strings.ReplaceAll(repo, "/", "_") + "/" + rel
}

func (m *Miner) detector() engine.Detector {
	if m.Detector != nil {
		return m.Detector
	}
	return m.Engine
}

func (m *Miner) metadata(samples []Sample, repos int) *DatasetMetadata {
	names := make([]pattern.Name, len(samples))
	for i, s := range samples {
		names[i] = s.Pattern
	}
	if samples == nil {
		samples = []Sample{}
	}
	return &DatasetMetadata{
		Version:             MetadataVersion,
		RunID:               uuid.NewString(),
		GeneratedAt:         now(m.Now).UTC().Format(time.RFC3339),
		TotalSamples:        len(samples),
		ReposProcessed:      repos,
		PatternDistribution: distribution(names),
		Samples:             samples,
	}
}

func now(f func() time.Time) time.Time {
	if f == nil {
		return time.Now()
	}
	return f()
}

func relPath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func lineCount(text string) int {
	n := 1
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			n++
		}
	}
	return n
}
