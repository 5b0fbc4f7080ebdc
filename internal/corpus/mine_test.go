package corpus

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/engine"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/github"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/pattern"
)

type fakeSearcher struct {
	results map[string][]github.Repository
	err     error
	queries []string
}

func (f *fakeSearcher) SearchRepositories(_ context.Context, query string) ([]github.Repository, error) {
	f.queries = append(f.queries, query)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[query], nil
}

const patternsRemote = "https://github.com/acme/patterns.git"

func patternsTree() map[string]string {
	return map[string]string{
		"src/config.ts":      singletonTS,
		"src/config.spec.ts": singletonTS,
		"src/copy/config.ts": "// copied\n" + strings.ReplaceAll(singletonTS, "  ", "    "),
		"src/short.ts":       "class Short {}\n",
		"README.md":          "# patterns\n",
	}
}

func newTestMiner(t *testing.T, searcher Searcher) (*Miner, *fakeGitRunner) {
	t.Helper()
	runner := &fakeGitRunner{trees: map[string]map[string]string{
		patternsRemote: patternsTree(),
	}}
	return &Miner{
		Engine:   engine.New(),
		Searcher: searcher,
		Cloner:   &Cloner{Dir: filepath.Join(t.TempDir(), "clones"), Runner: runner},
		Store:    &Store{Dir: filepath.Join(t.TempDir(), "dataset")},
		Workers:  1,
	}, runner
}

func TestMinerRun(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{results: map[string][]github.Repository{
		"q1": {
			{FullName: "acme/patterns", CloneURL: patternsRemote, Stars: 120},
			{FullName: "acme/tiny", CloneURL: "https://github.com/acme/tiny.git", Stars: 3},
		},
		"q2": {
			{FullName: "acme/patterns", CloneURL: patternsRemote, Stars: 120},
		},
	}}
	m, runner := newTestMiner(t, searcher)
	m.Queries = []string{"q1", "q2"}

	meta, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if meta.Version != MetadataVersion || meta.RunID == "" {
		t.Fatalf("unexpected metadata header: %+v", meta)
	}
	if meta.ReposProcessed != 1 {
		t.Fatalf("ReposProcessed = %d, want 1", meta.ReposProcessed)
	}
	if meta.TotalSamples != 1 || len(meta.Samples) != 1 {
		t.Fatalf("TotalSamples = %d, want 1 (duplicate and filtered files dropped)", meta.TotalSamples)
	}
	if got := meta.PatternDistribution[pattern.Singleton]; got != 1 {
		t.Fatalf("Singleton distribution = %d, want 1", got)
	}
	if len(runner.commands("clone")) != 1 {
		t.Fatalf("clones = %v, want one", runner.commands("clone"))
	}

	s := meta.Samples[0]
	if s.Pattern != pattern.Singleton || s.FilePath != "src/config.ts" || s.Repository != "acme/patterns" {
		t.Fatalf("unexpected sample: %+v", s)
	}
	if s.Confidence < 0.9 {
		t.Fatalf("confidence = %v, want >= 0.9", s.Confidence)
	}
	if !s.HasTests {
		t.Fatalf("expected has_tests from related spec file, related = %v", s.RelatedFiles)
	}
	if len(s.Classes) != 1 || s.Classes[0] != "Config" {
		t.Fatalf("classes = %v", s.Classes)
	}
	if s.Split != SplitTrain && s.Split != SplitTest {
		t.Fatalf("split = %q", s.Split)
	}

	saved := filepath.Join(m.Store.Dir, "Singleton", "acme_patterns__config.ts")
	content, err := os.ReadFile(saved)
	if err != nil {
		t.Fatalf("read saved sample: %v", err)
	}
	if string(content) != singletonTS {
		t.Fatal("saved content differs from source")
	}

	raw, err := os.ReadFile(filepath.Join(m.Store.Dir, MetadataFile))
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	if strings.Contains(string(raw), "getInstance()") {
		t.Fatal("metadata must not embed source code")
	}
	entries, _ := os.ReadDir(m.Cloner.Dir)
	if len(entries) != 0 {
		t.Fatalf("clone directory not cleaned: %v", entries)
	}
}

func TestMinerRun_ExplicitReposAndCrossRunDedup(t *testing.T) {
	t.Parallel()

	index, err := OpenBadgerIndex("")
	if err != nil {
		t.Fatalf("OpenBadgerIndex: %v", err)
	}
	defer func() { _ = index.Close() }()

	m, _ := newTestMiner(t, nil)
	m.Repos = []string{"acme/patterns"}
	m.Index = index

	first, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("first Run: %v", err)
	}
	if first.TotalSamples != 1 {
		t.Fatalf("first run samples = %d, want 1", first.TotalSamples)
	}

	second, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if second.TotalSamples != 0 || second.ReposProcessed != 1 {
		t.Fatalf("second run = %d samples from %d repos, want 0 from 1", second.TotalSamples, second.ReposProcessed)
	}
}

func TestMineRepository_FirstDuplicateWinsWithManyWorkers(t *testing.T) {
	t.Parallel()

	const remote = "https://github.com/acme/clones.git"
	tree := make(map[string]string)
	for i := 0; i < 16; i++ {
		tree[fmt.Sprintf("src/m%02d/config.ts", i)] = singletonTS
	}

	for run := 0; run < 20; run++ {
		runner := &fakeGitRunner{trees: map[string]map[string]string{remote: tree}}
		m := &Miner{
			Engine:  engine.New(),
			Cloner:  &Cloner{Dir: filepath.Join(t.TempDir(), "clones"), Runner: runner},
			Store:   &Store{Dir: filepath.Join(t.TempDir(), "dataset")},
			Index:   NewMemoryIndex(),
			Workers: 8,
		}
		samples, err := m.MineRepository(context.Background(), Repository{FullName: "acme/clones", CloneURL: remote})
		if err != nil {
			t.Fatalf("run %d: MineRepository: %v", run, err)
		}
		if len(samples) != 1 {
			t.Fatalf("run %d: samples = %d, want 1", run, len(samples))
		}
		if samples[0].FilePath != "src/m00/config.ts" {
			t.Fatalf("run %d: kept %s, want src/m00/config.ts", run, samples[0].FilePath)
		}
	}
}

type pathRecorder struct {
	engine.Detector
	mu    sync.Mutex
	paths []string
}

func (r *pathRecorder) Detect(text, path string) engine.Report {
	r.mu.Lock()
	r.paths = append(r.paths, path)
	r.mu.Unlock()
	return r.Detector.Detect(text, path)
}

func TestMineRepository_DetectsWithRepositoryName(t *testing.T) {
	t.Parallel()

	m, _ := newTestMiner(t, nil)
	rec := &pathRecorder{Detector: m.Engine}
	m.Detector = rec
	m.Index = NewMemoryIndex()

	samples, err := m.MineRepository(context.Background(), Repository{FullName: "acme/patterns", CloneURL: patternsRemote})
	if err != nil {
		t.Fatalf("MineRepository: %v", err)
	}
	if len(samples) != 1 || samples[0].FilePath != "src/config.ts" {
		t.Fatalf("samples = %+v", samples)
	}
	found := false
	for _, p := range rec.paths {
		if p == "acme_patterns/src/config.ts" {
			found = true
		}
	}
	if !found {
		t.Fatalf("detector paths = %v, want acme_patterns/src/config.ts", rec.paths)
	}
}

func TestDetectPath(t *testing.T) {
	if got := DetectPath("acme/observer-utils", "src/bus.ts"); got != "acme_observer-utils/src/bus.ts" {
		t.Fatalf("DetectPath = %q", got)
	}
}

func TestMinerRun_RateLimitedStillWritesMetadata(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{err: fmt.Errorf("search: %w", github.ErrRateLimited)}
	m, _ := newTestMiner(t, searcher)
	m.Queries = []string{"q1", "q2"}

	meta, err := m.Run(context.Background())
	if !errors.Is(err, github.ErrRateLimited) {
		t.Fatalf("Run error = %v, want rate limited", err)
	}
	if meta == nil || meta.TotalSamples != 0 {
		t.Fatalf("metadata = %+v", meta)
	}
	if len(searcher.queries) != 1 {
		t.Fatalf("queries after rate limit = %v, want stop after first", searcher.queries)
	}
	if _, err := os.Stat(filepath.Join(m.Store.Dir, MetadataFile)); err != nil {
		t.Fatalf("metadata not written: %v", err)
	}
}

func TestMinerRun_CloneFailureIsSkipped(t *testing.T) {
	t.Parallel()

	searcher := &fakeSearcher{results: map[string][]github.Repository{
		"q": {{FullName: "acme/gone", CloneURL: "https://github.com/acme/gone.git", Stars: 50}},
	}}
	m, _ := newTestMiner(t, searcher)
	m.Queries = []string{"q"}

	meta, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if meta.ReposProcessed != 0 {
		t.Fatalf("ReposProcessed = %d, want 0", meta.ReposProcessed)
	}
}

func TestMinerRun_MaxRepos(t *testing.T) {
	t.Parallel()

	var results []github.Repository
	for i := 0; i < 5; i++ {
		results = append(results, github.Repository{
			FullName: fmt.Sprintf("acme/r%d", i),
			CloneURL: patternsRemote,
			Stars:    100,
		})
	}
	m, runner := newTestMiner(t, &fakeSearcher{results: map[string][]github.Repository{"q": results}})
	m.Queries = []string{"q"}
	m.MaxRepos = 2

	meta, err := m.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if meta.ReposProcessed != 2 {
		t.Fatalf("ReposProcessed = %d, want 2", meta.ReposProcessed)
	}
	if got := len(runner.commands("clone")); got != 2 {
		t.Fatalf("clones = %d, want 2", got)
	}
}

func TestMinerRun_RequiresCollaborators(t *testing.T) {
	t.Parallel()

	if _, err := (&Miner{}).Run(context.Background()); err == nil {
		t.Fatal("expected error without engine, store and cloner")
	}
}

func TestSelectRepositories(t *testing.T) {
	t.Parallel()

	results := []github.Repository{
		{FullName: "a/one", Stars: 100},
		{FullName: "a/done", Stars: 100},
		{FullName: "a/low", Stars: 9},
		{FullName: "a/one", Stars: 100},
		{FullName: "a/two", Stars: 10},
		{FullName: "a/three", Stars: 500},
	}
	got := SelectRepositories(results, map[string]bool{"a/done": true}, 0, 2)
	if len(got) != 2 || got[0].FullName != "a/one" || got[1].FullName != "a/two" {
		t.Fatalf("SelectRepositories = %+v", got)
	}
	if got[0].CloneURL != "a/one" {
		t.Fatalf("CloneURL fallback = %q", got[0].CloneURL)
	}
}
