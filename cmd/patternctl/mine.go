package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/corpus"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/engine"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/github"
)

type mineOptions struct {
	out         string
	queries     []string
	repos       []string
	minStars    int
	maxRepos    int
	indexDir    string
	cloneDir    string
	workers     int
	upload      bool
	metricsFile string
}

func newMineCmd(a *app) *cobra.Command {
	var opts mineOptions
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "Search GitHub and mine labeled pattern samples",
		Long: "Search GitHub for TypeScript repositories, clone them, and keep every\n" +
			"source file whose best detection clears its pattern's minimum confidence.\n" +
			"Set GITHUB_TOKEN for higher search rate limits.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runMine(cmd, opts)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&opts.out, "out", "o", "", "Dataset output directory")
	fs.StringArrayVarP(&opts.queries, "query", "q", nil, "Search query (repeatable; replaces configured queries)")
	fs.StringArrayVar(&opts.repos, "repo", nil, "Repository owner/name mined before searching (repeatable)")
	fs.IntVar(&opts.minStars, "min-stars", 0, "Minimum stars for searched repositories")
	fs.IntVar(&opts.maxRepos, "max-repos", 0, "Maximum repositories processed")
	fs.StringVar(&opts.indexDir, "index-dir", "", "Persist the content-hash index here to deduplicate across runs")
	fs.StringVar(&opts.cloneDir, "clone-dir", "", "Clone into this directory instead of a temporary one")
	fs.IntVar(&opts.workers, "workers", 0, "Files analyzed in parallel per repository (0 = GOMAXPROCS)")
	fs.BoolVar(&opts.upload, "upload", false, "Upload the dataset to the configured object storage")
	metricsFlag(fs, &opts.metricsFile)
	return cmd
}

func (a *app) runMine(cmd *cobra.Command, opts mineOptions) error {
	ctx := cmd.Context()
	mc := a.cfg.Mine
	flags := cmd.Flags()
	if flags.Changed("out") {
		mc.Out = opts.out
	}
	if flags.Changed("query") {
		mc.Queries = opts.queries
	}
	if flags.Changed("repo") {
		mc.Repos = opts.repos
	}
	if flags.Changed("min-stars") {
		mc.MinStars = opts.minStars
	}
	if flags.Changed("max-repos") {
		mc.MaxRepos = opts.maxRepos
	}
	if flags.Changed("index-dir") {
		mc.IndexDir = opts.indexDir
	}
	if flags.Changed("clone-dir") {
		mc.CloneDir = opts.cloneDir
	}
	if flags.Changed("workers") {
		mc.Workers = opts.workers
	}
	mc.Upload = mc.Upload || opts.upload

	reg := prometheus.NewRegistry()
	eng, err := a.newEngine(reg)
	if err != nil {
		return err
	}
	cache, err := engine.NewCache(eng, 0)
	if err != nil {
		return err
	}

	cloner, cleanup, err := newCloner(mc.CloneDir)
	if err != nil {
		return err
	}
	defer cleanup()

	index, err := openIndex(mc.IndexDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := index.Close(); err != nil {
			a.logger.Warn("closing hash index", "err", err)
		}
	}()

	var ghOpts []github.Option
	if mc.GitHubURL != "" {
		ghOpts = append(ghOpts, github.WithBaseURL(mc.GitHubURL))
	}
	if mc.RequestsPerS > 0 {
		ghOpts = append(ghOpts, github.WithRate(mc.RequestsPerS))
	}
	if a.secrets.GitHubToken == "" {
		a.logger.Warn("GITHUB_TOKEN is not set; search is limited to unauthenticated rates")
	}

	miner := &corpus.Miner{
		Engine:     eng,
		Detector:   cache,
		Searcher:   github.New(ctx, a.secrets.GitHubToken, ghOpts...),
		Cloner:     cloner,
		Store:      &corpus.Store{Dir: mc.Out},
		Index:      index,
		Queries:    mc.Queries,
		Repos:      mc.Repos,
		MinStars:   mc.MinStars,
		MaxRepos:   mc.MaxRepos,
		Exclude:    mc.Exclude,
		Workers:    mc.Workers,
		ClonePause: corpus.DefaultClonePause,
		Logger:     a.logger,
	}
	meta, runErr := miner.Run(ctx)
	if meta != nil {
		fmt.Fprintf(a.stdout, "repositories: %d\nsamples:      %d\nmetadata:     %s\n",
			meta.ReposProcessed, meta.TotalSamples, filepath.Join(mc.Out, corpus.MetadataFile))
		writeDistribution(a, meta.PatternDistribution)
	}
	if runErr != nil && errors.Is(runErr, github.ErrRateLimited) {
		a.logger.Warn("search stopped early", "err", runErr)
		runErr = nil
	}
	if err := writeMetrics(opts.metricsFile, reg); err != nil {
		return err
	}
	if runErr != nil {
		return runErr
	}
	if mc.Upload {
		return a.upload(ctx, mc.Out)
	}
	return nil
}

// newCloner returns a cloner over dir, or over a fresh temporary directory
// removed by cleanup when dir is empty.
func newCloner(dir string) (*corpus.Cloner, func(), error) {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, err
		}
		return &corpus.Cloner{Dir: dir}, func() {}, nil
	}
	tmp, err := os.MkdirTemp("", "patternctl-clones-")
	if err != nil {
		return nil, nil, err
	}
	return &corpus.Cloner{Dir: tmp}, func() { _ = os.RemoveAll(tmp) }, nil
}

func openIndex(dir string) (corpus.HashIndex, error) {
	if dir == "" {
		return corpus.NewMemoryIndex(), nil
	}
	return corpus.OpenBadgerIndex(dir)
}

// upload copies dir to the configured bucket under the storage prefix and
// a UTC timestamp.
func (a *app) upload(ctx context.Context, dir string) error {
	sc := a.cfg.Storage
	if sc.Bucket == "" {
		return errors.New("upload requires storage.endpoint and storage.bucket in the config")
	}
	store, err := corpus.NewS3Store(corpus.S3Config{
		Endpoint:  sc.Endpoint,
		Region:    sc.Region,
		AccessKey: a.secrets.S3AccessKey,
		SecretKey: a.secrets.S3SecretKey,
		Bucket:    sc.Bucket,
		UseSSL:    sc.UseSSL,
	})
	if err != nil {
		return err
	}
	prefix := sc.Prefix + "/" + time.Now().UTC().Format("20060102T150405Z")
	n, err := corpus.Upload(ctx, store, dir, prefix, a.logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "uploaded:     %d files to s3://%s/%s\n", n, sc.Bucket, prefix)
	return nil
}
