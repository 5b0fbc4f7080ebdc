package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/corpus"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/pattern"
)

type curateOptions struct {
	catalog  string
	out      string
	repos    []string
	cloneDir string
}

func newCurateCmd(a *app) *cobra.Command {
	var opts curateOptions
	cmd := &cobra.Command{
		Use:   "curate",
		Short: "Copy hand-picked pattern examples from curated repositories",
		Long: "Clone the repositories of the curated catalog and store the files their\n" +
			"per-pattern globs select, labeled with the catalog's pattern.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runCurate(cmd, opts)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&opts.catalog, "catalog", "", "Catalog YAML file (default: built-in catalog)")
	fs.StringVarP(&opts.out, "out", "o", "", "Dataset output directory")
	fs.StringArrayVar(&opts.repos, "repo", nil, "Only curate this catalog repository (repeatable)")
	fs.StringVar(&opts.cloneDir, "clone-dir", "", "Clone into this directory instead of a temporary one")
	return cmd
}

func (a *app) runCurate(cmd *cobra.Command, opts curateOptions) error {
	cc := a.cfg.Curate
	if cmd.Flags().Changed("catalog") {
		cc.Catalog = opts.catalog
	}
	if cmd.Flags().Changed("out") {
		cc.Out = opts.out
	}
	if cmd.Flags().Changed("clone-dir") {
		cc.CloneDir = opts.cloneDir
	}

	var (
		catalog corpus.Catalog
		err     error
	)
	if cc.Catalog != "" {
		catalog, err = corpus.LoadCatalog(cc.Catalog)
	} else {
		catalog, err = corpus.DefaultCatalog()
	}
	if err != nil {
		return err
	}
	if catalog, err = catalog.Select(opts.repos); err != nil {
		return err
	}

	eng, err := a.newEngine(nil)
	if err != nil {
		return err
	}
	cloner, cleanup, err := newCloner(cc.CloneDir)
	if err != nil {
		return err
	}
	defer cleanup()

	curator := &corpus.Curator{
		Catalog: catalog,
		Engine:  eng,
		Cloner:  cloner,
		Store:   &corpus.Store{Dir: cc.Out},
		Logger:  a.logger,
	}
	meta, err := curator.Run(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "samples:  %d\nmetadata: %s\n", meta.TotalSamples, filepath.Join(cc.Out, corpus.CuratedMetadataFile))
	writeDistribution(a, meta.Distribution)
	return nil
}

// writeDistribution prints the non-zero counts in canonical pattern order.
func writeDistribution(a *app, dist map[pattern.Name]int) {
	for _, p := range pattern.All() {
		if n := dist[p]; n > 0 {
			fmt.Fprintf(a.stdout, "  %-25s %d\n", p, n)
		}
	}
}
