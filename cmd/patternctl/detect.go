package main

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/discovery"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/engine"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/output"
)

type detectOptions struct {
	format      string
	ignore      []string
	workers     int
	top         int
	signals     bool
	noColor     bool
	cacheSize   int
	metricsFile string
}

func newDetectCmd(a *app) *cobra.Command {
	var opts detectOptions
	cmd := &cobra.Command{
		Use:   "detect [paths...]",
		Short: "Rank design patterns for TypeScript files",
		Long: "Rank every design pattern against each file and print the best matches.\n" +
			"Directories are walked for .ts sources; with no arguments the current\n" +
			"directory is used.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDetect(cmd, opts, args)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	fs.StringSliceVar(&opts.ignore, "ignore", nil, "Skip files matching this glob (repeatable)")
	fs.IntVar(&opts.workers, "workers", 0, "Files analyzed in parallel (0 = GOMAXPROCS)")
	fs.IntVar(&opts.top, "top", 1, "Detections printed per file in text format")
	fs.BoolVar(&opts.signals, "signals", false, "Print the criteria behind each detection")
	fs.BoolVar(&opts.noColor, "no-color", false, "Disable ANSI colors")
	fs.IntVar(&opts.cacheSize, "cache-size", engine.DefaultCacheSize, "Reports kept in the detection cache")
	metricsFlag(fs, &opts.metricsFile)
	return cmd
}

func (a *app) runDetect(cmd *cobra.Command, opts detectOptions, args []string) error {
	formatter, ok := output.New(opts.format, !opts.noColor, opts.top)
	if !ok {
		return fmt.Errorf("unknown format %q (supported: text, json)", opts.format)
	}
	if tf, ok := formatter.(*output.TextFormatter); ok {
		tf.Signals = opts.signals
	}

	if len(args) == 0 {
		args = []string{"."}
	}
	files, err := discovery.Expand(args)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	eng, err := a.newEngine(reg)
	if err != nil {
		return err
	}
	cache, err := engine.NewCache(eng, opts.cacheSize)
	if err != nil {
		return err
	}
	runner := &engine.Runner{
		Detector: cache,
		Ignore:   append(append([]string(nil), a.cfg.Ignore...), opts.ignore...),
		Workers:  opts.workers,
		Logger:   a.logger,
	}
	res := runner.Run(cmd.Context(), files)
	for _, err := range res.Errors {
		a.logger.Warn("detect", "err", err)
	}
	if err := formatter.Format(a.stdout, res.Files); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	a.logger.Debug("detected", "files", len(res.Files))
	if err := writeMetrics(opts.metricsFile, reg); err != nil {
		return err
	}
	if len(res.Files) == 0 && len(res.Errors) > 0 {
		return errors.Join(res.Errors...)
	}
	return nil
}
