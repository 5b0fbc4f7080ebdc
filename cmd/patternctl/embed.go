package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/embed"
)

type embedOptions struct {
	dataset       string
	output        string
	models        []string
	baseURL       string
	maxChars      int
	chunkSize     int
	chunkOverlap  int
	weaviateURL   string
	weaviateClass string
	timeout       time.Duration
}

func newEmbedCmd(a *app) *cobra.Command {
	var opts embedOptions
	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Embed dataset files with one or more models",
		Long: "Clean every <dataset>/<label>/*.ts file and request its embedding from\n" +
			"each model through an OpenAI-compatible endpoint such as Ollama.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runEmbed(cmd, opts)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&opts.dataset, "dataset", "d", "", "Dataset directory")
	fs.StringVarP(&opts.output, "output", "o", "", "Embeddings JSON output")
	fs.StringArrayVarP(&opts.models, "model", "m", nil, "Model name (repeatable; replaces configured models)")
	fs.StringVar(&opts.baseURL, "base-url", "", "OpenAI-compatible API base URL")
	fs.IntVar(&opts.maxChars, "max-chars", 0, "Truncate cleaned sources to this many characters")
	fs.IntVar(&opts.chunkSize, "chunk-size", 0, "Embed in chunks of this many characters and average them (0 = whole file)")
	fs.IntVar(&opts.chunkOverlap, "chunk-overlap", 0, "Characters shared by consecutive chunks")
	fs.StringVar(&opts.weaviateURL, "weaviate-url", "", "Also store the vectors in this Weaviate instance")
	fs.StringVar(&opts.weaviateClass, "weaviate-class", "", "Weaviate class for stored vectors")
	fs.DurationVar(&opts.timeout, "timeout", 5*time.Minute, "Per-request timeout")
	return cmd
}

func (a *app) runEmbed(cmd *cobra.Command, opts embedOptions) error {
	ec := a.cfg.Embed
	flags := cmd.Flags()
	if flags.Changed("dataset") {
		ec.Dataset = opts.dataset
	}
	if flags.Changed("output") {
		ec.Output = opts.output
	}
	if flags.Changed("model") {
		ec.Models = opts.models
	}
	if flags.Changed("base-url") {
		ec.BaseURL = opts.baseURL
	}
	if flags.Changed("max-chars") {
		ec.MaxChars = opts.maxChars
	}
	if flags.Changed("chunk-size") {
		ec.ChunkSize = opts.chunkSize
	}
	if flags.Changed("chunk-overlap") {
		ec.ChunkOverlap = opts.chunkOverlap
	}
	if flags.Changed("weaviate-url") {
		ec.WeaviateURL = opts.weaviateURL
	}
	if flags.Changed("weaviate-class") {
		ec.WeaviateClass = opts.weaviateClass
	}
	if len(ec.Models) == 0 {
		return fmt.Errorf("embed requires at least one model")
	}

	files, err := embed.Files(ec.Dataset)
	if err != nil {
		return fmt.Errorf("reading dataset: %w", err)
	}
	a.logger.Info("dataset files", "count", len(files))

	e := &embed.Embedder{
		Client:       embed.NewOpenAIClient(ec.BaseURL, "", &http.Client{Timeout: opts.timeout}),
		Models:       ec.Models,
		MaxChars:     ec.MaxChars,
		ChunkSize:    ec.ChunkSize,
		ChunkOverlap: ec.ChunkOverlap,
		Logger:       a.logger,
	}
	records, err := e.Run(cmd.Context(), files)
	if err != nil {
		return err
	}
	if err := embed.WriteRecords(ec.Output, records); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "embedded: %d of %d files\noutput:   %s\n", len(records), len(files), ec.Output)

	if ec.WeaviateURL == "" {
		return nil
	}
	var sink embed.Sink
	if sink, err = embed.NewWeaviateSink(ec.WeaviateURL, ec.WeaviateClass); err != nil {
		return err
	}
	if err := sink.Store(cmd.Context(), records); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "weaviate: %s\n", ec.WeaviateURL)
	return nil
}
