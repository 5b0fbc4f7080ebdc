package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/quality"
)

type validateOptions struct {
	dataset          string
	export           string
	html             string
	markdown         string
	workers          int
	removeDuplicates bool
	dryRun           bool
	noColor          bool
}

func newValidateCmd(a *app) *cobra.Command {
	var opts validateOptions
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a labeled dataset against the detection engine",
		Long: "Analyze every <dataset>/<Pattern>/*.ts file, report invalid and\n" +
			"duplicate samples with a quality score and recommendations, and\n" +
			"optionally remove duplicates.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runValidate(cmd, opts)
		},
	}
	fs := cmd.Flags()
	fs.StringVarP(&opts.dataset, "dataset", "d", "", "Dataset directory")
	fs.StringVar(&opts.export, "export", "", "JSON report path")
	fs.StringVar(&opts.html, "html", "", "Also write the report as HTML")
	fs.StringVar(&opts.markdown, "markdown", "", "Also write the report as markdown")
	fs.IntVar(&opts.workers, "workers", 0, "Files analyzed in parallel (0 = GOMAXPROCS)")
	fs.BoolVar(&opts.removeDuplicates, "remove-duplicates", false, "Remove all but the first file of each duplicate group")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "With --remove-duplicates, only report what would be removed")
	fs.BoolVar(&opts.noColor, "no-color", false, "Disable ANSI colors")
	return cmd
}

func (a *app) runValidate(cmd *cobra.Command, opts validateOptions) error {
	vc := a.cfg.Validate
	flags := cmd.Flags()
	if flags.Changed("dataset") {
		vc.Dataset = opts.dataset
	}
	if flags.Changed("export") {
		vc.Export = opts.export
	}
	if flags.Changed("html") {
		vc.HTML = opts.html
	}
	if flags.Changed("workers") {
		vc.Workers = opts.workers
	}

	eng, err := a.newEngine(nil)
	if err != nil {
		return err
	}
	v := &quality.Validator{Engine: eng, Dir: vc.Dataset, Workers: vc.Workers, Logger: a.logger}
	rep, err := v.Run(cmd.Context())
	if err != nil {
		return err
	}

	if err := (quality.SummaryWriter{Color: !opts.noColor}).Write(a.stdout, vc.Dataset, rep); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	if vc.Export != "" {
		if err := quality.WriteReport(vc.Export, rep); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "report: %s\n", vc.Export)
	}
	if opts.markdown != "" {
		if err := os.WriteFile(opts.markdown, []byte(quality.Markdown(vc.Dataset, rep)), 0o644); err != nil {
			return fmt.Errorf("writing markdown report: %w", err)
		}
	}
	if vc.HTML != "" {
		if err := writeHTML(vc.HTML, vc.Dataset, rep); err != nil {
			return err
		}
	}

	if opts.removeDuplicates {
		n, err := quality.CleanDuplicates(vc.Dataset, rep.DuplicateGroups, opts.dryRun, a.logger)
		if err != nil {
			return err
		}
		verb := "removed"
		if opts.dryRun {
			verb = "would remove"
		}
		fmt.Fprintf(a.stdout, "duplicates %s: %d\n", verb, n)
	}
	return nil
}

func writeHTML(path, dataset string, rep *quality.Report) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing html report: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return quality.WriteHTML(f, dataset, rep)
}
