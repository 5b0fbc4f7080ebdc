package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/discovery"
	metricspkg "github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/metrics"
)

type metricsOptions struct {
	list       bool
	metricsRaw string
	sortRaw    string
	orderRaw   string
	top        int
	format     string
}

func newMetricsCmd(a *app) *cobra.Command {
	var opts metricsOptions
	cmd := &cobra.Command{
		Use:   "metrics [paths...]",
		Short: "Rank TypeScript files by code metrics",
		Long: "Compute selected code metrics and rank files by one of them.\n" +
			"With no arguments, the current directory is used.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.top < 0 {
				return fmt.Errorf("--top must be >= 0")
			}
			if opts.list {
				return writeMetricsList(a.stdout, opts.format, metricspkg.All())
			}
			return a.runMetricsRank(cmd.Context(), opts, args)
		},
	}
	fs := cmd.Flags()
	fs.BoolVar(&opts.list, "list", false, "List available metrics instead of ranking files")
	fs.StringVar(&opts.metricsRaw, "metrics", "", "Comma-separated metrics (defaults to registry defaults)")
	fs.StringVar(&opts.sortRaw, "sort", "", "Metric to sort by")
	fs.StringVar(&opts.orderRaw, "order", "", "Sort order: asc or desc (defaults by metric)")
	fs.IntVar(&opts.top, "top", 0, "Keep files ranked N or better, including ties at the cut-off (0 = all)")
	fs.StringVarP(&opts.format, "format", "f", "text", "Output format: text, json")
	return cmd
}

func (a *app) runMetricsRank(ctx context.Context, opts metricsOptions, args []string) error {
	defs, sortDef, order, err := resolveRankSelection(opts)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		args = []string{"."}
	}
	files, err := discovery.Expand(args)
	if err != nil {
		return err
	}

	rows, err := metricspkg.Collect(ctx, files, defs)
	if err != nil {
		return err
	}
	metricspkg.Rank(rows, sortDef, order)
	rows = metricspkg.Top(rows, opts.top)

	switch opts.format {
	case "text":
		return writeMetricsRankText(a.stdout, rows, defs)
	case "json":
		return writeMetricsRankJSON(a.stdout, rows, defs)
	default:
		return fmt.Errorf("unknown format %q (supported: text, json)", opts.format)
	}
}

func resolveRankSelection(
	opts metricsOptions,
) ([]metricspkg.Definition, metricspkg.Definition, metricspkg.Order, error) {
	selectedNames := metricspkg.SplitList(opts.metricsRaw)
	defs, err := metricspkg.Resolve(selectedNames)
	if err != nil {
		return nil, metricspkg.Definition{}, "", err
	}

	sortDef := defs[0]
	if strings.TrimSpace(opts.sortRaw) != "" {
		def, ok := metricspkg.Lookup(opts.sortRaw)
		if !ok {
			return nil, metricspkg.Definition{}, "", fmt.Errorf("unknown --sort metric %q", opts.sortRaw)
		}
		sortDef = def
	}

	if !containsMetric(defs, sortDef.ID) {
		if len(selectedNames) > 0 {
			return nil, metricspkg.Definition{}, "", fmt.Errorf(
				"--sort metric %q must be included in --metrics",
				sortDef.Name,
			)
		}
		defs = append(defs, sortDef)
	}

	order := sortDef.DefaultOrder
	if strings.TrimSpace(opts.orderRaw) != "" {
		parsed, err := metricspkg.ParseOrder(opts.orderRaw)
		if err != nil {
			return nil, metricspkg.Definition{}, "", err
		}
		order = parsed
	}

	return defs, sortDef, order, nil
}

func containsMetric(defs []metricspkg.Definition, id string) bool {
	for _, def := range defs {
		if def.ID == id {
			return true
		}
	}
	return false
}

func writeMetricsList(w io.Writer, format string, defs []metricspkg.Definition) error {
	switch format {
	case "text":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		if _, err := fmt.Fprintln(tw, "ID\tNAME\tKIND\tORDER\tDEFAULT\tDESCRIPTION"); err != nil {
			return err
		}
		for _, def := range defs {
			if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\n",
				def.ID, def.Name, kindName(def.Kind), def.DefaultOrder, def.Default, def.Description); err != nil {
				return err
			}
		}
		return tw.Flush()
	case "json":
		items := make([]map[string]any, 0, len(defs))
		for _, def := range defs {
			items = append(items, map[string]any{
				"id":            def.ID,
				"name":          def.Name,
				"description":   def.Description,
				"kind":          kindName(def.Kind),
				"default":       def.Default,
				"default_order": def.DefaultOrder,
			})
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	default:
		return fmt.Errorf("unknown format %q (supported: text, json)", format)
	}
}

func writeMetricsRankText(w io.Writer, rows []metricspkg.Row, defs []metricspkg.Definition) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	headers := []string{"RANK"}
	for _, def := range defs {
		headers = append(headers, strings.ToUpper(def.Name))
	}
	headers = append(headers, "PATH")
	if _, err := fmt.Fprintln(tw, strings.Join(headers, "\t")); err != nil {
		return err
	}

	for _, row := range rows {
		cols := make([]string, 0, len(defs)+2)
		cols = append(cols, strconv.Itoa(row.Rank))
		for _, def := range defs {
			cols = append(cols, metricspkg.Format(def, row.Values[def.Name]))
		}
		cols = append(cols, row.Path)
		if _, err := fmt.Fprintln(tw, strings.Join(cols, "\t")); err != nil {
			return err
		}
	}

	return tw.Flush()
}

func writeMetricsRankJSON(w io.Writer, rows []metricspkg.Row, defs []metricspkg.Definition) error {
	items := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		item := map[string]any{
			"path": row.Path,
			"rank": row.Rank,
		}
		for _, def := range defs {
			item[def.Name] = metricspkg.JSON(def, row.Values[def.Name])
		}
		items = append(items, item)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

func kindName(k metricspkg.Kind) string {
	switch k {
	case metricspkg.KindRatio:
		return "ratio"
	case metricspkg.KindFlag:
		return "flag"
	default:
		return "count"
	}
}
