package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/corpus"
	"github.com/Natzgun/DPR-LLM-TYPESCRIPT/internal/quality"
)

func newDriftCmd(a *app) *cobra.Command {
	var baseline, candidate, out string
	cmd := &cobra.Command{
		Use:   "drift",
		Short: "Compare two validation reports",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if baseline == "" || candidate == "" || out == "" {
				return errors.New("drift requires --baseline, --candidate, and --out")
			}
			base, err := quality.LoadReport(baseline)
			if err != nil {
				return err
			}
			cand, err := quality.LoadReport(candidate)
			if err != nil {
				return err
			}
			if err := corpus.WriteJSON(out, quality.CompareReports(base, cand)); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "drift report: %s\n", out)
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&baseline, "baseline", "", "Baseline validation report JSON")
	fs.StringVar(&candidate, "candidate", "", "Candidate validation report JSON")
	fs.StringVar(&out, "out", "", "Drift report JSON output")
	return cmd
}
