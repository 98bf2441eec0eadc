// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/lifefork/lifefork/internal/config"
	"github.com/lifefork/lifefork/internal/sim"
	"github.com/lifefork/lifefork/internal/snapshot"
	"github.com/lifefork/lifefork/internal/world"
	"github.com/lifefork/lifefork/internal/xdg"
)

// NewRunCmd creates the run subcommand.
func NewRunCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run every configured scenario and write layer files",
		Long: `Run every configured scenario (by default loan_now and loan_next_year),
writing one JSON file per scenario layer under <output>/<run-id>/ and
printing a summary of the final populations.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := opts.loadSettings(cmd.Flags())
			if err != nil {
				return err
			}
			return runScenarios(cmd, settings)
		},
	}
	addSettingsFlags(cmd.Flags())
	return cmd
}

func runScenarios(cmd *cobra.Command, settings *config.Settings) error {
	outputDir, err := resolveOutputDir(settings)
	if err != nil {
		return err
	}
	files := snapshot.NewFileWriter(outputDir)

	result, err := sim.RunAll(cmd.Context(), settings, files)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Run %s (seed %d)\n", result.RunID, result.Seed)
	_, _ = fmt.Fprintf(out, "Layers written to %s\n\n", files.RunDir(result.RunID))
	writeSummary(out, result)
	return nil
}

func resolveOutputDir(settings *config.Settings) (string, error) {
	if settings.OutputDir != "" {
		return settings.OutputDir, nil
	}
	return xdg.RunsDir()
}

// populationStats summarizes a final population.
type populationStats struct {
	worlds   int
	alive    int
	bankrupt int
	meanCash float64
	meanLoan float64
	borrowed float64
}

func summarize(worlds []world.State) populationStats {
	st := populationStats{worlds: len(worlds)}
	for _, w := range worlds {
		if !w.IsTerminated() {
			st.alive++
		}
		if w.Bankrupt {
			st.bankrupt++
		}
		st.meanCash += w.Cash
		st.meanLoan += w.CurrentLoan
		st.borrowed += w.Metadata.TotalBorrowed()
	}
	if st.worlds > 0 {
		st.meanCash /= float64(st.worlds)
		st.meanLoan /= float64(st.worlds)
		st.borrowed /= float64(st.worlds)
	}
	return st
}

func writeSummary(out io.Writer, result *sim.RunResult) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SCENARIO\tLOAN LAYER\tWORLDS\tALIVE\tBANKRUPT\tMEAN CASH\tMEAN LOAN\tBORROWED\tTIME")
	_, _ = fmt.Fprintln(w, "--------\t----------\t------\t-----\t--------\t---------\t---------\t--------\t----")
	for _, sc := range result.Scenarios {
		st := summarize(sc.Worlds)
		loan := "none"
		if sc.LoanLayer != config.NoLoan {
			loan = fmt.Sprint(sc.LoanLayer)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%.2f\t%.2f\t%.2f\t%s\n",
			sc.Label, loan, st.worlds, st.alive, st.bankrupt, st.meanCash, st.meanLoan, st.borrowed, sc.Duration.Round(time.Millisecond))
	}
	_ = w.Flush()
}
