// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package main

import (
	"fmt"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"github.com/lifefork/lifefork/internal/narrative"
	"github.com/lifefork/lifefork/internal/sim"
	"github.com/lifefork/lifefork/internal/snapshot"
)

// NewExplainCmd creates the explain subcommand.
func NewExplainCmd() *cobra.Command {
	var (
		seed int64
		all  bool
	)

	cmd := &cobra.Command{
		Use:   "explain <layer-file>...",
		Short: "Describe the riskiest event in layer files",
		Long: `Describe the single riskiest thing that happened in each layer file,
judged by event severity and the world's situation (children, debt,
cash buffer, income and health). With --all every world with something
to report is listed, riskiest first.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if seed == 0 {
				var err error
				if seed, err = sim.NewSeed(); err != nil {
					return err
				}
			}
			partners := narrative.NewPartners(rand.New(rand.NewPCG(uint64(seed), uint64(seed))))
			out := cmd.OutOrStdout()

			for _, path := range args {
				if !all {
					text, err := narrative.DescribeFile(path, partners)
					if err != nil {
						return err
					}
					_, _ = fmt.Fprintln(out, text)
					continue
				}

				doc, err := snapshot.Load(path)
				if err != nil {
					return err
				}
				comments := narrative.Explain(doc, partners)
				_, _ = fmt.Fprintf(out, "%s: %d of %d worlds\n", path, len(comments), len(doc.Worlds))
				for _, c := range comments {
					_, _ = fmt.Fprintf(out, "- [%d] %s\n", c.Severity, c.Text)
				}
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "seed for partner names (0 picks one)")
	cmd.Flags().BoolVar(&all, "all", false, "list every world's comment")
	return cmd
}
