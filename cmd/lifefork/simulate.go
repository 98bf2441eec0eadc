// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/lifefork/lifefork/internal/sim"
	"github.com/lifefork/lifefork/internal/snapshot"
	"github.com/lifefork/lifefork/internal/world"
)

// NewSimulateCmd creates the simulate subcommand.
func NewSimulateCmd(opts *rootOptions) *cobra.Command {
	var from string

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate layers without a loan and print the final worlds",
		Long: `Simulate the configured number of layers without injecting a loan and
print the final population as a layer document on stdout. With --from,
the population of an existing layer file is continued instead of
starting from the configured user.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := opts.loadSettings(cmd.Flags())
			if err != nil {
				return err
			}
			reg, err := sim.RegistryFor(settings)
			if err != nil {
				return err
			}

			var initial []world.State
			if from != "" {
				doc, err := snapshot.Load(from)
				if err != nil {
					return err
				}
				initial = doc.States()
			}

			seed, err := sim.ResolveSeed(settings.Seed)
			if err != nil {
				return err
			}

			worlds, err := sim.SimulateLayers(cmd.Context(), settings, reg, initial,
				sim.WithRand(sim.ScenarioRand(seed, "simulate")),
				sim.WithRunID(sim.NewRunID()))
			if err != nil {
				return err
			}

			doc := snapshot.Document{
				Timestamp: max(settings.Layers-1, 0),
				Worlds:    world.NewRecords(worlds, max(settings.Layers-1, 0)),
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(doc)
		},
	}

	addSettingsFlags(cmd.Flags())
	cmd.Flags().StringVar(&from, "from", "", "continue the population of this layer file")
	return cmd
}
