// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/lifefork/lifefork/internal/config"
	"github.com/lifefork/lifefork/internal/event"
	"github.com/lifefork/lifefork/internal/probability"
	"github.com/lifefork/lifefork/internal/sim"
)

// NewEventsCmd creates the events subcommand.
func NewEventsCmd(opts *rootOptions) *cobra.Command {
	var kind string

	cmd := &cobra.Command{
		Use:   "events",
		Short: "List registered events and choices",
		Long: `List every event and choice the simulation can sample, including
custom scripted events declared in the settings file, with the base
rate the probability model starts from.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := event.Default()
			if path := opts.settingsPath(); path != "" {
				settings, err := opts.loadSettings(nil)
				if err != nil {
					return err
				}
				if reg, err = sim.RegistryFor(settings); err != nil {
					return err
				}
			}

			events := reg.All()
			if kind != "" {
				k := event.Kind(kind)
				if !k.Valid() {
					return config.ErrInvalid("kind", "must be event or choice, got %q", kind)
				}
				events = reg.OfKind(k)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "NAME\tKIND\tBASE RATE\tSOURCE\tDESCRIPTION")
			_, _ = fmt.Fprintln(w, "----\t----\t---------\t------\t-----------")
			for _, ev := range events {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%.3f\t%s\t%s\n", ev.Name, ev.Kind, baseRate(ev), ev.Source, ev.Description)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "", "only list this kind (event or choice)")
	return cmd
}

func baseRate(ev event.Event) float64 {
	if r, ok := probability.BaseRate(ev.Name); ok {
		return r
	}
	if ev.BaseRate != nil {
		return *ev.BaseRate
	}
	return probability.DefaultRate
}
