// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lifefork/lifefork/internal/config"
	"github.com/lifefork/lifefork/internal/logging"
	"github.com/lifefork/lifefork/internal/xdg"
)

const serviceName = "lifefork"

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	configFile string
	logFormat  string
	verbose    bool
}

// NewRootCmd creates the root command for the lifefork CLI.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "lifefork",
		Short: "Lifefork - branching life trajectory simulator",
		Long: `Lifefork simulates how a person's finances and life events unfold
month by month. Every choice with an uncertain outcome can fork the
timeline, so a run produces a tree of worlds written out layer by layer.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			format, err := logging.ParseFormat(opts.logFormat)
			if err != nil {
				return err
			}
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(logging.SetupLevel(serviceName, version, format, level, cmd.ErrOrStderr()))
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "settings file (default: XDG_CONFIG_HOME/lifefork/settings.yaml if present)")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", logging.FormatText, "log format (json or text)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every layer")

	cmd.AddCommand(NewRunCmd(opts))
	cmd.AddCommand(NewSimulateCmd(opts))
	cmd.AddCommand(NewExplainCmd())
	cmd.AddCommand(NewEventsCmd(opts))
	cmd.AddCommand(NewServeCmd(opts))
	cmd.AddCommand(NewValidateConfigCmd())

	return cmd
}

// settingsPath returns the --config value or the XDG default.
func (o *rootOptions) settingsPath() string {
	if o.configFile != "" {
		return o.configFile
	}
	return xdg.DefaultSettingsPath()
}

// loadSettings loads settings with flags layered on top of the file.
func (o *rootOptions) loadSettings(flags *pflag.FlagSet) (*config.Settings, error) {
	return config.Load(o.settingsPath(), flags)
}

// addSettingsFlags registers the flags that override settings keys. The
// defaults mirror config.DefaultSettings so unchanged flags never override
// file values with something different.
func addSettingsFlags(fs *pflag.FlagSet) {
	d := config.DefaultSettings()
	fs.Int("layers", d.Layers, "number of monthly layers to simulate")
	fs.Int64("seed", d.Seed, "random seed (0 picks one)")
	fs.Float64("loan-amount", d.LoanAmount, "principal of the scenario loan")
	fs.String("output", d.OutputDir, "output directory (default: XDG_DATA_HOME/lifefork/runs)")
	fs.String("fork-policy", string(d.ForkPolicy), "when choices fork worlds: highlighted, always or never")
	fs.Bool("highlight-spinoffs", d.HighlightSpinoffs, "let forked worlds fork again")
	fs.Int("max-worlds", d.MaxWorlds, "population cap per scenario (0 = unlimited)")
	fs.Bool("parallel", d.Parallel, "run scenarios concurrently")
}
