// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lifefork/lifefork/internal/config"
	"github.com/lifefork/lifefork/internal/event"
	"github.com/lifefork/lifefork/internal/sim"
)

// NewValidateConfigCmd creates the validate-config subcommand.
func NewValidateConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-config <file>",
		Short: "Validate a settings file without running it",
		Long: `Validates a settings file against the settings schema, checks its
semantic constraints, compiles custom event scripts and builds the
event catalog. Does NOT run a simulation.
Exits with code 0 on success, non-zero on failure.

Useful in CI pipelines to catch settings errors early:
  lifefork validate-config settings.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidateConfig(cmd, args[0])
		},
	}
}

func runValidateConfig(cmd *cobra.Command, path string) error {
	settings, reg, err := validateSettings(path)
	if err != nil {
		problems := splitJoined(err)
		for _, p := range problems {
			slog.Error("settings validation failed", "path", path, "detail", config.FormatSchemaError(p))
		}
		return fmt.Errorf("validation failed: %d problem(s) in %s", len(problems), path)
	}

	cmd.Printf("%s is valid (version %s, %d layers, %d scenarios, %d events registered)\n",
		path, settings.Version, settings.Layers, len(settings.Scenarios), reg.Len())
	return nil
}

func validateSettings(path string) (*config.Settings, *event.Registry, error) {
	settings, err := config.Load(path, nil)
	if err != nil {
		return nil, nil, err
	}
	reg, err := sim.RegistryFor(settings)
	if err != nil {
		return nil, nil, err
	}
	if _, err := sim.BuildCatalog(reg, settings.Events, settings.Choices); err != nil {
		return nil, nil, err
	}
	return settings, reg, nil
}

// splitJoined unpacks an errors.Join result into its parts.
func splitJoined(err error) []error {
	var joined interface{ Unwrap() []error }
	if errors.As(err, &joined) {
		return joined.Unwrap()
	}
	return []error{err}
}
