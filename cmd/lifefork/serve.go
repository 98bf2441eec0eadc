// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lifefork/lifefork/internal/bridge"
	"github.com/lifefork/lifefork/internal/config"
	"github.com/lifefork/lifefork/internal/observability"
	"github.com/lifefork/lifefork/internal/sim"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP bridge for the visualization front end",
		Long: `Start the HTTP bridge. POST /run runs the configured scenarios and
GET /ws streams every layer of every run as JSON text frames. Metrics
and health probes are served on the same address.

The bridge reads LIFEFORK_BRIDGE_ADDR, LIFEFORK_SETTINGS,
LIFEFORK_BRIDGE_ALLOW_ORIGIN, LIFEFORK_BRIDGE_RUN_TIMEOUT and
LIFEFORK_BRIDGE_SHUTDOWN_TIMEOUT from the environment.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadBridgeConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Addr = addr
			}
			if opts.configFile == "" && cfg.SettingsFile != "" {
				opts.configFile = cfg.SettingsFile
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, cfg, opts)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides LIFEFORK_BRIDGE_ADDR)")
	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg config.BridgeConfig, opts *rootOptions) error {
	// Fail fast on a broken settings file instead of on the first run.
	if _, err := opts.loadSettings(nil); err != nil {
		return err
	}

	hub := bridge.NewHub(bridge.DefaultBuffer)
	var handler *bridge.Handler
	server := observability.NewServer(cfg.Addr, func() bool { return handler.Ready() }, sim.RegisterMetrics)
	handler = bridge.NewHandler(cfg, func() (*config.Settings, error) {
		return opts.loadSettings(nil)
	}, hub, bridge.WithMetrics(server.Metrics()))
	handler.Mount(server)

	errCh, err := server.Start()
	if err != nil {
		return fmt.Errorf("failed to start bridge: %w", err)
	}
	cmd.Printf("Bridge listening at http://%s (POST /run, GET /ws)\n", server.Addr())

	select {
	case <-ctx.Done():
		slog.Info("shutting down bridge")
	case err := <-errCh:
		if err != nil {
			hub.Close()
			return fmt.Errorf("bridge server error: %w", err)
		}
	}

	hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Stop(shutdownCtx); err != nil {
		slog.Warn("error stopping bridge", "error", err)
	}
	return nil
}
