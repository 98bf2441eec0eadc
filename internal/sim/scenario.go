// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package sim

import (
	"context"
	"hash/fnv"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/samber/oops"
	"golang.org/x/sync/errgroup"

	"github.com/lifefork/lifefork/internal/config"
	"github.com/lifefork/lifefork/internal/event"
	"github.com/lifefork/lifefork/internal/lineage"
	"github.com/lifefork/lifefork/internal/logging"
	"github.com/lifefork/lifefork/internal/snapshot"
	"github.com/lifefork/lifefork/internal/world"
)

// ScenarioResult is the outcome of one scenario.
type ScenarioResult struct {
	Label     string
	LoanLayer int
	Layers    int
	Worlds    []world.State
	Duration  time.Duration
}

// RunResult is the outcome of every scenario of one run.
type RunResult struct {
	RunID     string
	Seed      int64
	Scenarios []ScenarioResult
}

// Runner executes every configured scenario. Each scenario owns its
// allocator and random source, so scenarios may run in parallel without
// affecting each other's results.
type Runner struct {
	Settings *config.Settings
	Registry *event.Registry
	Sink     snapshot.Sink
	Model    Estimator
	// RunID defaults to a fresh ULID. A preset id must be a ULID.
	RunID string
}

// RegistryFor returns the registry a run of settings samples from: the
// built-ins plus any scripted custom events.
func RegistryFor(settings *config.Settings) (*event.Registry, error) {
	if len(settings.CustomEvents) == 0 {
		return event.Default(), nil
	}
	custom, err := event.NewLuaEvents(settings.CustomEvents)
	if err != nil {
		return nil, err
	}
	reg, err := event.Extend(custom...)
	if err != nil {
		return nil, oops.Code(config.CodeConfigInvalid).
			With("field", "custom_events").
			Errorf("register custom events: %v", err)
	}
	return reg, nil
}

// RunAll runs every scenario of settings with a default runner.
func RunAll(ctx context.Context, settings *config.Settings, sink snapshot.Sink) (*RunResult, error) {
	reg, err := RegistryFor(settings)
	if err != nil {
		return nil, err
	}
	r := &Runner{Settings: settings, Registry: reg, Sink: sink}
	return r.Run(ctx)
}

// Run executes the scenarios, in parallel when the settings ask for it.
// The first failing scenario cancels the others.
func (r *Runner) Run(ctx context.Context) (*RunResult, error) {
	settings := r.Settings
	if settings == nil {
		return nil, config.ErrInvalid("settings", "are required")
	}

	seed, err := ResolveSeed(settings.Seed)
	if err != nil {
		return nil, oops.Wrapf(err, "generate run seed")
	}
	runID := r.RunID
	if runID == "" {
		runID = NewRunID()
	} else if _, err := ParseRunID(runID); err != nil {
		return nil, err
	}

	drivers := make([]*Driver, len(settings.Scenarios))
	for i, sc := range settings.Scenarios {
		d, err := NewDriver(settings, r.Registry,
			WithModel(r.Model),
			WithAllocator(lineage.New()),
			WithRand(ScenarioRand(seed, sc.Label)),
			WithSink(r.Sink),
			WithScenario(sc.Label),
			WithRunID(runID),
		)
		if err != nil {
			return nil, err
		}
		drivers[i] = d
	}

	ctx = logging.WithRunID(ctx, runID)
	slog.InfoContext(ctx, "run started",
		"seed", seed,
		"scenarios", len(drivers),
		"parallel", settings.Parallel)

	results := make([]ScenarioResult, len(drivers))
	run := func(ctx context.Context, i int) error {
		sc := settings.Scenarios[i]
		start := time.Now()
		worlds, err := drivers[i].Run(ctx, nil, sc.LoanLayer)
		if err != nil {
			return err
		}
		results[i] = ScenarioResult{
			Label:     sc.Label,
			LoanLayer: sc.LoanLayer,
			Layers:    settings.Layers,
			Worlds:    worlds,
			Duration:  time.Since(start),
		}
		return nil
	}

	if settings.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i := range drivers {
			g.Go(func() error { return run(gctx, i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for i := range drivers {
			if err := run(ctx, i); err != nil {
				return nil, err
			}
		}
	}

	slog.InfoContext(ctx, "run finished")
	return &RunResult{RunID: runID, Seed: seed, Scenarios: results}, nil
}

// ScenarioRand derives a scenario's random source from the run seed and
// its label, so reordering scenarios does not change their results.
func ScenarioRand(seed int64, label string) *rand.Rand {
	h := fnv.New64a()
	_, _ = h.Write([]byte(label))
	return rand.New(rand.NewPCG(uint64(seed), h.Sum64()))
}
