// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

// Package sim advances a population of worlds through monthly layers,
// sampling one event per layer and branching every world on it.
package sim

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync/atomic"

	"github.com/samber/oops"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/lifefork/lifefork/internal/config"
	"github.com/lifefork/lifefork/internal/economy"
	"github.com/lifefork/lifefork/internal/event"
	"github.com/lifefork/lifefork/internal/lineage"
	"github.com/lifefork/lifefork/internal/logging"
	"github.com/lifefork/lifefork/internal/probability"
	"github.com/lifefork/lifefork/internal/snapshot"
	"github.com/lifefork/lifefork/internal/world"
)

const tracerName = "github.com/lifefork/lifefork/internal/sim"

// State is the lifecycle state of a Driver.
type State int32

// Driver states.
const (
	StateIdle State = iota
	StateRunning
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Driver runs one scenario from its initial population to its final
// layer. A driver runs once.
type Driver struct {
	settings *config.Settings
	catalog  *Catalog
	model    Estimator
	alloc    *lineage.Allocator
	rng      *rand.Rand
	sink     snapshot.Sink
	stepper  *economy.Stepper
	scenario string
	runID    string
	seed     int64
	state    atomic.Int32
}

// Option configures a Driver.
type Option func(*Driver)

// WithModel sets the probability model. The default is probability.NewModel().
func WithModel(m Estimator) Option {
	return func(d *Driver) { d.model = m }
}

// WithAllocator sets the lineage allocator. The default is a fresh one.
func WithAllocator(a *lineage.Allocator) Option {
	return func(d *Driver) { d.alloc = a }
}

// WithRand sets the random source. The default is seeded from the
// settings seed, or from a fresh random seed when the settings seed is 0.
func WithRand(r *rand.Rand) Option {
	return func(d *Driver) { d.rng = r }
}

// WithSink sets where layer snapshots go. The default discards them.
func WithSink(s snapshot.Sink) Option {
	return func(d *Driver) { d.sink = s }
}

// WithStepper sets the economic step. The default uses fixed rates.
func WithStepper(s *economy.Stepper) Option {
	return func(d *Driver) { d.stepper = s }
}

// WithScenario labels the run for snapshots, logs and metrics.
func WithScenario(label string) Option {
	return func(d *Driver) { d.scenario = label }
}

// WithRunID sets the run id stamped on snapshots.
func WithRunID(id string) Option {
	return func(d *Driver) { d.runID = id }
}

// NewDriver resolves the catalog and prepares a run. Catalog problems are
// reported here, before any layer executes.
func NewDriver(settings *config.Settings, reg *event.Registry, opts ...Option) (*Driver, error) {
	if settings == nil {
		return nil, config.ErrInvalid("settings", "are required")
	}
	if reg == nil {
		reg = event.Default()
	}
	catalog, err := BuildCatalog(reg, settings.Events, settings.Choices)
	if err != nil {
		return nil, err
	}

	d := &Driver{
		settings: settings,
		catalog:  catalog,
		scenario: "simulate",
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.model == nil {
		d.model = probability.NewModel()
	}
	if d.alloc == nil {
		d.alloc = lineage.New()
	}
	d.seed = settings.Seed
	if d.rng == nil {
		if d.seed, err = ResolveSeed(settings.Seed); err != nil {
			return nil, oops.Wrapf(err, "generate driver seed")
		}
		d.rng = rand.New(rand.NewPCG(uint64(d.seed), uint64(d.seed)))
	}
	if d.sink == nil {
		d.sink = snapshot.Discard
	}
	if d.stepper == nil {
		d.stepper = economy.NewStepper(nil)
	}
	return d, nil
}

// State returns the driver's lifecycle state.
func (d *Driver) State() State {
	return State(d.state.Load())
}

// Seed returns the seed of the driver's own random source. With WithRand
// it is the settings seed, which may be 0.
func (d *Driver) Seed() int64 {
	return d.seed
}

// Catalog returns the resolved catalog.
func (d *Driver) Catalog() *Catalog {
	return d.catalog
}

// Allocator returns the lineage allocator the driver names worlds with.
func (d *Driver) Allocator() *lineage.Allocator {
	return d.alloc
}

// Run advances initial through every configured layer and returns the
// final population. A nil initial population starts from the user's
// initial world. When loanLayer is not config.NoLoan, every live world
// takes the configured loan at the start of that layer, before the
// economic step.
func (d *Driver) Run(ctx context.Context, initial []world.State, loanLayer int) ([]world.State, error) {
	if !d.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return nil, ErrDriverReused(d.scenario, d.State())
	}
	defer d.state.Store(int32(StateDone))

	ctx, span := otel.Tracer(tracerName).Start(ctx, "sim.run",
		trace.WithAttributes(
			attribute.String("scenario", d.scenario),
			attribute.String("run_id", d.runID),
			attribute.Int("layers", d.settings.Layers),
			attribute.Int("loan_layer", loanLayer),
		))
	defer span.End()

	if d.runID != "" {
		ctx = logging.WithRunID(ctx, d.runID)
	}
	ctx = logging.WithScenario(ctx, d.scenario)

	worlds := initial
	if worlds == nil {
		worlds = []world.State{NewInitialWorld(d.settings.User, d.alloc)}
	} else {
		for i, w := range worlds {
			if err := w.Validate(); err != nil {
				return nil, ErrInvalidWorld(i, w.ID, err)
			}
		}
		d.alloc.Seed(worlds)
	}

	slog.InfoContext(ctx, "scenario started",
		"layers", d.settings.Layers,
		"loan_layer", loanLayer,
		"catalog_size", d.catalog.Len())

	global := d.settings.Global
	for layer := range d.settings.Layers {
		if err := ctx.Err(); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "cancelled")
			return nil, oops.With("scenario", d.scenario).With("layer", layer).Wrapf(err, "simulation cancelled")
		}

		var err error
		worlds, global, err = d.step(ctx, worlds, global, layer, loanLayer)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "layer failed")
			return nil, err
		}
	}

	slog.InfoContext(ctx, "scenario finished",
		"worlds", len(worlds))
	return worlds, nil
}

// step runs one layer: loan injection, economic step, event sampling,
// branching and the snapshot.
func (d *Driver) step(ctx context.Context, worlds []world.State, global config.GlobalConfig, layer, loanLayer int) ([]world.State, config.GlobalConfig, error) {
	rec := newLayerRecorder(d.scenario)

	if layer == loanLayer {
		worlds = slices.Clone(worlds)
		for i, w := range worlds {
			if w.IsTerminated() {
				continue
			}
			worlds[i] = InjectLoan(w, layer, global, d.settings.LoanAmount)
		}
		slog.DebugContext(ctx, "loan injected",
			"layer", layer,
			"amount", d.settings.LoanAmount)
	}

	before := worlds
	worlds, global = d.stepper.Step(worlds, global, layer)
	for i := range worlds {
		if worlds[i].Bankrupt && !before[i].Bankrupt {
			rec.bankruptcies++
		}
	}

	ev := d.catalog.Sample(d.rng)
	rec.event = ev.Name

	brancher := &Brancher{
		Model:             d.model,
		Allocator:         d.alloc,
		Rand:              d.rng,
		Policy:            d.settings.ForkPolicy,
		HighlightSpinoffs: d.settings.HighlightSpinoffs,
	}

	next := make([]world.State, 0, len(worlds))
	capped := false
	for i, w := range worlds {
		// Worlds still to process each contribute at least one result.
		projected := len(next) + (len(worlds) - i)
		allowFork := d.settings.MaxWorlds <= 0 || projected+1 <= d.settings.MaxWorlds
		if !allowFork && !capped && brancher.WouldFork(w, ev) {
			capped = true
			slog.WarnContext(ctx, "world cap reached, resolving forks by coin flip",
				"layer", layer,
				"max_worlds", d.settings.MaxWorlds)
		}

		results, err := brancher.Branch(w, ev, global, d.settings.User, layer, allowFork)
		if err != nil {
			return nil, global, oops.With("scenario", d.scenario).With("layer", layer).Wrap(err)
		}
		rec.forks += len(results) - 1
		next = append(next, results...)
	}

	snap := snapshot.Snapshot{
		RunID:    d.runID,
		Scenario: d.scenario,
		Layer:    layer,
		Worlds:   next,
	}
	if err := d.sink.Write(ctx, snap); err != nil {
		return nil, global, oops.With("scenario", d.scenario).With("layer", layer).Wrap(err)
	}

	rec.population = len(next)
	rec.record()

	slog.DebugContext(ctx, "layer complete",
		"layer", layer,
		"event", ev.Name,
		"forks", rec.forks,
		"worlds", len(next))
	return next, global, nil
}

// SimulateLayers runs a population through the configured layers without
// injecting a loan.
func SimulateLayers(ctx context.Context, settings *config.Settings, reg *event.Registry, initial []world.State, opts ...Option) ([]world.State, error) {
	d, err := NewDriver(settings, reg, opts...)
	if err != nil {
		return nil, err
	}
	return d.Run(ctx, initial, config.NoLoan)
}

// RunScenario runs the user's initial world through the configured layers,
// injecting the configured loan at loanLayer.
func RunScenario(ctx context.Context, settings *config.Settings, reg *event.Registry, loanLayer int, opts ...Option) ([]world.State, error) {
	d, err := NewDriver(settings, reg, opts...)
	if err != nil {
		return nil, err
	}
	return d.Run(ctx, nil, loanLayer)
}
