// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

// Package snapshot persists and reloads the world population of each
// simulated layer.
package snapshot

import (
	"context"
	"fmt"
	"sync"

	"github.com/lifefork/lifefork/internal/world"
)

// Snapshot is the population of one scenario after one layer.
type Snapshot struct {
	RunID    string
	Scenario string
	Layer    int
	Worlds   []world.State
}

// Document is the on-disk form of a snapshot.
type Document struct {
	Timestamp int            `json:"timestamp"`
	Worlds    []world.Record `json:"worlds"`
}

// Document converts the snapshot to its on-disk form.
func (s Snapshot) Document() Document {
	return Document{
		Timestamp: s.Layer,
		Worlds:    world.NewRecords(s.Worlds, s.Layer),
	}
}

// FileName returns the base name of a scenario layer file.
func FileName(scenario string, layer int) string {
	return fmt.Sprintf("%s_layer_%03d.json", scenario, layer)
}

// Sink receives every layer snapshot as the simulation produces it.
// A Sink error aborts the run.
type Sink interface {
	Write(ctx context.Context, snap Snapshot) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, snap Snapshot) error

// Write calls f.
func (f SinkFunc) Write(ctx context.Context, snap Snapshot) error {
	return f(ctx, snap)
}

// Discard drops every snapshot.
var Discard Sink = SinkFunc(func(context.Context, Snapshot) error { return nil })

// MultiSink writes each snapshot to every sink in order, stopping at the
// first error.
type MultiSink []Sink

// Write implements Sink.
func (m MultiSink) Write(ctx context.Context, snap Snapshot) error {
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Write(ctx, snap); err != nil {
			return err
		}
	}
	return nil
}

// MemorySink keeps snapshots in memory. It is safe for concurrent use.
type MemorySink struct {
	mu    sync.Mutex
	snaps []Snapshot
}

// NewMemorySink creates an empty memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Write implements Sink.
func (m *MemorySink) Write(_ context.Context, snap Snapshot) error {
	snap.Worlds = cloneAll(snap.Worlds)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = append(m.snaps, snap)
	return nil
}

// Snapshots returns every stored snapshot in arrival order.
func (m *MemorySink) Snapshots() []Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Snapshot(nil), m.snaps...)
}

// Scenario returns the snapshots of one scenario in arrival order.
func (m *MemorySink) Scenario(label string) []Snapshot {
	var out []Snapshot
	for _, s := range m.Snapshots() {
		if s.Scenario == label {
			out = append(out, s)
		}
	}
	return out
}

func cloneAll(worlds []world.State) []world.State {
	out := make([]world.State, len(worlds))
	for i, w := range worlds {
		out[i] = w.Clone()
	}
	return out
}
