// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package sim

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/lifefork/lifefork/internal/config"
	"github.com/lifefork/lifefork/internal/event"
	"github.com/lifefork/lifefork/internal/world"
)

// fixedModel returns the same probability for every event.
type fixedModel float64

func (m fixedModel) Probability(event.Event, world.State, config.GlobalConfig, config.UserConfig, int) float64 {
	return float64(m)
}

func ptr[T any](v T) *T { return &v }

// testSettings returns the default settings with an explicit seed and the
// two standard scenarios.
func testSettings() *config.Settings {
	s := config.DefaultSettings()
	s.Seed = 42
	s.Scenarios = config.DefaultScenarios()
	return &s
}

func onlyNothing(s *config.Settings) {
	s.Events = []config.CatalogItem{{Name: event.Nothing, Probability: ptr(1.0)}}
	s.Choices = []config.CatalogItem{}
}

func onlyChoices(s *config.Settings, names ...string) {
	s.Events = []config.CatalogItem{}
	s.Choices = nil
	if len(names) > 0 {
		s.Choices = make([]config.CatalogItem, len(names))
		for i, n := range names {
			s.Choices[i] = config.CatalogItem{Name: n}
		}
	}
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func assertUniqueIdentities(t *testing.T, worlds []world.State) {
	t.Helper()
	ids := make(map[int64]bool, len(worlds))
	names := make(map[string]bool, len(worlds))
	for _, w := range worlds {
		if ids[w.ID] {
			t.Errorf("duplicate world id %d", w.ID)
		}
		if names[w.Name] {
			t.Errorf("duplicate world name %q", w.Name)
		}
		ids[w.ID] = true
		names[w.Name] = true
	}
}
