// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

// Package probability estimates how likely an event is to happen to a
// world in a given month.
package probability

import (
	"math"

	"github.com/lifefork/lifefork/internal/config"
	"github.com/lifefork/lifefork/internal/event"
	"github.com/lifefork/lifefork/internal/world"
)

// riskWeight scales the global risk factor into a rate multiplier.
const riskWeight = 0.1

// Model computes event probabilities. It holds no mutable state and is
// safe for concurrent use.
type Model struct {
	rates        map[string]float64
	childSpacing int
}

// Option configures a Model.
type Option func(*Model)

// WithBaseRate overrides the base rate of one event.
func WithBaseRate(name string, rate float64) Option {
	return func(m *Model) {
		m.rates[name] = rate
	}
}

// WithChildSpacing sets the minimum number of months between births.
func WithChildSpacing(months int) Option {
	return func(m *Model) {
		m.childSpacing = months
	}
}

// NewModel creates a model with the built-in base rates.
func NewModel(opts ...Option) *Model {
	m := &Model{
		rates:        make(map[string]float64),
		childSpacing: DefaultChildSpacingMonths,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Probability returns the chance in [0, 1] that ev happens to w during
// layer. The caller performs the coin flip.
func (m *Model) Probability(ev event.Event, w world.State, global config.GlobalConfig, user config.UserConfig, layer int) float64 {
	if !Feasible(ev, w) {
		return 0
	}

	rate := m.baseRate(ev)
	rate = m.lifeStage(ev.Name, rate, w, Age(user.Age, layer))
	rate *= 1 + global.RiskFactor*riskWeight
	return clamp(rate)
}

func (m *Model) baseRate(ev event.Event) float64 {
	if rate, ok := m.rates[ev.Name]; ok {
		return rate
	}
	if rate, ok := BaseRate(ev.Name); ok {
		return rate
	}
	if ev.BaseRate != nil {
		return *ev.BaseRate
	}
	return DefaultRate
}

func clamp(p float64) float64 {
	switch {
	case math.IsNaN(p), p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
