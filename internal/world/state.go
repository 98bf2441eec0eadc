// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

// Package world contains the immutable world-state model shared by the
// simulation engine, the snapshot writer and the narrative explainer.
package world

import "math"

// FamilyStatus is the marital status of the simulated person.
type FamilyStatus string

// Family statuses.
const (
	FamilySingle   FamilyStatus = "single"
	FamilyMarried  FamilyStatus = "married"
	FamilyDivorced FamilyStatus = "divorced"
)

// Valid reports whether the status is one of the known values.
func (f FamilyStatus) Valid() bool {
	switch f {
	case FamilySingle, FamilyMarried, FamilyDivorced:
		return true
	default:
		return false
	}
}

// HealthStatus is the health of the simulated person.
type HealthStatus string

// Health statuses.
const (
	HealthHealthy  HealthStatus = "healthy"
	HealthSick     HealthStatus = "sick"
	HealthDisabled HealthStatus = "disabled"
	HealthDeceased HealthStatus = "deceased"
)

// Valid reports whether the status is one of the known values.
func (h HealthStatus) Valid() bool {
	switch h {
	case HealthHealthy, HealthSick, HealthDisabled, HealthDeceased:
		return true
	default:
		return false
	}
}

// State is one snapshot of a simulated timeline.
//
// State values are treated as immutable: every transition produces a new
// value through With, which deep-copies the history and metadata before
// applying overrides. Never modify a State that has been handed to another
// component.
type State struct {
	ID   int64
	Name string

	CurrentIncome float64 // monthly gross
	CurrentLoan   float64
	StockValue    float64
	Cash          float64
	Bankrupt      bool

	FamilyStatus FamilyStatus
	Children     int
	HealthStatus HealthStatus
	CareerLength int

	PropertyType  string
	PropertyRooms int
	PropertyPrice float64

	Highlight bool

	TrajectoryEvents []string
	Metadata         Metadata
}

// Clone returns a deep copy of the state without touching its history.
func (s State) Clone() State {
	out := s
	out.TrajectoryEvents = append([]string(nil), s.TrajectoryEvents...)
	out.Metadata = s.Metadata.Clone()
	return out
}

// With returns a copy of s with mutate applied and tag appended to the
// trajectory. The receiver is left untouched.
//
// Money fields are clamped at zero after mutate runs. Bankruptcy and death
// are sticky: a transition cannot clear either of them.
func (s State) With(tag string, mutate func(*State)) State {
	out := s.Clone()
	if mutate != nil {
		mutate(&out)
	}

	out.Cash = nonNegative(out.Cash)
	out.CurrentLoan = nonNegative(out.CurrentLoan)
	out.StockValue = nonNegative(out.StockValue)
	out.PropertyPrice = nonNegative(out.PropertyPrice)
	if out.Children < 0 {
		out.Children = 0
	}

	if s.Bankrupt {
		out.Bankrupt = true
	}
	if s.HealthStatus == HealthDeceased {
		out.HealthStatus = HealthDeceased
	}
	if s.Metadata.WorldStatus == WorldTerminated {
		out.Metadata.WorldStatus = WorldTerminated
	}

	out.TrajectoryEvents = append(out.TrajectoryEvents, tag)
	return out
}

// IsTerminated reports whether the timeline has ended. Terminated worlds
// stay in the population but no event can apply to them.
func (s State) IsTerminated() bool {
	return s.HealthStatus == HealthDeceased || s.Metadata.WorldStatus == WorldTerminated
}

// LastEvent returns the most recent trajectory token, or "" for a fresh world.
func (s State) LastEvent() string {
	if len(s.TrajectoryEvents) == 0 {
		return ""
	}
	return s.TrajectoryEvents[len(s.TrajectoryEvents)-1]
}

// nonNegative maps negative and non-finite amounts to zero.
func nonNegative(v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
