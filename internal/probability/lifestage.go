// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package probability

import (
	"slices"

	"github.com/lifefork/lifefork/internal/event"
	"github.com/lifefork/lifefork/internal/world"
)

// DefaultChildSpacingMonths is the minimum gap between two births.
const DefaultChildSpacingMonths = 18

// Life-stage bounds, in years.
const (
	fertilityLimit = 45.0
	seniorAge      = 60.0
	retirementAge  = 65.0
	elderlyAge     = 80.0
)

var childEvents = []string{event.Kid, event.HaveFirstChild, event.HaveSecondChild}

func isChildEvent(name string) bool {
	return slices.Contains(childEvents, name)
}

// Age returns the person's age in years at the given monthly layer.
func Age(startAge, layer int) float64 {
	return float64(startAge) + float64(layer)/12
}

// lifeStage adjusts a base rate for the person's age and circumstances.
func (m *Model) lifeStage(name string, rate float64, w world.State, age float64) float64 {
	switch {
	case name == event.Marry:
		if w.FamilyStatus == world.FamilySingle && age >= 24 && age <= 38 {
			return 0.25
		}
		if w.FamilyStatus == world.FamilyDivorced && age > 55 {
			return 0.03
		}
	case isChildEvent(name):
		if w.FamilyStatus != world.FamilyMarried || age >= fertilityLimit {
			return 0
		}
		if months, ok := event.MonthsSince(w.TrajectoryEvents, childEvents...); ok && months < m.childSpacing {
			return 0
		}
		if name == event.HaveFirstChild && age >= 25 && age <= 40 {
			return 0.15
		}
	case name == event.Death:
		if age > elderlyAge {
			return 0.06
		}
		if age > retirementAge {
			return 0.02
		}
	case name == event.Sickness:
		if age > seniorAge {
			return rate * 1.5
		}
	case name == event.NewJob:
		if w.Metadata.Employment == world.EmploymentUnemployed {
			return 0.30
		}
	case name == event.Layoff:
		if w.HealthStatus == world.HealthSick {
			return rate * 2
		}
	}
	return rate
}
