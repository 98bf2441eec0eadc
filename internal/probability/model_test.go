// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package probability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifefork/lifefork/internal/config"
	"github.com/lifefork/lifefork/internal/event"
	"github.com/lifefork/lifefork/internal/world"
)

var (
	global = config.GlobalConfig{MortgageRate: 0.04, InterestRate: 0.03, RiskFactor: 0.3}
	user   = config.UserConfig{Income: 75000, Age: 30, Education: "bachelor"}
)

const riskMultiplier = 1.03

func ev(t *testing.T, name string) event.Event {
	t.Helper()
	e, ok := event.Default().Get(name)
	require.True(t, ok, name)
	return e
}

func single() world.State {
	return world.State{
		Name:          "Alice",
		CurrentIncome: 6000,
		Cash:          10000,
		FamilyStatus:  world.FamilySingle,
		HealthStatus:  world.HealthHealthy,
	}
}

func married() world.State {
	w := single()
	w.FamilyStatus = world.FamilyMarried
	return w
}

func TestProbability_MarryWhenMarriedIsZero(t *testing.T) {
	m := NewModel()
	assert.Zero(t, m.Probability(ev(t, event.Marry), married(), global, user, 0))
}

func TestProbability_AlwaysInUnitInterval(t *testing.T) {
	m := NewModel()
	risky := global
	risky.RiskFactor = 50
	negative := global
	negative.RiskFactor = -50

	for _, e := range event.Default().All() {
		for _, w := range []world.State{single(), married()} {
			for _, g := range []config.GlobalConfig{global, risky, negative} {
				p := m.Probability(e, w, g, user, 0)
				assert.GreaterOrEqual(t, p, 0.0, e.Name)
				assert.LessOrEqual(t, p, 1.0, e.Name)
			}
		}
	}
}

func TestProbability_BaseRateWithRisk(t *testing.T) {
	m := NewModel()
	older := config.UserConfig{Age: 50}

	assert.InDelta(t, 0.15*riskMultiplier, m.Probability(ev(t, event.IncomeIncrease), single(), global, older, 0), 1e-12)
	assert.InDelta(t, 0.05*riskMultiplier, m.Probability(ev(t, event.Layoff), single(), global, older, 0), 1e-12)
	assert.Equal(t, 1.0, m.Probability(ev(t, event.Nothing), single(), global, older, 0))
}

func TestProbability_Marriage(t *testing.T) {
	m := NewModel()
	marry := ev(t, event.Marry)

	assert.InDelta(t, 0.25*riskMultiplier, m.Probability(marry, single(), global, user, 0), 1e-12)
	assert.InDelta(t, 0.12*riskMultiplier, m.Probability(marry, single(), global, config.UserConfig{Age: 45}, 0), 1e-12)

	divorced := single()
	divorced.FamilyStatus = world.FamilyDivorced
	assert.InDelta(t, 0.03*riskMultiplier, m.Probability(marry, divorced, global, config.UserConfig{Age: 60}, 0), 1e-12)
}

func TestProbability_AgeAdvancesWithLayers(t *testing.T) {
	m := NewModel()
	marry := ev(t, event.Marry)
	u := config.UserConfig{Age: 38}

	assert.InDelta(t, 0.25*riskMultiplier, m.Probability(marry, single(), global, u, 0), 1e-12)
	assert.InDelta(t, 0.12*riskMultiplier, m.Probability(marry, single(), global, u, 13), 1e-12)
	assert.InDelta(t, 39.5, Age(38, 18), 1e-12)
}

func TestProbability_Children(t *testing.T) {
	m := NewModel()
	first := ev(t, event.HaveFirstChild)
	kid := ev(t, event.Kid)

	assert.Zero(t, m.Probability(first, single(), global, user, 0))
	assert.Zero(t, m.Probability(first, married(), global, config.UserConfig{Age: 46}, 0))
	assert.InDelta(t, 0.15*riskMultiplier, m.Probability(first, married(), global, user, 0), 1e-12)
	assert.InDelta(t, 0.08*riskMultiplier, m.Probability(kid, married(), global, user, 0), 1e-12)

	recent := married()
	recent.Children = 1
	recent.TrajectoryEvents = []string{"have_first_child", "nothing", "take_loan_layer_2", "nothing"}
	assert.Zero(t, m.Probability(kid, recent, global, user, 3))

	for range 17 {
		recent.TrajectoryEvents = append(recent.TrajectoryEvents, "nothing")
	}
	assert.Positive(t, m.Probability(kid, recent, global, user, 20))

	assert.Zero(t, NewModel(WithChildSpacing(36)).Probability(kid, recent, global, user, 20))
}

func TestProbability_HealthAndWork(t *testing.T) {
	m := NewModel()

	assert.InDelta(t, 0.06*1.5*riskMultiplier, m.Probability(ev(t, event.Sickness), single(), global, config.UserConfig{Age: 61}, 0), 1e-12)

	sick := single()
	sick.HealthStatus = world.HealthSick
	assert.Zero(t, m.Probability(ev(t, event.Sickness), sick, global, user, 0))
	assert.InDelta(t, 0.10*riskMultiplier, m.Probability(ev(t, event.Layoff), sick, global, user, 0), 1e-12)
	assert.InDelta(t, 0.35*riskMultiplier, m.Probability(ev(t, event.Recover), sick, global, user, 0), 1e-12)

	unemployed := single()
	unemployed.Metadata.Employment = world.EmploymentUnemployed
	assert.InDelta(t, 0.30*riskMultiplier, m.Probability(ev(t, event.NewJob), unemployed, global, user, 0), 1e-12)
	assert.Zero(t, m.Probability(ev(t, event.Layoff), unemployed, global, user, 0))
}

func TestProbability_Death(t *testing.T) {
	m := NewModel()
	death := ev(t, event.Death)

	assert.InDelta(t, 0.005*riskMultiplier, m.Probability(death, single(), global, user, 0), 1e-12)
	assert.InDelta(t, 0.02*riskMultiplier, m.Probability(death, single(), global, config.UserConfig{Age: 70}, 0), 1e-12)
	assert.InDelta(t, 0.06*riskMultiplier, m.Probability(death, single(), global, config.UserConfig{Age: 85}, 0), 1e-12)
}

func TestProbability_TerminatedWorldAdmitsNothing(t *testing.T) {
	m := NewModel()
	dead := single()
	dead.HealthStatus = world.HealthDeceased

	for _, e := range event.Default().All() {
		assert.Zero(t, m.Probability(e, dead, global, user, 0), e.Name)
	}
}

func TestProbability_BankruptCannotBorrow(t *testing.T) {
	m := NewModel()
	broke := single()
	broke.Bankrupt = true
	broke.Cash = 100000

	for _, name := range []string{event.GetLoan, event.BuyProperty, event.InvestInStock, event.BuySecondCar} {
		assert.Zero(t, m.Probability(ev(t, name), broke, global, user, 0), name)
	}
	assert.Positive(t, m.Probability(ev(t, event.IncomeIncrease), broke, global, user, 0))
}

func TestProbability_VacationCooldown(t *testing.T) {
	m := NewModel()
	vacation := ev(t, event.GoOnVacation)
	w := single()
	w.TrajectoryEvents = []string{"go_on_vacation"}

	assert.Zero(t, m.Probability(vacation, w, global, user, 1))

	for range 11 {
		w.TrajectoryEvents = append(w.TrajectoryEvents, "nothing")
	}
	assert.InDelta(t, 0.30*riskMultiplier, m.Probability(vacation, w, global, user, 12), 1e-12)
}

func TestProbability_CustomEvents(t *testing.T) {
	m := NewModel()
	rate := 0.2
	custom := event.Event{Name: "lottery", Kind: event.KindEvent, BaseRate: &rate}
	plain := event.Event{Name: "meteor", Kind: event.KindEvent}

	assert.InDelta(t, 0.2*riskMultiplier, m.Probability(custom, single(), global, user, 0), 1e-12)
	assert.InDelta(t, DefaultRate*riskMultiplier, m.Probability(plain, single(), global, user, 0), 1e-12)

	tuned := NewModel(WithBaseRate("meteor", 0.01))
	assert.InDelta(t, 0.01*riskMultiplier, tuned.Probability(plain, single(), global, user, 0), 1e-12)
}

func TestProbability_Pure(t *testing.T) {
	m := NewModel()
	w := married()
	before := w.Clone()

	p1 := m.Probability(ev(t, event.Kid), w, global, user, 4)
	p2 := m.Probability(ev(t, event.Kid), w, global, user, 4)
	assert.Equal(t, p1, p2)
	assert.Equal(t, before, w)
}
