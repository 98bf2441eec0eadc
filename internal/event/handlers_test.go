// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lifefork/lifefork/internal/config"
	"github.com/lifefork/lifefork/internal/world"
)

func baseWorld() world.State {
	return world.State{
		ID:            0,
		Name:          "Alice",
		CurrentIncome: 6000,
		Cash:          10000,
		FamilyStatus:  world.FamilySingle,
		HealthStatus:  world.HealthHealthy,
		CareerLength:  7,
		Highlight:     true,
	}
}

var testGlobal = config.GlobalConfig{MortgageRate: 0.04, InterestRate: 0.03, RiskFactor: 0.3}

func apply(t *testing.T, name string, w world.State) world.State {
	t.Helper()
	ev, ok := Default().Get(name)
	require.True(t, ok, "event %s not registered", name)
	return ev.Apply(w, testGlobal, config.UserConfig{Age: 30})
}

func TestBuiltins_AppendExactlyOneTokenAndKeepMoneyNonNegative(t *testing.T) {
	starts := map[string]world.State{
		"default": baseWorld(),
		"broke": func() world.State {
			w := baseWorld()
			w.Cash = 0
			w.CurrentLoan = 5000
			return w
		}(),
		"wealthy": func() world.State {
			w := baseWorld()
			w.Cash = 500000
			w.StockValue = 20000
			w.CurrentLoan = 1000
			w.FamilyStatus = world.FamilyMarried
			w.HealthStatus = world.HealthSick
			return w
		}(),
	}

	for label, start := range starts {
		for _, ev := range Default().All() {
			t.Run(label+"/"+ev.Name, func(t *testing.T) {
				before := start.Clone()
				out := ev.Apply(start, testGlobal, config.UserConfig{Age: 30})

				assert.Equal(t, before, start, "input must not change")
				require.Len(t, out.TrajectoryEvents, len(start.TrajectoryEvents)+1)
				name, _ := ParseTag(out.LastEvent())
				assert.Equal(t, ev.Name, name)

				assert.GreaterOrEqual(t, out.Cash, 0.0)
				assert.GreaterOrEqual(t, out.CurrentLoan, 0.0)
				assert.GreaterOrEqual(t, out.StockValue, 0.0)
			})
		}
	}
}

func TestMarry_Twice(t *testing.T) {
	w := apply(t, Marry, baseWorld())
	assert.Equal(t, world.FamilyMarried, w.FamilyStatus)
	assert.Equal(t, "marry", w.LastEvent())

	w = apply(t, Marry, w)
	assert.Equal(t, world.FamilyMarried, w.FamilyStatus)
	assert.Equal(t, "marry_no_change", w.LastEvent())
	assert.Equal(t, []string{"marry", "marry_no_change"}, w.TrajectoryEvents)
}

func TestDivorce_OnlyWhenMarried(t *testing.T) {
	w := apply(t, Divorce, baseWorld())
	assert.Equal(t, "divorce_no_change", w.LastEvent())
	assert.Equal(t, world.FamilySingle, w.FamilyStatus)

	married := baseWorld()
	married.FamilyStatus = world.FamilyMarried
	w = apply(t, Divorce, married)
	assert.Equal(t, world.FamilyDivorced, w.FamilyStatus)
}

func TestIncomeHandlers(t *testing.T) {
	tests := []struct {
		name string
		want float64
	}{
		{IncomeIncrease, 6600},
		{IncomeDecrease, 5400},
		{Sickness, 5100},
		{Layoff, 3000},
		{NewJob, 7200},
		{Promotion, 6900},
		{GoOnVacation, 5700},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := apply(t, tt.name, baseWorld())
			assert.InDelta(t, tt.want, w.CurrentIncome, 1e-9)
		})
	}
}

func TestEmploymentFlags(t *testing.T) {
	w := apply(t, Layoff, baseWorld())
	assert.Equal(t, world.EmploymentUnemployed, w.Metadata.Employment)

	w = apply(t, Layoff, w)
	assert.Equal(t, "layoff_no_change", w.LastEvent())

	w = apply(t, Promotion, w)
	assert.Equal(t, "promotion_no_change", w.LastEvent())

	w = apply(t, NewJob, w)
	assert.Equal(t, world.EmploymentEmployed, w.Metadata.Employment)
}

func TestHealthHandlers(t *testing.T) {
	w := apply(t, Sickness, baseWorld())
	assert.Equal(t, world.HealthSick, w.HealthStatus)

	w = apply(t, Sickness, w)
	assert.Equal(t, "sickness_no_change", w.LastEvent())

	w = apply(t, Recover, w)
	assert.Equal(t, world.HealthHealthy, w.HealthStatus)
	assert.Equal(t, "recover", w.LastEvent())

	uninsured := apply(t, Disability, baseWorld())
	assert.InDelta(t, 3600, uninsured.CurrentIncome, 1e-9)
	assert.Equal(t, world.HealthDisabled, uninsured.HealthStatus)

	insured := apply(t, BuyInsurance, baseWorld())
	insured = apply(t, Disability, insured)
	assert.InDelta(t, 4800, insured.CurrentIncome, 1e-9)
}

func TestDeath_TerminatesWorld(t *testing.T) {
	w := apply(t, Death, baseWorld())
	assert.True(t, w.IsTerminated())
	assert.Zero(t, w.CurrentIncome)
	assert.Equal(t, world.WorldTerminated, w.Metadata.WorldStatus)

	w = apply(t, Death, w)
	assert.Equal(t, "death_no_change", w.LastEvent())
}

func TestVacationAndInsurance_Cash(t *testing.T) {
	w := baseWorld()
	w.Cash = 1500

	v := apply(t, GoOnVacation, w)
	assert.Zero(t, v.Cash)
	assert.True(t, v.Metadata.RecentVacation)

	ins := apply(t, BuyInsurance, w)
	assert.InDelta(t, 1000, ins.Cash, 1e-9)
	assert.True(t, ins.Metadata.HasInsurance)

	ins = apply(t, BuyInsurance, ins)
	assert.Equal(t, "buy_insurance_no_change", ins.LastEvent())
}

func TestGetLoan(t *testing.T) {
	w := baseWorld()
	w.TrajectoryEvents = []string{"nothing", "take_loan_layer_1", "nothing"}

	out := apply(t, GetLoan, w)
	assert.InDelta(t, 208000, out.CurrentLoan, 1e-6)
	assert.InDelta(t, 218000, out.Cash, 1e-6)
	require.Len(t, out.Metadata.LoanHistory, 1)
	assert.Equal(t, world.LoanEntry{Layer: 2, BaseAmount: 200000, EffectiveAmount: 208000}, out.Metadata.LoanHistory[0])

	owner := baseWorld()
	owner.PropertyPrice = 250000
	assert.Equal(t, "get_loan_no_change", apply(t, GetLoan, owner).LastEvent())
}

func TestGetLoan_ConfiguredPrincipal(t *testing.T) {
	ev, _ := Default().Get(GetLoan)
	global := testGlobal
	global.LoanPrincipal = 10000

	out := ev.Apply(baseWorld(), global, config.UserConfig{})
	assert.InDelta(t, 10400, out.CurrentLoan, 1e-9)
}

func TestStockHandlers(t *testing.T) {
	w := apply(t, InvestInStock, baseWorld())
	assert.InDelta(t, 8000, w.Cash, 1e-9)
	assert.InDelta(t, 2000, w.StockValue, 1e-9)

	crashed := apply(t, MarketCrash, w)
	assert.InDelta(t, 1400, crashed.StockValue, 1e-9)

	rallied := apply(t, MarketRally, w)
	assert.InDelta(t, 2300, rallied.StockValue, 1e-9)

	sold := apply(t, SellStock, w)
	assert.Zero(t, sold.StockValue)
	assert.InDelta(t, 10000, sold.Cash, 1e-9)

	assert.Equal(t, "market_crash_no_change", apply(t, MarketCrash, baseWorld()).LastEvent())
	assert.Equal(t, "sell_stock_no_change", apply(t, SellStock, baseWorld()).LastEvent())
}

func TestBuyProperty(t *testing.T) {
	assert.Equal(t, "buy_property_no_change", apply(t, BuyProperty, baseWorld()).LastEvent())

	w := baseWorld()
	w.Cash = 100000
	out := apply(t, BuyProperty, w)
	assert.InDelta(t, 40000, out.Cash, 1e-9)
	assert.InDelta(t, 240000, out.CurrentLoan, 1e-9)
	assert.Equal(t, DefaultPropertyType, out.PropertyType)
	assert.Equal(t, DefaultPropertyRooms, out.PropertyRooms)
	assert.InDelta(t, DefaultPropertyPrice, out.PropertyPrice, 1e-9)

	assert.Equal(t, "buy_property_no_change", apply(t, BuyProperty, out).LastEvent())
}

func TestRepayLoan(t *testing.T) {
	w := baseWorld()
	w.CurrentLoan = 3000

	out := apply(t, RepayLoan, w)
	assert.InDelta(t, 0, out.CurrentLoan, 1e-9)
	assert.InDelta(t, 7000, out.Cash, 1e-9)

	w.CurrentLoan = 50000
	out = apply(t, RepayLoan, w)
	assert.InDelta(t, 45000, out.CurrentLoan, 1e-9)
	assert.InDelta(t, 5000, out.Cash, 1e-9)
}

func TestChildHandlers(t *testing.T) {
	w := apply(t, HaveSecondChild, baseWorld())
	assert.Equal(t, "have_second_child_no_change", w.LastEvent())

	w = apply(t, HaveFirstChild, baseWorld())
	assert.Equal(t, 1, w.Children)
	w = apply(t, HaveSecondChild, w)
	assert.Equal(t, 2, w.Children)
	w = apply(t, Kid, w)
	assert.Equal(t, 3, w.Children)
}

func TestBonusAndSecondCar(t *testing.T) {
	w := apply(t, Bonus, baseWorld())
	assert.InDelta(t, 16000, w.Cash, 1e-9)

	assert.Equal(t, "buy_second_car_no_change", apply(t, BuySecondCar, baseWorld()).LastEvent())
	w = apply(t, BuySecondCar, w)
	assert.InDelta(t, 1000, w.Cash, 1e-9)
}
