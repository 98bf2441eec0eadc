// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package probability

import "github.com/lifefork/lifefork/internal/event"

// DefaultRate is the base rate of an event with no table entry and no
// declared rate of its own.
const DefaultRate = 0.5

// baseRates is the monthly chance of each built-in event before life-stage
// and risk adjustments.
var baseRates = map[string]float64{
	event.Nothing:         1.0,
	event.Marry:           0.12,
	event.Divorce:         0.04,
	event.Kid:             0.08,
	event.HaveFirstChild:  0.10,
	event.HaveSecondChild: 0.07,
	event.IncomeIncrease:  0.15,
	event.IncomeDecrease:  0.08,
	event.Sickness:        0.06,
	event.Recover:         0.35,
	event.Disability:      0.01,
	event.Layoff:          0.05,
	event.NewJob:          0.10,
	event.Promotion:       0.08,
	event.Bonus:           0.10,
	event.GoOnVacation:    0.30,
	event.BuyInsurance:    0.10,
	event.GetLoan:         0.05,
	event.InvestInStock:   0.15,
	event.SellStock:       0.05,
	event.BuyProperty:     0.04,
	event.BuySecondCar:    0.03,
	event.MarketCrash:     0.03,
	event.MarketRally:     0.06,
	event.RepayLoan:       0.10,
	event.Death:           0.005,
}

// BaseRate returns the table rate for name.
func BaseRate(name string) (float64, bool) {
	rate, ok := baseRates[name]
	return rate, ok
}
