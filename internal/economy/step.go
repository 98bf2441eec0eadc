// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

// Package economy applies the monthly cash flow to every world before
// events are sampled.
package economy

import (
	"github.com/lifefork/lifefork/internal/config"
	"github.com/lifefork/lifefork/internal/world"
)

// MinPaymentShare is the share of cash a borrower must pay each month when
// it exceeds the fixed installment.
const MinPaymentShare = 0.10

// RateAdjuster derives the global configuration for the next layer. It is
// the extension point for rate drift; nothing adjusts rates today.
type RateAdjuster interface {
	Adjust(global config.GlobalConfig, layer int) config.GlobalConfig
}

// RateAdjusterFunc adapts a function to RateAdjuster.
type RateAdjusterFunc func(global config.GlobalConfig, layer int) config.GlobalConfig

// Adjust calls f.
func (f RateAdjusterFunc) Adjust(global config.GlobalConfig, layer int) config.GlobalConfig {
	return f(global, layer)
}

// FixedRates leaves the configuration unchanged.
var FixedRates RateAdjuster = RateAdjusterFunc(func(global config.GlobalConfig, _ int) config.GlobalConfig {
	return global
})

// Stepper runs the economic step.
type Stepper struct {
	rates RateAdjuster
}

// NewStepper creates a stepper. A nil adjuster means FixedRates.
func NewStepper(rates RateAdjuster) *Stepper {
	if rates == nil {
		rates = FixedRates
	}
	return &Stepper{rates: rates}
}

// Step credits one month of income to every world and services
// outstanding loans. It appends no trajectory token and returns the global
// configuration to use for the rest of the layer.
func (s *Stepper) Step(worlds []world.State, global config.GlobalConfig, layer int) ([]world.State, config.GlobalConfig) {
	out := make([]world.State, len(worlds))
	for i, w := range worlds {
		out[i] = Apply(w, global.MonthlyLoanPayment)
	}
	return out, s.rates.Adjust(global, layer)
}

// Step runs the economic step with fixed rates.
func Step(worlds []world.State, global config.GlobalConfig, layer int) ([]world.State, config.GlobalConfig) {
	return NewStepper(nil).Step(worlds, global, layer)
}

// Apply runs one month of cash flow for a single world.
//
// Income is credited first. While a loan is outstanding the world owes
// max(monthlyPayment, 10% of cash) and pays what it can. The whole payment
// leaves cash; only the part up to the remaining loan reduces the loan.
// Falling short of the target with debt left over makes the world bankrupt.
func Apply(w world.State, monthlyPayment float64) world.State {
	out := w.Clone()
	if out.IsTerminated() {
		return out
	}

	out.Cash += out.CurrentIncome
	if out.CurrentLoan <= 0 {
		return out
	}

	target := max(monthlyPayment, MinPaymentShare*out.Cash)
	payment := min(target, out.Cash)
	applied := min(payment, out.CurrentLoan)
	out.CurrentLoan -= applied
	out.Cash -= payment

	if payment < target && out.CurrentLoan > 0 {
		out.Bankrupt = true
	}
	out.Cash = max(out.Cash, 0)
	out.CurrentLoan = max(out.CurrentLoan, 0)
	return out
}
