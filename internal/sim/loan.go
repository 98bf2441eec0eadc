// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package sim

import (
	"github.com/lifefork/lifefork/internal/config"
	"github.com/lifefork/lifefork/internal/event"
	"github.com/lifefork/lifefork/internal/world"
)

// InjectLoan credits a scenario loan to w. The effective amount is the
// principal plus one year of mortgage interest; it lands on both the loan
// and the cash balance and is recorded in the loan history.
func InjectLoan(w world.State, layer int, global config.GlobalConfig, amount float64) world.State {
	effective := amount * (1 + global.MortgageRate)
	return w.With(event.LoanTag(layer), func(s *world.State) {
		s.CurrentLoan += effective
		s.Cash += effective
		s.Metadata.LoanHistory = append(s.Metadata.LoanHistory, world.LoanEntry{
			Layer:           layer,
			BaseAmount:      amount,
			EffectiveAmount: effective,
		})
	})
}
