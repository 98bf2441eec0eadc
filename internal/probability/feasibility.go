// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package probability

import (
	"github.com/lifefork/lifefork/internal/event"
	"github.com/lifefork/lifefork/internal/world"
)

// VacationCooldownMonths is the minimum gap between two vacations.
const VacationCooldownMonths = 12

// creditChoices are closed to bankrupt worlds.
var creditChoices = map[string]bool{
	event.GetLoan:       true,
	event.BuyProperty:   true,
	event.InvestInStock: true,
	event.BuySecondCar:  true,
}

// Feasible reports whether ev can meaningfully apply to w. Terminated
// worlds admit nothing; events without a predicate are always feasible.
func Feasible(ev event.Event, w world.State) bool {
	if w.IsTerminated() {
		return false
	}
	if w.Bankrupt && creditChoices[ev.Name] {
		return false
	}

	switch ev.Name {
	case event.Marry:
		return w.FamilyStatus != world.FamilyMarried
	case event.Divorce:
		return w.FamilyStatus == world.FamilyMarried
	case event.HaveFirstChild:
		return w.Children == 0
	case event.HaveSecondChild:
		return w.Children == 1
	case event.Sickness:
		return w.HealthStatus == world.HealthHealthy
	case event.Recover:
		return w.HealthStatus == world.HealthSick
	case event.Disability:
		return w.HealthStatus != world.HealthDisabled
	case event.Layoff, event.Promotion:
		return w.Metadata.Employment != world.EmploymentUnemployed
	case event.GoOnVacation:
		months, ok := event.MonthsSince(w.TrajectoryEvents, event.GoOnVacation)
		return !ok || months >= VacationCooldownMonths
	case event.BuyInsurance:
		return !w.Metadata.HasInsurance
	case event.GetLoan:
		return w.PropertyPrice <= 0
	case event.SellStock, event.MarketCrash, event.MarketRally:
		return w.StockValue > 0
	case event.InvestInStock:
		return w.Cash > 0
	case event.RepayLoan:
		return w.CurrentLoan > 0 && w.Cash > 0
	case event.BuyProperty:
		return w.PropertyPrice <= 0 && w.Cash >= event.DefaultPropertyPrice*event.DownPaymentShare
	case event.BuySecondCar:
		return w.Cash >= event.SecondCarCost
	case event.Bonus:
		return w.CurrentIncome > 0
	default:
		return true
	}
}
