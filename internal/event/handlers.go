// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package event

import (
	"github.com/lifefork/lifefork/internal/config"
	"github.com/lifefork/lifefork/internal/world"
)

// Built-in event names.
const (
	Nothing        = "nothing"
	IncomeIncrease = "income_increase"
	IncomeDecrease = "income_decrease"
	Sickness       = "sickness"
	Recover        = "recover"
	Disability     = "disability"
	Layoff         = "layoff"
	Bonus          = "bonus"
	MarketCrash    = "market_crash"
	MarketRally    = "market_rally"
	RepayLoan      = "repay_loan"
	Death          = "death"
)

// Built-in choice names.
const (
	Marry           = "marry"
	Divorce         = "divorce"
	Kid             = "kid"
	HaveFirstChild  = "have_first_child"
	HaveSecondChild = "have_second_child"
	NewJob          = "new_job"
	Promotion       = "promotion"
	GoOnVacation    = "go_on_vacation"
	BuyInsurance    = "buy_insurance"
	GetLoan         = "get_loan"
	InvestInStock   = "invest_in_stock"
	SellStock       = "sell_stock"
	BuyProperty     = "buy_property"
	BuySecondCar    = "buy_second_car"
)

// Amounts used by the built-in handlers.
const (
	VacationCost         = 2_000.0
	InsuranceCost        = 500.0
	SecondCarCost        = 15_000.0
	DefaultLoanPrincipal = 200_000.0
	DefaultPropertyPrice = 300_000.0
	DefaultPropertyType  = "apartment"
	DefaultPropertyRooms = 3
	DownPaymentShare     = 0.20
	InvestShare          = 0.20
	RepayShare           = 0.50
)

func builtins() []Event {
	return []Event{
		builtin(Nothing, KindEvent, "No change this layer.", nothing),
		builtin(IncomeIncrease, KindEvent, "Income grows by 10%.", scaleIncome(IncomeIncrease, 1.10)),
		builtin(IncomeDecrease, KindEvent, "Income falls by 10%.", scaleIncome(IncomeDecrease, 0.90)),
		builtin(Sickness, KindEvent, "Temporary health setback; income falls by 15%.", sickness),
		builtin(Recover, KindEvent, "Recover from sickness.", recoverHealth),
		builtin(Disability, KindEvent, "Long-term disability; insurance softens the income loss.", disability),
		builtin(Layoff, KindEvent, "Lose job and income halves.", layoff),
		builtin(Bonus, KindEvent, "One month of income paid as a bonus.", bonus),
		builtin(MarketCrash, KindEvent, "Stock holdings lose 30%.", scaleStock(MarketCrash, 0.70)),
		builtin(MarketRally, KindEvent, "Stock holdings gain 15%.", scaleStock(MarketRally, 1.15)),
		builtin(RepayLoan, KindEvent, "Pay half of the cash towards the loan.", repayLoan),
		builtin(Death, KindEvent, "The timeline ends.", death),

		builtin(Marry, KindChoice, "Get married if not already married.", marry),
		builtin(Divorce, KindChoice, "Divorce if currently married.", divorce),
		builtin(Kid, KindChoice, "Family gains a child.", kid),
		builtin(HaveFirstChild, KindChoice, "Have a first child.", nthChild(HaveFirstChild, 1)),
		builtin(HaveSecondChild, KindChoice, "Have a second child.", nthChild(HaveSecondChild, 2)),
		builtin(NewJob, KindChoice, "New job with 20% higher income.", newJob),
		builtin(Promotion, KindChoice, "Promotion with 15% higher income.", promotion),
		builtin(GoOnVacation, KindChoice, "Spend on vacation; small income dip.", goOnVacation),
		builtin(BuyInsurance, KindChoice, "Purchase insurance coverage.", buyInsurance),
		builtin(GetLoan, KindChoice, "Borrow against future income when no property is owned.", getLoan),
		builtin(InvestInStock, KindChoice, "Move 20% of cash into stock.", investInStock),
		builtin(SellStock, KindChoice, "Sell all stock for cash.", sellStock),
		builtin(BuyProperty, KindChoice, "Buy a home with a 20% down payment.", buyProperty),
		builtin(BuySecondCar, KindChoice, "Buy a second car when cash allows.", buySecondCar),
	}
}

func builtin(name string, kind Kind, description string, fn TransitionFunc) Event {
	return Event{
		Name:        name,
		Description: description,
		Kind:        kind,
		Transition:  fn,
		Source:      SourceBuiltin,
	}
}

func noChange(w world.State, name string) world.State {
	return w.With(Tag(name, OutcomeNoChange), nil)
}

func nothing(w world.State, _ config.GlobalConfig, _ config.UserConfig) world.State {
	return w.With(Nothing, nil)
}

func scaleIncome(name string, factor float64) TransitionFunc {
	return func(w world.State, _ config.GlobalConfig, _ config.UserConfig) world.State {
		return w.With(name, func(s *world.State) {
			s.CurrentIncome *= factor
		})
	}
}

func scaleStock(name string, factor float64) TransitionFunc {
	return func(w world.State, _ config.GlobalConfig, _ config.UserConfig) world.State {
		if w.StockValue <= 0 {
			return noChange(w, name)
		}
		return w.With(name, func(s *world.State) {
			s.StockValue *= factor
		})
	}
}

func sickness(w world.State, _ config.GlobalConfig, _ config.UserConfig) world.State {
	if w.HealthStatus != world.HealthHealthy {
		return noChange(w, Sickness)
	}
	return w.With(Sickness, func(s *world.State) {
		s.HealthStatus = world.HealthSick
		s.CurrentIncome *= 0.85
	})
}

func recoverHealth(w world.State, _ config.GlobalConfig, _ config.UserConfig) world.State {
	if w.HealthStatus != world.HealthSick {
		return noChange(w, Recover)
	}
	return w.With(Recover, func(s *world.State) {
		s.HealthStatus = world.HealthHealthy
	})
}

func disability(w world.State, _ config.GlobalConfig, _ config.UserConfig) world.State {
	if w.HealthStatus == world.HealthDisabled || w.HealthStatus == world.HealthDeceased {
		return noChange(w, Disability)
	}
	factor := 0.6
	if w.Metadata.HasInsurance {
		factor = 0.8
	}
	return w.With(Disability, func(s *world.State) {
		s.HealthStatus = world.HealthDisabled
		s.CurrentIncome *= factor
	})
}

func layoff(w world.State, _ config.GlobalConfig, _ config.UserConfig) world.State {
	if w.Metadata.Employment == world.EmploymentUnemployed {
		return noChange(w, Layoff)
	}
	return w.With(Layoff, func(s *world.State) {
		s.CurrentIncome *= 0.5
		s.Metadata.Employment = world.EmploymentUnemployed
	})
}

func bonus(w world.State, _ config.GlobalConfig, _ config.UserConfig) world.State {
	if w.CurrentIncome <= 0 {
		return noChange(w, Bonus)
	}
	return w.With(Bonus, func(s *world.State) {
		s.Cash += s.CurrentIncome
	})
}

func repayLoan(w world.State, _ config.GlobalConfig, _ config.UserConfig) world.State {
	if w.CurrentLoan <= 0 || w.Cash <= 0 {
		return noChange(w, RepayLoan)
	}
	return w.With(RepayLoan, func(s *world.State) {
		payment := min(s.Cash*RepayShare, s.CurrentLoan)
		s.CurrentLoan -= payment
		s.Cash -= payment
	})
}

func death(w world.State, _ config.GlobalConfig, _ config.UserConfig) world.State {
	if w.IsTerminated() {
		return noChange(w, Death)
	}
	return w.With(Death, func(s *world.State) {
		s.CurrentIncome = 0
		s.HealthStatus = world.HealthDeceased
		s.Metadata.WorldStatus = world.WorldTerminated
	})
}

func marry(w world.State, _ config.GlobalConfig, _ config.UserConfig) world.State {
	if w.FamilyStatus == world.FamilyMarried {
		return noChange(w, Marry)
	}
	return w.With(Marry, func(s *world.State) {
		s.FamilyStatus = world.FamilyMarried
	})
}

func divorce(w world.State, _ config.GlobalConfig, _ config.UserConfig) world.State {
	if w.FamilyStatus != world.FamilyMarried {
		return noChange(w, Divorce)
	}
	return w.With(Divorce, func(s *world.State) {
		s.FamilyStatus = world.FamilyDivorced
	})
}

func kid(w world.State, _ config.GlobalConfig, _ config.UserConfig) world.State {
	return w.With(Kid, func(s *world.State) {
		s.Children++
	})
}

// nthChild applies only when the family has exactly n-1 children.
func nthChild(name string, n int) TransitionFunc {
	return func(w world.State, _ config.GlobalConfig, _ config.UserConfig) world.State {
		if w.Children != n-1 {
			return noChange(w, name)
		}
		return w.With(name, func(s *world.State) {
			s.Children = n
		})
	}
}

func newJob(w world.State, _ config.GlobalConfig, _ config.UserConfig) world.State {
	return w.With(NewJob, func(s *world.State) {
		s.CurrentIncome *= 1.20
		s.Metadata.Employment = world.EmploymentEmployed
	})
}

func promotion(w world.State, _ config.GlobalConfig, _ config.UserConfig) world.State {
	if w.Metadata.Employment == world.EmploymentUnemployed {
		return noChange(w, Promotion)
	}
	return w.With(Promotion, func(s *world.State) {
		s.CurrentIncome *= 1.15
		s.CareerLength++
	})
}

func goOnVacation(w world.State, _ config.GlobalConfig, _ config.UserConfig) world.State {
	return w.With(GoOnVacation, func(s *world.State) {
		s.CurrentIncome *= 0.95
		s.Cash -= VacationCost
		s.Metadata.RecentVacation = true
	})
}

func buyInsurance(w world.State, _ config.GlobalConfig, _ config.UserConfig) world.State {
	if w.Metadata.HasInsurance {
		return noChange(w, BuyInsurance)
	}
	return w.With(BuyInsurance, func(s *world.State) {
		s.Cash -= InsuranceCost
		s.Metadata.HasInsurance = true
	})
}

func getLoan(w world.State, global config.GlobalConfig, _ config.UserConfig) world.State {
	if w.PropertyPrice > 0 {
		return noChange(w, GetLoan)
	}
	principal := global.LoanPrincipal
	if principal <= 0 {
		principal = DefaultLoanPrincipal
	}
	effective := principal * (1 + global.MortgageRate)
	layer := LayersElapsed(w.TrajectoryEvents)
	return w.With(GetLoan, func(s *world.State) {
		s.CurrentLoan += effective
		s.Cash += effective
		s.Metadata.LoanHistory = append(s.Metadata.LoanHistory, world.LoanEntry{
			Layer:           layer,
			BaseAmount:      principal,
			EffectiveAmount: effective,
		})
	})
}

func investInStock(w world.State, _ config.GlobalConfig, _ config.UserConfig) world.State {
	if w.Cash <= 0 {
		return noChange(w, InvestInStock)
	}
	return w.With(InvestInStock, func(s *world.State) {
		amount := s.Cash * InvestShare
		s.Cash -= amount
		s.StockValue += amount
	})
}

func sellStock(w world.State, _ config.GlobalConfig, _ config.UserConfig) world.State {
	if w.StockValue <= 0 {
		return noChange(w, SellStock)
	}
	return w.With(SellStock, func(s *world.State) {
		s.Cash += s.StockValue
		s.StockValue = 0
	})
}

func buyProperty(w world.State, _ config.GlobalConfig, _ config.UserConfig) world.State {
	downPayment := DefaultPropertyPrice * DownPaymentShare
	if w.PropertyPrice > 0 || w.Cash < downPayment {
		return noChange(w, BuyProperty)
	}
	return w.With(BuyProperty, func(s *world.State) {
		s.Cash -= downPayment
		s.CurrentLoan += DefaultPropertyPrice - downPayment
		s.PropertyType = DefaultPropertyType
		s.PropertyRooms = DefaultPropertyRooms
		s.PropertyPrice = DefaultPropertyPrice
	})
}

func buySecondCar(w world.State, _ config.GlobalConfig, _ config.UserConfig) world.State {
	if w.Cash < SecondCarCost {
		return noChange(w, BuySecondCar)
	}
	return w.With(BuySecondCar, func(s *world.State) {
		s.Cash -= SecondCarCost
	})
}
