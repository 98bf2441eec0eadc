// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package narrative

import "github.com/lifefork/lifefork/internal/event"

type bonus struct {
	when  func(situation) bool
	extra int
	text  string
}

type rule struct {
	base    int
	text    string
	partner bool
	bonuses []bonus
}

func kids(s situation) bool        { return s.kids }
func debt(s situation) bool        { return s.debt }
func thin(s situation) bool        { return s.thinBuffer }
func lowIncome(s situation) bool   { return s.lowIncome }
func unwell(s situation) bool      { return s.unwell }
func debtAndThin(s situation) bool { return s.debt && s.thinBuffer }

var childRule = rule{
	base: 6,
	text: "{name} had a child this year; long-term commitments grow.",
	bonuses: []bonus{
		{debt, 2, "{name} had a child while still in debt; expenses will rise further."},
		{lowIncome, 3, "{name} welcomed a child on a relatively low income; the budget gets tight."},
	},
}

var loanRule = rule{
	base: 7,
	text: "{name} took out a loan this year; long-term obligations increased.",
	bonuses: []bonus{
		{thin, 3, "{name} took a loan with thin cash reserves, a highly leveraged position."},
		{unwell, 2, "{name} took a loan despite health issues, dangerous if income drops."},
	},
}

// rules maps event names to their base severity and situational bonuses.
var rules = map[string]rule{
	event.Layoff: {
		base: 8,
		text: "{name} got laid off this year, a serious negative shock.",
		bonuses: []bonus{
			{kids, 3, "{name} got laid off while raising children."},
			{debt, 4, "{name} lost their job while still carrying debt; repayment is at risk."},
			{thin, 2, "{name} was laid off with almost no cash buffer and may run out of funds."},
		},
	},
	event.Sickness: {
		base: 7,
		text: "{name} had health problems this year.",
		bonuses: []bonus{
			{kids, 2, "{name} fell sick while raising children."},
			{debt, 2, "{name} is ill while carrying debt; repayment risk increases."},
		},
	},
	event.Divorce: {
		base: 8,
		text: "{name} went through a divorce this year, a major emotional and financial shift.",
		bonuses: []bonus{
			{kids, 2, "{name} divorced while having children."},
			{debt, 2, "{name} divorced while carrying debt; finances got more complicated."},
		},
	},
	event.Kid:             childRule,
	event.HaveFirstChild:  childRule,
	event.HaveSecondChild: childRule,
	event.Marry: {
		base:    4,
		text:    "{name} got married this year to {partner}.",
		partner: true,
		bonuses: []bonus{
			{debt, 1, "{name} married {partner} while carrying debt; financial planning matters now."},
			{thin, 2, "{name} married {partner} with very low cash reserves, a risky start."},
			{unwell, 2, "{name} married {partner} despite health issues; strain may lie ahead."},
		},
	},
	event.NewJob: {
		base: 5,
		text: "{name} started a new job this year.",
		bonuses: []bonus{
			{debtAndThin, 2, "{name} began a new job while in debt and short on cash, an unstable transition."},
		},
	},
	event.IncomeDecrease: {
		base: 6,
		text: "{name}'s income decreased this year.",
		bonuses: []bonus{
			{debt, 3, "{name}'s income dropped while carrying debt; the repayment burden worsens."},
			{kids, 2, "{name}'s household lost income while raising children."},
		},
	},
	event.IncomeIncrease: {
		base: 2,
		text: "{name}'s income increased this year.",
		bonuses: []bonus{
			{debtAndThin, 2, "{name} earns more but stays fragile with debt and low savings."},
		},
	},
	event.GoOnVacation: {
		base: 3,
		text: "{name} went on vacation this year.",
		bonuses: []bonus{
			{debtAndThin, 4, "{name} went on vacation despite debt and low savings."},
		},
	},
	event.TakeLoan: loanRule,
	event.GetLoan:  loanRule,
	event.Death: {
		base: 10,
		text: "{name}'s timeline ended this year.",
	},
}
