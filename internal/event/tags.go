// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package event

import (
	"strconv"
	"strings"
)

// Outcome is what a trajectory token says happened to its event.
type Outcome string

// Outcomes encoded in trajectory tokens.
const (
	OutcomeHappened    Outcome = "happened"
	OutcomeNotChosen   Outcome = "not_chosen"
	OutcomeSkipped     Outcome = "skipped"
	OutcomeNoChange    Outcome = "no_change"
	OutcomeNotHappened Outcome = "not_happened"
	OutcomeLoan        Outcome = "loan"
)

// Token suffixes.
const (
	SuffixNotChosen    = "_not_chosen"
	SuffixSkipped      = "_skipped"
	SuffixNoChange     = "_no_change"
	SuffixNotHappened  = "_not_happened"
	loanInjectionStart = "take_loan_layer_"
)

// TakeLoan is the base name reported for loan-injection tokens.
const TakeLoan = "take_loan"

var suffixOutcomes = []struct {
	suffix  string
	outcome Outcome
}{
	{SuffixNotChosen, OutcomeNotChosen},
	{SuffixNotHappened, OutcomeNotHappened},
	{SuffixSkipped, OutcomeSkipped},
	{SuffixNoChange, OutcomeNoChange},
}

// Tag builds the trajectory token for name and outcome.
func Tag(name string, outcome Outcome) string {
	switch outcome {
	case OutcomeNotChosen:
		return name + SuffixNotChosen
	case OutcomeSkipped:
		return name + SuffixSkipped
	case OutcomeNoChange:
		return name + SuffixNoChange
	case OutcomeNotHappened:
		return name + SuffixNotHappened
	default:
		return name
	}
}

// LoanTag returns the token recorded when a scenario injects a loan.
func LoanTag(layer int) string {
	return loanInjectionStart + strconv.Itoa(layer)
}

// LoanLayer extracts the layer from a loan-injection token.
func LoanLayer(tag string) (int, bool) {
	rest, ok := strings.CutPrefix(tag, loanInjectionStart)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// ParseTag splits a trajectory token into its event name and outcome.
// Tokens without a known suffix parse as happened with the whole token as
// name.
func ParseTag(tag string) (name string, outcome Outcome) {
	if _, ok := LoanLayer(tag); ok {
		return TakeLoan, OutcomeLoan
	}
	for _, so := range suffixOutcomes {
		if base, ok := strings.CutSuffix(tag, so.suffix); ok && base != "" {
			return base, so.outcome
		}
	}
	return tag, OutcomeHappened
}

// Occurred reports whether the token records something that changed the
// world: a happened event or a loan injection.
func Occurred(tag string) bool {
	_, outcome := ParseTag(tag)
	return outcome == OutcomeHappened || outcome == OutcomeLoan
}

// LayersElapsed counts the layer tokens in a trajectory, ignoring loan
// injections. During layer n it returns n.
func LayersElapsed(trajectory []string) int {
	n := 0
	for _, tag := range trajectory {
		if _, ok := LoanLayer(tag); !ok {
			n++
		}
	}
	return n
}

// MonthsSince returns how many layers ago one of names last occurred, and
// false when none of them ever did.
func MonthsSince(trajectory []string, names ...string) (int, bool) {
	months := 0
	for i := len(trajectory) - 1; i >= 0; i-- {
		tag := trajectory[i]
		if _, ok := LoanLayer(tag); ok {
			continue
		}
		months++
		name, outcome := ParseTag(tag)
		if outcome != OutcomeHappened {
			continue
		}
		for _, want := range names {
			if name == want {
				return months, true
			}
		}
	}
	return 0, false
}
