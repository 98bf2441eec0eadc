// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package config

import (
	"errors"
	"fmt"
	"strings"
)

// ForkPolicy decides when a choice with an uncertain outcome produces two
// coexisting worlds instead of one sampled outcome.
type ForkPolicy string

// Fork policies.
const (
	// ForkHighlighted forks only worlds flagged as highlighted.
	ForkHighlighted ForkPolicy = "highlighted"
	// ForkAlways forks every world on every uncertain choice.
	ForkAlways ForkPolicy = "always"
	// ForkNever resolves every choice with a coin flip.
	ForkNever ForkPolicy = "never"
)

// Valid reports whether p is a known policy.
func (p ForkPolicy) Valid() bool {
	switch p {
	case ForkHighlighted, ForkAlways, ForkNever:
		return true
	default:
		return false
	}
}

// DefaultProbability is the sampling weight of a catalog item that does
// not set one.
const DefaultProbability = 0.5

// CatalogItem names a registered event or choice and its sampling weight.
// Name may be a glob pattern such as "income_*".
type CatalogItem struct {
	Name        string   `koanf:"name" json:"name" jsonschema:"required,minLength=1"`
	Probability *float64 `koanf:"probability" json:"probability,omitempty" jsonschema:"minimum=0,maximum=1"`
}

// Weight returns the sampling weight, DefaultProbability when unset.
func (c CatalogItem) Weight() float64 {
	if c.Probability == nil {
		return DefaultProbability
	}
	return *c.Probability
}

// NoLoan marks a scenario that never injects a loan.
const NoLoan = -1

// ScenarioSpec describes one named run of the simulation.
type ScenarioSpec struct {
	Label     string `koanf:"label" json:"label" jsonschema:"required,minLength=1"`
	LoanLayer int    `koanf:"loan_layer" json:"loan_layer" jsonschema:"minimum=-1"`
}

// CustomEvent declares a scripted event registered next to the built-ins.
type CustomEvent struct {
	Name        string   `koanf:"name" json:"name" jsonschema:"required,minLength=1"`
	Description string   `koanf:"description" json:"description,omitempty"`
	Kind        string   `koanf:"kind" json:"kind,omitempty" jsonschema:"enum=event,enum=choice"`
	BaseRate    *float64 `koanf:"base_rate" json:"base_rate,omitempty" jsonschema:"minimum=0,maximum=1"`
	Script      string   `koanf:"script" json:"script,omitempty"`
	ScriptFile  string   `koanf:"script_file" json:"script_file,omitempty"`
}

// Settings is the complete input of a simulation run.
type Settings struct {
	Version    string  `koanf:"version" json:"version,omitempty"`
	Layers     int     `koanf:"layers" json:"layers" jsonschema:"minimum=0"`
	Seed       int64   `koanf:"seed" json:"seed,omitempty"`
	LoanAmount float64 `koanf:"loan_amount" json:"loan_amount" jsonschema:"minimum=0"`
	OutputDir  string  `koanf:"output_dir" json:"output_dir,omitempty"`

	ForkPolicy        ForkPolicy `koanf:"fork_policy" json:"fork_policy,omitempty" jsonschema:"enum=highlighted,enum=always,enum=never"`
	HighlightSpinoffs bool       `koanf:"highlight_spinoffs" json:"highlight_spinoffs,omitempty"`
	MaxWorlds         int        `koanf:"max_worlds" json:"max_worlds,omitempty" jsonschema:"minimum=0"`
	Parallel          bool       `koanf:"parallel" json:"parallel,omitempty"`

	Global GlobalConfig `koanf:"global" json:"global" jsonschema:"required"`
	User   UserConfig   `koanf:"user" json:"user" jsonschema:"required"`

	Events       []CatalogItem  `koanf:"events" json:"events,omitempty"`
	Choices      []CatalogItem  `koanf:"choices" json:"choices,omitempty"`
	Scenarios    []ScenarioSpec `koanf:"scenarios" json:"scenarios,omitempty"`
	CustomEvents []CustomEvent  `koanf:"custom_events" json:"custom_events,omitempty"`
}

// Default values.
const (
	DefaultVersion    = "1.0.0"
	DefaultLayers     = 10
	DefaultLoanAmount = 200_000.0
	DefaultMaxWorlds  = 512
)

// Scenario labels run by default.
const (
	ScenarioLoanNow      = "loan_now"
	ScenarioLoanNextYear = "loan_next_year"
)

// DefaultSettings returns the built-in settings used when no file is given.
// Slices are left nil; applyDefaults fills them after loading so that a
// file's lists replace the defaults instead of merging into them.
func DefaultSettings() Settings {
	careerLength := 7
	return Settings{
		Version:    DefaultVersion,
		Layers:     DefaultLayers,
		LoanAmount: DefaultLoanAmount,
		ForkPolicy: ForkHighlighted,
		MaxWorlds:  DefaultMaxWorlds,
		Global: GlobalConfig{
			MortgageRate: 0.04,
			InterestRate: 0.03,
			RiskFactor:   0.3,
		},
		User: UserConfig{
			Income:       75_000,
			Age:          30,
			Education:    "bachelor",
			FamilyStatus: "single",
			CareerLength: &careerLength,
		},
	}
}

// DefaultScenarios returns the two standard loan-timing scenarios.
func DefaultScenarios() []ScenarioSpec {
	return []ScenarioSpec{
		{Label: ScenarioLoanNow, LoanLayer: 0},
		{Label: ScenarioLoanNextYear, LoanLayer: 1},
	}
}

func (s *Settings) applyDefaults() {
	if s.Version == "" {
		s.Version = DefaultVersion
	}
	if s.ForkPolicy == "" {
		s.ForkPolicy = ForkHighlighted
	}
	if s.Scenarios == nil {
		s.Scenarios = DefaultScenarios()
	}
	for i := range s.CustomEvents {
		if s.CustomEvents[i].Kind == "" {
			s.CustomEvents[i].Kind = "event"
		}
	}
}

// Validate checks semantic constraints the schema cannot express.
// Every violation is reported; each one carries the CONFIG_INVALID code.
func (s *Settings) Validate() error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, ErrInvalid(field, format, args...))
	}

	if err := CheckVersion(s.Version); err != nil {
		errs = append(errs, err)
	}
	if s.Layers < 0 {
		add("layers", "must be >= 0, got %d", s.Layers)
	}
	if s.LoanAmount < 0 {
		add("loan_amount", "must be >= 0, got %v", s.LoanAmount)
	}
	if !s.ForkPolicy.Valid() {
		add("fork_policy", "must be highlighted, always or never, got %q", s.ForkPolicy)
	}
	if s.MaxWorlds < 0 {
		add("max_worlds", "must be >= 0, got %d", s.MaxWorlds)
	}

	if s.Global.MortgageRate < 0 {
		add("global.mortgage_rate", "must be >= 0, got %v", s.Global.MortgageRate)
	}
	if s.Global.MonthlyLoanPayment < 0 {
		add("global.monthly_loan_payment", "must be >= 0, got %v", s.Global.MonthlyLoanPayment)
	}
	if s.User.Income < 0 {
		add("user.income", "must be >= 0, got %v", s.User.Income)
	}
	if s.User.Age <= 0 {
		add("user.age", "is required and must be > 0")
	}
	if s.User.FamilyStatus != "" && !s.User.FamilyStatus.Valid() {
		add("user.family_status", "unknown value %q", s.User.FamilyStatus)
	}
	if s.User.HealthStatus != "" && !s.User.HealthStatus.Valid() {
		add("user.health_status", "unknown value %q", s.User.HealthStatus)
	}
	if s.User.StartingCash < 0 || s.User.StartingStock < 0 || s.User.Property.Price < 0 {
		add("user", "starting cash, stock and property price must be >= 0")
	}

	errs = append(errs, validateCatalog("events", s.Events)...)
	errs = append(errs, validateCatalog("choices", s.Choices)...)

	labels := make(map[string]bool, len(s.Scenarios))
	for i, sc := range s.Scenarios {
		field := fmt.Sprintf("scenarios[%d]", i)
		label := strings.TrimSpace(sc.Label)
		if label == "" {
			add(field+".label", "cannot be empty")
			continue
		}
		if strings.ContainsAny(label, `/\`) {
			add(field+".label", "cannot contain path separators")
		}
		if labels[label] {
			add(field+".label", "duplicate label %q", label)
		}
		labels[label] = true
		if sc.LoanLayer < NoLoan {
			add(field+".loan_layer", "must be >= -1, got %d", sc.LoanLayer)
		}
	}

	for i, ce := range s.CustomEvents {
		field := fmt.Sprintf("custom_events[%d]", i)
		if strings.TrimSpace(ce.Name) == "" {
			add(field+".name", "cannot be empty")
		}
		if ce.Kind != "event" && ce.Kind != "choice" {
			add(field+".kind", "must be event or choice, got %q", ce.Kind)
		}
		if ce.Script == "" {
			add(field+".script", "script or script_file is required")
		}
		if ce.BaseRate != nil && (*ce.BaseRate < 0 || *ce.BaseRate > 1) {
			add(field+".base_rate", "must be within [0, 1], got %v", *ce.BaseRate)
		}
	}

	return errors.Join(errs...)
}

func validateCatalog(field string, items []CatalogItem) []error {
	var errs []error
	for i, item := range items {
		f := fmt.Sprintf("%s[%d]", field, i)
		if strings.TrimSpace(item.Name) == "" {
			errs = append(errs, ErrInvalid(f+".name", "cannot be empty"))
		}
		if w := item.Weight(); w < 0 || w > 1 {
			errs = append(errs, ErrInvalid(f+".probability", "must be within [0, 1], got %v", w))
		}
	}
	return errs
}
