// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

// Package config defines the simulation inputs and loads them from settings
// files, command-line flags and the environment.
package config

import "github.com/lifefork/lifefork/internal/world"

// GlobalConfig holds economy-wide parameters shared by every world.
// Handlers and the probability model read it; nothing mutates it.
type GlobalConfig struct {
	MortgageRate float64 `koanf:"mortgage_rate" json:"mortgage_rate" jsonschema:"minimum=0"`
	InterestRate float64 `koanf:"interest_rate" json:"interest_rate" jsonschema:"minimum=0"`
	RiskFactor   float64 `koanf:"risk_factor" json:"risk_factor"`

	// MonthlyLoanPayment is the fixed installment the economic step tries
	// to pay every layer while a loan is outstanding.
	MonthlyLoanPayment float64 `koanf:"monthly_loan_payment" json:"monthly_loan_payment,omitempty" jsonschema:"minimum=0"`
	// LoanPrincipal is the amount requested by the get_loan choice.
	LoanPrincipal float64 `koanf:"loan_principal" json:"loan_principal,omitempty" jsonschema:"minimum=0"`

	// Extras keeps keys this version does not know about.
	Extras map[string]any `koanf:",remain" json:"-"`
}

// Property describes the home a person starts with.
type Property struct {
	Type  string  `koanf:"type" json:"type,omitempty"`
	Rooms int     `koanf:"rooms" json:"rooms,omitempty" jsonschema:"minimum=0"`
	Price float64 `koanf:"price" json:"price,omitempty" jsonschema:"minimum=0"`
}

// UserConfig describes the person being simulated.
type UserConfig struct {
	Income    float64 `koanf:"income" json:"income" jsonschema:"minimum=0"`
	Age       int     `koanf:"age" json:"age" jsonschema:"minimum=0,maximum=120"`
	Education string  `koanf:"education" json:"education,omitempty"`

	Name          string             `koanf:"name" json:"name,omitempty"`
	FamilyStatus  world.FamilyStatus `koanf:"family_status" json:"family_status,omitempty" jsonschema:"enum=single,enum=married,enum=divorced"`
	Children      int                `koanf:"children" json:"children,omitempty" jsonschema:"minimum=0"`
	HealthStatus  world.HealthStatus `koanf:"health_status" json:"health_status,omitempty" jsonschema:"enum=healthy,enum=sick,enum=disabled"`
	CareerLength  *int               `koanf:"career_length" json:"career_length,omitempty" jsonschema:"minimum=0"`
	StartingCash  float64            `koanf:"starting_cash" json:"starting_cash,omitempty" jsonschema:"minimum=0"`
	StartingStock float64            `koanf:"starting_stock" json:"starting_stock,omitempty" jsonschema:"minimum=0"`
	Property      Property           `koanf:"property" json:"property,omitempty"`
	Highlight     *bool              `koanf:"highlight" json:"highlight,omitempty"`

	Extras map[string]any `koanf:",remain" json:"-"`
}

// InitialFamilyStatus returns the configured family status, single by default.
func (u UserConfig) InitialFamilyStatus() world.FamilyStatus {
	if u.FamilyStatus == "" {
		return world.FamilySingle
	}
	return u.FamilyStatus
}

// InitialHealthStatus returns the configured health status, healthy by default.
func (u UserConfig) InitialHealthStatus() world.HealthStatus {
	if u.HealthStatus == "" {
		return world.HealthHealthy
	}
	return u.HealthStatus
}

// InitialCareerLength returns the configured career length or, when unset,
// the years since turning 18.
func (u UserConfig) InitialCareerLength() int {
	if u.CareerLength != nil {
		return *u.CareerLength
	}
	return max(0, u.Age-18)
}

// InitialHighlight reports whether the starting world is highlighted.
// Unset means highlighted: the root timeline is always the main story.
func (u UserConfig) InitialHighlight() bool {
	if u.Highlight == nil {
		return true
	}
	return *u.Highlight
}
