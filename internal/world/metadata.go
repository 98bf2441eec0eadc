// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package world

import "maps"

// Employment is the employment flag recorded by job-related transitions.
type Employment string

// Employment values. The zero value means "never touched by a job event".
const (
	EmploymentUnknown    Employment = ""
	EmploymentEmployed   Employment = "employed"
	EmploymentUnemployed Employment = "unemployed"
)

// WorldStatus marks whether a timeline is still running.
type WorldStatus string

// World statuses.
const (
	WorldActive     WorldStatus = ""
	WorldTerminated WorldStatus = "terminated"
)

// LoanEntry records one loan taken by a world.
type LoanEntry struct {
	Layer           int     `json:"layer"`
	BaseAmount      float64 `json:"base_amount"`
	EffectiveAmount float64 `json:"effective_amount"`
}

// Metadata holds the known optional flags of a world plus a small side
// table for keys nothing in this module understands.
type Metadata struct {
	HasInsurance   bool        `json:"has_insurance,omitempty"`
	Employment     Employment  `json:"employment,omitempty"`
	WorldStatus    WorldStatus `json:"world_status,omitempty"`
	RecentVacation bool        `json:"recent_vacation,omitempty"`
	LoanHistory    []LoanEntry `json:"loan_history,omitempty"`
	Notes          []string    `json:"notes,omitempty"`

	// Extra carries unanticipated extension keys. Values must be
	// JSON-serializable.
	Extra map[string]any `json:"extra,omitempty"`
}

// Clone returns a deep copy of the metadata. Values inside Extra are copied
// shallowly.
func (m Metadata) Clone() Metadata {
	out := m
	out.LoanHistory = append([]LoanEntry(nil), m.LoanHistory...)
	out.Notes = append([]string(nil), m.Notes...)
	if m.Extra != nil {
		out.Extra = maps.Clone(m.Extra)
	}
	return out
}

// TotalBorrowed sums the effective amount of every recorded loan.
func (m Metadata) TotalBorrowed() float64 {
	var total float64
	for _, entry := range m.LoanHistory {
		total += entry.EffectiveAmount
	}
	return total
}
