// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package world

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"unicode"
	"unicode/utf8"
)

// Validation limits for world fields.
const (
	MaxNameLength = 64
	MaxChildren   = 20
	MaxExtraKeys  = 32
	MaxNoteLength = 500
)

// ValidationError represents an invariant violation on a world state.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateName checks that a world name is displayable.
// Names must be non-empty, valid UTF-8, no control characters, and within length limit.
func ValidateName(name string) error {
	if name == "" {
		return &ValidationError{Field: "name", Message: "cannot be empty"}
	}
	if !utf8.ValidString(name) {
		return &ValidationError{Field: "name", Message: "must be valid UTF-8"}
	}
	if len(name) > MaxNameLength {
		return &ValidationError{Field: "name", Message: fmt.Sprintf("exceeds maximum length of %d", MaxNameLength)}
	}
	if hasControlChars(name) {
		return &ValidationError{Field: "name", Message: "cannot contain control characters"}
	}
	return nil
}

// Validate checks the state invariants. All violations are joined into one
// error; each one is a *ValidationError.
func (s State) Validate() error {
	var errs []error
	add := func(field, msg string) {
		errs = append(errs, &ValidationError{Field: field, Message: msg})
	}

	if s.ID < 0 {
		add("id", "cannot be negative")
	}
	if err := ValidateName(s.Name); err != nil {
		errs = append(errs, err)
	}
	for _, f := range []struct {
		field string
		value float64
	}{
		{"cash", s.Cash},
		{"current_loan", s.CurrentLoan},
		{"stock_value", s.StockValue},
		{"property_price", s.PropertyPrice},
	} {
		if f.value < 0 {
			add(f.field, "cannot be negative")
		}
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			add(f.field, "must be a finite number")
		}
	}
	if math.IsNaN(s.CurrentIncome) || math.IsInf(s.CurrentIncome, 0) {
		add("current_income", "must be a finite number")
	}
	if s.Children < 0 || s.Children > MaxChildren {
		add("children", fmt.Sprintf("must be between 0 and %d", MaxChildren))
	}
	if !s.FamilyStatus.Valid() {
		add("family_status", fmt.Sprintf("unknown value %q", s.FamilyStatus))
	}
	if !s.HealthStatus.Valid() {
		add("health_status", fmt.Sprintf("unknown value %q", s.HealthStatus))
	}
	if err := validateMetadata(s.Metadata); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

func validateMetadata(m Metadata) error {
	switch m.Employment {
	case EmploymentUnknown, EmploymentEmployed, EmploymentUnemployed:
	default:
		return &ValidationError{Field: "metadata.employment", Message: fmt.Sprintf("unknown value %q", m.Employment)}
	}
	switch m.WorldStatus {
	case WorldActive, WorldTerminated:
	default:
		return &ValidationError{Field: "metadata.world_status", Message: fmt.Sprintf("unknown value %q", m.WorldStatus)}
	}
	for i, note := range m.Notes {
		if len(note) > MaxNoteLength {
			return &ValidationError{Field: "metadata.notes", Message: fmt.Sprintf("note %d exceeds maximum length of %d", i, MaxNoteLength)}
		}
	}
	if len(m.Extra) > MaxExtraKeys {
		return &ValidationError{Field: "metadata.extra", Message: fmt.Sprintf("exceeds maximum key count of %d", MaxExtraKeys)}
	}
	for key := range m.Extra {
		if key == "" {
			return &ValidationError{Field: "metadata.extra", Message: "key cannot be empty"}
		}
	}
	// Snapshots are written as JSON, so the side table must survive encoding.
	if _, err := json.Marshal(m.Extra); err != nil {
		return &ValidationError{Field: "metadata.extra", Message: "not JSON-serializable: " + err.Error()}
	}
	return nil
}

// hasControlChars returns true if s contains any control characters.
func hasControlChars(s string) bool {
	for _, r := range s {
		if unicode.IsControl(r) {
			return true
		}
	}
	return false
}
