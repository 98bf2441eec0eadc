// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package sim

import (
	"github.com/samber/oops"

	"github.com/lifefork/lifefork/internal/config"
)

// Error codes for simulation failures.
const (
	CodeAllocatorMissing = "ALLOCATOR_MISSING"
	CodeDriverReused     = "DRIVER_REUSED"
)

// ErrAllocatorMissing creates an error for a fork produced without an
// allocator to name the spin-off.
func ErrAllocatorMissing(eventName string, worldID int64) error {
	return oops.Code(CodeAllocatorMissing).
		With("event", eventName).
		With("world_id", worldID).
		Errorf("branching %s produced a spin-off but no lineage allocator is set", eventName)
}

// ErrDriverReused creates an error for a second Run on the same driver.
func ErrDriverReused(scenario string, state State) error {
	return oops.Code(CodeDriverReused).
		With("scenario", scenario).
		With("state", state.String()).
		Errorf("driver already %s; create a new driver per run", state)
}

// ErrInvalidWorld creates an error for a supplied starting world that
// breaks the world invariants.
func ErrInvalidWorld(index int, worldID int64, err error) error {
	return oops.Code(config.CodeConfigInvalid).
		With("field", "initial").
		With("index", index).
		With("world_id", worldID).
		Errorf("initial world %d is invalid: %v", index, err)
}
