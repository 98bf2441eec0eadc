// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package event

import "github.com/samber/oops"

// Error codes for registry failures.
const (
	CodeEventUnknown   = "EVENT_UNKNOWN"
	CodeEventDuplicate = "EVENT_DUPLICATE"
	CodeEventInvalid   = "EVENT_INVALID"
	CodeRegistryFrozen = "REGISTRY_FROZEN"
)

// ErrUnknown creates an error for a name no registered event matches.
func ErrUnknown(name string) error {
	return oops.Code(CodeEventUnknown).
		With("event", name).
		Errorf("unknown event: %s", name)
}

// ErrDuplicate creates an error for a second registration of the same name.
func ErrDuplicate(name, existingSource string) error {
	return oops.Code(CodeEventDuplicate).
		With("event", name).
		With("existing_source", existingSource).
		Errorf("event already registered: %s", name)
}

// ErrInvalid creates an error for an event that cannot be registered.
func ErrInvalid(name, reason string) error {
	return oops.Code(CodeEventInvalid).
		With("event", name).
		Errorf("invalid event %q: %s", name, reason)
}

// HasCode reports whether err carries the given oops code.
func HasCode(err error, code string) bool {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return false
	}
	return oopsErr.Code() == code
}
