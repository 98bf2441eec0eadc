// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package config

import "github.com/samber/oops"

// CodeConfigInvalid marks fatal configuration problems. A run that hits one
// aborts before any layer executes.
const CodeConfigInvalid = "CONFIG_INVALID"

// ErrInvalid creates a configuration error for the given settings field.
func ErrInvalid(field, format string, args ...any) error {
	return oops.Code(CodeConfigInvalid).
		With("field", field).
		Errorf("%s: "+format, append([]any{field}, args...)...)
}

// IsInvalid reports whether err carries the CONFIG_INVALID code.
func IsInvalid(err error) bool {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return false
	}
	return oopsErr.Code() == CodeConfigInvalid
}
