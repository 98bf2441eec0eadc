// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

// Package event defines life events and user choices, the transitions they
// apply to a world, and the registry the simulation samples them from.
package event

import (
	"github.com/lifefork/lifefork/internal/config"
	"github.com/lifefork/lifefork/internal/world"
)

// Kind distinguishes automatic events from user choices. Only choices may
// fork a timeline.
type Kind string

// Event kinds.
const (
	KindEvent  Kind = "event"
	KindChoice Kind = "choice"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindEvent || k == KindChoice
}

// SourceBuiltin marks events compiled into the binary.
const SourceBuiltin = "builtin"

// Transition computes the world that results from an event.
//
// Implementations must not modify w and must not fail: an event that does
// not make sense for w returns w with a "_no_change" token appended.
// Every call appends exactly one trajectory token.
type Transition interface {
	Apply(w world.State, global config.GlobalConfig, user config.UserConfig) world.State
}

// TransitionFunc adapts a plain function to Transition.
type TransitionFunc func(w world.State, global config.GlobalConfig, user config.UserConfig) world.State

// Apply calls f.
func (f TransitionFunc) Apply(w world.State, global config.GlobalConfig, user config.UserConfig) world.State {
	return f(w, global, user)
}

// Event is an immutable, named transition.
type Event struct {
	Name        string
	Description string
	Kind        Kind
	Transition  Transition
	// Source is "builtin" or "lua:<name>".
	Source string
	// BaseRate overrides the probability model's base rate for events it
	// has no table entry for. Nil means "use the model's default".
	BaseRate *float64
}

// Apply runs the event's transition.
func (e Event) Apply(w world.State, global config.GlobalConfig, user config.UserConfig) world.State {
	return e.Transition.Apply(w, global, user)
}

// IsChoice reports whether the event is a user choice.
func (e Event) IsChoice() bool {
	return e.Kind == KindChoice
}
