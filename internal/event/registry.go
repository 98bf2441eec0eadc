// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package event

import (
	"slices"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"github.com/samber/oops"
)

// Registry maps event names to events.
// It is safe for concurrent use by multiple goroutines.
type Registry struct {
	mu     sync.RWMutex
	events map[string]Event
	frozen bool
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{events: make(map[string]Event)}
}

// Default returns the process-wide registry of built-in events.
// It is built on first use and rejects further registrations.
func Default() *Registry {
	defaultOnce.Do(func() {
		r := NewRegistry()
		for _, ev := range builtins() {
			r.MustRegister(ev)
		}
		r.frozen = true
		defaultRegistry = r
	})
	return defaultRegistry
}

// Extend returns a new registry holding the built-ins plus extra events.
// The default registry is left untouched.
func Extend(extra ...Event) (*Registry, error) {
	r := NewRegistry()
	for _, ev := range Default().All() {
		r.events[ev.Name] = ev
	}
	for _, ev := range extra {
		if err := r.Register(ev); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds an event. Names must be unique.
func (r *Registry) Register(ev Event) error {
	if err := ValidateName(ev.Name); err != nil {
		return err
	}
	if !ev.Kind.Valid() {
		return ErrInvalid(ev.Name, "kind must be event or choice")
	}
	if ev.Transition == nil {
		return ErrInvalid(ev.Name, "transition is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return oops.Code(CodeRegistryFrozen).
			With("event", ev.Name).
			Errorf("registry is read-only")
	}
	if existing, ok := r.events[ev.Name]; ok {
		return ErrDuplicate(ev.Name, existing.Source)
	}
	r.events[ev.Name] = ev
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(ev Event) {
	if err := r.Register(ev); err != nil {
		panic(err)
	}
}

// Get retrieves an event by exact name.
func (r *Registry) Get(name string) (Event, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ev, ok := r.events[name]
	return ev, ok
}

// All returns every registered event sorted by name.
// The returned slice is a copy and safe to modify.
func (r *Registry) All() []Event {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Event, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev)
	}
	slices.SortFunc(out, func(a, b Event) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Names returns the sorted names of every registered event.
func (r *Registry) Names() []string {
	all := r.All()
	names := make([]string, len(all))
	for i, ev := range all {
		names[i] = ev.Name
	}
	return names
}

// OfKind returns the registered events of one kind, sorted by name.
func (r *Registry) OfKind(kind Kind) []Event {
	var out []Event
	for _, ev := range r.All() {
		if ev.Kind == kind {
			out = append(out, ev)
		}
	}
	return out
}

// Len returns the number of registered events.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.events)
}

// Match resolves a catalog entry to events. A plain name must match
// exactly; a pattern such as "income_*" may match several events, sorted
// by name. No match is an EVENT_UNKNOWN error.
func (r *Registry) Match(pattern string) ([]Event, error) {
	if !IsPattern(pattern) {
		ev, ok := r.Get(pattern)
		if !ok {
			return nil, ErrUnknown(pattern)
		}
		return []Event{ev}, nil
	}

	g, err := glob.Compile(pattern)
	if err != nil {
		return nil, oops.Code(CodeEventUnknown).
			With("event", pattern).
			Wrapf(err, "invalid event pattern %q", pattern)
	}

	var matches []Event
	for _, ev := range r.All() {
		if g.Match(ev.Name) {
			matches = append(matches, ev)
		}
	}
	if len(matches) == 0 {
		return nil, ErrUnknown(pattern)
	}
	return matches, nil
}

// IsPattern reports whether name contains glob metacharacters.
func IsPattern(name string) bool {
	return strings.ContainsAny(name, "*?[{")
}

// ValidateName checks that name is usable as an event name: lowercase
// letters, digits and underscores, starting with a letter, and not ending
// in a reserved outcome suffix.
func ValidateName(name string) error {
	if name == "" {
		return ErrInvalid(name, "name cannot be empty")
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case i > 0 && (r >= '0' && r <= '9' || r == '_'):
		default:
			return ErrInvalid(name, "name must be lowercase letters, digits and underscores, starting with a letter")
		}
	}
	if _, outcome := ParseTag(name); outcome != OutcomeHappened {
		return ErrInvalid(name, "name ends with a reserved outcome suffix")
	}
	return nil
}
