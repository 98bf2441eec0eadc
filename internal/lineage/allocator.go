// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

// Package lineage hands out world identities.
package lineage

import (
	"strconv"
	"sync"

	"github.com/lifefork/lifefork/internal/world"
)

// fallbackPrefix prefixes numbered names once the curated list runs out.
const fallbackPrefix = "World_"

// Allocator dispenses world ids and display names. Ids increase
// monotonically from zero; names come from a curated list, then
// World_1, World_2 and so on. Nothing is ever handed out twice.
//
// An Allocator is safe for concurrent use, but each scenario should own
// its own so that runs stay reproducible.
type Allocator struct {
	mu       sync.Mutex
	nextID   int64
	names    []string
	nameIdx  int
	fallback int
	used     map[string]bool
}

// New creates an allocator over the curated names.
func New() *Allocator {
	return NewWithNames(CuratedNames)
}

// NewWithNames creates an allocator over a custom name list.
func NewWithNames(names []string) *Allocator {
	return &Allocator{
		names: append([]string(nil), names...),
		used:  make(map[string]bool),
	}
}

// NextID returns the next unused id.
func (a *Allocator) NextID() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	id := a.nextID
	a.nextID++
	return id
}

// NextName returns the next name that has been neither dispensed nor
// reserved.
func (a *Allocator) NextName() string {
	a.mu.Lock()
	defer a.mu.Unlock()

	for a.nameIdx < len(a.names) {
		name := a.names[a.nameIdx]
		a.nameIdx++
		if !a.used[name] {
			a.used[name] = true
			return name
		}
	}
	for {
		a.fallback++
		name := fallbackPrefix + strconv.Itoa(a.fallback)
		if !a.used[name] {
			a.used[name] = true
			return name
		}
	}
}

// Next returns a fresh id and name pair.
func (a *Allocator) Next() (int64, string) {
	return a.NextID(), a.NextName()
}

// EnsureAtLeast moves the id counter forward so the next id is at least id.
// It never moves the counter back.
func (a *Allocator) EnsureAtLeast(id int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if id > a.nextID {
		a.nextID = id
	}
}

// Reserve marks name as taken so NextName never returns it.
func (a *Allocator) Reserve(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.used[name] = true
}

// Seed prepares the allocator for an existing population: ids continue
// after the largest one present and every present name is reserved.
func (a *Allocator) Seed(worlds []world.State) {
	for _, w := range worlds {
		a.EnsureAtLeast(w.ID + 1)
		a.Reserve(w.Name)
	}
}

// Issued returns how many ids have been consumed, including skipped ones.
func (a *Allocator) Issued() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.nextID
}
