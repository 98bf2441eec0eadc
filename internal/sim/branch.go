// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package sim

import (
	"math/rand/v2"

	"github.com/lifefork/lifefork/internal/config"
	"github.com/lifefork/lifefork/internal/event"
	"github.com/lifefork/lifefork/internal/lineage"
	"github.com/lifefork/lifefork/internal/world"
)

// Estimator returns the probability in [0, 1] that ev happens to w during
// layer.
type Estimator interface {
	Probability(ev event.Event, w world.State, global config.GlobalConfig, user config.UserConfig, layer int) float64
}

// Brancher decides what a sampled event does to each world.
type Brancher struct {
	Model             Estimator
	Allocator         *lineage.Allocator
	Rand              *rand.Rand
	Policy            config.ForkPolicy
	HighlightSpinoffs bool
}

// Branch applies ev to w and returns the resulting worlds, the first of
// which keeps w's identity.
//
// An event with probability 0 never happens; one with probability 1 always
// does. In between, a choice forks into a happened world and a not-chosen
// spin-off when the fork policy allows it and allowFork is set; everything
// else is settled by one weighted coin flip.
func (b *Brancher) Branch(w world.State, ev event.Event, global config.GlobalConfig, user config.UserConfig, layer int, allowFork bool) ([]world.State, error) {
	p := b.Model.Probability(ev, w, global, user, layer)

	switch {
	case p <= 0:
		return []world.State{missed(w, ev)}, nil
	case p >= 1:
		return []world.State{ev.Apply(w, global, user)}, nil
	}

	if ev.IsChoice() && allowFork && b.forks(w) {
		if b.Allocator == nil {
			return nil, ErrAllocatorMissing(ev.Name, w.ID)
		}
		happened := ev.Apply(w, global, user)
		id, name := b.Allocator.Next()
		spinoff := w.With(event.Tag(ev.Name, event.OutcomeNotChosen), func(s *world.State) {
			s.ID = id
			s.Name = name
			s.Highlight = b.HighlightSpinoffs && w.Highlight
		})
		return []world.State{happened, spinoff}, nil
	}

	if b.Rand.Float64() < p {
		return []world.State{ev.Apply(w, global, user)}, nil
	}
	return []world.State{missed(w, ev)}, nil
}

// WouldFork reports whether an uncertain choice would fork w under the
// current policy. The driver uses it to enforce the population cap.
func (b *Brancher) WouldFork(w world.State, ev event.Event) bool {
	return ev.IsChoice() && b.forks(w)
}

func (b *Brancher) forks(w world.State) bool {
	switch b.Policy {
	case config.ForkAlways:
		return true
	case config.ForkHighlighted, "":
		return w.Highlight
	default:
		return false
	}
}

// missed records an event that did not happen.
func missed(w world.State, ev event.Event) world.State {
	if ev.IsChoice() {
		return w.With(event.Tag(ev.Name, event.OutcomeNotChosen), nil)
	}
	return w.With(event.Tag(ev.Name, event.OutcomeSkipped), nil)
}
