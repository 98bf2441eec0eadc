// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package sim

import (
	"github.com/lifefork/lifefork/internal/config"
	"github.com/lifefork/lifefork/internal/lineage"
	"github.com/lifefork/lifefork/internal/world"
)

// NewInitialWorld builds the root world of a scenario from the user's
// configuration. It takes the allocator's next id; the name is the
// configured one, reserved so no spin-off repeats it, or else the next
// curated name.
func NewInitialWorld(user config.UserConfig, alloc *lineage.Allocator) world.State {
	id := alloc.NextID()
	name := user.Name
	if name != "" {
		alloc.Reserve(name)
	} else {
		name = alloc.NextName()
	}

	w := world.State{
		ID:            id,
		Name:          name,
		CurrentIncome: user.Income,
		StockValue:    user.StartingStock,
		Cash:          user.StartingCash,
		FamilyStatus:  user.InitialFamilyStatus(),
		Children:      user.Children,
		HealthStatus:  user.InitialHealthStatus(),
		CareerLength:  user.InitialCareerLength(),
		PropertyType:  user.Property.Type,
		PropertyRooms: user.Property.Rooms,
		PropertyPrice: user.Property.Price,
		Highlight:     user.InitialHighlight(),
	}
	if len(user.Extras) > 0 {
		w.Metadata.Extra = map[string]any{"user_extras": user.Extras}
	}
	return w
}
