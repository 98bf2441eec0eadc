// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package world

// Record is the flat JSON shape of a world inside a layer snapshot. It
// mirrors State field by field and carries the layer index as timestamp.
type Record struct {
	ID               int64        `json:"id"`
	Name             string       `json:"name"`
	CurrentIncome    float64      `json:"current_income"`
	CurrentLoan      float64      `json:"current_loan"`
	StockValue       float64      `json:"stock_value"`
	Cash             float64      `json:"cash"`
	FamilyStatus     FamilyStatus `json:"family_status"`
	Children         int          `json:"children"`
	HealthStatus     HealthStatus `json:"health_status"`
	CareerLength     int          `json:"career_length"`
	PropertyType     string       `json:"property_type"`
	PropertyRooms    int          `json:"property_rooms"`
	PropertyPrice    float64      `json:"property_price"`
	Bankrupt         bool         `json:"bankrupt"`
	Highlight        bool         `json:"highlight"`
	Metadata         Metadata     `json:"metadata"`
	TrajectoryEvents []string     `json:"trajectory_events"`
	Timestamp        int          `json:"timestamp"`
}

// NewRecord converts a state into its snapshot record for the given layer.
func NewRecord(s State, layer int) Record {
	events := append([]string{}, s.TrajectoryEvents...)
	return Record{
		ID:               s.ID,
		Name:             s.Name,
		CurrentIncome:    s.CurrentIncome,
		CurrentLoan:      s.CurrentLoan,
		StockValue:       s.StockValue,
		Cash:             s.Cash,
		FamilyStatus:     s.FamilyStatus,
		Children:         s.Children,
		HealthStatus:     s.HealthStatus,
		CareerLength:     s.CareerLength,
		PropertyType:     s.PropertyType,
		PropertyRooms:    s.PropertyRooms,
		PropertyPrice:    s.PropertyPrice,
		Bankrupt:         s.Bankrupt,
		Highlight:        s.Highlight,
		Metadata:         s.Metadata.Clone(),
		TrajectoryEvents: events,
		Timestamp:        layer,
	}
}

// NewRecords converts a whole population.
func NewRecords(states []State, layer int) []Record {
	out := make([]Record, 0, len(states))
	for _, s := range states {
		out = append(out, NewRecord(s, layer))
	}
	return out
}

// State converts the record back into a world state. The timestamp is
// dropped; an empty trajectory comes back as nil.
func (r Record) State() State {
	var events []string
	if len(r.TrajectoryEvents) > 0 {
		events = append(events, r.TrajectoryEvents...)
	}
	return State{
		ID:               r.ID,
		Name:             r.Name,
		CurrentIncome:    r.CurrentIncome,
		CurrentLoan:      r.CurrentLoan,
		StockValue:       r.StockValue,
		Cash:             r.Cash,
		Bankrupt:         r.Bankrupt,
		FamilyStatus:     r.FamilyStatus,
		Children:         r.Children,
		HealthStatus:     r.HealthStatus,
		CareerLength:     r.CareerLength,
		PropertyType:     r.PropertyType,
		PropertyRooms:    r.PropertyRooms,
		PropertyPrice:    r.PropertyPrice,
		Highlight:        r.Highlight,
		TrajectoryEvents: events,
		Metadata:         r.Metadata.Clone(),
	}
}
