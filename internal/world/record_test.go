// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package world

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_RoundTrip(t *testing.T) {
	s := sampleState()
	s.Highlight = true
	s.Bankrupt = true
	s.PropertyType = "apartment"
	s.PropertyRooms = 3
	s.PropertyPrice = 250000
	s.Metadata.HasInsurance = true
	s.Metadata.Employment = EmploymentUnemployed
	s.Metadata.Notes = []string{"moved abroad"}

	data, err := json.Marshal(NewRecord(s, 7))
	require.NoError(t, err)

	var rec Record
	require.NoError(t, json.Unmarshal(data, &rec))

	assert.Equal(t, 7, rec.Timestamp)
	assert.Equal(t, s, rec.State())
}

func TestRecord_FlatShape(t *testing.T) {
	data, err := json.Marshal(NewRecord(sampleState(), 2))
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))

	for _, key := range []string{
		"id", "name", "current_income", "current_loan", "stock_value", "cash",
		"family_status", "children", "health_status", "career_length",
		"property_type", "property_rooms", "property_price", "bankrupt",
		"highlight", "metadata", "trajectory_events", "timestamp",
	} {
		assert.Contains(t, raw, key)
	}
	assert.Equal(t, float64(2), raw["timestamp"])
}

func TestRecord_EmptyTrajectoryEncodesAsArray(t *testing.T) {
	s := sampleState()
	s.TrajectoryEvents = nil

	data, err := json.Marshal(NewRecord(s, 0))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"trajectory_events":[]`)

	var rec Record
	require.NoError(t, json.Unmarshal(data, &rec))
	assert.Nil(t, rec.State().TrajectoryEvents)
}

func TestNewRecords(t *testing.T) {
	a := sampleState()
	b := sampleState()
	b.ID = 4
	b.Name = "Diana"

	recs := NewRecords([]State{a, b}, 5)
	require.Len(t, recs, 2)
	assert.Equal(t, int64(3), recs[0].ID)
	assert.Equal(t, "Diana", recs[1].Name)
	assert.Equal(t, 5, recs[1].Timestamp)
}
