// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package event

import (
	"bytes"
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/lifefork/lifefork/internal/config"
	"github.com/lifefork/lifefork/internal/world"
)

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func luaEvent(t *testing.T, script string) Event {
	t.Helper()
	ev, err := NewLuaEvent(config.CustomEvent{Name: "lottery", Kind: "event", Script: script})
	require.NoError(t, err)
	return ev
}

func TestStateFactory_Sandbox(t *testing.T) {
	L, err := NewStateFactory().NewState(context.Background())
	require.NoError(t, err)
	defer L.Close()

	for _, name := range []string{"os", "io", "debug", "package", "dofile", "loadfile", "loadstring", "load"} {
		assert.Equal(t, lua.LTNil, L.GetGlobal(name).Type(), name)
	}
	for _, name := range []string{"string", "table", "math", "print"} {
		assert.NotEqual(t, lua.LTNil, L.GetGlobal(name).Type(), name)
	}
}

func TestNewLuaEvent(t *testing.T) {
	rate := 0.01
	ev, err := NewLuaEvent(config.CustomEvent{
		Name:        "lottery",
		Description: "Win the lottery.",
		Kind:        "choice",
		BaseRate:    &rate,
		Script:      "function apply(w) return {cash = w.cash + 1000000} end",
	})
	require.NoError(t, err)

	assert.Equal(t, "lottery", ev.Name)
	assert.Equal(t, KindChoice, ev.Kind)
	assert.Equal(t, "lua:lottery", ev.Source)
	require.NotNil(t, ev.BaseRate)
	assert.InDelta(t, 0.01, *ev.BaseRate, 1e-12)
}

func TestNewLuaEvent_ConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		ce   config.CustomEvent
	}{
		{"syntax error", config.CustomEvent{Name: "broken", Script: "function apply(w"}},
		{"missing apply", config.CustomEvent{Name: "quiet", Script: "x = 1"}},
		{"bad name", config.CustomEvent{Name: "Bad Name", Script: "function apply(w) end"}},
		{"io blocked at load", config.CustomEvent{Name: "reader", Script: "io.open('x')\nfunction apply(w) end"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLuaEvent(tt.ce)
			require.Error(t, err)
			assert.True(t, config.IsInvalid(err))
		})
	}
}

func TestLuaTransition_AppliesOverrides(t *testing.T) {
	ev := luaEvent(t, `
function apply(w, g)
  return {
    cash = w.cash + 1000,
    children = w.children + 1,
    family_status = "married",
    note = "won at rate " .. g.mortgage_rate,
  }
end`)

	start := baseWorld()
	out := ev.Apply(start, testGlobal, config.UserConfig{})

	assert.Equal(t, "lottery", out.LastEvent())
	assert.InDelta(t, 11000, out.Cash, 1e-9)
	assert.Equal(t, 1, out.Children)
	assert.Equal(t, world.FamilyMarried, out.FamilyStatus)
	assert.Equal(t, []string{"won at rate 0.04"}, out.Metadata.Notes)
	assert.Empty(t, start.TrajectoryEvents)
}

func TestLuaTransition_NilReturnStillHappens(t *testing.T) {
	ev := luaEvent(t, "function apply(w) end")

	out := ev.Apply(baseWorld(), testGlobal, config.UserConfig{})
	assert.Equal(t, "lottery", out.LastEvent())
	assert.InDelta(t, 10000, out.Cash, 1e-9)
}

func TestLuaTransition_ClampsMoney(t *testing.T) {
	ev := luaEvent(t, "function apply(w) return {cash = -50} end")

	out := ev.Apply(baseWorld(), testGlobal, config.UserConfig{})
	assert.Zero(t, out.Cash)
}

func TestLuaTransition_FailuresAreNoChange(t *testing.T) {
	scripts := map[string]string{
		"runtime error":   "function apply(w) error('boom') end",
		"non-table":       "function apply(w) return 42 end",
		"unknown key":     "function apply(w) return {spaceship = 1} end",
		"wrong type":      "function apply(w) return {cash = 'lots'} end",
		"bad enum":        "function apply(w) return {health_status = 'immortal'} end",
		"infinite loop":   "function apply(w) while true do end end",
		"blocked library": "function apply(w) os.exit(1) end",
		"nan cash":        "function apply(w) return {cash = 0/0} end",
		"infinite income": "function apply(w) return {current_income = 1/0} end",
		"negative inf":    "function apply(w) return {children = -1/0} end",
	}
	for name, script := range scripts {
		t.Run(name, func(t *testing.T) {
			logs := captureLogs(t)
			ev := luaEvent(t, script)

			out := ev.Apply(baseWorld(), testGlobal, config.UserConfig{})
			assert.Equal(t, "lottery_no_change", out.LastEvent())
			assert.InDelta(t, 10000, out.Cash, 1e-9)
			assert.Contains(t, logs.String(), "custom event script failed")
		})
	}
}

func TestLuaTransition_NonFiniteOverrideNamesField(t *testing.T) {
	_, err := parseOverrides(func() lua.LValue {
		L := lua.NewState()
		defer L.Close()
		tbl := L.NewTable()
		L.SetField(tbl, "cash", lua.LNumber(math.NaN()))
		return tbl
	}())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "finite")

	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, "cash", oopsErr.Context()["field"])
}

func TestNewLuaEvents(t *testing.T) {
	evs, err := NewLuaEvents([]config.CustomEvent{
		{Name: "one", Script: "function apply(w) end"},
		{Name: "two", Kind: "choice", Script: "function apply(w) end"},
	})
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, KindEvent, evs[0].Kind)

	r, err := Extend(evs...)
	require.NoError(t, err)
	_, ok := r.Get("two")
	assert.True(t, ok)

	_, err = NewLuaEvents([]config.CustomEvent{{Name: "bad", Script: "nope("}})
	assert.Error(t, err)
}
