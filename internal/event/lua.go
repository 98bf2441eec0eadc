// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Lifefork Contributors

package event

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/samber/oops"
	lua "github.com/yuin/gopher-lua"

	"github.com/lifefork/lifefork/internal/config"
	"github.com/lifefork/lifefork/internal/world"
)

// LuaTimeout bounds a single script invocation.
const LuaTimeout = 250 * time.Millisecond

// luaEntryPoint is the global every custom event script must define.
const luaEntryPoint = "apply"

// safeLibrary represents a Lua library that is safe to load in sandboxed state.
type safeLibrary struct {
	name string
	fn   lua.LGFunction
}

// defaultSafeLibraries returns the libraries scripts may use.
// Blocked: os, io, debug, package.
func defaultSafeLibraries() []safeLibrary {
	return []safeLibrary{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	}
}

// unsafeBaseFunctions are base library functions that reach the filesystem
// or compile arbitrary code.
var unsafeBaseFunctions = []string{"dofile", "loadfile", "loadstring", "load"}

// StateFactory creates sandboxed Lua states with only safe libraries.
type StateFactory struct {
	libraries []safeLibrary
}

// NewStateFactory creates a new state factory.
func NewStateFactory() *StateFactory {
	return &StateFactory{libraries: defaultSafeLibraries()}
}

// NewState creates a fresh sandboxed Lua state bound to ctx.
func (f *StateFactory) NewState(ctx context.Context) (*lua.LState, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	for _, lib := range f.libraries {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.fn),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, oops.With("library", lib.name).Wrapf(err, "open library %s", lib.name)
		}
	}
	for _, fn := range unsafeBaseFunctions {
		L.SetGlobal(fn, lua.LNil)
	}

	L.SetContext(ctx)
	return L, nil
}

// luaTransition runs a custom event script. Each call gets a fresh state so
// scripts cannot carry globals from one world to the next.
type luaTransition struct {
	name    string
	code    string
	factory *StateFactory
	timeout time.Duration
}

// NewLuaEvent compiles a custom event declared in the settings. A script
// that does not load, or that does not define apply, is a configuration
// error.
func NewLuaEvent(ce config.CustomEvent) (Event, error) {
	if err := ValidateName(ce.Name); err != nil {
		return Event{}, config.ErrInvalid("custom_events.name", "%v", err)
	}

	t := &luaTransition{
		name:    ce.Name,
		code:    ce.Script,
		factory: NewStateFactory(),
		timeout: LuaTimeout,
	}
	if err := t.check(); err != nil {
		return Event{}, oops.Code(config.CodeConfigInvalid).
			With("field", "custom_events.script").
			With("event", ce.Name).
			Wrapf(err, "compile custom event %s", ce.Name)
	}

	kind := Kind(ce.Kind)
	if kind == "" {
		kind = KindEvent
	}
	return Event{
		Name:        ce.Name,
		Description: ce.Description,
		Kind:        kind,
		Transition:  t,
		Source:      "lua:" + ce.Name,
		BaseRate:    ce.BaseRate,
	}, nil
}

// NewLuaEvents compiles every custom event, stopping at the first failure.
func NewLuaEvents(ces []config.CustomEvent) ([]Event, error) {
	events := make([]Event, 0, len(ces))
	for _, ce := range ces {
		ev, err := NewLuaEvent(ce)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, nil
}

func (t *luaTransition) check() error {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	L, err := t.factory.NewState(ctx)
	if err != nil {
		return err
	}
	defer L.Close()

	if err := L.DoString(t.code); err != nil {
		return err
	}
	if L.GetGlobal(luaEntryPoint).Type() != lua.LTFunction {
		return oops.With("event", t.name).Errorf("script does not define function %s(world)", luaEntryPoint)
	}
	return nil
}

// Apply calls apply(world, global) and applies the returned overrides.
// Script failures leave the world unchanged apart from a _no_change token.
func (t *luaTransition) Apply(w world.State, global config.GlobalConfig, _ config.UserConfig) world.State {
	mutate, err := t.run(w, global)
	if err != nil {
		slog.Warn("custom event script failed",
			"event", t.name,
			"world_id", w.ID,
			"error", err)
		return noChange(w, t.name)
	}
	return w.With(t.name, mutate)
}

func (t *luaTransition) run(w world.State, global config.GlobalConfig) (func(*world.State), error) {
	ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
	defer cancel()

	L, err := t.factory.NewState(ctx)
	if err != nil {
		return nil, err
	}
	defer L.Close()

	if err := L.DoString(t.code); err != nil {
		return nil, err
	}
	if err := L.CallByParam(lua.P{
		Fn:      L.GetGlobal(luaEntryPoint),
		NRet:    1,
		Protect: true,
	}, worldTable(L, w), globalTable(L, global)); err != nil {
		return nil, err
	}

	ret := L.Get(-1)
	L.Pop(1)
	return parseOverrides(ret)
}

func worldTable(L *lua.LState, w world.State) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "id", lua.LNumber(w.ID))
	L.SetField(t, "name", lua.LString(w.Name))
	L.SetField(t, "current_income", lua.LNumber(w.CurrentIncome))
	L.SetField(t, "current_loan", lua.LNumber(w.CurrentLoan))
	L.SetField(t, "stock_value", lua.LNumber(w.StockValue))
	L.SetField(t, "cash", lua.LNumber(w.Cash))
	L.SetField(t, "bankrupt", lua.LBool(w.Bankrupt))
	L.SetField(t, "family_status", lua.LString(w.FamilyStatus))
	L.SetField(t, "children", lua.LNumber(w.Children))
	L.SetField(t, "health_status", lua.LString(w.HealthStatus))
	L.SetField(t, "career_length", lua.LNumber(w.CareerLength))
	L.SetField(t, "property_type", lua.LString(w.PropertyType))
	L.SetField(t, "property_rooms", lua.LNumber(w.PropertyRooms))
	L.SetField(t, "property_price", lua.LNumber(w.PropertyPrice))
	L.SetField(t, "highlight", lua.LBool(w.Highlight))
	L.SetField(t, "has_insurance", lua.LBool(w.Metadata.HasInsurance))
	L.SetField(t, "employment", lua.LString(w.Metadata.Employment))
	L.SetField(t, "layer", lua.LNumber(LayersElapsed(w.TrajectoryEvents)))
	return t
}

func globalTable(L *lua.LState, g config.GlobalConfig) *lua.LTable {
	t := L.NewTable()
	L.SetField(t, "mortgage_rate", lua.LNumber(g.MortgageRate))
	L.SetField(t, "interest_rate", lua.LNumber(g.InterestRate))
	L.SetField(t, "risk_factor", lua.LNumber(g.RiskFactor))
	L.SetField(t, "monthly_loan_payment", lua.LNumber(g.MonthlyLoanPayment))
	return t
}

type setter func(*world.State)

var numericOverrides = map[string]func(*world.State, float64){
	"current_income": func(s *world.State, v float64) { s.CurrentIncome = v },
	"current_loan":   func(s *world.State, v float64) { s.CurrentLoan = v },
	"stock_value":    func(s *world.State, v float64) { s.StockValue = v },
	"cash":           func(s *world.State, v float64) { s.Cash = v },
	"children":       func(s *world.State, v float64) { s.Children = int(v) },
	"career_length":  func(s *world.State, v float64) { s.CareerLength = int(v) },
	"property_rooms": func(s *world.State, v float64) { s.PropertyRooms = int(v) },
	"property_price": func(s *world.State, v float64) { s.PropertyPrice = v },
}

var stringOverrides = map[string]func(*world.State, string) error{
	"family_status": func(s *world.State, v string) error {
		fs := world.FamilyStatus(v)
		if !fs.Valid() {
			return oops.With("field", "family_status").Errorf("unknown family_status %q", v)
		}
		s.FamilyStatus = fs
		return nil
	},
	"health_status": func(s *world.State, v string) error {
		hs := world.HealthStatus(v)
		if !hs.Valid() {
			return oops.With("field", "health_status").Errorf("unknown health_status %q", v)
		}
		s.HealthStatus = hs
		return nil
	},
	"employment": func(s *world.State, v string) error {
		switch e := world.Employment(v); e {
		case world.EmploymentUnknown, world.EmploymentEmployed, world.EmploymentUnemployed:
			s.Metadata.Employment = e
			return nil
		default:
			return oops.With("field", "employment").Errorf("unknown employment %q", v)
		}
	},
	"property_type": func(s *world.State, v string) error {
		s.PropertyType = v
		return nil
	},
	"note": func(s *world.State, v string) error {
		if len(v) > world.MaxNoteLength {
			return oops.With("field", "note").Errorf("note exceeds %d characters", world.MaxNoteLength)
		}
		s.Metadata.Notes = append(s.Metadata.Notes, v)
		return nil
	},
}

// parseOverrides validates a script's return value. Nil means "no field
// changes"; anything else must be a table of known keys.
func parseOverrides(ret lua.LValue) (func(*world.State), error) {
	if ret.Type() == lua.LTNil {
		return nil, nil
	}
	table, ok := ret.(*lua.LTable)
	if !ok {
		return nil, oops.Errorf("apply returned %s, want table or nil", ret.Type())
	}

	var (
		setters []setter
		errs    []error
	)
	table.ForEach(func(k, v lua.LValue) {
		key, ok := k.(lua.LString)
		if !ok {
			errs = append(errs, oops.Errorf("override key %s is not a string", k.String()))
			return
		}
		name := string(key)
		if set, ok := numericOverrides[name]; ok {
			n, ok := v.(lua.LNumber)
			if !ok {
				errs = append(errs, oops.With("field", name).Errorf("%s: want number, got %s", name, v.Type()))
				return
			}
			if f := float64(n); math.IsNaN(f) || math.IsInf(f, 0) {
				errs = append(errs, oops.With("field", name).Errorf("%s: want a finite number, got %v", name, f))
				return
			}
			setters = append(setters, func(s *world.State) { set(s, float64(n)) })
			return
		}
		if set, ok := stringOverrides[name]; ok {
			str, ok := v.(lua.LString)
			if !ok {
				errs = append(errs, oops.With("field", name).Errorf("%s: want string, got %s", name, v.Type()))
				return
			}
			// Validate against a scratch state so a bad value rejects the
			// whole override table.
			var scratch world.State
			if err := set(&scratch, string(str)); err != nil {
				errs = append(errs, err)
				return
			}
			setters = append(setters, func(s *world.State) { _ = set(s, string(str)) })
			return
		}
		errs = append(errs, oops.With("field", name).Errorf("unknown override %q", name))
	})
	if len(errs) > 0 {
		return nil, errs[0]
	}

	return func(s *world.State) {
		for _, set := range setters {
			set(s)
		}
	}, nil
}
