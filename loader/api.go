package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// constructorKinds are the curried definition constructors, keyed by the
// global name content files call.
var constructorKinds = []string{
	"Skill", "Role", "Item", "Recipe", "Merchant", "Faction",
	"Area", "Transition", "Location", "Creature",
}

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Campaign { id = "...", name = "...", ... }
	L.SetGlobal("Campaign", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		if coll.manifest != nil {
			L.RaiseError("Campaign{} defined twice")
		}
		coll.manifest = tbl
		return 0
	}))

	// Kind "id" { ... }: Kind("id") returns a function that takes a table.
	for _, kind := range constructorKinds {
		L.SetGlobal(kind, curried(L, coll, kind))
	}
}

func curried(L *lua.LState, coll *collector, kind string) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.OptTable(1, L.NewTable())
			coll.defs = append(coll.defs, rawDef{kind: kind, id: id, file: coll.file, table: tbl})
			return 0
		}))
		return 1
	})
}

func registerHelpers(L *lua.LState) {
	// Points { {x, y}, ... } normalises coordinate pairs to {x=, y=} tables.
	L.SetGlobal("Points", L.NewFunction(func(L *lua.LState) int {
		in := L.CheckTable(1)
		out := L.NewTable()
		for i := 1; i <= in.MaxN(); i++ {
			pair, ok := in.RawGetInt(i).(*lua.LTable)
			if !ok {
				L.ArgError(1, "Points expects a list of {x, y} pairs")
			}
			p := L.NewTable()
			p.RawSetString("x", pointCoord(pair, 1, "x"))
			p.RawSetString("y", pointCoord(pair, 2, "y"))
			out.Append(p)
		}
		L.Push(out)
		return 1
	}))

	// Prereqs { stats = {...}, skills = {...}, ... } marks a requirement list.
	L.SetGlobal("Prereqs", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		tbl.RawSetString("__prereqs", lua.LTrue)
		L.Push(tbl)
		return 1
	}))

	// Stat("Str") validates a stat name at load time and returns it.
	L.SetGlobal("Stat", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		s, err := parseStat(name)
		if err != nil {
			L.ArgError(1, err.Error())
		}
		L.Push(lua.LString(s))
		return 1
	}))
}

func pointCoord(pair *lua.LTable, idx int, key string) lua.LValue {
	if v := pair.RawGetInt(idx); v != lua.LNil {
		return v
	}
	return pair.RawGetString(key)
}
