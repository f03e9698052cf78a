package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI installs the content constructors as Lua globals.
func registerAPI(L *lua.LState, coll *collector) {
	// Game { title = "...", start = "..." }
	L.SetGlobal("Game", L.NewFunction(func(L *lua.LState) int {
		coll.game = L.CheckTable(1)
		return 0
	}))

	// Location "id" { ... } is curried: Location("id") returns a function
	// that takes the definition table.
	L.SetGlobal("Location", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			coll.locations = append(coll.locations, rawLocation{id: id, table: L.CheckTable(1)})
			return 0
		}))
		return 1
	}))
}
