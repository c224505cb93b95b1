package script

import (
	"sort"
	"strconv"

	lua "github.com/yuin/gopher-lua"
)

// ToGo converts a Lua value to plain Go data. Whole numbers become int,
// pure sequences become []any and other tables map[string]any. In a mixed
// table the integer keys become decimal strings, so no entry is lost.
func ToGo(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		f := float64(val)
		if f == float64(int(f)) {
			return int(f)
		}
		return f
	case lua.LString:
		return string(val)
	case *lua.LTable:
		n, keys := val.MaxN(), 0
		val.ForEach(func(lua.LValue, lua.LValue) { keys++ })
		if n > 0 && keys == n {
			arr := make([]any, 0, n)
			for i := 1; i <= n; i++ {
				arr = append(arr, ToGo(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			switch key := k.(type) {
			case lua.LString:
				m[string(key)] = ToGo(v)
			case lua.LNumber:
				if f := float64(key); f == float64(int(f)) {
					m[strconv.Itoa(int(f))] = ToGo(v)
				}
			}
		})
		return m
	default:
		return nil
	}
}

// ToLua converts Go data produced by ToGo (or decoded from JSON) back into
// a Lua value.
func ToLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case int:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case string:
		return lua.LString(val)
	case []any:
		t := L.NewTable()
		for _, e := range val {
			t.Append(ToLua(L, e))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t.RawSetString(k, ToLua(L, val[k]))
		}
		return t
	default:
		return lua.LNil
	}
}
