package scripting

import (
	"sort"

	lua "github.com/yuin/gopher-lua"
)

// toLValue converts plain Go values to Lua. Unsupported types become nil.
func toLValue(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return x
	case bool:
		return lua.LBool(x)
	case int:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case string:
		return lua.LString(x)
	case []string:
		t := L.NewTable()
		for _, s := range x {
			t.Append(lua.LString(s))
		}
		return t
	case map[string]int:
		t := L.NewTable()
		for k, n := range x {
			t.RawSetString(k, lua.LNumber(n))
		}
		return t
	case map[string]any:
		t := L.NewTable()
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			t.RawSetString(k, toLValue(L, x[k]))
		}
		return t
	}
	return lua.LNil
}

// Number reads a Lua number.
func Number(v lua.LValue) (float64, bool) {
	n, ok := v.(lua.LNumber)
	return float64(n), ok
}

// IntMap reads a table of string keys to numbers, such as {atk = -1}.
// Non-numeric entries are skipped; a non-table yields nil.
func IntMap(v lua.LValue) map[string]int {
	t, ok := v.(*lua.LTable)
	if !ok {
		return nil
	}
	out := make(map[string]int)
	t.ForEach(func(k, val lua.LValue) {
		ks, kok := k.(lua.LString)
		n, nok := val.(lua.LNumber)
		if kok && nok {
			out[string(ks)] = int(n)
		}
	})
	return out
}

// Field reads t[name] from a table value, or nil.
func Field(v lua.LValue, name string) lua.LValue {
	t, ok := v.(*lua.LTable)
	if !ok {
		return lua.LNil
	}
	return t.RawGetString(name)
}
