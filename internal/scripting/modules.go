package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine.* Lua table into L:
//
//	engine.log(msg)        debug log line
//	engine.roll(expr)      total of a dice expression, e.g. "1d100"
//	engine.chance(pct)     true with pct percent probability
//
// Precondition: L must be from NewSandboxedState.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", L.NewFunction(func(L *lua.LState) int {
		m.logger.Debug("lua", zap.String("msg", L.CheckString(1)))
		return 0
	}))
	L.SetField(engine, "roll", L.NewFunction(func(L *lua.LState) int {
		res, err := m.roller.RollExpr(L.CheckString(1))
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		L.Push(lua.LNumber(res.Total()))
		return 1
	}))
	L.SetField(engine, "chance", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LBool(m.roller.Chance(L.CheckInt(1))))
		return 1
	}))
	L.SetGlobal("engine", engine)
}
