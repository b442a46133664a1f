package scripting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/battlesim/internal/game/dice"
)

// Manager owns one sandboxed VM holding every loaded script and dispatches
// hook calls into it. Calls are serialised; each call gets a fresh
// instruction budget.
type Manager struct {
	mu     sync.Mutex
	L      *lua.LState
	cancel context.CancelFunc
	limit  int
	roller *dice.Roller
	logger *zap.Logger
}

// NewManager creates a Manager with no scripts loaded.
//
// Precondition: roller and logger must be non-nil.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting.NewManager: roller must not be nil")
	}
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{roller: roller, logger: logger}
}

// Load replaces the VM with a new one running every *.lua file in scriptDir
// in lexicographic order.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: on error the previous VM, if any, is left in place.
func (m *Manager) Load(scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q: %w", scriptDir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			files = append(files, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(files)

	return m.install(instLimit, func(L *lua.LState) error {
		for _, path := range files {
			if err := L.DoFile(path); err != nil {
				return fmt.Errorf("scripting: loading %q: %w", path, err)
			}
		}
		return nil
	})
}

// LoadString replaces the VM with one that has run src.
func (m *Manager) LoadString(src string, instLimit int) error {
	return m.install(instLimit, func(L *lua.LState) error {
		if err := L.DoString(src); err != nil {
			return fmt.Errorf("scripting: loading source: %w", err)
		}
		return nil
	})
}

func (m *Manager) install(instLimit int, run func(*lua.LState) error) error {
	L, cancel := NewSandboxedState(instLimit)
	m.RegisterModules(L)
	if err := run(L); err != nil {
		cancel()
		L.Close()
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
	m.L, m.cancel, m.limit = L, cancel, instLimit
	return nil
}

// HasHook reports whether a global function named hook is defined.
func (m *Manager) HasHook(hook string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.L == nil {
		return false
	}
	_, ok := m.L.GetGlobal(hook).(*lua.LFunction)
	return ok
}

// CallHook calls the named Lua global with args converted from Go values
// (bool, int, float64, string, []string, map[string]int, map[string]any, or
// lua.LValue). Returns (LNil, nil) if no VM is loaded or the hook is not
// defined. Lua runtime errors, including an exhausted instruction budget,
// are logged at Warn level and never propagated.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(hook string, args ...any) (lua.LValue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.L == nil {
		return lua.LNil, nil
	}
	L := m.L
	fn, ok := L.GetGlobal(hook).(*lua.LFunction)
	if !ok {
		return lua.LNil, nil
	}

	largs := make([]lua.LValue, len(args))
	for i, a := range args {
		largs[i] = toLValue(L, a)
	}

	m.cancel()
	m.cancel = armLimit(L, m.limit)
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, largs...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}
	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// Close releases the VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

func (m *Manager) closeLocked() {
	if m.L == nil {
		return
	}
	m.cancel()
	m.L.Close()
	m.L, m.cancel = nil, nil
}
