package mapmeta

import (
	"fmt"
	"time"

	"github.com/Shopify/go-lua"
)

// Global names looked up in a map script.
const (
	luaBegin        = "on_arena_begin"
	luaEnd          = "on_arena_end"
	luaWarning      = "on_arena_warning"
	luaHeartbeat    = "on_arena_heartbeat"
	luaBlockDestroy = "on_block_destroy"
)

// LuaScript is a map script written in Lua. Each call to ArenaHooks runs the
// chunk in a fresh state, so a map reload starts from clean globals.
type LuaScript struct {
	Name   string
	Source string
}

// NewLuaScript compiles src once to surface syntax errors at load time.
func NewLuaScript(name, src string) (*LuaScript, error) {
	state := lua.NewState()
	if err := lua.LoadString(state, src); err != nil {
		return nil, fmt.Errorf("compile %s: %w", name, err)
	}
	return &LuaScript{Name: name, Source: src}, nil
}

// ArenaHooks runs the script and binds the hook globals it defines. The
// function values are copied into the registry so later redefinitions of
// the globals do not change the bound hooks.
func (s *LuaScript) ArenaHooks(host ScriptHost) (ArenaHooks, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerHost(state, host)

	if err := lua.LoadString(state, s.Source); err != nil {
		return ArenaHooks{}, fmt.Errorf("compile %s: %w", s.Name, err)
	}
	if err := state.ProtectedCall(0, 0, 0); err != nil {
		return ArenaHooks{}, fmt.Errorf("run %s: %w", s.Name, err)
	}

	b := binder{state: state, host: host}
	var hooks ArenaHooks

	if b.resolve(luaBegin) {
		hooks.Begin = func() { b.call(luaBegin, 0) }
	}
	if b.resolve(luaEnd) {
		hooks.End = func() { b.call(luaEnd, 0) }
	}
	if b.resolve(luaWarning) {
		hooks.Warning = func(seconds int) (string, bool) {
			if !b.call(luaWarning, 1, seconds) {
				return "", false
			}
			defer state.Pop(1)
			if state.IsNil(-1) {
				return "", false
			}
			return state.ToString(-1)
		}
	}
	if b.resolve(luaHeartbeat) {
		hooks.Heartbeat = func(now time.Time) {
			b.call(luaHeartbeat, 0, float64(now.UnixNano())/float64(time.Second))
		}
	}
	if b.resolve(luaBlockDestroy) {
		hooks.BlockDestroy = func(x, y, z int) bool {
			if !b.call(luaBlockDestroy, 1, x, y, z) {
				return true
			}
			defer state.Pop(1)
			return state.IsNil(-1) || state.ToBoolean(-1)
		}
	}

	return hooks, nil
}

func registerHost(state *lua.State, host ScriptHost) {
	state.NewTable()
	lua.SetFunctions(state, []lua.RegistryFunction{
		{Name: "broadcast", Function: func(l *lua.State) int {
			host.BroadcastChat(lua.CheckString(l, 1))
			return 0
		}},
	}, 0)
	state.SetGlobal("arena")
}

type binder struct {
	state *lua.State
	host  ScriptHost
}

func registryKey(name string) string {
	return "mapmeta." + name
}

// resolve copies the global function name into the registry and reports
// whether it exists.
func (b binder) resolve(name string) bool {
	b.state.Global(name)
	if !b.state.IsFunction(-1) {
		b.state.Pop(1)
		return false
	}
	b.state.SetField(lua.RegistryIndex, registryKey(name))
	return true
}

// call invokes a resolved hook. On success the results are left on the
// stack for the caller to pop.
func (b binder) call(name string, results int, args ...any) bool {
	b.state.Field(lua.RegistryIndex, registryKey(name))
	for _, arg := range args {
		switch v := arg.(type) {
		case int:
			b.state.PushInteger(v)
		case float64:
			b.state.PushNumber(v)
		case string:
			b.state.PushString(v)
		}
	}
	if err := b.state.ProtectedCall(len(args), results, 0); err != nil {
		b.state.Pop(1)
		b.host.ScriptError(name, err)
		return false
	}
	return true
}
