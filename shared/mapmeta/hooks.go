package mapmeta

import "time"

// ScriptHost is what a map script may call back into.
type ScriptHost interface {
	BroadcastChat(msg string)
	ScriptError(hook string, err error)
}

// ArenaHooks are the optional per-map callbacks. A nil field means the map
// does not provide that hook.
type ArenaHooks struct {
	Begin func()
	End   func()
	// Warning returns the countdown warning text, or false to suppress it.
	Warning   func(seconds int) (string, bool)
	Heartbeat func(now time.Time)
	// BlockDestroy returns false to protect a voxel from explosions.
	BlockDestroy func(x, y, z int) bool
}

// HookProvider is implemented by map metadata that carries scripted hooks.
// It is resolved once per map load.
type HookProvider interface {
	ArenaHooks(host ScriptHost) (ArenaHooks, error)
}

// StaticHooks adapts a fixed set of Go callbacks to HookProvider.
type StaticHooks ArenaHooks

func (h StaticHooks) ArenaHooks(ScriptHost) (ArenaHooks, error) {
	return ArenaHooks(h), nil
}
