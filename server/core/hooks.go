package core

import (
	"time"

	"github.com/automoto/voxel-arena/server/arena"
	"github.com/automoto/voxel-arena/shared/mapmeta"
	"github.com/automoto/voxel-arena/shared/netconfig"
	"github.com/automoto/voxel-arena/shared/voxel"
	"github.com/yohamta/donburi"
)

// HookChain fans host events out to registered game mode hooks in
// registration order. For vetoable events the first hook returning false
// wins and later hooks are not consulted.
type HookChain struct {
	round  []arena.RoundAware
	maps   []arena.MapAware
	combat []arena.CombatAware
}

var _ arena.CombatAware = (*HookChain)(nil)

// Register adds h to every hook list whose interface it implements.
func (c *HookChain) Register(h any) {
	if r, ok := h.(arena.RoundAware); ok {
		c.round = append(c.round, r)
	}
	if m, ok := h.(arena.MapAware); ok {
		c.maps = append(c.maps, m)
	}
	if cb, ok := h.(arena.CombatAware); ok {
		c.combat = append(c.combat, cb)
	}
}

func (c *HookChain) OnWorldUpdate() {
	for _, h := range c.round {
		h.OnWorldUpdate()
	}
}

// OnMapChange stops at the first hook rejecting the map.
func (c *HookChain) OnMapChange(meta *mapmeta.Map, m voxel.Map) error {
	for _, h := range c.maps {
		if err := h.OnMapChange(meta, m); err != nil {
			return err
		}
	}
	return nil
}

// OnHit passes the damage returned by each hook on to the next one.
func (c *HookChain) OnHit(attacker, target donburi.Entity, damage float64, kind netconfig.KillType) (float64, bool) {
	for _, h := range c.combat {
		var ok bool
		if damage, ok = h.OnHit(attacker, target, damage, kind); !ok {
			return 0, false
		}
	}
	return damage, true
}

func (c *HookChain) OnKill(victim, killer donburi.Entity, kind netconfig.KillType) bool {
	for _, h := range c.combat {
		if !h.OnKill(victim, killer, kind) {
			return false
		}
	}
	return true
}

func (c *HookChain) OnGrenade(thrower donburi.Entity, fuse time.Duration) bool {
	for _, h := range c.combat {
		if !h.OnGrenade(thrower, fuse) {
			return false
		}
	}
	return true
}

func (c *HookChain) OnGrenadeThrown(thrower donburi.Entity, fuse time.Duration) {
	for _, h := range c.combat {
		h.OnGrenadeThrown(thrower, fuse)
	}
}

func (c *HookChain) OnFall(player donburi.Entity, damage float64) bool {
	for _, h := range c.combat {
		if !h.OnFall(player, damage) {
			return false
		}
	}
	return true
}

func (c *HookChain) OnBlockDestroy(player donburi.Entity, x, y, z int, action netconfig.BlockAction) bool {
	for _, h := range c.combat {
		if !h.OnBlockDestroy(player, x, y, z, action) {
			return false
		}
	}
	return true
}
