package arena

import (
	"time"

	"github.com/automoto/voxel-arena/shared/gamemath"
	"github.com/automoto/voxel-arena/shared/mapmeta"
	"github.com/automoto/voxel-arena/shared/messages"
	"github.com/automoto/voxel-arena/shared/netconfig"
	"github.com/automoto/voxel-arena/shared/voxel"
	"github.com/yohamta/donburi"
)

// RoundAware is driven once per world tick.
type RoundAware interface {
	OnWorldUpdate()
}

// MapAware is told about every map load. An error rejects the map.
type MapAware interface {
	OnMapChange(meta *mapmeta.Map, m voxel.Map) error
}

// CombatAware may veto or adjust combat events. Returning false refuses
// the event.
type CombatAware interface {
	// OnHit returns the damage to apply.
	OnHit(attacker, target donburi.Entity, damage float64, kind netconfig.KillType) (float64, bool)
	OnKill(victim, killer donburi.Entity, kind netconfig.KillType) bool
	OnGrenade(thrower donburi.Entity, fuse time.Duration) bool
	OnGrenadeThrown(thrower donburi.Entity, fuse time.Duration)
	OnFall(player donburi.Entity, damage float64) bool
	OnBlockDestroy(player donburi.Entity, x, y, z int, action netconfig.BlockAction) bool
}

var (
	_ RoundAware  = (*Session)(nil)
	_ MapAware    = (*Session)(nil)
	_ CombatAware = (*Session)(nil)
)

// OnHit refuses melee hits on teammates, and every hit before the round
// has started.
func (s *Session) OnHit(attacker, target donburi.Entity, damage float64, kind netconfig.KillType) (float64, bool) {
	a, t := s.PlayerData(attacker), s.PlayerData(target)
	if a != nil && t != nil && kind == netconfig.KillMelee && attacker != target && a.Team == t.Team {
		return 0, false
	}
	if !s.Round().Running {
		s.sendTo(attacker, netconfig.ChatError, "The round hasn't started yet")
		return 0, false
	}
	return damage, true
}

// OnKill remembers the killer and turns an unpinned grenade into a
// martyrdom explosion.
func (s *Session) OnKill(victim, killer donburi.Entity, kind netconfig.KillType) bool {
	p := s.PlayerData(victim)
	if p == nil {
		return false
	}
	now := s.clock.Now()
	if k := s.PlayerData(killer); k != nil && killer != victim && k.Team != p.Team {
		if td := s.Team(k.Team); td != nil {
			td.LastKiller = killer
		}
	}
	if p.Tool == netconfig.ToolGrenade && !p.GrenadeUnpin.IsZero() {
		fuse := max(0, s.cfg.GrenadeFuse-now.Sub(p.GrenadeUnpin))
		s.dropGrenade(victim, p.Position, gamemath.Vec3{}, fuse)
		s.extendTimerDelay(fuse)
	}
	p.GrenadeUnpin = time.Time{}
	p.LastDeath = now
	return true
}

// OnGrenade refuses grenades outside a running round and turns a grenade
// thrown right after leaving the spade with secondary fire held into a
// spadenade.
func (s *Session) OnGrenade(thrower donburi.Entity, fuse time.Duration) bool {
	p := s.PlayerData(thrower)
	if p == nil {
		return false
	}
	p.GrenadeUnpin = time.Time{}
	if !s.Round().Running {
		return false
	}
	if !p.LastSpadenade.IsZero() && s.clock.Now().Sub(p.LastSpadenade) < s.cfg.SpadenadeWindow {
		s.spadenade(thrower)
		return false
	}
	return true
}

// OnGrenadeThrown holds elimination checks until the grenade has gone off.
func (s *Session) OnGrenadeThrown(_ donburi.Entity, fuse time.Duration) {
	s.extendTimerDelay(fuse)
}

// OnFall only hurts during a running round.
func (s *Session) OnFall(donburi.Entity, float64) bool {
	return s.Round().Running
}

// OnBlockDestroy defers to the map script, if any.
func (s *Session) OnBlockDestroy(_ donburi.Entity, x, y, z int, _ netconfig.BlockAction) bool {
	if s.hooks.BlockDestroy == nil {
		return true
	}
	return s.hooks.BlockDestroy(x, y, z)
}

func (s *Session) spadenade(e donburi.Entity) {
	p := s.PlayerData(e)
	s.dropGrenade(e, p.Position, gamemath.Vec3{}, 0)
	s.out.Broadcast(messages.ChatEvent{Kind: netconfig.ChatSystem, Text: p.Name + " spadenaded themselves"})
}
