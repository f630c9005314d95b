package arena

import (
	"math"
	"time"

	"github.com/automoto/voxel-arena/components"
	"github.com/automoto/voxel-arena/shared/gamemath"
	"github.com/automoto/voxel-arena/shared/messages"
	"github.com/automoto/voxel-arena/shared/netconfig"
	"github.com/automoto/voxel-arena/shared/voxel"
	"github.com/yohamta/donburi"
)

// blastEyeCap keeps the line-of-sight target above the indestructible
// bottom layers.
const blastEyeCap = 62.9

// GrenadePhysics decides where a thrown grenade goes off.
type GrenadePhysics interface {
	Landing(m voxel.Map, pos, vel gamemath.Vec3, fuse time.Duration) gamemath.Vec3
}

// StraightFlight moves the grenade along its release velocity for the
// whole fuse and stops it in front of the first solid voxel.
type StraightFlight struct{}

func (StraightFlight) Landing(m voxel.Map, pos, vel gamemath.Vec3, fuse time.Duration) gamemath.Vec3 {
	travel := vel.Scale(fuse.Seconds())
	dist := math.Sqrt(travel.LenSq())
	if dist == 0 || m == nil {
		return pos
	}
	tr := gamemath.LineRasterizer(pos, travel, dist)
	last := pos.Floor()
	for tr.Next() {
		p := tr.Point()
		if m.IsSolid(p.X, p.Y, p.Z) {
			return last.Center()
		}
		last = p
	}
	return pos.Add(travel)
}

// ThrowGrenade releases a grenade for e. The explosion is scheduled where
// the grenade physics lands it.
func (s *Session) ThrowGrenade(e donburi.Entity, fuse time.Duration, pos, vel gamemath.Vec3) bool {
	p := s.PlayerData(e)
	if p == nil || !p.IsAlive() || p.Grenades <= 0 {
		return false
	}
	if !s.combat.OnGrenade(e, fuse) {
		return false
	}
	p.Grenades--
	s.out.Broadcast(messages.GrenadeEvent{
		PlayerID: p.ID,
		Fuse:     fuse.Seconds(),
		Position: vecArray(pos),
		Velocity: vecArray(vel),
	})
	landing := s.physics.Landing(s.vxl, pos, vel, fuse)
	team := p.Team
	s.afterRound(fuse, func() { s.GrenadeExploded(e, landing, team, 0) })
	s.combat.OnGrenadeThrown(e, fuse)
	return true
}

// dropGrenade releases a live grenade without throwing it, as on death or
// a spadenade.
func (s *Session) dropGrenade(e donburi.Entity, pos, vel gamemath.Vec3, fuse time.Duration) {
	p := s.PlayerData(e)
	s.out.Broadcast(messages.GrenadeEvent{
		PlayerID: p.ID,
		Fuse:     fuse.Seconds(),
		Position: vecArray(pos),
		Velocity: vecArray(vel),
	})
	team := p.Team
	s.afterRound(fuse, func() { s.GrenadeExploded(e, pos, team, 0) })
}

// GrenadeExploded resolves an explosion at pos thrown by e for team: it
// carves a crater and hurts every exposed player within radius. A zero
// radius uses the round's blast radius. Grenades of disconnected players
// are duds.
func (s *Session) GrenadeExploded(e donburi.Entity, pos gamemath.Vec3, team netconfig.TeamID, radius float64) {
	if s.PlayerData(e) == nil || s.vxl == nil {
		return
	}
	if radius <= 0 {
		radius = s.Round().BlastRadius
	}
	grenadesExploded.Inc()

	s.carveCrater(e, pos)

	eye := gamemath.Vec3{X: pos.X, Y: pos.Y, Z: min(blastEyeCap, pos.Z)}
	var targets []donburi.Entity
	s.eachPlayer(func(target donburi.Entity, p *components.PlayerData) {
		if !p.IsAlive() || p.HP <= 0 || !p.Team.Playing() {
			return
		}
		if !s.cfg.FriendlyFire && target != e && p.Team == team {
			return
		}
		targets = append(targets, target)
	})

	for _, target := range targets {
		p := s.PlayerData(target)
		if p == nil || !p.IsAlive() {
			continue
		}
		d := p.Position.Sub(pos)
		if !gamemath.InBlastCube(d, radius) || !voxel.LineOfSight(s.vxl, p.Position, eye) {
			continue
		}
		damage := gamemath.BlastDamage(radius, d.LenSq())
		if damage <= 0 {
			continue
		}
		damage, ok := s.combat.OnHit(e, target, damage, netconfig.KillGrenade)
		if !ok {
			continue
		}
		s.damage(target, e, damage, netconfig.KillGrenade, pos)
	}
}

// carveCrater destroys the 3x3x3 voxels around pos. When the map vetoes
// the crater as a whole, each voxel is asked for individually.
func (s *Session) carveCrater(e donburi.Entity, pos gamemath.Vec3) {
	if pos.X < 0 || pos.X > gamemath.MapWidth || pos.Y < 0 || pos.Y > gamemath.MapHeight || pos.Z < 0 || pos.Z > voxel.Depth {
		return
	}
	p := s.PlayerData(e)
	c := pos.Floor()

	if s.combat.OnBlockDestroy(e, c.X, c.Y, c.Z, netconfig.BlockGrenadeDestroy) {
		forCrater(c, func(x, y, z int) {
			if n := s.vxl.Destroy(x, y, z); n > 0 {
				p.BlocksRemoved += n
			}
		})
		s.out.Broadcast(messages.BlockActionEvent{PlayerID: p.ID, Action: netconfig.BlockGrenadeDestroy, X: c.X, Y: c.Y, Z: c.Z})
	} else {
		forCrater(c, func(x, y, z int) {
			if !s.combat.OnBlockDestroy(e, x, y, z, netconfig.BlockDestroy) {
				return
			}
			if n := s.vxl.Destroy(x, y, z); n > 0 {
				p.BlocksRemoved += n
				s.out.Broadcast(messages.BlockActionEvent{PlayerID: p.ID, Action: netconfig.BlockDestroy, X: x, Y: y, Z: z})
			}
		})
	}
	s.updateEntities()
}

func forCrater(c gamemath.Point, fn func(x, y, z int)) {
	for x := c.X - 1; x <= c.X+1; x++ {
		for y := c.Y - 1; y <= c.Y+1; y++ {
			for z := c.Z - 1; z <= c.Z+1; z++ {
				fn(x, y, z)
			}
		}
	}
}
