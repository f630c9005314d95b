package arena

import (
	"time"

	"github.com/automoto/voxel-arena/archetypes"
	"github.com/automoto/voxel-arena/components"
	"github.com/automoto/voxel-arena/shared/gamemath"
	"github.com/automoto/voxel-arena/shared/messages"
	"github.com/automoto/voxel-arena/shared/netconfig"
	"github.com/automoto/voxel-arena/shared/voxel"
	"github.com/yohamta/donburi"
)

// waterDamageDepth is the z from which maps with water damage hurt.
const waterDamageDepth = 61

// PlayerInfo describes a joining player.
type PlayerInfo struct {
	ID     netconfig.PlayerID
	Name   string
	Team   netconfig.TeamID
	Color  uint32
	Admin  bool
	Rights []string
}

// Connect adds a player and spawns them if the respawn policy allows.
func (s *Session) Connect(info PlayerInfo) donburi.Entity {
	entry := archetypes.Player.Spawn(s.world)
	components.Player.SetValue(entry, components.PlayerData{
		ID:     info.ID,
		Name:   info.Name,
		Team:   info.Team,
		Color:  info.Color,
		Admin:  info.Admin,
		Rights: info.Rights,
		Tool:   netconfig.ToolWeapon,
	})
	e := entry.Entity()
	s.players[info.ID] = e
	s.log.Info("player joined", "player", info.Name, "id", info.ID, "team", info.Team)
	s.Respawn(e)
	return e
}

// Disconnect removes a player. A carried flag is dropped where they stood.
func (s *Session) Disconnect(e donburi.Entity) {
	p := s.PlayerData(e)
	if p == nil {
		return
	}
	s.clearLastKiller(e)
	s.DropFlag(e)
	p.SpawnTimer.Cancel()
	delete(s.players, p.ID)
	s.log.Info("player left", "player", p.Name, "id", p.ID)
	s.world.Remove(e)
}

// SetTeam moves a player to another side. The player dies with a team
// change kill and respawns under the new side's policy.
func (s *Session) SetTeam(e donburi.Entity, team netconfig.TeamID) {
	p := s.PlayerData(e)
	if p == nil || p.Team == team {
		return
	}
	s.clearLastKiller(e)
	s.DropFlag(e)
	p.HP = 0
	p.Dead = true
	p.DefuseStart = time.Time{}
	p.SpawnTimer.Cancel()
	p.SpawnTimer = nil

	old := p.Team
	p.Team = team
	s.log.Info("player changed team", "player", p.Name, "from", old, "to", team)

	s.out.Broadcast(messages.KillEvent{
		PlayerID:    p.ID,
		KillerID:    p.ID,
		KillType:    netconfig.KillTeamChange,
		RespawnTime: s.respawnTime(p).Seconds() + 1,
	})
	s.Respawn(e)
}

// respawnTime is how long a dead player waits. Negative means they stay
// dead until the round ends.
func (s *Session) respawnTime(p *components.PlayerData) time.Duration {
	switch {
	case !p.Team.Playing():
		return 0
	case s.Round().Running:
		return s.Round().RespawnTime
	}
	return 0
}

// Respawn schedules the player's next spawn according to the respawn
// policy. A pending spawn is left alone.
func (s *Session) Respawn(e donburi.Entity) {
	p := s.PlayerData(e)
	if p == nil || p.SpawnTimer.Active() {
		return
	}
	switch t := s.respawnTime(p); {
	case t > 0:
		p.SpawnTimer = s.sched.After(t, func() { s.spawn(e, nil) })
	case t == 0:
		s.spawn(e, nil)
	}
}

// spawn creates the player's avatar at pos, or at a random team spawn
// when pos is nil. Spawning while the policy says stay dead kills the
// avatar again.
func (s *Session) spawn(e donburi.Entity, pos *gamemath.Vec3) {
	p := s.PlayerData(e)
	if p == nil {
		return
	}
	p.SpawnTimer.Cancel()
	p.SpawnTimer = nil

	if pos == nil && p.Team.Playing() {
		sp, ok := s.randomSpawn(p.Team)
		if !ok || s.vxl == nil {
			return
		}
		pos = &gamemath.Vec3{
			X: float64(sp.X) + 0.5,
			Y: float64(sp.Y) + 0.5,
			Z: float64(s.vxl.GroundHeight(sp.X, sp.Y, sp.Z) - 3),
		}
	}
	if pos != nil {
		p.Position = *pos
	}

	p.HasAvatar = true
	p.Dead = false
	p.HP = s.cfg.MaxHP
	p.Grenades = s.cfg.Grenades
	p.Blocks = s.cfg.Blocks
	p.DefuseStart = time.Time{}
	p.HasDefuseKit = false
	p.GrenadeUnpin = time.Time{}

	s.out.Broadcast(messages.SpawnEvent{
		PlayerID: p.ID,
		Team:     p.Team,
		X:        p.Position.X,
		Y:        p.Position.Y,
		Z:        p.Position.Z,
	})

	if s.respawnTime(p) < 0 {
		s.Kill(e, donburi.Null, netconfig.KillWeapon)
	}
}

func (s *Session) setLocation(e donburi.Entity, pos gamemath.Vec3) {
	p := s.PlayerData(e)
	p.Position = pos
	s.out.Broadcast(messages.PositionEvent{PlayerID: p.ID, X: pos.X, Y: pos.Y, Z: pos.Z})
}

// Kill kills a living player. killer may be donburi.Null.
func (s *Session) Kill(victim, killer donburi.Entity, kind netconfig.KillType) {
	p := s.PlayerData(victim)
	if p == nil || !p.IsAlive() {
		return
	}
	if !s.combat.OnKill(victim, killer, kind) {
		return
	}
	s.DropFlag(victim)
	p.HP = 0
	p.Dead = true
	p.DefuseStart = time.Time{}

	killerID := p.ID
	if k := s.PlayerData(killer); k != nil {
		killerID = k.ID
	}
	s.out.Broadcast(messages.KillEvent{
		PlayerID:    p.ID,
		KillerID:    killerID,
		KillType:    kind,
		RespawnTime: max(s.respawnTime(p), 0).Seconds(),
	})
	s.Respawn(victim)
}

// Hit applies a validated weapon or melee hit. A hit from a player who
// died within the lag allowance still lands.
func (s *Session) Hit(attacker, target donburi.Entity, damage float64, kind netconfig.KillType) {
	a, t := s.PlayerData(attacker), s.PlayerData(target)
	if a == nil || t == nil || !a.HasAvatar || !t.IsAlive() {
		return
	}
	if a.Dead && s.clock.Now().Sub(a.LastDeath) > s.cfg.HitLagAllowance {
		return
	}
	if !s.cfg.FriendlyFire && attacker != target && a.Team == t.Team && kind != netconfig.KillMelee {
		return
	}
	damage, ok := s.combat.OnHit(attacker, target, damage, kind)
	if !ok {
		return
	}
	s.damage(target, attacker, damage, kind, a.Position)
}

// Fall applies fall damage reported by the client.
func (s *Session) Fall(e donburi.Entity, damage float64) {
	p := s.PlayerData(e)
	if p == nil || !p.IsAlive() || !s.combat.OnFall(e, damage) {
		return
	}
	s.damage(e, donburi.Null, damage, netconfig.KillFall, p.Position)
}

func (s *Session) damage(target, by donburi.Entity, damage float64, kind netconfig.KillType, source gamemath.Vec3) {
	p := s.PlayerData(target)
	if p == nil || !p.IsAlive() {
		return
	}
	hp := int(float64(p.HP) - damage)
	if hp <= 0 {
		s.Kill(target, by, kind)
		return
	}
	p.HP = min(hp, s.cfg.MaxHP)
	s.out.Send(p.ID, messages.SetHPEvent{
		PlayerID: p.ID,
		HP:       p.HP,
		Source:   vecArray(source),
		KillType: kind,
	})
}

// Refill restores health, grenades and blocks.
func (s *Session) Refill(e donburi.Entity) {
	p := s.PlayerData(e)
	if p == nil {
		return
	}
	p.HP = s.cfg.MaxHP
	p.Grenades = s.cfg.Grenades
	p.Blocks = s.cfg.Blocks
	s.out.Send(p.ID, messages.RestockEvent{PlayerID: p.ID})
}

// CheckRefill handles a player touching their base during a round.
// Defenders on a bomb map get a defuse kit instead of a refill, and
// refills only happen on maps that allow them.
func (s *Session) CheckRefill(e donburi.Entity) {
	p := s.PlayerData(e)
	if p == nil || !s.Round().Running || !p.Team.Playing() {
		return
	}
	if s.meta.Team(p.Team.Other()).HasBombsites {
		if !p.HasDefuseKit {
			p.HasDefuseKit = true
			s.sendTo(e, netconfig.ChatWarning, "You've been given a defuse kit.")
		}
		return
	}
	if s.allowRefill() {
		s.Refill(e)
	}
}

func (s *Session) allowRefill() bool {
	return !s.Round().Running || s.meta.HasRefill
}

// UpdatePosition records a client position update and runs the contact
// rules: water damage, flag pickup, capture and base refill.
func (s *Session) UpdatePosition(e donburi.Entity, pos, orientation gamemath.Vec3) {
	p := s.PlayerData(e)
	if p == nil {
		return
	}
	p.Position = pos
	p.Orientation = orientation
	if !p.IsAlive() || !p.Team.Playing() {
		return
	}

	if w := s.meta.WaterDamage; w != 0 && pos.Z >= waterDamageDepth {
		s.damage(e, donburi.Null, float64(w), netconfig.KillFall, pos)
		if !p.IsAlive() {
			return
		}
	}

	flag := s.flagOf(p.Team.Other())
	if flag.Carrier == donburi.Null && !flag.Hidden() &&
		gamemath.Collides(pos, flag.Position, gamemath.DefaultCollisionDistance) {
		s.TakeFlag(e)
	}

	base := s.baseOf(p.Team)
	if base.Hidden() || !gamemath.Collides(pos, base.Position, gamemath.DefaultCollisionDistance) {
		return
	}
	if flag.Carrier == e {
		s.CaptureFlag(e)
		return
	}
	s.CheckRefill(e)
}

// SetTool switches the held tool. Leaving the spade with secondary fire
// held arms the spadenade window; switching to a grenade with primary
// fire held unpins it.
func (s *Session) SetTool(e donburi.Entity, tool netconfig.Tool) bool {
	p := s.PlayerData(e)
	if p == nil || !p.IsAlive() {
		return false
	}
	now := s.clock.Now()
	if p.Tool == netconfig.ToolSpade && p.SecondaryFire {
		p.LastSpadenade = now
	}
	if p.Tool != tool {
		if tool == netconfig.ToolGrenade && p.PrimaryFire {
			p.GrenadeUnpin = now
		} else {
			p.GrenadeUnpin = time.Time{}
		}
	}
	p.Tool = tool
	return true
}

// SetWeaponInput records the fire buttons. Pressing primary fire with a
// grenade unpins it; pressing secondary fire with the spade between rounds
// tunnels through the wall ahead.
func (s *Session) SetWeaponInput(e donburi.Entity, primary, secondary bool) {
	p := s.PlayerData(e)
	if p == nil || !p.HasAvatar {
		return
	}
	if p.Tool == netconfig.ToolGrenade && primary != p.PrimaryFire {
		if primary {
			p.GrenadeUnpin = s.clock.Now()
		} else {
			p.GrenadeUnpin = time.Time{}
		}
	}
	pressed := secondary && !p.SecondaryFire
	p.PrimaryFire = primary
	p.SecondaryFire = secondary
	if pressed && p.Tool == netconfig.ToolSpade && !s.Round().Running {
		s.WallTunnel(e)
	}
}

// WallTunnel moves the player through the wall in front of them to the
// first gap three voxels high along their view.
func (s *Session) WallTunnel(e donburi.Entity) (gamemath.Point, bool) {
	p := s.PlayerData(e)
	if p == nil || !p.IsAlive() || s.vxl == nil {
		return gamemath.Point{}, false
	}
	hit, ok := voxel.CastRay(s.vxl, p.Position, p.Orientation, s.cfg.WallTunnelReach)
	if !ok {
		return gamemath.Point{}, false
	}
	tr := gamemath.LineRasterizer(hit.Vec(), p.Orientation, gamemath.DefaultRayLength)
	for tr.Next() {
		q := tr.Point()
		if s.vxl.IsSolid(q.X, q.Y, q.Z-1) || s.vxl.IsSolid(q.X, q.Y, q.Z) || s.vxl.IsSolid(q.X, q.Y, q.Z+1) {
			continue
		}
		from := p.Position
		s.setLocation(e, q.Vec())
		s.out.Broadcast(messages.GrenadeEvent{PlayerID: p.ID, Position: vecArray(from)})
		return q, true
	}
	return gamemath.Point{}, false
}

// BuildLine builds the voxels on the line from a to b that are still
// empty, stopping when the map refuses a voxel or the player runs out of
// blocks. It returns how many voxels were placed.
func (s *Session) BuildLine(e donburi.Entity, a, b gamemath.Point, color uint32) int {
	p := s.PlayerData(e)
	if p == nil || !p.IsAlive() || !s.Round().Building || s.vxl == nil {
		return 0
	}
	built := 0
	for _, q := range gamemath.CubeLinePoints(a, b) {
		if p.Blocks <= 0 {
			break
		}
		if s.vxl.IsSolid(q.X, q.Y, q.Z) {
			continue
		}
		if !s.vxl.Build(q.X, q.Y, q.Z, color) {
			break
		}
		built++
		p.Blocks--
	}
	if built > 0 {
		s.out.Broadcast(messages.BlockLineEvent{
			PlayerID: p.ID,
			Start:    [3]int{a.X, a.Y, a.Z},
			End:      [3]int{b.X, b.Y, b.Z},
		})
	}
	return built
}
