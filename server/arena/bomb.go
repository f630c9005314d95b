package arena

import (
	"time"

	"github.com/automoto/voxel-arena/archetypes"
	"github.com/automoto/voxel-arena/components"
	"github.com/automoto/voxel-arena/shared/gamemath"
	"github.com/automoto/voxel-arena/shared/messages"
	"github.com/automoto/voxel-arena/shared/netconfig"
	"github.com/yohamta/donburi"
)

// Plant arms the team's bomb at the player's position. The player must be
// alive, carry the enemy flag and stand inside one of the team's
// bombsites while the round runs. The returned text is the reply for the
// player, empty on success or when there is nothing to say.
func (s *Session) Plant(e donburi.Entity) string {
	p := s.PlayerData(e)
	if p == nil || !p.IsAlive() {
		return ""
	}
	tm := s.meta.Team(p.Team)
	if tm == nil {
		return ""
	}
	if !tm.HasBombsites {
		return "Your team cannot plant the bomb on this map."
	}
	r := s.Round()
	if !r.Running {
		return "The round hasn't started yet."
	}
	td := s.Team(p.Team)
	if s.bombData(td.Bomb) != nil {
		return "The bomb has already been planted."
	}
	flag := s.flagOf(p.Team.Other())
	if flag.Carrier != e {
		return "You don't have the intel."
	}
	site, ok := s.sites[p.Team].Find(p.Position)
	if !ok {
		return "A bombsite is too far."
	}

	flag.Position = components.HiddenPosition
	flag.Carrier = donburi.Null
	s.out.Broadcast(messages.IntelDropEvent{
		PlayerID: p.ID,
		X:        flag.Position.X,
		Y:        flag.Position.Y,
		Z:        flag.Position.Z,
	})

	now := s.clock.Now()
	entry := archetypes.Bomb.Spawn(s.world)
	bomb := entry.Entity()
	components.Bomb.SetValue(entry, components.BombData{
		Team:      p.Team,
		HasTeam:   true,
		Position:  p.Position,
		PlantedAt: now,
		Fuse:      s.cfg.BombFuse,
	})
	s.repl.Replicate(bomb)
	td.Bomb = bomb
	components.Bomb.Get(entry).Timer = s.afterRound(s.cfg.BombFuse, func() { s.bombExploded(bomb) })

	s.out.Broadcast(messages.GrenadeEvent{
		PlayerID: p.ID,
		Fuse:     s.cfg.BombFuse.Seconds(),
		Position: vecArray(p.Position),
	})

	delay := s.cfg.BombFuse + s.cfg.BombExplosionDuration
	if r.HasLimit() {
		r.LimitDeadline = maxTime(r.LimitDeadline, now.Add(delay))
	}
	s.extendTimerDelay(delay)

	bombsPlanted.Inc()
	s.log.Info("bomb planted", "player", p.Name, "team", p.Team, "site", site)
	s.sendAll(netconfig.ChatError, "The bomb has been planted.")
	return ""
}

// TryDefuse advances the player's defuse attempt on the enemy bomb. It is
// polled every heartbeat. Staying in contact for longer than the defuse
// time disarms the bomb; breaking contact cancels the attempt.
func (s *Session) TryDefuse(e donburi.Entity) {
	p := s.PlayerData(e)
	if p == nil || !p.HasAvatar {
		return
	}
	enemy := s.Team(p.Team.Other())
	if enemy == nil {
		return
	}
	bomb := s.bombData(enemy.Bomb)
	if bomb == nil {
		p.DefuseStart = time.Time{}
		return
	}

	now := s.clock.Now()
	if !gamemath.Collides(p.Position, bomb.Position, gamemath.DefaultCollisionDistance) {
		if p.Defusing() {
			p.DefuseStart = time.Time{}
			s.sendTo(e, netconfig.ChatError, "The bomb was not defused.")
		}
		return
	}
	if !p.Defusing() {
		p.DefuseStart = now
		s.sendTo(e, netconfig.ChatWarning, "DEFUSING")
		return
	}
	if now.Sub(p.DefuseStart) <= s.defuseTime(p) {
		return
	}

	p.DefuseStart = time.Time{}
	p.HasDefuseKit = false
	enemy.Bomb = donburi.Null
	bombsDefused.Inc()
	s.log.Info("bomb defused", "player", p.Name, "team", p.Team)
	s.sendAll(netconfig.ChatWarning, "The bomb has been defused.")
}

func (s *Session) defuseTime(p *components.PlayerData) time.Duration {
	if p.HasDefuseKit {
		return s.cfg.DefuseKitTime
	}
	return s.cfg.DefuseTime
}

func (s *Session) bombData(e donburi.Entity) *components.BombData {
	if e == donburi.Null || !s.world.Valid(e) {
		return nil
	}
	return components.Bomb.Get(s.world.Entry(e))
}

// bombExploded resolves a bomb whose fuse ran out. A live bomb blasts the
// map and wins the round for its team once the explosion has played out.
// A defused bomb hands the round to the defenders instead.
func (s *Session) bombExploded(bomb donburi.Entity) {
	b := s.bombData(bomb)
	if b == nil {
		return
	}
	defer s.world.Remove(bomb)

	team := b.Team
	td := s.Team(team)
	if !b.HasTeam || td.Bomb != bomb {
		if b.HasTeam {
			s.ArenaWin(team.Other())
		}
		return
	}

	td.Bomb = donburi.Null
	if rep, ok := s.representative(team); ok {
		s.bombEffect(rep, b.Position, team)
	}
	s.log.Info("bomb exploded", "team", team)
	s.afterRound(s.cfg.BombExplosionDuration, func() { s.ArenaWin(team) })
}

// bombEffect is the bomb blast: a large grenade explosion followed by a
// few delayed cosmetic bursts around it.
func (s *Session) bombEffect(rep donburi.Entity, pos gamemath.Vec3, team netconfig.TeamID) {
	s.GrenadeExploded(rep, pos, team, s.cfg.BombBlastRadius)

	id := s.PlayerData(rep).ID
	const spread = 1.5
	for range s.cfg.BombEffectBursts {
		delay := time.Duration((0.25 + 0.5*s.rng.Float64()) * float64(time.Second))
		at := gamemath.Vec3{
			X: pos.X + spread*(2*s.rng.Float64()-1),
			Y: pos.Y + spread*(2*s.rng.Float64()-1),
			Z: pos.Z + spread*(2*s.rng.Float64()-1),
		}
		s.afterRound(delay, func() {
			s.out.Broadcast(messages.GrenadeEvent{PlayerID: id, Position: vecArray(at)})
		})
	}
}

func (s *Session) removeBombs() {
	var bombs []donburi.Entity
	components.Bomb.Each(s.world, func(entry *donburi.Entry) {
		bombs = append(bombs, entry.Entity())
	})
	for _, e := range bombs {
		s.world.Remove(e)
	}
	for _, entry := range s.teams {
		components.Team.Get(entry).Bomb = donburi.Null
	}
}
