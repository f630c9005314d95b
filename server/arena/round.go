package arena

import (
	"fmt"
	"time"

	"github.com/automoto/voxel-arena/components"
	"github.com/automoto/voxel-arena/shared/gamemath"
	"github.com/automoto/voxel-arena/shared/mapmeta"
	"github.com/automoto/voxel-arena/shared/messages"
	"github.com/automoto/voxel-arena/shared/netconfig"
	"github.com/automoto/voxel-arena/shared/schedule"
	"github.com/automoto/voxel-arena/shared/voxel"
	"github.com/yohamta/donburi"
)

// BeginCountdown schedules the next round delay from now. A non-positive
// delay starts the round at once without waiting for players. It is a
// no-op while a countdown is already pending.
func (s *Session) BeginCountdown(delay time.Duration) {
	if delay <= 0 {
		s.BeginRound(false)
		return
	}
	r := s.Round()
	r.LimitDeadline = time.Time{}
	if r.CountingDown {
		return
	}

	s.cancelCountdown()
	r.Running = false
	r.CountingDown = true
	r.Building = false
	r.State = netconfig.RoundCountingDown

	if s.hooks.End != nil {
		s.hooks.End()
	}

	warning := s.cfg.CountdownWarning
	r.Countdown = []*schedule.Timer{
		s.sched.After(delay-warning, func() { s.countdownWarning(int(warning / time.Second)) }),
		s.sched.After(delay, func() { s.BeginRound(true) }),
	}

	s.log.Debug("countdown started", "map", r.MapName, "delay", delay)
	s.out.Broadcast(messages.RoundStateEvent{State: r.State, Remaining: delay.Seconds()})
}

func (s *Session) cancelCountdown() {
	r := s.Round()
	for _, t := range r.Countdown {
		t.Cancel()
	}
	r.Countdown = nil
}

// countdownWarning tells every player the round is about to start. It is
// skipped while a team is empty.
func (s *Session) countdownWarning(seconds int) {
	if len(s.teamMembers(netconfig.TeamGreen)) == 0 || len(s.teamMembers(netconfig.TeamBlue)) == 0 {
		return
	}
	text := formatSeconds(seconds)
	if s.hooks.Warning != nil {
		var ok bool
		if text, ok = s.hooks.Warning(seconds); !ok {
			return
		}
	}
	s.sendAll(netconfig.ChatWarning, text)
}

// BeginRound starts a round. With awaitPlayers set it falls back to a new
// break while either team is empty.
func (s *Session) BeginRound(awaitPlayers bool) {
	r := s.Round()
	r.CountingDown = false
	s.cancelCountdown()

	if awaitPlayers && (len(s.teamMembers(netconfig.TeamGreen)) == 0 || len(s.teamMembers(netconfig.TeamBlue)) == 0) {
		s.BeginCountdown(r.BreakTime)
		return
	}

	r.Running = true
	r.State = netconfig.RoundRunning
	r.Building = s.meta.Building()

	if s.hooks.Begin != nil {
		s.hooks.Begin()
	}

	s.refillAll()
	r.PlayersAlive = s.countAlive()

	remaining := 0.0
	if r.TimeLimit > 0 {
		s.broadcastChat(netconfig.ChatSystem, "There is a time limit of %.0f seconds for this round", r.TimeLimit.Seconds())
		r.LimitDeadline = s.clock.Now().Add(r.TimeLimit)
		remaining = r.TimeLimit.Seconds()
	} else {
		r.LimitDeadline = time.Time{}
	}

	roundsStarted.Inc()
	s.log.Info("round started", "map", r.MapName, "limit", r.TimeLimit)
	s.out.Broadcast(messages.RoundStateEvent{State: r.State, Remaining: remaining})
}

// OnWorldUpdate advances the round clock. Every heartbeat it runs the map
// heartbeat hook, the elimination and time-limit checks and the defuse
// polling.
func (s *Session) OnWorldUpdate() {
	r := s.Round()
	now := s.clock.Now()
	r.Stopwatch += now.Sub(r.Time)
	r.Time = now

	if r.HeartbeatEnabled && r.Stopwatch >= r.HeartbeatRate {
		r.Stopwatch = 0
		s.heartbeat(now)
	}
	s.syncNet()
}

func (s *Session) heartbeat(now time.Time) {
	r := s.Round()
	if s.hooks.Heartbeat != nil {
		s.hooks.Heartbeat(now)
	}

	if r.Running && !now.Before(r.TimerDelay) {
		alive := s.countAlive()
		changed := alive != r.PlayersAlive
		r.PlayersAlive = alive
		if changed {
			s.CheckRoundEnd()
		}
		if r.HasLimit() && !now.Before(r.LimitDeadline) {
			s.OnTimeLimit()
		}
	}

	s.eachPlayer(func(e donburi.Entity, p *components.PlayerData) {
		if p.Team.Playing() && p.IsAlive() {
			s.TryDefuse(e)
		}
	})
}

func teamEliminated(s *Session, team netconfig.TeamID) bool {
	for _, e := range s.teamMembers(team) {
		if s.PlayerData(e).IsAlive() {
			return false
		}
	}
	return true
}

func (s *Session) aliveOn(team netconfig.TeamID) int {
	n := 0
	for _, e := range s.teamMembers(team) {
		if s.PlayerData(e).IsAlive() {
			n++
		}
	}
	return n
}

// CheckRoundEnd ends the round when a side has no living player left.
func (s *Session) CheckRoundEnd() {
	blue := teamEliminated(s, netconfig.TeamBlue)
	green := teamEliminated(s, netconfig.TeamGreen)
	switch {
	case blue && green:
		s.broadcastChat(netconfig.ChatSystem, "Draw")
		s.endRound(outcomeDraw)
	case blue:
		s.ArenaWin(netconfig.TeamGreen)
	case green:
		s.ArenaWin(netconfig.TeamBlue)
	}
}

// OnTimeLimit settles a round that ran out of time. On a bomb map the
// side without a bomb wins, otherwise the side with more living players.
func (s *Session) OnTimeLimit() {
	r := s.Round()
	r.LimitDeadline = time.Time{}

	blueBomb, greenBomb := s.meta.Blue.HasBombsites, s.meta.Green.HasBombsites
	blue, green := s.aliveOn(netconfig.TeamBlue), s.aliveOn(netconfig.TeamGreen)
	switch {
	case blueBomb && !greenBomb:
		s.ArenaWin(netconfig.TeamGreen)
	case greenBomb && !blueBomb:
		s.ArenaWin(netconfig.TeamBlue)
	case green > blue:
		s.ArenaWin(netconfig.TeamGreen)
	case green < blue:
		s.ArenaWin(netconfig.TeamBlue)
	default:
		s.broadcastChat(netconfig.ChatSystem, "Tie")
		s.endRound(outcomeTie)
	}
}

// ArenaWin awards the round to team by capturing the enemy flag: with the
// current carrier if there is one, else with the team's representative.
// Nothing happens when the round isn't running or the team is empty.
func (s *Session) ArenaWin(team netconfig.TeamID) {
	if !s.Round().Running || !team.Playing() {
		return
	}
	flag := s.flagOf(team.Other())
	capturer := flag.Carrier
	if s.PlayerData(capturer) == nil {
		rep, ok := s.representative(team)
		if !ok {
			s.log.Warn("round win dropped, team is empty", "team", team)
			return
		}
		capturer = rep
		flag.Carrier = rep
		s.out.Broadcast(messages.IntelPickupEvent{PlayerID: s.PlayerData(rep).ID})
	}
	s.CaptureFlag(capturer)
}

func (s *Session) endRound(outcome string) {
	r := s.Round()
	roundOutcomes.WithLabelValues(outcome).Inc()
	s.log.Info("round ended", "map", r.MapName, "outcome", outcome)
	s.BeginCountdown(r.BreakTime)
	s.ArenaSpawn()
}

// OnMapChange validates the new map and applies it: per-map timings,
// spawns, bombsites and script hooks. A rejected map leaves the session
// untouched.
func (s *Session) OnMapChange(meta *mapmeta.Map, m voxel.Map) error {
	if err := meta.Validate(); err != nil {
		return err
	}
	var hooks mapmeta.ArenaHooks
	if meta.Script != nil {
		var err error
		if hooks, err = meta.Script.ArenaHooks(s); err != nil {
			return &mapmeta.ConfigError{Map: meta.Name, Key: "arena_script", Err: err}
		}
	}

	s.meta = meta
	s.vxl = m
	s.hooks = hooks

	r := s.Round()
	r.MapName = meta.Name
	r.BlastRadius = s.cfg.BlastRadius
	r.MapChangeDelay = mapmeta.DurationOr(meta.MapChangeDelay, s.cfg.MapChangeDelay)
	r.BreakTime = mapmeta.DurationOr(meta.BreakTime, s.cfg.BreakTime)
	r.TimeLimit = mapmeta.DurationOr(meta.TimeLimit, s.cfg.TimeLimit)
	r.HeartbeatRate = mapmeta.DurationOr(meta.HeartbeatRate, s.cfg.HeartbeatRate)
	r.HeartbeatEnabled = true
	r.RespawnTime = mapmeta.DurationOr(meta.RespawnTime, -time.Second)

	for _, id := range []netconfig.TeamID{netconfig.TeamBlue, netconfig.TeamGreen} {
		td := s.Team(id)
		tm := meta.Team(id)
		td.LastKiller = donburi.Null
		td.Spawns = append([]gamemath.Point(nil), tm.Spawns...)
		s.sites[id] = newBombsiteIndex(tm.Bombsites)
	}

	s.cancelRoundTimers()
	s.removeBombs()
	s.cancelCountdown()
	r.CountingDown = false
	r.Stopwatch = 0
	r.LimitDeadline = time.Time{}
	r.TimerDelay = time.Time{}
	r.PlayersAlive = 0

	s.log.Info("map loaded", "map", meta.Name,
		"break", r.BreakTime, "limit", r.TimeLimit, "delay", r.MapChangeDelay)
	s.BeginCountdown(r.MapChangeDelay)
	s.ArenaSpawn()
	return nil
}

// ArenaSpawn resets the objectives and puts every playing member back at
// one of their team's spawns.
func (s *Session) ArenaSpawn() {
	if s.meta.SwapSpawns {
		blue, green := s.Team(netconfig.TeamBlue), s.Team(netconfig.TeamGreen)
		blue.Spawns, green.Spawns = green.Spawns, blue.Spawns
	}

	for _, id := range []netconfig.TeamID{netconfig.TeamBlue, netconfig.TeamGreen} {
		td := s.Team(id)
		if carrier := s.objective(td.Flag).Carrier; carrier != donburi.Null {
			s.DropFlag(carrier)
		}
		s.resetObjective(td.Flag)
		s.resetObjective(td.Base)
		if bomb := s.bombData(td.Bomb); bomb != nil {
			bomb.HasTeam = false
		}
		td.Bomb = donburi.Null
	}

	s.eachPlayer(func(e donburi.Entity, p *components.PlayerData) {
		if !p.Team.Playing() {
			return
		}
		sp, ok := s.randomSpawn(p.Team)
		if !ok {
			return
		}
		z := float64(s.vxl.GroundHeight(sp.X, sp.Y, sp.Z) - 3)
		if !p.IsAlive() {
			s.spawn(e, &gamemath.Vec3{X: float64(sp.X) + 0.5, Y: float64(sp.Y) + 0.5, Z: z})
			return
		}
		s.setLocation(e, gamemath.Vec3{X: float64(sp.X), Y: float64(sp.Y), Z: z})
		s.Refill(e)
	})
}

func (s *Session) randomSpawn(team netconfig.TeamID) (gamemath.Point, bool) {
	td := s.Team(team)
	if td == nil || len(td.Spawns) == 0 {
		return gamemath.Point{}, false
	}
	return td.Spawns[s.rng.Intn(len(td.Spawns))], true
}

func (s *Session) refillAll() {
	s.eachPlayer(func(e donburi.Entity, p *components.PlayerData) {
		if p.Team.Playing() {
			s.Refill(e)
		}
	})
}

func formatSeconds(n int) string {
	return fmt.Sprintf("%d seconds", n)
}
