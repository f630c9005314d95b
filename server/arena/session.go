// Package arena implements the round-based arena mode: the round state
// machine, the bomb and flag objectives, grenade resolution and the player
// lifecycle rules that go with them.
//
// A Session is not safe for concurrent use. The server drives it from its
// game loop goroutine only.
package arena

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/automoto/voxel-arena/archetypes"
	"github.com/automoto/voxel-arena/components"
	"github.com/automoto/voxel-arena/config"
	"github.com/automoto/voxel-arena/shared/gamemath"
	"github.com/automoto/voxel-arena/shared/mapmeta"
	"github.com/automoto/voxel-arena/shared/messages"
	"github.com/automoto/voxel-arena/shared/netconfig"
	"github.com/automoto/voxel-arena/shared/schedule"
	"github.com/automoto/voxel-arena/shared/voxel"
	"github.com/yohamta/donburi"
)

// Broadcaster delivers server messages to connected clients.
type Broadcaster interface {
	Broadcast(msg any)
	Send(player netconfig.PlayerID, msg any)
}

// Replicator marks entities for network replication.
type Replicator interface {
	Replicate(e donburi.Entity)
}

// Session is the arena mode bound to one world.
type Session struct {
	cfg   *config.Arena
	world donburi.World
	sched *schedule.Scheduler
	clock schedule.Clock
	out   Broadcaster
	log   *slog.Logger
	rng   *rand.Rand
	repl  Replicator

	// combat is consulted for every veto; the host replaces it with a
	// chain that includes the session itself.
	combat  CombatAware
	physics GrenadePhysics

	vxl   voxel.Map
	meta  *mapmeta.Map
	hooks mapmeta.ArenaHooks
	sites map[netconfig.TeamID]*bombsiteIndex

	round   *donburi.Entry
	teams   map[netconfig.TeamID]*donburi.Entry
	players map[netconfig.PlayerID]donburi.Entity

	// roundTimers are callbacks tied to the current map (bomb fuses,
	// delayed wins, martyrdom grenades).
	roundTimers []*schedule.Timer
}

// Option configures a Session.
type Option func(*Session)

// WithRand sets the random source used for spawn and representative picks.
func WithRand(rng *rand.Rand) Option {
	return func(s *Session) {
		s.rng = rng
	}
}

// WithReplicator replicates the session's objective and round entities.
func WithReplicator(r Replicator) Option {
	return func(s *Session) {
		s.repl = r
	}
}

// WithGrenadePhysics replaces the straight-flight grenade model.
func WithGrenadePhysics(p GrenadePhysics) Option {
	return func(s *Session) {
		s.physics = p
	}
}

type nopReplicator struct{}

func (nopReplicator) Replicate(donburi.Entity) {}

// NewSession creates the round singleton and both teams with their hidden
// flag and base. No round runs until the first OnMapChange.
func NewSession(cfg *config.Arena, world donburi.World, sched *schedule.Scheduler, out Broadcaster, logger *slog.Logger, opts ...Option) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		cfg:     cfg,
		world:   world,
		sched:   sched,
		clock:   sched.Clock(),
		out:     out,
		log:     logger.With("component", "arena"),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		repl:    nopReplicator{},
		physics: StraightFlight{},
		sites:   make(map[netconfig.TeamID]*bombsiteIndex),
		teams:   make(map[netconfig.TeamID]*donburi.Entry),
		players: make(map[netconfig.PlayerID]donburi.Entity),
		meta:    &mapmeta.Map{},
	}
	s.combat = s
	for _, opt := range opts {
		opt(s)
	}

	s.round = archetypes.Round.Spawn(world)
	components.Round.SetValue(s.round, components.RoundData{
		State:         netconfig.RoundAwaitingPlayers,
		Time:          s.clock.Now(),
		BreakTime:     cfg.BreakTime,
		TimeLimit:     cfg.TimeLimit,
		HeartbeatRate: cfg.HeartbeatRate,
		RespawnTime:   -time.Second,
		BlastRadius:   cfg.BlastRadius,
		Building:      true,
	})
	s.repl.Replicate(s.round.Entity())

	for _, id := range []netconfig.TeamID{netconfig.TeamBlue, netconfig.TeamGreen} {
		flag := s.spawnObjective(archetypes.Flag.Spawn(world), netconfig.FlagObject(id), id)
		base := s.spawnObjective(archetypes.Base.Spawn(world), netconfig.BaseObject(id), id)
		team := archetypes.Team.Spawn(world)
		components.Team.SetValue(team, components.TeamData{
			ID:         id,
			Name:       id.String(),
			LastKiller: donburi.Null,
			Bomb:       donburi.Null,
			Flag:       flag,
			Base:       base,
		})
		s.teams[id] = team
	}
	return s
}

func (s *Session) spawnObjective(entry *donburi.Entry, object netconfig.ObjectID, team netconfig.TeamID) donburi.Entity {
	components.Objective.SetValue(entry, components.ObjectiveData{
		Object:   object,
		Team:     team,
		Position: components.HiddenPosition,
		Carrier:  donburi.Null,
	})
	s.repl.Replicate(entry.Entity())
	return entry.Entity()
}

// UseCombatHooks routes every combat veto through h. h is expected to
// include the session.
func (s *Session) UseCombatHooks(h CombatAware) {
	s.combat = h
}

// Round returns the live round state.
func (s *Session) Round() *components.RoundData {
	return components.Round.Get(s.round)
}

// RoundEntity returns the round singleton.
func (s *Session) RoundEntity() donburi.Entity {
	return s.round.Entity()
}

// Map returns the metadata of the current map.
func (s *Session) Map() *mapmeta.Map {
	return s.meta
}

// Team returns the live state of a playing side, or nil for spectators.
func (s *Session) Team(id netconfig.TeamID) *components.TeamData {
	entry, ok := s.teams[id]
	if !ok {
		return nil
	}
	return components.Team.Get(entry)
}

// Player returns the entity of a connected player.
func (s *Session) Player(id netconfig.PlayerID) (donburi.Entity, bool) {
	e, ok := s.players[id]
	return e, ok && s.world.Valid(e)
}

// PlayerData returns the component of a player entity, or nil once the
// entity is gone.
func (s *Session) PlayerData(e donburi.Entity) *components.PlayerData {
	if e == donburi.Null || !s.world.Valid(e) {
		return nil
	}
	entry := s.world.Entry(e)
	if !entry.HasComponent(components.Player) {
		return nil
	}
	return components.Player.Get(entry)
}

func (s *Session) objective(e donburi.Entity) *components.ObjectiveData {
	return components.Objective.Get(s.world.Entry(e))
}

// flagOf returns the flag owned by team.
func (s *Session) flagOf(team netconfig.TeamID) *components.ObjectiveData {
	return s.objective(s.Team(team).Flag)
}

func (s *Session) baseOf(team netconfig.TeamID) *components.ObjectiveData {
	return s.objective(s.Team(team).Base)
}

// eachPlayer visits every player entity in storage order.
func (s *Session) eachPlayer(fn func(e donburi.Entity, p *components.PlayerData)) {
	var entries []*donburi.Entry
	components.Player.Each(s.world, func(entry *donburi.Entry) {
		entries = append(entries, entry)
	})
	for _, entry := range entries {
		if !entry.Valid() {
			continue
		}
		fn(entry.Entity(), components.Player.Get(entry))
	}
}

func (s *Session) teamMembers(team netconfig.TeamID) []donburi.Entity {
	var members []donburi.Entity
	s.eachPlayer(func(e donburi.Entity, p *components.PlayerData) {
		if p.Team == team {
			members = append(members, e)
		}
	})
	return members
}

func (s *Session) countAlive() int {
	n := 0
	s.eachPlayer(func(_ donburi.Entity, p *components.PlayerData) {
		if p.Team.Playing() && p.IsAlive() {
			n++
		}
	})
	return n
}

// representative picks the player a team-level event is attributed to:
// the team's last killer, else a random living member, else a random
// member.
func (s *Session) representative(team netconfig.TeamID) (donburi.Entity, bool) {
	td := s.Team(team)
	if td == nil {
		return donburi.Null, false
	}
	if p := s.PlayerData(td.LastKiller); p != nil && p.Team == team {
		return td.LastKiller, true
	}
	members := s.teamMembers(team)
	var alive []donburi.Entity
	for _, e := range members {
		if s.PlayerData(e).IsAlive() {
			alive = append(alive, e)
		}
	}
	if len(alive) > 0 {
		return alive[s.rng.Intn(len(alive))], true
	}
	if len(members) > 0 {
		return members[s.rng.Intn(len(members))], true
	}
	return donburi.Null, false
}

func (s *Session) clearLastKiller(e donburi.Entity) {
	for _, entry := range s.teams {
		td := components.Team.Get(entry)
		if td.LastKiller == e {
			td.LastKiller = donburi.Null
		}
	}
}

func (s *Session) afterRound(delay time.Duration, fn func()) *schedule.Timer {
	live := s.roundTimers[:0]
	for _, t := range s.roundTimers {
		if t.Active() {
			live = append(live, t)
		}
	}
	t := s.sched.After(delay, fn)
	s.roundTimers = append(live, t)
	return t
}

func (s *Session) cancelRoundTimers() {
	for _, t := range s.roundTimers {
		t.Cancel()
	}
	s.roundTimers = nil
}

func (s *Session) extendTimerDelay(d time.Duration) {
	r := s.Round()
	if until := s.clock.Now().Add(d); until.After(r.TimerDelay) {
		r.TimerDelay = until
	}
}

func (s *Session) chat(kind netconfig.ChatKind, text string) messages.ChatEvent {
	return messages.ChatEvent{Kind: kind, Text: text}
}

func (s *Session) broadcastChat(kind netconfig.ChatKind, format string, args ...any) {
	s.out.Broadcast(s.chat(kind, fmt.Sprintf(format, args...)))
}

// sendAll sends a message to every connected player individually.
func (s *Session) sendAll(kind netconfig.ChatKind, text string) {
	s.eachPlayer(func(_ donburi.Entity, p *components.PlayerData) {
		s.out.Send(p.ID, s.chat(kind, text))
	})
}

func (s *Session) sendTo(e donburi.Entity, kind netconfig.ChatKind, text string) {
	if p := s.PlayerData(e); p != nil {
		s.out.Send(p.ID, s.chat(kind, text))
	}
}

// BroadcastChat lets map scripts talk to every player.
func (s *Session) BroadcastChat(msg string) {
	s.out.Broadcast(s.chat(netconfig.ChatSystem, msg))
}

// ScriptError logs a failing map script hook. The round goes on without
// the hook's effect.
func (s *Session) ScriptError(hook string, err error) {
	scriptErrors.WithLabelValues(hook).Inc()
	s.log.Warn("map script hook failed", "map", s.meta.Name, "hook", hook, "err", err)
}

func vecArray(v gamemath.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func maxTime(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}
