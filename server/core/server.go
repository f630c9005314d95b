package core

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/automoto/voxel-arena/config"
	"github.com/automoto/voxel-arena/server/arena"
	"github.com/automoto/voxel-arena/shared/gamemath"
	"github.com/automoto/voxel-arena/shared/mapmeta"
	"github.com/automoto/voxel-arena/shared/messages"
	"github.com/automoto/voxel-arena/shared/netcomponents"
	"github.com/automoto/voxel-arena/shared/netconfig"
	"github.com/automoto/voxel-arena/shared/schedule"
	"github.com/automoto/voxel-arena/shared/voxel"
	"github.com/leap-fish/necs/esync"
	"github.com/leap-fish/necs/esync/srvsync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
	"github.com/yohamta/donburi"
)

// ErrNoPlayableMap is returned when every map in the rotation is rejected.
var ErrNoPlayableMap = errors.New("no playable map in rotation")

// inboxSize bounds the commands queued between two ticks.
const inboxSize = 1024

// peer is the part of a network client the server talks to.
type peer interface {
	Id() string
	SendMessage(msg any) error
}

type clientState struct {
	id     netconfig.PlayerID
	entity donburi.Entity
	joined bool
}

// Server owns the world and the arena session. Network callbacks only
// enqueue work; the game loop goroutine is the single writer of the world.
type Server struct {
	cfg   *config.Server
	log   *slog.Logger
	world donburi.World
	sched *schedule.Scheduler
	loop  *GameLoop
	hooks *HookChain

	session   *arena.Session
	transport *transports.WsServerTransport

	maps     map[string]*mapmeta.Map
	rotation []string
	next     int

	inbox chan func()

	mu      sync.RWMutex
	clients map[peer]*clientState
	players map[netconfig.PlayerID]peer
	// status is refreshed every tick for readers outside the loop.
	status Status
}

// Status is the summary advertised to the master server.
type Status struct {
	Players int
	Map     string
	Round   netconfig.RoundStateID
}

// NewServer creates a server playing the given maps. Rotation entries
// missing from maps are skipped; an empty rotation plays every map.
func NewServer(cfg *config.Server, arenaCfg *config.Arena, maps map[string]*mapmeta.Map, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	world := donburi.NewWorld()
	s := &Server{
		cfg:     cfg,
		log:     logger.With("component", "server"),
		world:   world,
		sched:   schedule.NewScheduler(schedule.SystemClock{}),
		hooks:   &HookChain{},
		maps:    maps,
		inbox:   make(chan func(), inboxSize),
		clients: make(map[peer]*clientState),
		players: make(map[netconfig.PlayerID]peer),
	}
	s.rotation = buildRotation(cfg.Rotation, maps)

	srvsync.UseEsync(world)

	s.session = arena.NewSession(arenaCfg, world, s.sched, s, logger,
		arena.WithReplicator(replicator{world: world, log: s.log}))
	s.hooks.Register(s.session)
	s.hooks.Register(&killFeed{players: s.playerName, log: s.log})
	s.session.UseCombatHooks(s.hooks)

	s.loop = NewGameLoop(s, cfg.TickRate, s.log)
	return s
}

func buildRotation(wanted []string, maps map[string]*mapmeta.Map) []string {
	var rotation []string
	for _, name := range wanted {
		if _, ok := maps[name]; ok {
			rotation = append(rotation, name)
		}
	}
	if len(rotation) > 0 {
		return rotation
	}
	for name := range maps {
		rotation = append(rotation, name)
	}
	slices.Sort(rotation)
	return rotation
}

// Start loads the first playable map, then runs the game loop and the
// websocket transport. It blocks until the transport stops.
func (s *Server) Start() error {
	if err := s.AdvanceMap(); err != nil {
		return err
	}
	s.setupRouterCallbacks()
	go s.loop.Run()

	s.transport = transports.NewWsServerTransport(s.cfg.Port, "", nil)
	return s.transport.Start()
}

// Stop ends the game loop.
func (s *Server) Stop() {
	s.loop.Stop()
}

// Session returns the arena session. It must only be used from the loop.
func (s *Server) Session() *arena.Session {
	return s.session
}

// Use registers an extra game mode hook after the arena session.
func (s *Server) Use(h any) {
	s.hooks.Register(h)
}

// AdvanceMap loads the next map of the rotation that the hooks accept.
func (s *Server) AdvanceMap() error {
	for range s.rotation {
		name := s.rotation[s.next%len(s.rotation)]
		s.next++
		meta := s.maps[name]
		if err := s.hooks.OnMapChange(meta, voxel.NewGrid(s.cfg.GroundLevel)); err != nil {
			mapsRejected.Inc()
			s.log.Error("map rejected", "map", name, "err", err)
			continue
		}
		mapsLoaded.Inc()
		s.Broadcast(messages.MapChangeEvent{Name: meta.Name})
		return nil
	}
	return ErrNoPlayableMap
}

// ProcessCommands runs the work queued by network callbacks since the
// last tick.
func (s *Server) ProcessCommands() {
	for {
		select {
		case fn := <-s.inbox:
			fn()
		default:
			return
		}
	}
}

// Update runs one tick of game logic after the queued commands.
func (s *Server) Update() {
	s.ProcessCommands()
	s.sched.RunDue()
	s.hooks.OnWorldUpdate()

	r := s.session.Round()
	s.mu.Lock()
	s.status.Map = r.MapName
	s.status.Round = r.State
	s.mu.Unlock()
}

func (s *Server) enqueue(fn func()) {
	select {
	case s.inbox <- fn:
	default:
		droppedCommands.Inc()
		s.log.Warn("command queue full, dropping client message")
	}
}

func (s *Server) setupRouterCallbacks() {
	router.OnConnect(func(client *router.NetworkClient) {
		s.log.Debug("client connected", "client", client.Id())
	})
	router.OnDisconnect(func(client *router.NetworkClient, err error) {
		if err != nil {
			s.log.Info("client disconnected", "client", client.Id(), "err", err)
		}
		s.enqueue(func() { s.handleDisconnect(client) })
	})
	router.OnError(func(client *router.NetworkClient, err error) {
		s.log.Warn("client error", "client", client.Id(), "err", err)
	})

	router.On(func(client *router.NetworkClient, msg messages.JoinRequest) {
		s.enqueue(func() { s.handleJoin(client, msg) })
	})
	router.On(func(client *router.NetworkClient, msg messages.PlayerInput) {
		s.enqueue(func() { s.handleInput(client, msg) })
	})
	router.On(func(client *router.NetworkClient, msg messages.HitRequest) {
		s.enqueue(func() { s.handleHit(client, msg) })
	})
	router.On(func(client *router.NetworkClient, msg messages.GrenadeRequest) {
		s.enqueue(func() { s.handleGrenade(client, msg) })
	})
	router.On(func(client *router.NetworkClient, msg messages.BlockLineRequest) {
		s.enqueue(func() { s.handleBlockLine(client, msg) })
	})
	router.On(func(client *router.NetworkClient, msg messages.FallRequest) {
		s.enqueue(func() { s.handleFall(client, msg) })
	})
	router.On(func(client *router.NetworkClient, msg messages.TeamChangeRequest) {
		s.enqueue(func() { s.handleTeamChange(client, msg) })
	})
	router.On(func(client *router.NetworkClient, msg messages.CommandRequest) {
		s.enqueue(func() { s.handleCommand(client, msg) })
	})
}

func (s *Server) handleJoin(client peer, req messages.JoinRequest) {
	reject := func(kind, reason string) {
		joinsRejected.WithLabelValues(kind).Inc()
		s.log.Info("join rejected", "client", client.Id(), "player", req.PlayerName, "reason", reason)
		s.send(client, messages.JoinRejected{Reason: reason})
	}

	s.mu.RLock()
	_, already := s.clients[client]
	count := len(s.clients)
	s.mu.RUnlock()

	switch {
	case already:
		reject("duplicate", "already joined")
		return
	case s.cfg.Version != "" && req.Version != s.cfg.Version:
		reject("version", fmt.Sprintf("version mismatch: server %s, client %s", s.cfg.Version, req.Version))
		return
	case count >= s.cfg.MaxPlayers:
		reject("full", "server full")
		return
	case req.Team != netconfig.TeamSpectator && !req.Team.Playing():
		reject("team", "unknown team")
		return
	}

	id, ok := s.freePlayerID()
	if !ok {
		reject("full", "server full")
		return
	}
	admin := s.cfg.AdminPassword != "" && req.Password == s.cfg.AdminPassword

	// Register the client before connecting so the spawn broadcast reaches it.
	state := &clientState{id: id}
	s.mu.Lock()
	s.clients[client] = state
	s.players[id] = client
	s.mu.Unlock()

	state.entity = s.session.Connect(arena.PlayerInfo{
		ID:    id,
		Name:  req.PlayerName,
		Team:  req.Team,
		Admin: admin,
	})
	state.joined = true
	connectedPlayers.Inc()

	var roundID esync.NetworkId
	if nid := esync.GetNetworkId(s.world.Entry(s.session.RoundEntity())); nid != nil {
		roundID = *nid
	}
	s.send(client, messages.JoinAccepted{
		PlayerID:   id,
		RoundID:    roundID,
		ServerName: s.cfg.Name,
		MapName:    s.session.Round().MapName,
		TickRate:   s.cfg.TickRate,
	})
}

// freePlayerID returns the lowest id not held by a connected player.
func (s *Server) freePlayerID() (netconfig.PlayerID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id := 0; id < 256; id++ {
		if _, taken := s.players[netconfig.PlayerID(id)]; !taken {
			return netconfig.PlayerID(id), true
		}
	}
	return 0, false
}

func (s *Server) handleDisconnect(client peer) {
	s.mu.Lock()
	state, ok := s.clients[client]
	if ok {
		delete(s.clients, client)
		delete(s.players, state.id)
	}
	s.mu.Unlock()
	if !ok || !state.joined {
		return
	}
	connectedPlayers.Dec()
	s.session.Disconnect(state.entity)
}

// player returns the entity of a joined client.
func (s *Server) player(client peer) (donburi.Entity, bool) {
	s.mu.RLock()
	state, ok := s.clients[client]
	s.mu.RUnlock()
	if !ok || !state.joined || !s.world.Valid(state.entity) {
		return donburi.Null, false
	}
	return state.entity, true
}

func (s *Server) handleInput(client peer, in messages.PlayerInput) {
	e, ok := s.player(client)
	if !ok {
		return
	}
	s.session.UpdatePosition(e, gamemath.FromArray(in.Position), gamemath.FromArray(in.Orientation))
	s.session.SetTool(e, in.Tool)
	s.session.SetWeaponInput(e, in.PrimaryFire, in.SecondaryFire)
}

func (s *Server) handleHit(client peer, req messages.HitRequest) {
	e, ok := s.player(client)
	if !ok {
		return
	}
	target, ok := s.session.Player(req.TargetID)
	if !ok {
		return
	}
	s.session.Hit(e, target, req.Damage, req.KillType)
}

func (s *Server) handleGrenade(client peer, req messages.GrenadeRequest) {
	e, ok := s.player(client)
	if !ok {
		return
	}
	fuse := time.Duration(req.Fuse * float64(time.Second))
	s.session.ThrowGrenade(e, fuse, gamemath.FromArray(req.Position), gamemath.FromArray(req.Velocity))
}

func (s *Server) handleBlockLine(client peer, req messages.BlockLineRequest) {
	e, ok := s.player(client)
	if !ok {
		return
	}
	a := gamemath.Point{X: req.Start[0], Y: req.Start[1], Z: req.Start[2]}
	b := gamemath.Point{X: req.End[0], Y: req.End[1], Z: req.End[2]}
	s.session.BuildLine(e, a, b, req.Color)
}

func (s *Server) handleFall(client peer, req messages.FallRequest) {
	if e, ok := s.player(client); ok {
		s.session.Fall(e, req.Damage)
	}
}

func (s *Server) handleTeamChange(client peer, req messages.TeamChangeRequest) {
	if req.Team != netconfig.TeamSpectator && !req.Team.Playing() {
		return
	}
	if e, ok := s.player(client); ok {
		s.session.SetTeam(e, req.Team)
	}
}

func (s *Server) handleCommand(client peer, req messages.CommandRequest) {
	e, ok := s.player(client)
	if !ok {
		return
	}
	var reply string
	if req.Name == "nextmap" || req.Name == "/nextmap" {
		reply = s.nextMapCommand(e)
	} else {
		reply = s.session.Command(e, req.Name, req.Args)
	}
	if reply != "" {
		s.send(client, messages.CommandReply{Text: reply})
	}
}

func (s *Server) nextMapCommand(e donburi.Entity) string {
	if p := s.session.PlayerData(e); p == nil || !p.Admin {
		return "You aren't allowed to change the map."
	}
	if err := s.AdvanceMap(); err != nil {
		s.log.Error("map rotation failed", "err", err)
		return "No playable map in rotation"
	}
	return ""
}

// Broadcast sends msg to every joined client.
func (s *Server) Broadcast(msg any) {
	s.mu.RLock()
	targets := make([]peer, 0, len(s.players))
	for _, c := range s.players {
		targets = append(targets, c)
	}
	s.mu.RUnlock()
	for _, c := range targets {
		s.send(c, msg)
	}
}

// Send delivers msg to a single player.
func (s *Server) Send(player netconfig.PlayerID, msg any) {
	s.mu.RLock()
	c, ok := s.players[player]
	s.mu.RUnlock()
	if ok {
		s.send(c, msg)
	}
}

func (s *Server) send(c peer, msg any) {
	if err := c.SendMessage(msg); err != nil {
		s.log.Warn("send failed", "client", c.Id(), "msg", fmt.Sprintf("%T", msg), "err", err)
	}
}

func (s *Server) playerName(e donburi.Entity) string {
	if p := s.session.PlayerData(e); p != nil {
		return p.Name
	}
	return ""
}

// PlayerCount returns the number of joined players. Safe for concurrent use.
func (s *Server) PlayerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

// Status returns the state as of the last tick. Safe for concurrent use.
func (s *Server) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.status
	st.Players = len(s.players)
	return st
}

// replicator marks arena entities for esync with the net component they
// carry.
type replicator struct {
	world donburi.World
	log   *slog.Logger
}

func (r replicator) Replicate(e donburi.Entity) {
	entry := r.world.Entry(e)
	var err error
	switch {
	case entry.HasComponent(netcomponents.NetRound):
		err = srvsync.NetworkSync(r.world, &e, netcomponents.NetRound)
	case entry.HasComponent(netcomponents.NetObjective):
		err = srvsync.NetworkSync(r.world, &e, netcomponents.NetObjective)
	default:
		return
	}
	if err != nil {
		r.log.Error("network sync setup failed", "entity", e, "err", err)
	}
}
