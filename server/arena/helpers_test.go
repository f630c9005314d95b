package arena

import (
	"io"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/automoto/voxel-arena/config"
	"github.com/automoto/voxel-arena/shared/gamemath"
	"github.com/automoto/voxel-arena/shared/mapmeta"
	"github.com/automoto/voxel-arena/shared/messages"
	"github.com/automoto/voxel-arena/shared/netconfig"
	"github.com/automoto/voxel-arena/shared/schedule"
	"github.com/automoto/voxel-arena/shared/voxel"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"
)

const testGround = 40

var testEpoch = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

type recorder struct {
	broadcasts []any
	sent       map[netconfig.PlayerID][]any
}

func newRecorder() *recorder {
	return &recorder{sent: make(map[netconfig.PlayerID][]any)}
}

func (r *recorder) Broadcast(msg any) {
	r.broadcasts = append(r.broadcasts, msg)
}

func (r *recorder) Send(player netconfig.PlayerID, msg any) {
	r.sent[player] = append(r.sent[player], msg)
}

func (r *recorder) reset() {
	r.broadcasts = nil
	r.sent = make(map[netconfig.PlayerID][]any)
}

// chats returns the chat lines sent to one player.
func (r *recorder) chats(player netconfig.PlayerID) []string {
	var out []string
	for _, msg := range r.sent[player] {
		if c, ok := msg.(messages.ChatEvent); ok {
			out = append(out, c.Text)
		}
	}
	return out
}

func (r *recorder) broadcastChats() []string {
	var out []string
	for _, msg := range r.broadcasts {
		if c, ok := msg.(messages.ChatEvent); ok {
			out = append(out, c.Text)
		}
	}
	return out
}

func broadcastsOf[T any](r *recorder) []T {
	var out []T
	for _, msg := range r.broadcasts {
		if m, ok := msg.(T); ok {
			out = append(out, m)
		}
	}
	return out
}

type fixture struct {
	t     *testing.T
	cfg   *config.Arena
	clock *schedule.ManualClock
	sched *schedule.Scheduler
	out   *recorder
	grid  *voxel.Grid
	world donburi.World
	s     *Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.DefaultArena()
	clock := schedule.NewManualClock(testEpoch)
	sched := schedule.NewScheduler(clock)
	out := newRecorder()
	world := donburi.NewWorld()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{
		t:     t,
		cfg:   cfg,
		clock: clock,
		sched: sched,
		out:   out,
		grid:  voxel.NewGrid(testGround),
		world: world,
		s:     NewSession(cfg, world, sched, out, logger, WithRand(rand.New(rand.NewSource(1)))),
	}
}

// testMap is a flat map with one spawn per team and no objectives.
func testMap() *mapmeta.Map {
	return &mapmeta.Map{
		Name: "flat",
		Blue: mapmeta.TeamMeta{
			Spawns: []gamemath.Point{{X: 100, Y: 100, Z: 0}},
		},
		Green: mapmeta.TeamMeta{
			Spawns: []gamemath.Point{{X: 200, Y: 200, Z: 0}},
		},
	}
}

// bombMap lets blue plant on one bombsite; both flags and bases are
// placed.
func bombMap() *mapmeta.Map {
	m := testMap()
	m.Name = "bomb"
	m.Blue.HasBombsites = true
	m.Blue.Bombsites = []mapmeta.Box{{
		Min: gamemath.Vec3{X: 290, Y: 290, Z: 0},
		Max: gamemath.Vec3{X: 300, Y: 300, Z: 63},
	}}
	m.Blue.Flag = &gamemath.Vec3{X: 110, Y: 100, Z: 0}
	m.Blue.Base = &gamemath.Vec3{X: 90, Y: 100, Z: 0}
	m.Green.Flag = &gamemath.Vec3{X: 210, Y: 200, Z: 0}
	m.Green.Base = &gamemath.Vec3{X: 190, Y: 200, Z: 0}
	return m
}

func durationPtr(d time.Duration) *time.Duration {
	return &d
}

func (f *fixture) load(meta *mapmeta.Map) {
	f.t.Helper()
	require.NoError(f.t, f.s.OnMapChange(meta, f.grid))
}

func (f *fixture) join(id netconfig.PlayerID, team netconfig.TeamID) donburi.Entity {
	return f.s.Connect(PlayerInfo{ID: id, Name: "p" + string(rune('0'+id)), Team: team})
}

// advance moves the clock, fires due timers and runs one world update.
func (f *fixture) advance(d time.Duration) {
	f.clock.Advance(d)
	f.sched.RunDue()
	f.s.OnWorldUpdate()
}

// startRound loads m with one player per team and starts the round.
func (f *fixture) startRound(m *mapmeta.Map) (blue, green donburi.Entity) {
	f.t.Helper()
	f.load(m)
	blue = f.join(1, netconfig.TeamBlue)
	green = f.join(2, netconfig.TeamGreen)
	f.s.BeginRound(false)
	require.True(f.t, f.s.Round().Running)
	f.out.reset()
	return blue, green
}

func (f *fixture) player(e donburi.Entity) *playerView {
	return &playerView{f: f, e: e}
}

type playerView struct {
	f *fixture
	e donburi.Entity
}

func (v *playerView) alive() bool {
	return v.f.s.PlayerData(v.e).IsAlive()
}

func (v *playerView) moveTo(pos gamemath.Vec3) {
	v.f.s.UpdatePosition(v.e, pos, gamemath.Vec3{X: 1})
}
