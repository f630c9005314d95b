package arena

import (
	"errors"
	"testing"
	"time"

	"github.com/automoto/voxel-arena/shared/gamemath"
	"github.com/automoto/voxel-arena/shared/mapmeta"
	"github.com/automoto/voxel-arena/shared/messages"
	"github.com/automoto/voxel-arena/shared/netcomponents"
	"github.com/automoto/voxel-arena/shared/netconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapChangeStartsCountdown(t *testing.T) {
	f := newFixture(t)
	f.load(testMap())

	r := f.s.Round()
	assert.True(t, r.CountingDown)
	assert.False(t, r.Running)
	assert.Equal(t, netconfig.RoundCountingDown, r.State)
	assert.Equal(t, "flat", r.MapName)
	assert.Equal(t, 2, f.sched.Pending())
}

func TestBeginCountdownIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.load(testMap())
	f.join(1, netconfig.TeamBlue)
	f.join(2, netconfig.TeamGreen)

	f.s.BeginCountdown(5 * time.Second)
	f.s.BeginCountdown(time.Second)
	assert.Equal(t, 2, f.sched.Pending())

	f.advance(5 * time.Second)
	assert.False(t, f.s.Round().Running)

	f.advance(10 * time.Second)
	assert.True(t, f.s.Round().Running)
}

func TestBeginCountdownZeroStartsImmediately(t *testing.T) {
	f := newFixture(t)
	f.load(testMap())

	f.s.BeginCountdown(0)

	r := f.s.Round()
	assert.True(t, r.Running)
	assert.False(t, r.CountingDown)
	assert.Equal(t, 0, f.sched.Pending())
}

func TestCountdownDoesNotStartEarly(t *testing.T) {
	f := newFixture(t)
	f.load(testMap())
	f.join(1, netconfig.TeamBlue)
	f.join(2, netconfig.TeamGreen)

	f.advance(15*time.Second - time.Millisecond)
	assert.False(t, f.s.Round().Running)

	f.advance(time.Millisecond)
	assert.True(t, f.s.Round().Running)
	assert.Contains(t, f.out.broadcastChats(), "There is a time limit of 120 seconds for this round")
}

func TestBeginRoundWaitsForBothTeams(t *testing.T) {
	f := newFixture(t)
	f.load(testMap())
	f.join(1, netconfig.TeamBlue)

	f.advance(15 * time.Second)

	r := f.s.Round()
	assert.False(t, r.Running)
	assert.True(t, r.CountingDown)
	assert.Empty(t, f.out.chats(1), "warning is skipped while a team is empty")
}

func TestCountdownWarning(t *testing.T) {
	f := newFixture(t)
	f.load(testMap())
	f.join(1, netconfig.TeamBlue)
	f.join(2, netconfig.TeamGreen)

	f.advance(10 * time.Second)

	assert.Equal(t, []string{"5 seconds"}, f.out.chats(1))
	assert.Equal(t, []string{"5 seconds"}, f.out.chats(2))
}

func TestEliminationWin(t *testing.T) {
	f := newFixture(t)
	blue, green := f.startRound(testMap())

	f.s.Kill(green, blue, netconfig.KillWeapon)
	assert.False(t, f.player(green).alive(), "negative respawn time keeps the player dead")

	f.advance(time.Second)

	assert.Equal(t, 1, f.s.Team(netconfig.TeamBlue).Score)
	assert.Equal(t, 0, f.s.Team(netconfig.TeamGreen).Score)
	assert.False(t, f.s.Round().Running)
	assert.True(t, f.s.Round().CountingDown)
	assert.Contains(t, f.out.chats(1), "Blue team wins the round")
	assert.Contains(t, f.out.chats(2), "Blue team wins the round")

	pickups := broadcastsOf[messages.IntelPickupEvent](f.out)
	require.Len(t, pickups, 1)
	assert.Equal(t, netconfig.PlayerID(1), pickups[0].PlayerID)
	assert.True(t, f.player(green).alive(), "everyone respawns for the next round")
}

func TestEliminationNeedsAliveCountChange(t *testing.T) {
	f := newFixture(t)
	_, green := f.startRound(testMap())

	f.advance(time.Second)
	f.advance(time.Second)
	assert.True(t, f.s.Round().Running)

	f.s.Kill(green, green, netconfig.KillFall)
	f.advance(500 * time.Millisecond)
	assert.True(t, f.s.Round().Running, "no heartbeat yet")

	f.advance(500 * time.Millisecond)
	assert.False(t, f.s.Round().Running)
	assert.Equal(t, 1, f.s.Team(netconfig.TeamBlue).Score)
}

func TestDraw(t *testing.T) {
	f := newFixture(t)
	blue, green := f.startRound(testMap())

	f.s.Kill(blue, blue, netconfig.KillFall)
	f.s.Kill(green, green, netconfig.KillFall)
	f.advance(time.Second)

	assert.Contains(t, f.out.broadcastChats(), "Draw")
	assert.Equal(t, 0, f.s.Team(netconfig.TeamBlue).Score)
	assert.Equal(t, 0, f.s.Team(netconfig.TeamGreen).Score)
	assert.True(t, f.s.Round().CountingDown)
}

func TestTimerDelayHoldsElimination(t *testing.T) {
	f := newFixture(t)
	blue, green := f.startRound(testMap())

	f.s.extendTimerDelay(3 * time.Second)
	f.s.Kill(green, blue, netconfig.KillWeapon)

	f.advance(time.Second)
	f.advance(time.Second)
	assert.True(t, f.s.Round().Running)

	f.advance(time.Second)
	assert.False(t, f.s.Round().Running)
	assert.Equal(t, 1, f.s.Team(netconfig.TeamBlue).Score)
}

func TestTimeLimitTie(t *testing.T) {
	f := newFixture(t)
	f.startRound(testMap())

	f.advance(120 * time.Second)

	assert.Contains(t, f.out.broadcastChats(), "Tie")
	assert.False(t, f.s.Round().Running)
	assert.False(t, f.s.Round().HasLimit())
}

func TestTimeLimitFavoursMoreAlive(t *testing.T) {
	f := newFixture(t)
	f.load(testMap())
	f.join(1, netconfig.TeamBlue)
	f.join(2, netconfig.TeamGreen)
	f.join(3, netconfig.TeamBlue)
	f.s.BeginRound(false)

	f.advance(120 * time.Second)

	assert.Equal(t, 1, f.s.Team(netconfig.TeamBlue).Score)
}

func TestTimeLimitFavoursSideWithoutBomb(t *testing.T) {
	f := newFixture(t)
	f.load(bombMap())
	f.join(1, netconfig.TeamBlue)
	f.join(2, netconfig.TeamGreen)
	f.join(3, netconfig.TeamBlue)
	f.s.BeginRound(false)

	f.advance(120 * time.Second)

	assert.Equal(t, 0, f.s.Team(netconfig.TeamBlue).Score)
	assert.Equal(t, 1, f.s.Team(netconfig.TeamGreen).Score)
}

func TestMapTimeLimitOverride(t *testing.T) {
	f := newFixture(t)
	m := testMap()
	m.TimeLimit = durationPtr(0)
	f.startRound(m)

	assert.False(t, f.s.Round().HasLimit())
	f.advance(10 * time.Minute)
	assert.True(t, f.s.Round().Running)
}

func TestArenaWinWithEmptyTeam(t *testing.T) {
	f := newFixture(t)
	f.load(testMap())
	f.join(1, netconfig.TeamBlue)
	f.s.BeginRound(false)

	assert.NotPanics(t, func() { f.s.ArenaWin(netconfig.TeamGreen) })
	assert.True(t, f.s.Round().Running)
	assert.Equal(t, 0, f.s.Team(netconfig.TeamGreen).Score)
}

func TestArenaWinIgnoredOutsideRound(t *testing.T) {
	f := newFixture(t)
	f.load(testMap())
	f.join(1, netconfig.TeamBlue)
	f.join(2, netconfig.TeamGreen)

	f.s.ArenaWin(netconfig.TeamBlue)
	assert.Equal(t, 0, f.s.Team(netconfig.TeamBlue).Score)
}

func TestRepresentativePrefersLastKiller(t *testing.T) {
	f := newFixture(t)
	f.load(testMap())
	f.join(1, netconfig.TeamBlue)
	f.join(2, netconfig.TeamGreen)
	killer := f.join(3, netconfig.TeamBlue)
	green2 := f.join(4, netconfig.TeamGreen)
	f.s.BeginRound(false)

	f.s.Kill(green2, killer, netconfig.KillWeapon)
	f.s.ArenaWin(netconfig.TeamBlue)

	pickups := broadcastsOf[messages.IntelPickupEvent](f.out)
	require.Len(t, pickups, 1)
	assert.Equal(t, netconfig.PlayerID(3), pickups[0].PlayerID)
}

func TestMapChangeRejectsMissingSpawns(t *testing.T) {
	f := newFixture(t)
	f.load(testMap())

	bad := testMap()
	bad.Name = "broken"
	bad.Green.Spawns = nil
	err := f.s.OnMapChange(bad, f.grid)

	require.Error(t, err)
	assert.True(t, errors.Is(err, mapmeta.ErrMissingSpawns))
	var cfgErr *mapmeta.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "arena_green_spawns", cfgErr.Key)
	assert.Equal(t, "flat", f.s.Round().MapName)
}

type failingScript struct{}

func (failingScript) ArenaHooks(mapmeta.ScriptHost) (mapmeta.ArenaHooks, error) {
	return mapmeta.ArenaHooks{}, errors.New("boom")
}

func TestMapChangeRejectsBrokenScript(t *testing.T) {
	f := newFixture(t)
	m := testMap()
	m.Script = failingScript{}

	err := f.s.OnMapChange(m, f.grid)

	var cfgErr *mapmeta.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "arena_script", cfgErr.Key)
	assert.Equal(t, netconfig.RoundAwaitingPlayers, f.s.Round().State)
}

func TestMapChangeRestartsCountdown(t *testing.T) {
	f := newFixture(t)
	f.load(testMap())
	f.join(1, netconfig.TeamBlue)
	f.join(2, netconfig.TeamGreen)

	f.advance(10 * time.Second)
	f.load(testMap())

	f.advance(6 * time.Second)
	assert.False(t, f.s.Round().Running, "the first map's start timer was cancelled")

	f.advance(9 * time.Second)
	assert.True(t, f.s.Round().Running)
}

func TestMapChangeResetsBlastRadius(t *testing.T) {
	f := newFixture(t)
	f.load(testMap())
	f.s.Round().BlastRadius = 10

	f.load(testMap())
	assert.Equal(t, 128.0, f.s.Round().BlastRadius)
}

func TestSwapSpawns(t *testing.T) {
	f := newFixture(t)
	m := testMap()
	m.SwapSpawns = true
	f.load(m)

	assert.Equal(t, []gamemath.Point{{X: 200, Y: 200, Z: 0}}, f.s.Team(netconfig.TeamBlue).Spawns)
	blue := f.join(1, netconfig.TeamBlue)
	assert.Equal(t, gamemath.Vec3{X: 200.5, Y: 200.5, Z: testGround - 3}, f.s.PlayerData(blue).Position)
}

func TestMapHooks(t *testing.T) {
	f := newFixture(t)
	var begins, ends, beats int
	m := testMap()
	m.Script = mapmeta.StaticHooks{
		Begin:     func() { begins++ },
		End:       func() { ends++ },
		Heartbeat: func(time.Time) { beats++ },
		Warning: func(seconds int) (string, bool) {
			return "get ready", true
		},
	}
	f.load(m)
	f.join(1, netconfig.TeamBlue)
	f.join(2, netconfig.TeamGreen)
	assert.Equal(t, 1, ends)

	f.advance(15 * time.Second)

	assert.Equal(t, 1, begins)
	assert.Equal(t, 1, beats)
	assert.Equal(t, []string{"get ready"}, f.out.chats(1))
}

func TestWarningHookCanSuppress(t *testing.T) {
	f := newFixture(t)
	m := testMap()
	m.Script = mapmeta.StaticHooks{
		Warning: func(int) (string, bool) { return "", false },
	}
	f.load(m)
	f.join(1, netconfig.TeamBlue)
	f.join(2, netconfig.TeamGreen)

	f.advance(10 * time.Second)
	assert.Empty(t, f.out.chats(1))
}

func TestNetRoundSync(t *testing.T) {
	f := newFixture(t)
	f.startRound(testMap())

	f.advance(20 * time.Second)

	data := netcomponents.NetRound.Get(f.s.round)
	assert.Equal(t, netconfig.RoundRunning, data.State)
	assert.InDelta(t, 100.0, data.Remaining, 1e-9)
	assert.Equal(t, 1, data.BlueAlive)
	assert.Equal(t, "flat", data.MapName)
}
