package arena

import (
	"testing"
	"time"

	"github.com/automoto/voxel-arena/shared/gamemath"
	"github.com/automoto/voxel-arena/shared/netconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"
)

var (
	greenFlagSpot = gamemath.Vec3{X: 210, Y: 200, Z: 39}
	bombsiteSpot  = gamemath.Vec3{X: 295, Y: 295, Z: 39}
)

// plantBomb has blue pick up the green flag and plant on the bombsite.
func (f *fixture) plantBomb(blue donburi.Entity) {
	f.t.Helper()
	f.player(blue).moveTo(greenFlagSpot)
	require.Equal(f.t, blue, f.s.flagOf(netconfig.TeamGreen).Carrier)
	f.player(blue).moveTo(bombsiteSpot)
	require.Empty(f.t, f.s.Plant(blue))
	require.NotEqual(f.t, donburi.Null, f.s.Team(netconfig.TeamBlue).Bomb)
}

func TestPlantRejections(t *testing.T) {
	f := newFixture(t)
	f.load(bombMap())
	blue := f.join(1, netconfig.TeamBlue)
	green := f.join(2, netconfig.TeamGreen)

	assert.Equal(t, "Your team cannot plant the bomb on this map.", f.s.Plant(green))
	assert.Equal(t, "The round hasn't started yet.", f.s.Plant(blue))

	f.s.BeginRound(false)
	assert.Equal(t, "You don't have the intel.", f.s.Plant(blue))

	f.player(blue).moveTo(greenFlagSpot)
	assert.Equal(t, "A bombsite is too far.", f.s.Plant(blue))

	f.player(blue).moveTo(bombsiteSpot)
	assert.Empty(t, f.s.Plant(blue))
	assert.Equal(t, "The bomb has already been planted.", f.s.Plant(blue))
}

func TestPlantArmsBomb(t *testing.T) {
	f := newFixture(t)
	blue, _ := f.startRound(bombMap())

	f.plantBomb(blue)

	flag := f.s.flagOf(netconfig.TeamGreen)
	assert.True(t, flag.Hidden())
	assert.Equal(t, donburi.Null, flag.Carrier)

	bomb := f.s.bombData(f.s.Team(netconfig.TeamBlue).Bomb)
	require.NotNil(t, bomb)
	assert.Equal(t, bombsiteSpot, bomb.Position)
	assert.Equal(t, testEpoch.Add(45*time.Second), bomb.Timer.Deadline())

	r := f.s.Round()
	assert.Equal(t, testEpoch.Add(48*time.Second), r.TimerDelay)
	assert.Equal(t, testEpoch.Add(120*time.Second), r.LimitDeadline)
	assert.Contains(t, f.out.chats(1), "The bomb has been planted.")
	assert.Contains(t, f.out.chats(2), "The bomb has been planted.")
}

func TestPlantExtendsShortTimeLimit(t *testing.T) {
	f := newFixture(t)
	m := bombMap()
	m.TimeLimit = durationPtr(30 * time.Second)
	blue, _ := f.startRound(m)

	f.plantBomb(blue)

	assert.Equal(t, testEpoch.Add(48*time.Second), f.s.Round().LimitDeadline)
}

func TestDefuse(t *testing.T) {
	f := newFixture(t)
	blue, green := f.startRound(bombMap())
	f.plantBomb(blue)
	f.player(blue).moveTo(gamemath.Vec3{X: 280, Y: 280, Z: 39})
	f.player(green).moveTo(gamemath.Vec3{X: 296, Y: 295, Z: 39})

	f.s.TryDefuse(green)
	assert.Equal(t, []string{"The bomb has been planted.", "DEFUSING"}, f.out.chats(2))

	f.clock.Advance(10 * time.Second)
	f.s.TryDefuse(green)
	assert.NotEqual(t, donburi.Null, f.s.Team(netconfig.TeamBlue).Bomb, "defusing takes strictly longer than the defuse time")

	f.clock.Advance(time.Millisecond)
	f.s.TryDefuse(green)
	assert.Equal(t, donburi.Null, f.s.Team(netconfig.TeamBlue).Bomb)
	assert.Contains(t, f.out.chats(1), "The bomb has been defused.")
	assert.Contains(t, f.out.chats(2), "The bomb has been defused.")
}

func TestDefuseKitShortensDefuse(t *testing.T) {
	f := newFixture(t)
	blue, green := f.startRound(bombMap())

	f.player(green).moveTo(gamemath.Vec3{X: 190, Y: 200, Z: 39})
	require.True(t, f.s.PlayerData(green).HasDefuseKit)
	assert.Contains(t, f.out.chats(2), "You've been given a defuse kit.")

	f.plantBomb(blue)
	f.player(green).moveTo(gamemath.Vec3{X: 296, Y: 295, Z: 39})
	f.s.TryDefuse(green)
	f.clock.Advance(5*time.Second + time.Millisecond)
	f.s.TryDefuse(green)

	assert.Equal(t, donburi.Null, f.s.Team(netconfig.TeamBlue).Bomb)
	assert.False(t, f.s.PlayerData(green).HasDefuseKit)
}

func TestDefuseCancelledWhenLeaving(t *testing.T) {
	f := newFixture(t)
	blue, green := f.startRound(bombMap())
	f.plantBomb(blue)

	f.player(green).moveTo(gamemath.Vec3{X: 296, Y: 295, Z: 39})
	f.s.TryDefuse(green)
	f.player(green).moveTo(gamemath.Vec3{X: 250, Y: 250, Z: 39})
	f.s.TryDefuse(green)

	assert.Contains(t, f.out.chats(2), "The bomb was not defused.")
	assert.False(t, f.s.PlayerData(green).Defusing())
}

func TestDefuseProgressDoesNotCarryOver(t *testing.T) {
	f := newFixture(t)
	blue, green := f.startRound(bombMap())
	f.plantBomb(blue)
	onBomb := gamemath.Vec3{X: 296, Y: 295, Z: 39}

	f.player(green).moveTo(onBomb)
	f.s.TryDefuse(green)
	f.clock.Advance(8 * time.Second)
	f.s.TryDefuse(green)

	f.player(green).moveTo(gamemath.Vec3{X: 250, Y: 250, Z: 39})
	f.s.TryDefuse(green)
	require.False(t, f.s.PlayerData(green).Defusing())

	f.player(green).moveTo(onBomb)
	f.s.TryDefuse(green)
	f.clock.Advance(3 * time.Second)
	f.s.TryDefuse(green)

	assert.NotEqual(t, donburi.Null, f.s.Team(netconfig.TeamBlue).Bomb)
	assert.True(t, f.s.PlayerData(green).Defusing())
	assert.NotContains(t, f.out.chats(2), "The bomb has been defused.")
}

func TestBombExplosionWinsRound(t *testing.T) {
	f := newFixture(t)
	blue, green := f.startRound(bombMap())
	f.plantBomb(blue)
	f.player(blue).moveTo(gamemath.Vec3{X: 280, Y: 295, Z: 39})

	f.advance(45 * time.Second)
	assert.Equal(t, 0, f.s.Team(netconfig.TeamBlue).Score)
	assert.Equal(t, donburi.Null, f.s.Team(netconfig.TeamBlue).Bomb)
	assert.Less(t, f.s.PlayerData(green).HP, 100, "the bomb hurts exposed players")

	f.advance(3 * time.Second)
	assert.Equal(t, 1, f.s.Team(netconfig.TeamBlue).Score)
	assert.Contains(t, f.out.chats(2), "Blue team wins the round")
}

func TestDefusedBombHandsRoundToDefenders(t *testing.T) {
	f := newFixture(t)
	blue, green := f.startRound(bombMap())
	f.plantBomb(blue)

	f.player(green).moveTo(gamemath.Vec3{X: 296, Y: 295, Z: 39})
	f.s.TryDefuse(green)
	f.clock.Advance(11 * time.Second)
	f.s.TryDefuse(green)
	require.Equal(t, donburi.Null, f.s.Team(netconfig.TeamBlue).Bomb)

	f.advance(34 * time.Second)

	assert.Equal(t, 1, f.s.Team(netconfig.TeamGreen).Score)
	assert.Equal(t, 0, f.s.Team(netconfig.TeamBlue).Score)
}

func TestMapChangeRemovesBomb(t *testing.T) {
	f := newFixture(t)
	blue, _ := f.startRound(bombMap())
	f.plantBomb(blue)

	f.load(bombMap())

	assert.Equal(t, donburi.Null, f.s.Team(netconfig.TeamBlue).Bomb)
	f.advance(45 * time.Second)
	assert.Equal(t, 0, f.s.Team(netconfig.TeamBlue).Score)
	assert.Equal(t, 0, f.s.Team(netconfig.TeamGreen).Score)
}

func TestMapChangeClearsEliminationDelay(t *testing.T) {
	f := newFixture(t)
	blue, green := f.startRound(bombMap())
	f.plantBomb(blue)
	require.True(t, f.s.Round().TimerDelay.After(f.clock.Now()))

	f.load(testMap())
	assert.True(t, f.s.Round().TimerDelay.IsZero())
	assert.False(t, f.s.Round().HasLimit())

	f.advance(15 * time.Second)
	require.True(t, f.s.Round().Running)

	f.s.Kill(green, blue, netconfig.KillWeapon)
	f.advance(time.Second)

	assert.Equal(t, 1, f.s.Team(netconfig.TeamBlue).Score)
	assert.False(t, f.s.Round().Running)
}

func TestBombsiteIndexPicksFirstMatch(t *testing.T) {
	m := bombMap()
	m.Blue.Bombsites = append(m.Blue.Bombsites, m.Blue.Bombsites[0])
	idx := newBombsiteIndex(m.Blue.Bombsites)

	site, ok := idx.Find(bombsiteSpot)
	require.True(t, ok)
	assert.Equal(t, 0, site)

	_, ok = idx.Find(gamemath.Vec3{X: 301, Y: 295, Z: 39})
	assert.False(t, ok)

	site, ok = idx.Find(gamemath.Vec3{X: 300, Y: 300, Z: 63})
	assert.True(t, ok, "bounds are inclusive")
	assert.Equal(t, 0, site)
}
