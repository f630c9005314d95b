package arena

import (
	"testing"

	"github.com/automoto/voxel-arena/shared/gamemath"
	"github.com/automoto/voxel-arena/shared/messages"
	"github.com/automoto/voxel-arena/shared/netcomponents"
	"github.com/automoto/voxel-arena/shared/netconfig"
	"github.com/automoto/voxel-arena/shared/voxel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yohamta/donburi"
)

func TestObjectivesPlacedOnGround(t *testing.T) {
	f := newFixture(t)
	f.load(bombMap())

	assert.Equal(t, gamemath.Vec3{X: 210, Y: 200, Z: testGround}, f.s.flagOf(netconfig.TeamGreen).Position)
	assert.Equal(t, gamemath.Vec3{X: 90, Y: 100, Z: testGround}, f.s.baseOf(netconfig.TeamBlue).Position)
}

func TestObjectivesHiddenWithoutPlacement(t *testing.T) {
	f := newFixture(t)
	f.load(testMap())

	for _, id := range []netconfig.TeamID{netconfig.TeamBlue, netconfig.TeamGreen} {
		assert.True(t, f.s.flagOf(id).Hidden())
		assert.True(t, f.s.baseOf(id).Hidden())
	}
}

func TestTakeFlagNeedsRunningRound(t *testing.T) {
	f := newFixture(t)
	f.load(bombMap())
	blue := f.join(1, netconfig.TeamBlue)

	f.player(blue).moveTo(greenFlagSpot)
	assert.Equal(t, donburi.Null, f.s.flagOf(netconfig.TeamGreen).Carrier)

	f.s.BeginRound(false)
	f.player(blue).moveTo(greenFlagSpot)
	assert.Equal(t, blue, f.s.flagOf(netconfig.TeamGreen).Carrier)
	require.Len(t, broadcastsOf[messages.IntelPickupEvent](f.out), 1)
}

func TestCaptureFlagWinsRound(t *testing.T) {
	f := newFixture(t)
	blue, _ := f.startRound(bombMap())

	f.player(blue).moveTo(greenFlagSpot)
	f.player(blue).moveTo(gamemath.Vec3{X: 90, Y: 100, Z: 39})

	assert.Equal(t, 1, f.s.Team(netconfig.TeamBlue).Score)
	assert.False(t, f.s.Round().Running)
	flag := f.s.flagOf(netconfig.TeamGreen)
	assert.Equal(t, donburi.Null, flag.Carrier)
	assert.Equal(t, gamemath.Vec3{X: 210, Y: 200, Z: testGround}, flag.Position)

	caps := broadcastsOf[messages.IntelCaptureEvent](f.out)
	require.Len(t, caps, 1)
	assert.Equal(t, netconfig.PlayerID(1), caps[0].PlayerID)
}

func TestKillDropsFlag(t *testing.T) {
	f := newFixture(t)
	blue, green := f.startRound(bombMap())

	f.player(blue).moveTo(greenFlagSpot)
	f.player(blue).moveTo(gamemath.Vec3{X: 230.5, Y: 200.5, Z: 37})
	f.s.Kill(blue, green, netconfig.KillWeapon)

	flag := f.s.flagOf(netconfig.TeamGreen)
	assert.Equal(t, donburi.Null, flag.Carrier)
	assert.Equal(t, gamemath.Vec3{X: 230, Y: 200, Z: testGround}, flag.Position)
	assert.Contains(t, f.out.chats(1), "You dropped the intel.")
}

func TestDisconnectDropsFlag(t *testing.T) {
	f := newFixture(t)
	blue, _ := f.startRound(bombMap())

	f.player(blue).moveTo(greenFlagSpot)
	f.s.Disconnect(blue)

	flag := f.s.flagOf(netconfig.TeamGreen)
	assert.Equal(t, donburi.Null, flag.Carrier)
	assert.False(t, flag.Hidden())
	_, ok := f.s.Player(1)
	assert.False(t, ok)
}

func TestThrowFlag(t *testing.T) {
	f := newFixture(t)
	blue, _ := f.startRound(bombMap())

	assert.Equal(t, "You don't have the intel", f.s.ThrowFlag(blue))

	f.player(blue).moveTo(greenFlagSpot)
	assert.Empty(t, f.s.Command(blue, "/df", nil))

	flag := f.s.flagOf(netconfig.TeamGreen)
	assert.Equal(t, donburi.Null, flag.Carrier)
	assert.Equal(t, gamemath.Vec3{X: 215, Y: 200, Z: testGround}, flag.Position)
}

func TestThrowFlagHitsWall(t *testing.T) {
	f := newFixture(t)
	blue, _ := f.startRound(bombMap())
	require.True(t, f.grid.Build(212, 200, 39, voxel.DefaultColor))

	f.player(blue).moveTo(greenFlagSpot)
	require.Empty(t, f.s.ThrowFlag(blue))

	assert.Equal(t, gamemath.Vec3{X: 212, Y: 200, Z: 39}, f.s.flagOf(netconfig.TeamGreen).Position)
}

func TestFlagCarrierReplicated(t *testing.T) {
	f := newFixture(t)
	blue, _ := f.startRound(bombMap())
	f.player(blue).moveTo(greenFlagSpot)

	f.s.OnWorldUpdate()

	flag := f.s.Team(netconfig.TeamGreen).Flag
	data := netcomponents.NetObjective.Get(f.world.Entry(flag))
	assert.True(t, data.Carried)
	assert.Equal(t, netconfig.PlayerID(1), data.Carrier)
	assert.False(t, data.Hidden)
}
