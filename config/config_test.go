package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadArenaDefaults(t *testing.T) {
	a, err := LoadArena()
	require.NoError(t, err)

	assert.Equal(t, DefaultArena(), a)
}

func TestLoadArenaOverrides(t *testing.T) {
	t.Setenv("ARENA_BOMB_FUSE", "30s")
	t.Setenv("ARENA_FRIENDLY_FIRE", "true")

	a, err := LoadArena()
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, a.BombFuse)
	assert.True(t, a.FriendlyFire)
	assert.Equal(t, 10*time.Second, a.BreakTime)
}

func TestLoadArenaRejectsShortBreak(t *testing.T) {
	t.Setenv("ARENA_BREAK_TIME", "4s")

	_, err := LoadArena()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestArenaValidate(t *testing.T) {
	a := DefaultArena()
	require.NoError(t, a.Validate())

	a.BlastRadius = 2048
	assert.ErrorIs(t, a.Validate(), ErrInvalidConfig)
}

func TestLoadServer(t *testing.T) {
	t.Setenv("SERVER_ROTATION", "dust,hallway")

	s, err := LoadServer()
	require.NoError(t, err)

	assert.Equal(t, uint(7373), s.Port)
	assert.Equal(t, []string{"dust", "hallway"}, s.Rotation)
}

func TestLoadServerRejectsZeroTickRate(t *testing.T) {
	t.Setenv("SERVER_TICK_RATE", "0")

	_, err := LoadServer()
	assert.Error(t, err)
}
