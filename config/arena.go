package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// MinBreakTime is the shortest allowed pause between rounds. The countdown
// warning fires five seconds before the round starts.
const MinBreakTime = 5 * time.Second

// MaxBlastRadius bounds the grenade blast radius.
const MaxBlastRadius = 1024.0

// Arena holds the gameplay constants of the arena mode. A value is built
// once at startup and shared read-only by every component; per-map metadata
// may override the round durations for a single map.
type Arena struct {
	BreakTime      time.Duration `envconfig:"BREAK_TIME" default:"10s"`
	TimeLimit      time.Duration `envconfig:"TIME_LIMIT" default:"120s"`
	MapChangeDelay time.Duration `envconfig:"MAP_CHANGE_DELAY" default:"15s"`
	HeartbeatRate  time.Duration `envconfig:"HEARTBEAT_RATE" default:"1s"`
	// CountdownWarning is how long before a round start players are warned.
	CountdownWarning time.Duration `envconfig:"COUNTDOWN_WARNING" default:"5s"`

	BombFuse              time.Duration `envconfig:"BOMB_FUSE" default:"45s"`
	BombExplosionDuration time.Duration `envconfig:"BOMB_EXPLOSION_DURATION" default:"3s"`
	DefuseTime            time.Duration `envconfig:"DEFUSE_TIME" default:"10s"`
	DefuseKitTime         time.Duration `envconfig:"DEFUSE_KIT_TIME" default:"5s"`
	BombBlastRadius       float64       `envconfig:"BOMB_BLAST_RADIUS" default:"512"`
	BombEffectBursts      int           `envconfig:"BOMB_EFFECT_BURSTS" default:"5"`

	FlagThrowDistance float64       `envconfig:"FLAG_THROW_DISTANCE" default:"5"`
	BlastRadius       float64       `envconfig:"BLAST_RADIUS" default:"128"`
	GrenadeFuse       time.Duration `envconfig:"GRENADE_FUSE" default:"3s"`
	SpadenadeWindow   time.Duration `envconfig:"SPADENADE_WINDOW" default:"1s"`
	WallTunnelReach   float64       `envconfig:"WALL_TUNNEL_REACH" default:"3"`
	FriendlyFire      bool          `envconfig:"FRIENDLY_FIRE" default:"false"`

	// HitLagAllowance is how long after dying a player's hits still land.
	HitLagAllowance time.Duration `envconfig:"HIT_LAG_ALLOWANCE" default:"150ms"`

	MaxHP    int `envconfig:"MAX_HP" default:"100"`
	Grenades int `envconfig:"GRENADES" default:"3"`
	Blocks   int `envconfig:"BLOCKS" default:"50"`
}

// DefaultArena returns the stock arena configuration.
func DefaultArena() *Arena {
	return &Arena{
		BreakTime:        10 * time.Second,
		TimeLimit:        120 * time.Second,
		MapChangeDelay:   15 * time.Second,
		HeartbeatRate:    time.Second,
		CountdownWarning: 5 * time.Second,

		BombFuse:              45 * time.Second,
		BombExplosionDuration: 3 * time.Second,
		DefuseTime:            10 * time.Second,
		DefuseKitTime:         5 * time.Second,
		BombBlastRadius:       512,
		BombEffectBursts:      5,

		FlagThrowDistance: 5,
		BlastRadius:       128,
		GrenadeFuse:       3 * time.Second,
		SpadenadeWindow:   time.Second,
		WallTunnelReach:   3,
		HitLagAllowance:   150 * time.Millisecond,

		MaxHP:    100,
		Grenades: 3,
		Blocks:   50,
	}
}

// LoadArena reads ARENA_* environment variables over the defaults.
func LoadArena() (*Arena, error) {
	var a Arena
	if err := envconfig.Process("arena", &a); err != nil {
		return nil, fmt.Errorf("process arena env: %w", err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("invalid arena config")

// Validate checks the invariants the round controller relies on.
func (a *Arena) Validate() error {
	switch {
	case a.BreakTime < MinBreakTime:
		return fmt.Errorf("%w: break time %s is below %s", ErrInvalidConfig, a.BreakTime, MinBreakTime)
	case a.CountdownWarning <= 0 || a.CountdownWarning > MinBreakTime:
		return fmt.Errorf("%w: countdown warning %s must be in (0, %s]", ErrInvalidConfig, a.CountdownWarning, MinBreakTime)
	case a.TimeLimit < 0:
		return fmt.Errorf("%w: negative time limit", ErrInvalidConfig)
	case a.BombFuse <= 0:
		return fmt.Errorf("%w: bomb fuse must be positive", ErrInvalidConfig)
	case a.DefuseTime <= 0 || a.DefuseKitTime <= 0:
		return fmt.Errorf("%w: defuse times must be positive", ErrInvalidConfig)
	case a.BlastRadius < 0 || a.BlastRadius > MaxBlastRadius:
		return fmt.Errorf("%w: blast radius %.1f outside [0, %.0f]", ErrInvalidConfig, a.BlastRadius, MaxBlastRadius)
	case a.MaxHP <= 0:
		return fmt.Errorf("%w: max hp must be positive", ErrInvalidConfig)
	}
	return nil
}
