package components

import (
	"time"

	"github.com/automoto/voxel-arena/shared/netconfig"
	"github.com/automoto/voxel-arena/shared/schedule"
	"github.com/yohamta/donburi"
)

// RoundData stores the arena round state.
// This is a singleton component - only one round exists at a time.
type RoundData struct {
	State        netconfig.RoundStateID
	Running      bool
	CountingDown bool
	// Countdown holds the pending warning and start timers, nil when no
	// countdown is scheduled.
	Countdown []*schedule.Timer

	// Time is the round clock, advanced on every world update.
	Time      time.Time
	Stopwatch time.Duration
	// LimitDeadline is when the time limit expires; zero means never.
	LimitDeadline time.Time
	// TimerDelay holds elimination checks back until in-flight explosions
	// have resolved.
	TimerDelay   time.Time
	PlayersAlive int

	// Per-map parameters, re-read on every map change.
	MapName          string
	BreakTime        time.Duration
	TimeLimit        time.Duration
	MapChangeDelay   time.Duration
	HeartbeatRate    time.Duration
	HeartbeatEnabled bool
	RespawnTime      time.Duration
	BlastRadius      float64
	Building         bool
}

var Round = donburi.NewComponentType[RoundData]()

// HasLimit reports whether a time-limit deadline is armed.
func (r *RoundData) HasLimit() bool {
	return !r.LimitDeadline.IsZero()
}
