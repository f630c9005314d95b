// Package mapmeta holds the per-map arena metadata: spawns, bombsites,
// objective placement, round timing overrides and optional scripted hooks.
// It has no dependency on the ECS or the transport.
package mapmeta

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/automoto/voxel-arena/shared/gamemath"
	"github.com/automoto/voxel-arena/shared/netconfig"
)

// ErrMissingSpawns is wrapped by the ConfigError returned when a team has
// no spawn point.
var ErrMissingSpawns = errors.New("no spawn points given")

// ConfigError reports map metadata that makes the map unplayable.
type ConfigError struct {
	Map string
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("map %q: %s: %v", e.Map, e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Box is an axis-aligned region with inclusive bounds.
type Box struct {
	Min, Max gamemath.Vec3
}

// Contains reports whether p lies inside b, bounds included.
func (b Box) Contains(p gamemath.Vec3) bool {
	return b.Min.X <= p.X && p.X <= b.Max.X &&
		b.Min.Y <= p.Y && p.Y <= b.Max.Y &&
		b.Min.Z <= p.Z && p.Z <= b.Max.Z
}

// TeamMeta is the metadata of one playing side.
type TeamMeta struct {
	Spawns []gamemath.Point
	// Bombsites are checked in order. HasBombsites is set when the map
	// declares a bombsite list for the team, even an empty one.
	Bombsites    []Box
	HasBombsites bool
	// Flag and Base are nil when the map keeps them hidden.
	Flag *gamemath.Vec3
	Base *gamemath.Vec3
}

// Map is the arena metadata of one map.
type Map struct {
	Name  string
	Blue  TeamMeta
	Green TeamMeta

	// Round timing overrides; nil keeps the server default.
	BreakTime      *time.Duration
	TimeLimit      *time.Duration
	MapChangeDelay *time.Duration
	HeartbeatRate  *time.Duration
	RespawnTime    *time.Duration

	BuildingEnabled  *bool
	HasRefill        bool
	SwapSpawns       bool
	DisabledCommands []string
	WaterDamage      int

	Script HookProvider
}

// Team returns the metadata of a playing side, or nil for spectators.
func (m *Map) Team(t netconfig.TeamID) *TeamMeta {
	switch t {
	case netconfig.TeamBlue:
		return &m.Blue
	case netconfig.TeamGreen:
		return &m.Green
	}
	return nil
}

// Building reports whether players may build during a running round.
func (m *Map) Building() bool {
	return m.BuildingEnabled == nil || *m.BuildingEnabled
}

// CommandDisabled reports whether name is switched off for this map.
func (m *Map) CommandDisabled(name string) bool {
	return slices.Contains(m.DisabledCommands, name)
}

// Validate checks that both teams can spawn.
func (m *Map) Validate() error {
	if len(m.Green.Spawns) == 0 {
		return &ConfigError{Map: m.Name, Key: "arena_green_spawns", Err: ErrMissingSpawns}
	}
	if len(m.Blue.Spawns) == 0 {
		return &ConfigError{Map: m.Name, Key: "arena_blue_spawns", Err: ErrMissingSpawns}
	}
	return nil
}

// DurationOr returns *d, or def when d is nil.
func DurationOr(d *time.Duration, def time.Duration) time.Duration {
	if d == nil {
		return def
	}
	return *d
}
