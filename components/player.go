package components

import (
	"slices"
	"time"

	"github.com/automoto/voxel-arena/shared/gamemath"
	"github.com/automoto/voxel-arena/shared/netconfig"
	"github.com/automoto/voxel-arena/shared/schedule"
	"github.com/yohamta/donburi"
)

// PlayerData is a connected player. The avatar fields are only meaningful
// while HasAvatar is set.
type PlayerData struct {
	ID    netconfig.PlayerID
	Name  string
	Team  netconfig.TeamID
	Color uint32

	Admin  bool
	Rights []string

	HasAvatar     bool
	Dead          bool
	HP            int
	Position      gamemath.Vec3
	Orientation   gamemath.Vec3
	Tool          netconfig.Tool
	PrimaryFire   bool
	SecondaryFire bool
	Grenades      int
	Blocks        int

	HasDefuseKit bool
	// DefuseStart is set while the player stays in contact with an enemy
	// bomb.
	DefuseStart   time.Time
	LastDeath     time.Time
	GrenadeUnpin  time.Time
	LastSpadenade time.Time
	BlocksRemoved int

	SpawnTimer *schedule.Timer
}

var Player = donburi.NewComponentType[PlayerData]()

// IsAlive reports whether the player has an avatar that is not dead.
func (p *PlayerData) IsAlive() bool {
	return p.HasAvatar && !p.Dead
}

// Defusing reports whether a defuse attempt is in progress.
func (p *PlayerData) Defusing() bool {
	return !p.DefuseStart.IsZero()
}

// HasRight reports whether the player was granted the named right.
func (p *PlayerData) HasRight(name string) bool {
	return slices.Contains(p.Rights, name)
}
