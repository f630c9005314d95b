package components

import (
	"time"

	"github.com/automoto/voxel-arena/shared/gamemath"
	"github.com/automoto/voxel-arena/shared/netconfig"
	"github.com/automoto/voxel-arena/shared/schedule"
	"github.com/yohamta/donburi"
)

// BombData is a planted bomb. It stays in the world until its fuse fires,
// even after it was defused or detached from its team.
type BombData struct {
	Team netconfig.TeamID
	// HasTeam is cleared when the round resets while the bomb is live.
	HasTeam   bool
	Position  gamemath.Vec3
	PlantedAt time.Time
	Fuse      time.Duration
	Timer     *schedule.Timer
}

var Bomb = donburi.NewComponentType[BombData]()
