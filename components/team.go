package components

import (
	"github.com/automoto/voxel-arena/shared/gamemath"
	"github.com/automoto/voxel-arena/shared/netconfig"
	"github.com/yohamta/donburi"
)

// TeamData is one of the two playing sides. The entity references are weak:
// they may point at removed entities and must be checked with World.Valid.
type TeamData struct {
	ID     netconfig.TeamID
	Name   string
	Score  int
	Spawns []gamemath.Point

	// LastKiller is the most recent member to kill an enemy.
	LastKiller donburi.Entity
	// Bomb is the team's live bomb, donburi.Null when none is planted.
	Bomb donburi.Entity
	Flag donburi.Entity
	Base donburi.Entity
}

var Team = donburi.NewComponentType[TeamData]()
