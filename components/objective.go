package components

import (
	"math"

	"github.com/automoto/voxel-arena/shared/gamemath"
	"github.com/automoto/voxel-arena/shared/netconfig"
	"github.com/yohamta/donburi"
)

// HiddenPosition parks an objective off the map.
var HiddenPosition = gamemath.Vec3{X: math.Inf(1), Y: math.Inf(1), Z: 128}

// ObjectiveData is a team's flag or base. A flag is hidden, resting on the
// map, or carried by exactly one enemy player.
type ObjectiveData struct {
	Object   netconfig.ObjectID
	Team     netconfig.TeamID
	Position gamemath.Vec3
	Carrier  donburi.Entity
}

var Objective = donburi.NewComponentType[ObjectiveData]()

// Hidden reports whether the objective is parked off the map.
func (o *ObjectiveData) Hidden() bool {
	return !o.Position.IsFinite()
}
