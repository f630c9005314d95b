package netcomponents

import (
	"github.com/automoto/voxel-arena/shared/netconfig"
	"github.com/yohamta/donburi"
)

// NetObjectiveData is the replicated state of a flag, base or live bomb.
type NetObjectiveData struct {
	Object   netconfig.ObjectID
	Team     netconfig.TeamID
	X, Y, Z  float64
	Hidden   bool
	Carrier  netconfig.PlayerID
	Carried  bool
	IsBomb   bool
	FuseLeft float64
}

var NetObjective = donburi.NewComponentType[NetObjectiveData]()
