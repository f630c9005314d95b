package netcomponents

import (
	"github.com/automoto/voxel-arena/shared/netconfig"
	"github.com/yohamta/donburi"
)

// NetRoundData is the replicated round status shown in the HUD.
type NetRoundData struct {
	State      netconfig.RoundStateID
	Remaining  float64 // seconds left in the round, -1 without a limit
	BlueScore  int
	GreenScore int
	BlueAlive  int
	GreenAlive int
	MapName    string
}

var NetRound = donburi.NewComponentType[NetRoundData]()
