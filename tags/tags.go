package tags

import "github.com/yohamta/donburi"

var (
	Player = donburi.NewTag().SetName("Player")
	Team   = donburi.NewTag().SetName("Team")
	Flag   = donburi.NewTag().SetName("Flag")
	Base   = donburi.NewTag().SetName("Base")
	Bomb   = donburi.NewTag().SetName("Bomb")
	Round  = donburi.NewTag().SetName("Round")
)

// Resolv tags for the bombsite broad phase
const (
	ResolvBombsite = "bombsite"
	ResolvProbe    = "probe"
)
