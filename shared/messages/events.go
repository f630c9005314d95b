package messages

import "github.com/automoto/voxel-arena/shared/netconfig"

// KillEvent is broadcast when a player dies.
type KillEvent struct {
	PlayerID    netconfig.PlayerID
	KillerID    netconfig.PlayerID
	KillType    netconfig.KillType
	RespawnTime float64 // seconds, 0 when the player stays dead
}

// SetHPEvent tells a player their new health and where the damage came from.
type SetHPEvent struct {
	PlayerID netconfig.PlayerID
	HP       int
	Source   [3]float64
	KillType netconfig.KillType
}

// SpawnEvent is broadcast when a player's avatar is created.
type SpawnEvent struct {
	PlayerID netconfig.PlayerID
	Team     netconfig.TeamID
	X, Y, Z  float64
}

// PositionEvent relocates a player without respawning them.
type PositionEvent struct {
	PlayerID netconfig.PlayerID
	X, Y, Z  float64
}

// RestockEvent is sent to a player whose health and ammunition were refilled.
type RestockEvent struct {
	PlayerID netconfig.PlayerID
}

// BlockActionEvent is broadcast when a single voxel changes, or when an
// explosion carves the crater centred on the given voxel.
type BlockActionEvent struct {
	PlayerID netconfig.PlayerID
	Action   netconfig.BlockAction
	X, Y, Z  int
}

// BlockLineEvent is broadcast when a player builds a straight line.
type BlockLineEvent struct {
	PlayerID netconfig.PlayerID
	Start    [3]int
	End      [3]int
}

// GrenadeEvent spawns a grenade on every client. A zero fuse shows the
// explosion immediately.
type GrenadeEvent struct {
	PlayerID netconfig.PlayerID
	Fuse     float64
	Position [3]float64
	Velocity [3]float64
}

// IntelPickupEvent is broadcast when a player takes the enemy flag.
type IntelPickupEvent struct {
	PlayerID netconfig.PlayerID
}

// IntelDropEvent is broadcast when a carrier releases the flag.
type IntelDropEvent struct {
	PlayerID netconfig.PlayerID
	X, Y, Z  float64
}

// IntelCaptureEvent is broadcast when a player captures the enemy flag.
type IntelCaptureEvent struct {
	PlayerID netconfig.PlayerID
	Winning  bool
}

// MoveObjectEvent repositions a flag or base.
type MoveObjectEvent struct {
	Object  netconfig.ObjectID
	Team    netconfig.TeamID
	X, Y, Z float64
}

// ChatEvent carries a chat line. PlayerID is the speaker for ChatSystem
// lines and is ignored otherwise.
type ChatEvent struct {
	PlayerID netconfig.PlayerID
	Kind     netconfig.ChatKind
	Text     string
}

// RoundStateEvent is broadcast whenever the round changes phase.
type RoundStateEvent struct {
	State     netconfig.RoundStateID
	Remaining float64 // seconds until the next transition, 0 when unknown
}

// MapChangeEvent tells every client to load another map.
type MapChangeEvent struct {
	Name string
}
