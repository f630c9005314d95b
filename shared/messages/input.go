package messages

import "github.com/automoto/voxel-arena/shared/netconfig"

// PlayerInput is sent by a client whenever its avatar state changes. The
// server trusts movement; physics is simulated on the client.
type PlayerInput struct {
	Sequence      uint32
	Position      [3]float64
	Orientation   [3]float64
	Tool          netconfig.Tool
	PrimaryFire   bool
	SecondaryFire bool
}

// HitRequest reports that the sender hit another player.
type HitRequest struct {
	TargetID netconfig.PlayerID
	Damage   float64
	KillType netconfig.KillType
}

// GrenadeRequest reports a thrown grenade.
type GrenadeRequest struct {
	Fuse     float64
	Position [3]float64
	Velocity [3]float64
}

// BlockLineRequest asks the server to build a line of blocks.
type BlockLineRequest struct {
	Start [3]int
	End   [3]int
	Color uint32
}

// FallRequest reports fall damage.
type FallRequest struct {
	Damage float64
}

// TeamChangeRequest asks to switch sides.
type TeamChangeRequest struct {
	Team netconfig.TeamID
}

// CommandRequest is a slash command typed by the player, without the slash.
type CommandRequest struct {
	Name string
	Args []string
}

// CommandReply carries the textual result of a CommandRequest.
type CommandReply struct {
	Text string
}
