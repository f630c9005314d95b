// Package netconfig defines lightweight identifiers shared between the
// dedicated server and its clients. It must stay free of any ECS, map or
// transport dependency so every other package can import it.
package netconfig

// PlayerID is the wire identity of a connected player.
type PlayerID uint8

// TeamID identifies one of the two playing sides or the spectators.
type TeamID uint8

const (
	TeamBlue      TeamID = 0
	TeamGreen     TeamID = 1
	TeamSpectator TeamID = 255
)

// Other returns the opposing playing side. Spectators have no opponent.
func (t TeamID) Other() TeamID {
	switch t {
	case TeamBlue:
		return TeamGreen
	case TeamGreen:
		return TeamBlue
	}
	return TeamSpectator
}

// Playing reports whether t is one of the two playing sides.
func (t TeamID) Playing() bool {
	return t == TeamBlue || t == TeamGreen
}

func (t TeamID) String() string {
	switch t {
	case TeamBlue:
		return "Blue"
	case TeamGreen:
		return "Green"
	case TeamSpectator:
		return "Spectator"
	}
	return "Unknown"
}

// RoundStateID represents the current phase of an arena round.
type RoundStateID int

const (
	RoundAwaitingPlayers RoundStateID = iota // No round has been scheduled yet
	RoundCountingDown                        // Break between rounds
	RoundRunning                             // Active round
)

func (r RoundStateID) String() string {
	switch r {
	case RoundAwaitingPlayers:
		return "awaiting_players"
	case RoundCountingDown:
		return "counting_down"
	case RoundRunning:
		return "running"
	}
	return "unknown"
}

// KillType describes how a player died.
type KillType uint8

const (
	KillWeapon KillType = iota
	KillHeadshot
	KillMelee
	KillGrenade
	KillFall
	KillTeamChange
	KillClassChange
)

func (k KillType) String() string {
	switch k {
	case KillWeapon:
		return "weapon"
	case KillHeadshot:
		return "headshot"
	case KillMelee:
		return "melee"
	case KillGrenade:
		return "grenade"
	case KillFall:
		return "fall"
	case KillTeamChange:
		return "team_change"
	case KillClassChange:
		return "class_change"
	}
	return "unknown"
}

// Tool is the item a player is currently holding.
type Tool uint8

const (
	ToolSpade Tool = iota
	ToolBlock
	ToolWeapon
	ToolGrenade
)

// BlockAction identifies a voxel mutation broadcast to clients.
type BlockAction uint8

const (
	BlockBuild BlockAction = iota
	BlockDestroy
	BlockSpadeDestroy
	BlockGrenadeDestroy
)

// ObjectID identifies one of the four objective entities on the map.
type ObjectID uint8

const (
	ObjectBlueFlag ObjectID = iota
	ObjectGreenFlag
	ObjectBlueBase
	ObjectGreenBase
)

// FlagObject returns the object id of team t's flag.
func FlagObject(t TeamID) ObjectID {
	if t == TeamGreen {
		return ObjectGreenFlag
	}
	return ObjectBlueFlag
}

// BaseObject returns the object id of team t's base.
func BaseObject(t TeamID) ObjectID {
	if t == TeamGreen {
		return ObjectGreenBase
	}
	return ObjectBlueBase
}

// ChatKind selects how a chat line is rendered on the client.
type ChatKind uint8

const (
	ChatSystem ChatKind = iota
	ChatStatus
	ChatWarning
	ChatError
)
