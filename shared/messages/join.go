package messages

import (
	"github.com/automoto/voxel-arena/shared/netconfig"
	"github.com/leap-fish/necs/esync"
)

// JoinRequest is sent by a client after connecting to request joining the game.
type JoinRequest struct {
	Version    string
	PlayerName string
	Team       netconfig.TeamID
	// Password grants admin rights when it matches the server's.
	Password string
}

// JoinAccepted is sent by the server when a client's join request is accepted.
type JoinAccepted struct {
	PlayerID netconfig.PlayerID
	// RoundID is the network id of the replicated round status entity.
	RoundID    esync.NetworkId
	ServerName string
	MapName    string
	TickRate   int
}

// JoinRejected is sent by the server when a client's join request is rejected.
type JoinRejected struct {
	Reason string
}
