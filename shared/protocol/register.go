package protocol

import (
	"github.com/automoto/voxel-arena/shared/netcomponents"
	"github.com/leap-fish/necs/esync"
)

// Sync ID constants - ID 1 is reserved by necs for NetworkId
const (
	SyncIDNetObjective uint = 20
	SyncIDNetRound     uint = 21
)

// RegisterComponents registers all network components with necs for serialization.
// This must be called by both server and client before any network operations.
func RegisterComponents() error {
	// Objectives move rarely and teleport when they do, so no interpolation.
	if err := esync.RegisterComponent(
		SyncIDNetObjective,
		netcomponents.NetObjectiveData{},
		netcomponents.NetObjective,
	); err != nil {
		return err
	}

	if err := esync.RegisterComponent(
		SyncIDNetRound,
		netcomponents.NetRoundData{},
		netcomponents.NetRound,
	); err != nil {
		return err
	}

	return nil
}
