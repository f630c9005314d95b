package archetypes

import (
	"github.com/automoto/voxel-arena/components"
	"github.com/automoto/voxel-arena/shared/netcomponents"
	"github.com/automoto/voxel-arena/tags"
	"github.com/yohamta/donburi"
)

var (
	Player = newArchetype(
		tags.Player,
		components.Player,
	)
	Team = newArchetype(
		tags.Team,
		components.Team,
	)
	Flag = newArchetype(
		tags.Flag,
		components.Objective,
		netcomponents.NetObjective,
	)
	Base = newArchetype(
		tags.Base,
		components.Objective,
		netcomponents.NetObjective,
	)
	Bomb = newArchetype(
		tags.Bomb,
		components.Bomb,
		netcomponents.NetObjective,
	)
	Round = newArchetype(
		tags.Round,
		components.Round,
		netcomponents.NetRound,
	)
)

type archetype struct {
	components []donburi.IComponentType
}

func newArchetype(cs ...donburi.IComponentType) *archetype {
	return &archetype{
		components: cs,
	}
}

// Spawn creates an entity with the archetype's components plus cs.
func (a *archetype) Spawn(world donburi.World, cs ...donburi.IComponentType) *donburi.Entry {
	all := make([]donburi.IComponentType, 0, len(a.components)+len(cs))
	all = append(all, a.components...)
	all = append(all, cs...)
	return world.Entry(world.Create(all...))
}
