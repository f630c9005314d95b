package arena

import (
	"github.com/automoto/voxel-arena/components"
	"github.com/automoto/voxel-arena/shared/netcomponents"
	"github.com/automoto/voxel-arena/shared/netconfig"
	"github.com/yohamta/donburi"
)

// syncNet copies the authoritative round and objective state into the
// replicated net components.
func (s *Session) syncNet() {
	r := s.Round()
	remaining := -1.0
	if r.HasLimit() {
		remaining = max(r.LimitDeadline.Sub(r.Time).Seconds(), 0)
	}
	blue, green := s.Team(netconfig.TeamBlue), s.Team(netconfig.TeamGreen)
	netcomponents.NetRound.SetValue(s.round, netcomponents.NetRoundData{
		State:      r.State,
		Remaining:  remaining,
		BlueScore:  blue.Score,
		GreenScore: green.Score,
		BlueAlive:  s.aliveOn(netconfig.TeamBlue),
		GreenAlive: s.aliveOn(netconfig.TeamGreen),
		MapName:    r.MapName,
	})

	for _, td := range []*components.TeamData{blue, green} {
		for _, e := range []donburi.Entity{td.Flag, td.Base} {
			s.syncObjective(e)
		}
	}

	components.Bomb.Each(s.world, func(entry *donburi.Entry) {
		b := components.Bomb.Get(entry)
		live := b.HasTeam && s.Team(b.Team).Bomb == entry.Entity()
		fuseLeft := 0.0
		if b.Timer != nil {
			fuseLeft = max(b.Timer.Deadline().Sub(r.Time).Seconds(), 0)
		}
		netcomponents.NetObjective.SetValue(entry, netcomponents.NetObjectiveData{
			Team:     b.Team,
			X:        b.Position.X,
			Y:        b.Position.Y,
			Z:        b.Position.Z,
			Hidden:   !live,
			IsBomb:   true,
			FuseLeft: fuseLeft,
		})
	})
}

func (s *Session) syncObjective(e donburi.Entity) {
	entry := s.world.Entry(e)
	o := components.Objective.Get(entry)
	data := netcomponents.NetObjectiveData{
		Object: o.Object,
		Team:   o.Team,
		Hidden: o.Hidden(),
	}
	if !data.Hidden {
		data.X, data.Y, data.Z = o.Position.X, o.Position.Y, o.Position.Z
	}
	if p := s.PlayerData(o.Carrier); p != nil {
		data.Carried = true
		data.Carrier = p.ID
	}
	netcomponents.NetObjective.SetValue(entry, data)
}
