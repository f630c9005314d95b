package arena

import (
	"github.com/automoto/voxel-arena/components"
	"github.com/automoto/voxel-arena/shared/gamemath"
	"github.com/automoto/voxel-arena/shared/messages"
	"github.com/automoto/voxel-arena/shared/netconfig"
	"github.com/automoto/voxel-arena/shared/voxel"
	"github.com/yohamta/donburi"
)

// objectiveHome returns where the map places an objective, if anywhere.
func (s *Session) objectiveHome(o *components.ObjectiveData) *gamemath.Vec3 {
	tm := s.meta.Team(o.Team)
	if tm == nil {
		return nil
	}
	switch o.Object {
	case netconfig.FlagObject(o.Team):
		return tm.Flag
	case netconfig.BaseObject(o.Team):
		return tm.Base
	}
	return nil
}

// resetObjective puts a flag or base back at its map location, or hides
// it when the map has none.
func (s *Session) resetObjective(e donburi.Entity) {
	o := s.objective(e)
	o.Carrier = donburi.Null
	if home := s.objectiveHome(o); home != nil && s.vxl != nil {
		o.Position = voxel.DropLocation(s.vxl, *home)
	} else {
		o.Position = components.HiddenPosition
	}
	s.moveObjective(o)
}

func (s *Session) moveObjective(o *components.ObjectiveData) {
	s.out.Broadcast(messages.MoveObjectEvent{
		Object: o.Object,
		Team:   o.Team,
		X:      o.Position.X,
		Y:      o.Position.Y,
		Z:      o.Position.Z,
	})
}

// TakeFlag lets a living player pick up the enemy flag. Flags can only be
// taken during a running round on maps that place them.
func (s *Session) TakeFlag(e donburi.Entity) bool {
	p := s.PlayerData(e)
	if p == nil || !p.IsAlive() || !p.Team.Playing() || !s.Round().Running {
		return false
	}
	flag := s.flagOf(p.Team.Other())
	if flag.Carrier != donburi.Null || flag.Hidden() || s.objectiveHome(flag) == nil {
		return false
	}
	flag.Carrier = e
	s.out.Broadcast(messages.IntelPickupEvent{PlayerID: p.ID})
	return true
}

// DropFlag releases any flag e carries onto the ground below the carrier.
func (s *Session) DropFlag(e donburi.Entity) {
	s.dropFlag(e, nil)
}

// dropFlag releases the carried flag at dest, or at the carrier's drop
// location when dest is nil. Flags the map doesn't place are hidden.
func (s *Session) dropFlag(e donburi.Entity, dest *gamemath.Vec3) bool {
	p := s.PlayerData(e)
	if p == nil {
		return false
	}
	dropped := false
	for _, id := range []netconfig.TeamID{netconfig.TeamBlue, netconfig.TeamGreen} {
		flag := s.flagOf(id)
		if flag.Carrier != e {
			continue
		}
		switch {
		case s.objectiveHome(flag) == nil || s.vxl == nil:
			flag.Position = components.HiddenPosition
		case dest != nil:
			flag.Position = *dest
		default:
			flag.Position = voxel.DropLocation(s.vxl, p.Position)
		}
		flag.Carrier = donburi.Null
		s.out.Broadcast(messages.IntelDropEvent{
			PlayerID: p.ID,
			X:        flag.Position.X,
			Y:        flag.Position.Y,
			Z:        flag.Position.Z,
		})
		s.sendTo(e, netconfig.ChatStatus, "You dropped the intel.")
		dropped = true
	}
	return dropped
}

// ThrowFlag throws the carried enemy flag a short distance along the
// player's view. It lands on the first solid voxel in the way, or on the
// ground below the end of the throw.
func (s *Session) ThrowFlag(e donburi.Entity) string {
	p := s.PlayerData(e)
	if p == nil || !p.IsAlive() || !p.Team.Playing() {
		return ""
	}
	flag := s.flagOf(p.Team.Other())
	if s.objectiveHome(flag) == nil {
		return ""
	}
	if flag.Carrier != e {
		return "You don't have the intel"
	}

	reach := s.cfg.FlagThrowDistance
	var dest gamemath.Vec3
	if hit, ok := voxel.CastRay(s.vxl, p.Position, p.Orientation, reach); ok {
		dest = hit.Vec()
	} else {
		dest = voxel.DropLocation(s.vxl, p.Position.Add(p.Orientation.Scale(reach)))
	}
	s.dropFlag(e, &dest)
	return ""
}

// CaptureFlag scores the round for the carrier's team. It does nothing
// unless e carries the enemy flag.
func (s *Session) CaptureFlag(e donburi.Entity) {
	p := s.PlayerData(e)
	if p == nil || !p.Team.Playing() {
		return
	}
	flag := s.flagOf(p.Team.Other())
	if flag.Carrier != e {
		return
	}

	td := s.Team(p.Team)
	td.Score++
	flag.Carrier = donburi.Null
	s.out.Broadcast(messages.IntelCaptureEvent{PlayerID: p.ID, Winning: true})
	s.sendAll(netconfig.ChatStatus, td.Name+" team wins the round")

	r := s.Round()
	roundOutcomes.WithLabelValues(outcomeWin).Inc()
	s.log.Info("round won", "map", r.MapName, "team", p.Team, "player", p.Name, "score", td.Score)
	s.BeginCountdown(r.BreakTime)
	s.ArenaSpawn()
}

// updateEntities settles resting flags and bases after the terrain below
// them changed. An objective that sinks to the water returns home.
func (s *Session) updateEntities() {
	for _, id := range []netconfig.TeamID{netconfig.TeamBlue, netconfig.TeamGreen} {
		td := s.Team(id)
		for _, e := range []donburi.Entity{td.Flag, td.Base} {
			o := s.objective(e)
			if o.Hidden() || o.Carrier != donburi.Null {
				continue
			}
			c := o.Position.Floor()
			z := s.vxl.GroundHeight(c.X, c.Y, c.Z)
			if z == c.Z {
				continue
			}
			if z >= voxel.WaterLevel {
				s.resetObjective(e)
				continue
			}
			o.Position.Z = float64(z)
			s.moveObjective(o)
		}
	}
}
