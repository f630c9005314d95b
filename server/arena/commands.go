package arena

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/automoto/voxel-arena/config"
	"github.com/automoto/voxel-arena/shared/netconfig"
	"github.com/yohamta/donburi"
)

// blastRadiusRight lets a non-admin change the blast radius.
const blastRadiusRight = "gbrad"

type command struct {
	name    string
	aliases []string
	run     func(s *Session, e donburi.Entity, args []string) string
}

var commands = []command{
	{
		name:    "bombplant",
		aliases: []string{"plant", "pla"},
		run: func(s *Session, e donburi.Entity, _ []string) string {
			return s.Plant(e)
		},
	},
	{
		name:    "dropflag",
		aliases: []string{"dropintel", "drop", "throwflag", "throwintel", "df"},
		run: func(s *Session, e donburi.Entity, _ []string) string {
			return s.ThrowFlag(e)
		},
	},
	{
		name:    "gbrad",
		aliases: []string{"gbr"},
		run:     (*Session).blastRadiusCommand,
	},
}

var commandIndex = func() map[string]*command {
	index := make(map[string]*command)
	for i := range commands {
		c := &commands[i]
		index[c.name] = c
		for _, alias := range c.aliases {
			index[alias] = c
		}
	}
	return index
}()

// Command runs a chat command typed by the player and returns the reply.
// Maps may switch commands off by the name the player typed.
func (s *Session) Command(e donburi.Entity, name string, args []string) string {
	name = strings.ToLower(strings.TrimPrefix(name, "/"))
	if s.meta.CommandDisabled(name) {
		commandsCounter.WithLabelValues(name, "disabled").Inc()
		return fmt.Sprintf("Command '%s' disabled for this map", name)
	}
	c, ok := commandIndex[name]
	if !ok {
		commandsCounter.WithLabelValues("unknown", "invalid").Inc()
		return "Invalid command"
	}
	reply := c.run(s, e, args)
	result := "ok"
	if reply != "" {
		result = "replied"
	}
	commandsCounter.WithLabelValues(c.name, result).Inc()
	return reply
}

// blastRadiusCommand shows the grenade blast radius, or sets it for
// admins and players holding the gbrad right.
func (s *Session) blastRadiusCommand(e donburi.Entity, args []string) string {
	r := s.Round()
	if len(args) == 0 {
		return fmt.Sprintf("%.1f", r.BlastRadius)
	}
	p := s.PlayerData(e)
	if p == nil || !(p.Admin || p.HasRight(blastRadiusRight)) {
		return "You aren't allowed to change grenade blast radius."
	}
	radius, err := strconv.ParseFloat(args[0], 64)
	if err != nil || math.IsNaN(radius) {
		return fmt.Sprintf("Invalid blast radius %q", args[0])
	}
	if radius < 0 || radius > config.MaxBlastRadius {
		return fmt.Sprintf("Blast radius must be between 0 and %.0f", config.MaxBlastRadius)
	}
	r.BlastRadius = radius
	s.log.Info("blast radius changed", "player", p.Name, "radius", radius)
	s.broadcastChat(netconfig.ChatSystem, "%s changed grenade blast radius to %.1f", p.Name, radius)
	return ""
}
