// Command probe joins an arena server as a spectator and logs what it sees.
// It is meant for smoke-testing a deployment.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/automoto/voxel-arena/network"
	"github.com/automoto/voxel-arena/shared/messages"
	"github.com/automoto/voxel-arena/shared/netcomponents"
	"github.com/automoto/voxel-arena/shared/netconfig"
	"github.com/automoto/voxel-arena/shared/protocol"
	"github.com/leap-fish/necs/esync"
)

func main() {
	address := flag.String("addr", "localhost:7373", "Server address (host:port)")
	version := flag.String("version", "", "Client version sent with the join request")
	name := flag.String("name", "probe", "Player name")
	password := flag.String("password", "", "Admin password")
	command := flag.String("cmd", "", "Chat command to run once joined, e.g. \"gbr 64\"")
	duration := flag.Duration("duration", 10*time.Second, "How long to stay connected")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	if err := protocol.RegisterComponents(); err != nil {
		logger.Error("register components", "err", err)
		os.Exit(1)
	}

	client := network.NewClient(logger)
	client.Connect(*address, messages.JoinRequest{
		Version:    *version,
		PlayerName: *name,
		Team:       netconfig.TeamSpectator,
		Password:   *password,
	})
	defer client.Disconnect()

	deadline := time.After(*duration)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	sent := false

	for {
		select {
		case <-deadline:
			logger.Info("done", "state", client.State(), "dropped", client.Dropped())
			return
		case evt := <-client.Events():
			logEvent(logger, evt)
		case <-ticker.C:
			switch client.State() {
			case network.StateError:
				logger.Error("probe failed", "err", client.LastError())
				os.Exit(1)
			case network.StateJoinedGame:
				if *command != "" && !sent {
					sent = true
					fields := strings.Fields(*command)
					if err := client.SendMessage(messages.CommandRequest{Name: fields[0], Args: fields[1:]}); err != nil {
						logger.Error("send command", "err", err)
					}
				}
				if snap := client.LatestSnapshot(); snap != nil {
					logSnapshot(logger, *snap)
				}
			}
		}
	}
}

func logEvent(logger *slog.Logger, evt any) {
	switch e := evt.(type) {
	case messages.ChatEvent:
		logger.Info("chat", "kind", e.Kind, "text", e.Text)
	case messages.CommandReply:
		logger.Info("reply", "text", e.Text)
	case messages.RoundStateEvent:
		logger.Info("round", "state", e.State, "remaining", e.Remaining)
	case messages.MapChangeEvent:
		logger.Info("map", "name", e.Name)
	case messages.KillEvent:
		logger.Info("kill", "victim", e.PlayerID, "killer", e.KillerID, "kind", e.KillType)
	default:
		logger.Debug("event", "type", fmt.Sprintf("%T", evt))
	}
}

// logSnapshot logs the replicated round status, if the snapshot carries it.
func logSnapshot(logger *slog.Logger, snapshot esync.WorldSnapshot) {
	for _, ent := range snapshot {
		for _, componentBytes := range ent.State {
			instance, err := esync.Mapper.Deserialize(componentBytes)
			if err != nil {
				continue
			}
			if r, ok := instance.(netcomponents.NetRoundData); ok {
				logger.Debug("round status", "map", r.MapName, "state", r.State,
					"blue", r.BlueScore, "green", r.GreenScore, "remaining", r.Remaining)
			}
		}
	}
}
