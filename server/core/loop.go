package core

import (
	"log/slog"
	"time"

	"github.com/leap-fish/necs/esync/srvsync"
)

// updater is the game logic run on every tick.
type updater interface {
	Update()
}

type GameLoop struct {
	server   updater
	tickRate int
	log      *slog.Logger
	stopChan chan struct{}
	// sync pushes the replicated state to clients after the update.
	sync func() error
}

func NewGameLoop(server updater, tickRate int, logger *slog.Logger) *GameLoop {
	return &GameLoop{
		server:   server,
		tickRate: tickRate,
		log:      logger,
		stopChan: make(chan struct{}),
		sync:     srvsync.DoSync,
	}
}

func (g *GameLoop) Run() {
	ticker := time.NewTicker(time.Second / time.Duration(g.tickRate))
	defer ticker.Stop()

	g.log.Info("game loop started", "tick_rate", g.tickRate)

	for {
		select {
		case <-g.stopChan:
			g.log.Info("game loop stopped")
			return
		case <-ticker.C:
			g.tick()
		}
	}
}

func (g *GameLoop) Stop() {
	close(g.stopChan)
}

func (g *GameLoop) tick() {
	start := time.Now()
	g.server.Update()

	if err := g.sync(); err != nil {
		g.log.Warn("sync error", "err", err)
	}
	tickDuration.Observe(time.Since(start).Seconds())
}
