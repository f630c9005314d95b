package arena

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeWin  = "win"
	outcomeDraw = "draw"
	outcomeTie  = "tie"
)

var (
	roundsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "arena",
		Subsystem: "round",
		Name:      "started_total",
		Help:      "Counts the number of rounds that started",
	})
	roundOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arena",
		Subsystem: "round",
		Name:      "outcomes_total",
		Help:      "Counts the number of finished rounds per outcome",
	}, []string{"outcome"})
	bombsPlanted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "arena",
		Subsystem: "bomb",
		Name:      "planted_total",
		Help:      "Counts the number of planted bombs",
	})
	bombsDefused = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "arena",
		Subsystem: "bomb",
		Name:      "defused_total",
		Help:      "Counts the number of defused bombs",
	})
	grenadesExploded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "arena",
		Subsystem: "grenade",
		Name:      "exploded_total",
		Help:      "Counts the number of resolved explosions, bombs included",
	})
	commandsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arena",
		Subsystem: "command",
		Name:      "invocations_total",
		Help:      "Counts the number of chat commands per command and result",
	}, []string{"command", "result"})
	scriptErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arena",
		Subsystem: "script",
		Name:      "errors_total",
		Help:      "Counts the number of failed map script hooks",
	}, []string{"hook"})
)
