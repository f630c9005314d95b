package core

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectedPlayers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "arena",
		Subsystem: "server",
		Name:      "players",
		Help:      "Number of players currently joined",
	})
	joinsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arena",
		Subsystem: "server",
		Name:      "joins_rejected_total",
		Help:      "Counts the number of refused join requests per reason",
	}, []string{"reason"})
	droppedCommands = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "arena",
		Subsystem: "server",
		Name:      "dropped_commands_total",
		Help:      "Counts the number of client messages dropped on a full queue",
	})
	mapsLoaded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "arena",
		Subsystem: "maps",
		Name:      "loaded_total",
		Help:      "Counts the number of maps loaded",
	})
	mapsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "arena",
		Subsystem: "maps",
		Name:      "rejected_total",
		Help:      "Counts the number of maps refused by a game mode",
	})
	tickDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "arena",
		Subsystem: "server",
		Name:      "tick_duration_seconds",
		Help:      "Time spent running one game loop tick",
		Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
	})
	registrationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "arena",
		Subsystem: "registration",
		Name:      "failures_total",
		Help:      "Counts the number of failed master server calls",
	})
)
