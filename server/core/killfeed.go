package core

import (
	"log/slog"
	"time"

	"github.com/automoto/voxel-arena/server/arena"
	"github.com/automoto/voxel-arena/shared/netconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/yohamta/donburi"
)

var (
	killsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arena",
		Subsystem: "server",
		Name:      "kills_total",
		Help:      "Counts the number of player deaths per kill type",
	}, []string{"kind"})
	grenadesThrown = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "arena",
		Subsystem: "server",
		Name:      "grenades_thrown_total",
		Help:      "Counts the number of grenades released by players",
	})
)

// killFeed observes combat for the server log and metrics. It never vetoes.
type killFeed struct {
	players func(donburi.Entity) string
	log     *slog.Logger
}

var _ arena.CombatAware = (*killFeed)(nil)

func (k *killFeed) OnHit(_, _ donburi.Entity, damage float64, _ netconfig.KillType) (float64, bool) {
	return damage, true
}

func (k *killFeed) OnKill(victim, killer donburi.Entity, kind netconfig.KillType) bool {
	killsCounter.WithLabelValues(kind.String()).Inc()
	k.log.Debug("player killed", "victim", k.players(victim), "killer", k.players(killer), "kind", kind)
	return true
}

func (k *killFeed) OnGrenade(donburi.Entity, time.Duration) bool {
	return true
}

func (k *killFeed) OnGrenadeThrown(donburi.Entity, time.Duration) {
	grenadesThrown.Inc()
}

func (k *killFeed) OnFall(donburi.Entity, float64) bool {
	return true
}

func (k *killFeed) OnBlockDestroy(donburi.Entity, int, int, int, netconfig.BlockAction) bool {
	return true
}
