package main

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	registryOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arena",
		Subsystem: "master",
		Name:      "operations_total",
		Help:      "Counts the number of registry operations per kind",
	}, []string{"operation"})
	registryExpired = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "arena",
		Subsystem: "master",
		Name:      "expired_total",
		Help:      "Counts the number of servers dropped for missing heartbeats",
	})
)

// ServerInfo describes a game server visible to clients.
type ServerInfo struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Address    string    `json:"address"`
	Players    int       `json:"players"`
	MaxPlayers int       `json:"maxPlayers"`
	Version    string    `json:"version"`
	Region     string    `json:"region"`
	Map        string    `json:"map"`
	Round      string    `json:"round"`
	LastSeen   time.Time `json:"lastSeen"`
}

// Status is the part of a listing refreshed by heartbeats.
type Status struct {
	Players int
	Map     string
	Round   string
}

// Registry is an in-memory store of active game servers. A server that
// misses heartbeats for the TTL disappears from listings.
type Registry struct {
	// mu makes heartbeat read-modify-write atomic; the cache is safe on its own.
	mu      sync.Mutex
	servers *cache.Cache
	log     *slog.Logger
}

func NewRegistry(ttl time.Duration, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Registry{
		servers: cache.New(ttl, ttl/3+time.Second),
		log:     logger.With("component", "registry"),
	}
	r.servers.OnEvicted(func(id string, item interface{}) {
		info := item.(ServerInfo)
		registryExpired.Inc()
		r.log.Info("server expired", "id", id, "name", info.Name, "last_seen", info.LastSeen)
	})
	return r
}

func (r *Registry) Register(info ServerInfo) string {
	registryOperations.WithLabelValues("register").Inc()

	info.ID = uuid.NewString()
	info.LastSeen = time.Now()
	r.servers.Set(info.ID, info, cache.DefaultExpiration)
	return info.ID
}

// Heartbeat refreshes a listing. It reports false for unknown or expired ids.
func (r *Registry) Heartbeat(id string, st Status) bool {
	registryOperations.WithLabelValues("heartbeat").Inc()

	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.servers.Get(id)
	if !ok {
		return false
	}
	info := item.(ServerInfo)
	info.Players = st.Players
	info.Map = st.Map
	info.Round = st.Round
	info.LastSeen = time.Now()
	r.servers.Set(id, info, cache.DefaultExpiration)
	return true
}

// List returns the live servers ordered by name.
func (r *Registry) List() []ServerInfo {
	registryOperations.WithLabelValues("list").Inc()

	items := r.servers.Items()
	result := make([]ServerInfo, 0, len(items))
	for _, item := range items {
		result = append(result, item.Object.(ServerInfo))
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result
}

// Count returns the number of live servers.
func (r *Registry) Count() int {
	return len(r.servers.Items())
}
