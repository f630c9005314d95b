package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// defaultHeartbeat is how often a registered server reports to the master.
const defaultHeartbeat = 30 * time.Second

// StatusSource reports what the server is currently playing.
type StatusSource interface {
	Status() Status
}

// Registration handles registering and heartbeating with the master server.
type Registration struct {
	masterURL  string
	serverID   string
	name       string
	address    string
	version    string
	region     string
	maxPlayers int
	interval   time.Duration
	source     StatusSource
	client     *http.Client
	log        *slog.Logger
	stopCh     chan struct{}
}

type regRequest struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
	Version    string `json:"version"`
	Region     string `json:"region"`
	Map        string `json:"map"`
	Round      string `json:"round"`
}

type regResponse struct {
	ID string `json:"id"`
}

type heartbeatRequest struct {
	ID      string `json:"id"`
	Players int    `json:"players"`
	Map     string `json:"map"`
	Round   string `json:"round"`
}

// RegistrationInfo is the static part of a server listing.
type RegistrationInfo struct {
	Name       string
	Address    string
	Version    string
	Region     string
	MaxPlayers int
}

func NewRegistration(masterURL string, info RegistrationInfo, source StatusSource, logger *slog.Logger) *Registration {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registration{
		masterURL:  masterURL,
		name:       info.Name,
		address:    info.Address,
		version:    info.Version,
		region:     info.Region,
		maxPlayers: info.MaxPlayers,
		interval:   defaultHeartbeat,
		source:     source,
		client:     &http.Client{Timeout: 5 * time.Second},
		log:        logger.With("component", "registration"),
		stopCh:     make(chan struct{}),
	}
}

func (r *Registration) Start() {
	if err := r.register(); err != nil {
		registrationFailures.Inc()
		r.log.Warn("initial registration failed", "err", err)
	}
	go r.heartbeatLoop()
}

func (r *Registration) Stop() {
	close(r.stopCh)
}

// ServerID returns the id assigned by the master, empty until registered.
func (r *Registration) ServerID() string {
	return r.serverID
}

func (r *Registration) register() error {
	st := r.source.Status()
	body, err := json.Marshal(regRequest{
		Name:       r.name,
		Address:    r.address,
		Players:    st.Players,
		MaxPlayers: r.maxPlayers,
		Version:    r.version,
		Region:     r.region,
		Map:        st.Map,
		Round:      st.Round.String(),
	})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	resp, err := r.client.Post(r.masterURL+"/servers/register", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result regResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	r.serverID = result.ID
	r.log.Info("registered with master", "id", r.serverID, "master", r.masterURL)
	return nil
}

func (r *Registration) heartbeatLoop() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			if err := r.sendHeartbeat(); err != nil {
				registrationFailures.Inc()
				r.log.Warn("heartbeat failed", "err", err)
			}
		}
	}
}

func (r *Registration) sendHeartbeat() error {
	if r.serverID == "" {
		return r.register()
	}
	st := r.source.Status()
	body, err := json.Marshal(heartbeatRequest{
		ID:      r.serverID,
		Players: st.Players,
		Map:     st.Map,
		Round:   st.Round.String(),
	})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	resp, err := r.client.Post(r.masterURL+"/servers/heartbeat", "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		r.log.Info("master lost our registration, re-registering")
		return r.register()
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return nil
}
