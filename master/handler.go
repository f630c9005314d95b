package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/automoto/voxel-arena/shared/netconfig"
)

const maxRequestBody = 1 << 16

// listing is the body a game server sends when it registers.
type listing struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	Players    int    `json:"players"`
	MaxPlayers int    `json:"maxPlayers"`
	Version    string `json:"version"`
	Region     string `json:"region"`
	Map        string `json:"map"`
	Round      string `json:"round"`
}

type registerResponse struct {
	ID string `json:"id"`
}

// statusUpdate is the body of a heartbeat.
type statusUpdate struct {
	ID      string `json:"id"`
	Players int    `json:"players"`
	Map     string `json:"map"`
	Round   string `json:"round"`
}

type apiError struct {
	Error string `json:"error"`
}

var errBadRequest = errors.New("bad request")

// serverAPI serves the server browser endpoints on top of a Registry.
type serverAPI struct {
	reg *Registry
	log *slog.Logger
}

// browseFilter narrows a listing by the query of GET /servers.
type browseFilter struct {
	mapName  string
	region   string
	version  string
	round    string
	joinable bool
}

func parseBrowseFilter(r *http.Request) (browseFilter, error) {
	q := r.URL.Query()
	f := browseFilter{
		mapName: q.Get("map"),
		region:  q.Get("region"),
		version: q.Get("version"),
		round:   q.Get("round"),
	}
	if f.round != "" && !knownRound(f.round) {
		return f, fmt.Errorf("%w: unknown round state %q", errBadRequest, f.round)
	}
	if v := q.Get("joinable"); v != "" {
		joinable, err := strconv.ParseBool(v)
		if err != nil {
			return f, fmt.Errorf("%w: joinable must be a boolean", errBadRequest)
		}
		f.joinable = joinable
	}
	return f, nil
}

func (f browseFilter) match(s ServerInfo) bool {
	switch {
	case f.mapName != "" && !strings.EqualFold(f.mapName, s.Map):
		return false
	case f.region != "" && !strings.EqualFold(f.region, s.Region):
		return false
	case f.version != "" && f.version != s.Version:
		return false
	case f.round != "" && f.round != s.Round:
		return false
	case f.joinable && s.MaxPlayers > 0 && s.Players >= s.MaxPlayers:
		return false
	}
	return true
}

// knownRound reports whether name is a round state a game server can report.
func knownRound(name string) bool {
	for st := netconfig.RoundAwaitingPlayers; st <= netconfig.RoundRunning; st++ {
		if st.String() == name {
			return true
		}
	}
	return false
}

func (l listing) validate() error {
	switch {
	case l.Name == "" || l.Address == "":
		return fmt.Errorf("%w: name and address required", errBadRequest)
	case l.Players < 0 || l.MaxPlayers < 0:
		return fmt.Errorf("%w: negative player count", errBadRequest)
	case l.MaxPlayers > 0 && l.Players > l.MaxPlayers:
		return fmt.Errorf("%w: %d players exceed the limit of %d", errBadRequest, l.Players, l.MaxPlayers)
	case l.Round != "" && !knownRound(l.Round):
		return fmt.Errorf("%w: unknown round state %q", errBadRequest, l.Round)
	}
	return nil
}

func (u statusUpdate) validate() error {
	switch {
	case u.ID == "":
		return fmt.Errorf("%w: id required", errBadRequest)
	case u.Players < 0:
		return fmt.Errorf("%w: negative player count", errBadRequest)
	case u.Round != "" && !knownRound(u.Round):
		return fmt.Errorf("%w: unknown round state %q", errBadRequest, u.Round)
	}
	return nil
}

func (a *serverAPI) list(w http.ResponseWriter, r *http.Request) {
	filter, err := parseBrowseFilter(r)
	if err != nil {
		a.fail(w, http.StatusBadRequest, err)
		return
	}
	servers := make([]ServerInfo, 0)
	for _, s := range a.reg.List() {
		if filter.match(s) {
			servers = append(servers, s)
		}
	}
	a.reply(w, http.StatusOK, servers)
}

func (a *serverAPI) register(w http.ResponseWriter, r *http.Request) {
	var req listing
	if err := decodeBody(w, r, &req); err != nil {
		a.fail(w, http.StatusBadRequest, err)
		return
	}
	if err := req.validate(); err != nil {
		a.fail(w, http.StatusBadRequest, err)
		return
	}

	id := a.reg.Register(ServerInfo{
		Name:       req.Name,
		Address:    req.Address,
		Players:    req.Players,
		MaxPlayers: req.MaxPlayers,
		Version:    req.Version,
		Region:     req.Region,
		Map:        req.Map,
		Round:      req.Round,
	})
	a.log.Info("registered server", "name", req.Name, "address", req.Address, "id", id, "map", req.Map)
	a.reply(w, http.StatusCreated, registerResponse{ID: id})
}

func (a *serverAPI) heartbeat(w http.ResponseWriter, r *http.Request) {
	var req statusUpdate
	if err := decodeBody(w, r, &req); err != nil {
		a.fail(w, http.StatusBadRequest, err)
		return
	}
	if err := req.validate(); err != nil {
		a.fail(w, http.StatusBadRequest, err)
		return
	}
	if !a.reg.Heartbeat(req.ID, Status{Players: req.Players, Map: req.Map, Round: req.Round}) {
		a.fail(w, http.StatusNotFound, fmt.Errorf("unknown server %q", req.ID))
		return
	}
	a.reply(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *serverAPI) health(w http.ResponseWriter, _ *http.Request) {
	a.reply(w, http.StatusOK, map[string]any{"status": "ok", "servers": a.reg.Count()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid json", errBadRequest)
	}
	return nil
}

func (a *serverAPI) reply(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		a.log.Warn("encode response failed", "status", status, "err", err)
	}
}

func (a *serverAPI) fail(w http.ResponseWriter, status int, err error) {
	a.log.Debug("request rejected", "status", status, "err", err)
	a.reply(w, status, apiError{Error: err.Error()})
}
