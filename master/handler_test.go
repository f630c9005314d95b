package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRegisterAndList(t *testing.T) {
	reg := NewRegistry(time.Minute, discardLogger())
	router := NewRouter(reg, discardLogger())

	rec := do(t, router, http.MethodPost, "/servers/register",
		`{"name":"arena","address":"ws://a:7373","maxPlayers":32,"map":"dust","round":"running"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created registerResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.NotEmpty(t, created.ID)

	rec = do(t, router, http.MethodGet, "/servers", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var servers []ServerInfo
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&servers))
	require.Len(t, servers, 1)
	assert.Equal(t, created.ID, servers[0].ID)
	assert.Equal(t, "dust", servers[0].Map)
	assert.Equal(t, "running", servers[0].Round)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRegisterValidation(t *testing.T) {
	router := NewRouter(NewRegistry(time.Minute, discardLogger()), discardLogger())

	tests := []struct {
		name string
		body string
	}{
		{name: "invalid json", body: `{`},
		{name: "missing address", body: `{"name":"arena"}`},
		{name: "missing name", body: `{"address":"ws://a:7373"}`},
		{name: "over capacity", body: `{"name":"arena","address":"ws://a:7373","players":9,"maxPlayers":8}`},
		{name: "negative players", body: `{"name":"arena","address":"ws://a:7373","players":-1}`},
		{name: "unknown round", body: `{"name":"arena","address":"ws://a:7373","round":"overtime"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPost, "/servers/register", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body apiError
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestHeartbeatEndpoint(t *testing.T) {
	reg := NewRegistry(time.Minute, discardLogger())
	router := NewRouter(reg, discardLogger())
	id := reg.Register(ServerInfo{Name: "arena", Address: "ws://a:7373"})

	rec := do(t, router, http.MethodPost, "/servers/heartbeat", `{"id":"`+id+`","players":4,"map":"hallway"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 4, reg.List()[0].Players)

	rec = do(t, router, http.MethodPost, "/servers/heartbeat", `{"id":"unknown"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, router, http.MethodPost, "/servers/heartbeat", `{"id":"`+id+`","round":"paused"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "hallway", reg.List()[0].Map)
}

func TestListFilters(t *testing.T) {
	reg := NewRegistry(time.Minute, discardLogger())
	router := NewRouter(reg, discardLogger())
	reg.Register(ServerInfo{Name: "a", Address: "ws://a", Region: "eu", Map: "dust", Round: "running", Players: 8, MaxPlayers: 8})
	reg.Register(ServerInfo{Name: "b", Address: "ws://b", Region: "EU", Map: "hallway", Round: "counting_down", Players: 2, MaxPlayers: 8})
	reg.Register(ServerInfo{Name: "c", Address: "ws://c", Region: "us", Map: "dust", Round: "running", Players: 1, MaxPlayers: 8})

	tests := []struct {
		query string
		want  []string
	}{
		{query: "", want: []string{"a", "b", "c"}},
		{query: "?region=eu", want: []string{"a", "b"}},
		{query: "?map=DUST", want: []string{"a", "c"}},
		{query: "?joinable=true", want: []string{"b", "c"}},
		{query: "?round=running&region=us", want: []string{"c"}},
		{query: "?map=none", want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, "/servers"+tt.query, "")
			require.Equal(t, http.StatusOK, rec.Code)
			var servers []ServerInfo
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&servers))
			names := make([]string, 0, len(servers))
			for _, s := range servers {
				names = append(names, s.Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}

	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/servers?joinable=maybe", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, router, http.MethodGet, "/servers?round=overtime", "").Code)
}

func TestRoutes(t *testing.T) {
	router := NewRouter(NewRegistry(time.Minute, discardLogger()), discardLogger())

	rec := do(t, router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","servers":0}`, rec.Body.String())
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/metrics", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/nowhere", "").Code)
	assert.NotEqual(t, http.StatusOK, do(t, router, http.MethodGet, "/servers/register", "").Code)
}
