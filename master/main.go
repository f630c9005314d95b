package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/automoto/voxel-arena/config"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires the master's HTTP routes.
func NewRouter(reg *Registry, logger *slog.Logger) *mux.Router {
	api := &serverAPI{reg: reg, log: logger}
	router := mux.NewRouter()
	router.Path("/servers").Methods(http.MethodGet).HandlerFunc(api.list)
	router.Path("/servers/register").Methods(http.MethodPost).HandlerFunc(api.register)
	router.Path("/servers/heartbeat").Methods(http.MethodPost).HandlerFunc(api.heartbeat)
	router.Path("/health").Methods(http.MethodGet).HandlerFunc(api.health)
	router.Path("/metrics").Methods(http.MethodGet).Handler(promhttp.Handler())
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Debug("unmatched request", "method", r.Method, "url", r.URL.String())
		w.WriteHeader(http.StatusNotFound)
	})
	return router
}

func main() {
	cfg, err := config.LoadMaster()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}
	port := flag.Int("port", cfg.Port, "HTTP listen port")
	ttl := flag.Duration("ttl", cfg.TTL, "Server TTL before expiry")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil)).With("component", "master")
	reg := NewRegistry(*ttl, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      NewRouter(reg, logger),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	logger.Info("starting", "addr", srv.Addr, "ttl", *ttl)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("fatal", "err", err)
		os.Exit(1)
	}
}
