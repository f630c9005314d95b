package main

import (
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/automoto/voxel-arena/config"
	"github.com/automoto/voxel-arena/server/core"
	"github.com/automoto/voxel-arena/shared/mapmeta"
	"github.com/automoto/voxel-arena/shared/protocol"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.LoadServer()
	if err != nil {
		slog.Error("load server config", "err", err)
		os.Exit(1)
	}
	arenaCfg, err := config.LoadArena()
	if err != nil {
		slog.Error("load arena config", "err", err)
		os.Exit(1)
	}

	flag.UintVar(&cfg.Port, "port", cfg.Port, "Server port")
	flag.IntVar(&cfg.TickRate, "tickrate", cfg.TickRate, "Server tick rate (updates per second)")
	flag.StringVar(&cfg.Name, "name", cfg.Name, "Server display name")
	flag.StringVar(&cfg.Version, "version", cfg.Version, "Required client version (empty = accept any)")
	flag.StringVar(&cfg.MapDir, "maps", cfg.MapDir, "Directory holding the TMX map overlays")
	rotation := flag.String("rotation", strings.Join(cfg.Rotation, ","), "Comma separated map rotation (empty = every map)")
	flag.StringVar(&cfg.MasterURL, "master", cfg.MasterURL, "Master server URL (empty = unlisted)")
	flag.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Prometheus listen address (empty = disabled)")
	flag.StringVar(&cfg.LogLevel, "loglevel", cfg.LogLevel, "Log level: debug, info, warn or error")
	flag.Parse()
	cfg.Rotation = splitList(*rotation)

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		slog.Error("invalid log level", "level", cfg.LogLevel, "err", err)
		os.Exit(1)
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := protocol.RegisterComponents(); err != nil {
		logger.Error("register components", "err", err)
		os.Exit(1)
	}

	maps, names, err := mapmeta.LoadAll(os.DirFS(cfg.MapDir), ".")
	if err != nil {
		logger.Error("load maps", "dir", cfg.MapDir, "err", err)
		os.Exit(1)
	}
	logger.Info("maps loaded", "dir", cfg.MapDir, "maps", names)

	server := core.NewServer(cfg, arenaCfg, maps, logger)

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics listener", "addr", cfg.MetricsAddr, "err", err)
			}
		}()
	}

	var reg *core.Registration
	if cfg.MasterURL != "" {
		reg = core.NewRegistration(cfg.MasterURL, core.RegistrationInfo{
			Name:       cfg.Name,
			Address:    cfg.Address,
			Version:    cfg.Version,
			Region:     cfg.Region,
			MaxPlayers: cfg.MaxPlayers,
		}, server, logger)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Info("shutting down server")
		if reg != nil {
			reg.Stop()
		}
		server.Stop()
		os.Exit(0)
	}()

	if reg != nil {
		reg.Start()
	}

	logger.Info("starting arena server", "name", cfg.Name, "port", cfg.Port,
		"tick_rate", cfg.TickRate, "version", cfg.Version)
	if err := server.Start(); err != nil {
		logger.Error("server error", "err", err)
		os.Exit(1)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
