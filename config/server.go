package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Server is the dedicated server's process configuration.
type Server struct {
	Port        uint     `envconfig:"PORT" default:"7373"`
	TickRate    int      `envconfig:"TICK_RATE" default:"60"`
	Name        string   `envconfig:"NAME" default:"Arena Server"`
	Version     string   `envconfig:"VERSION" default:""`
	MaxPlayers  int      `envconfig:"MAX_PLAYERS" default:"32"`
	MapDir      string   `envconfig:"MAP_DIR" default:"maps"`
	Rotation    []string `envconfig:"ROTATION"`
	GroundLevel int      `envconfig:"GROUND_LEVEL" default:"40"`
	MetricsAddr string   `envconfig:"METRICS_ADDR" default:":9100"`
	LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"`
	// AdminPassword grants admin rights to joining players that send it.
	AdminPassword string `envconfig:"ADMIN_PASSWORD" default:""`

	MasterURL string `envconfig:"MASTER_URL" default:""`
	Address   string `envconfig:"ADDRESS" default:""`
	Region    string `envconfig:"REGION" default:""`
}

// LoadServer reads SERVER_* environment variables over the defaults.
func LoadServer() (*Server, error) {
	var s Server
	if err := envconfig.Process("server", &s); err != nil {
		return nil, fmt.Errorf("process server env: %w", err)
	}
	if s.TickRate <= 0 {
		return nil, fmt.Errorf("tick rate must be positive, got %d", s.TickRate)
	}
	return &s, nil
}

// Master is the server browser's process configuration.
type Master struct {
	Port int           `envconfig:"PORT" default:"8080"`
	TTL  time.Duration `envconfig:"TTL" default:"90s"`
}

// LoadMaster reads MASTER_* environment variables over the defaults.
func LoadMaster() (*Master, error) {
	var m Master
	if err := envconfig.Process("master", &m); err != nil {
		return nil, fmt.Errorf("process master env: %w", err)
	}
	return &m, nil
}
