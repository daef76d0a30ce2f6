// Package config loads the server configuration from YAML, falling back
// to defaults when no file is present.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Server holds all configuration for the meago server binary.
type Server struct {
	// Network
	BindAddress string `yaml:"bind_address"`
	Port        int    `yaml:"port"`

	// Session tuning
	KeepAliveTimeout time.Duration `yaml:"keep_alive_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	SendQueueSize    int           `yaml:"send_queue_size"`

	// Matchmaking
	MatchmakingFitScore uint32 `yaml:"matchmaking_fit_score"`

	// Redirector target handed to clients; defaults to the bind endpoint.
	RedirectHost string `yaml:"redirect_host"`
	RedirectPort int    `yaml:"redirect_port"`

	// Token signing key location
	TokenKeyPath string `yaml:"token_key_path"`

	// Database
	Database DatabaseConfig `yaml:"database"`
}

// Addr returns the listener address in host:port form.
func (s Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.BindAddress, s.Port)
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultServer returns server config with sensible defaults.
func DefaultServer() Server {
	return Server{
		BindAddress:         "0.0.0.0",
		Port:                42127,
		KeepAliveTimeout:    40 * time.Second,
		WriteTimeout:        10 * time.Second,
		SendQueueSize:       64,
		MatchmakingFitScore: 100,
		RedirectHost:        "127.0.0.1",
		RedirectPort:        42127,
		TokenKeyPath:        "config/token.key",
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "meago",
			Password: "meago",
			DBName:   "meago",
			SSLMode:  "disable",
		},
	}
}

// LoadServer loads server config from a YAML file.
// If the file doesn't exist, returns defaults.
func LoadServer(path string) (Server, error) {
	cfg := DefaultServer()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
