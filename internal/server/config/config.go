// Package config handles configuration for the server component,
// including defaults, JSON overlay, command-line flags and the port file.
package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the relay server.
//
// Fields:
//   - EndpointAddr: bind address of the binary protocol listener.
//   - EndpointAddrGRPC: bind address of the gRPC health endpoint.
//   - DatabaseDriver: "sqlite" (modernc) or "pgx" (PostgreSQL).
//   - DatabaseDSN: data source name for DatabaseDriver.
//   - PortFile: optional file whose first line overrides the listener port.
//   - MaxPayloadSize: largest request payload accepted, in bytes.
//   - ConnTimeout: I/O deadline per connection; zero disables it.
//   - HealthCheckInterval: how often the gRPC endpoint pings the store.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	EndpointAddr        string
	EndpointAddrGRPC    string
	DatabaseDriver      string
	DatabaseDSN         string
	PortFile            string
	MaxPayloadSize      int
	ConnTimeout         time.Duration
	HealthCheckInterval time.Duration
	LogLevel            string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddr = ":1357"
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = "file:msgrelay.db"
	c.PortFile = ""
	c.MaxPayloadSize = 16 << 20
	c.ConnTimeout = 30 * time.Second
	c.HealthCheckInterval = 10 * time.Second
	c.LogLevel = "info"
}

// LoadConfig builds a Config from the process arguments by applying
// defaults, then overlaying values from an optional JSON file, then from
// command-line flags and finally the port file.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:])
}

func load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := applyPortFile(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
