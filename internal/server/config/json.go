package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/msgrelay/internal/flagx"
	"github.com/dmitrijs2005/msgrelay/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "1s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON
// configuration files. Fields left out of the file keep the values they
// already had in Config.
type JsonConfig struct {
	EndpointAddr        string          `json:"endpoint_addr"`
	EndpointAddrGRPC    string          `json:"endpoint_addr_grpc"`
	DatabaseDriver      string          `json:"database_driver"`
	DatabaseDSN         string          `json:"database_dsn"`
	PortFile            string          `json:"port_file"`
	MaxPayloadSize      *int            `json:"max_payload_size"`
	ConnTimeout         *timex.Duration `json:"conn_timeout"`
	HealthCheckInterval *timex.Duration `json:"health_check_interval"`
	LogLevel            string          `json:"log_level"`
}

// parseJson loads configuration values from the JSON file named by the -c
// or -config flag. Without either flag nothing is loaded.
func parseJson(config *Config, args []string) error {

	jsonConfigFile := flagx.ConfigFile(args)

	// nothing to load
	if jsonConfigFile == "" {
		return nil
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", jsonConfigFile, err)
	}

	setString(&config.EndpointAddr, c.EndpointAddr)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDriver, c.DatabaseDriver)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.PortFile, c.PortFile)
	setString(&config.LogLevel, c.LogLevel)
	if c.MaxPayloadSize != nil {
		config.MaxPayloadSize = *c.MaxPayloadSize
	}
	if c.ConnTimeout != nil {
		config.ConnTimeout = c.ConnTimeout.Duration
	}
	if c.HealthCheckInterval != nil {
		config.HealthCheckInterval = c.HealthCheckInterval.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
