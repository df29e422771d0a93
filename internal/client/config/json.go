package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/msgrelay/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent keys
// leave the corresponding Config field untouched.
type JsonConfig struct {
	ServerAddr *string         `json:"server_addr"`
	HealthAddr *string         `json:"health_addr"`
	ProfileDir *string         `json:"profile_dir"`
	Timeout    *timex.Duration `json:"timeout"`
}

// parseJson overlays cfg with the values found in the JSON file at path.
func parseJson(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.ServerAddr != nil {
		cfg.ServerAddr = *jc.ServerAddr
	}
	if jc.HealthAddr != nil {
		cfg.HealthAddr = *jc.HealthAddr
	}
	if jc.ProfileDir != nil {
		cfg.ProfileDir = *jc.ProfileDir
	}
	if jc.Timeout != nil {
		cfg.Timeout = jc.Timeout.Duration
	}
	return nil
}
