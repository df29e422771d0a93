package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/msgrelay/internal/filex"
)

const profileFile = "profile.db"

// Config holds runtime settings for the relay CLI.
type Config struct {
	ServerAddr string
	HealthAddr string
	// ProfileDir holds the local profile database. Empty means the
	// msgrelay directory under the user's config dir.
	ProfileDir string
	Timeout    time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerAddr = "127.0.0.1:1357"
	c.HealthAddr = "127.0.0.1:50051"
	c.ProfileDir = ""
	c.Timeout = 10 * time.Second
}

// ProfileDSN creates the profile directory if needed and returns the SQLite
// DSN of the profile database.
func (c *Config) ProfileDSN() (string, error) {
	parent, name := filepath.Split(filepath.Clean(c.ProfileDir))
	if c.ProfileDir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("locate config dir: %w", err)
		}
		parent, name = base, "msgrelay"
	}

	dir, err := filex.EnsureSubdDir(parent, name)
	if err != nil {
		return "", err
	}
	return "file:" + filepath.Join(dir, profileFile), nil
}
