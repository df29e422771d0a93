package config

import (
	"github.com/spf13/pflag"
)

// Flags binds the CLI's persistent flags. Values given on the command line
// override the JSON file, which overrides the defaults.
type Flags struct {
	ConfigFile string
	values     Config
	fs         *pflag.FlagSet
}

// BindFlags registers the configuration flags on fs.
//
//	-a, --server   address:port of the relay
//	-g, --health   address:port of the gRPC health endpoint
//	-p, --profile  profile directory
//	-t, --timeout  per-request timeout
//	-c, --config   JSON config file
func BindFlags(fs *pflag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	f.values.LoadDefaults()

	fs.StringVarP(&f.values.ServerAddr, "server", "a", f.values.ServerAddr, "address and port of the relay server")
	fs.StringVarP(&f.values.HealthAddr, "health", "g", f.values.HealthAddr, "address and port of the gRPC health endpoint")
	fs.StringVarP(&f.values.ProfileDir, "profile", "p", f.values.ProfileDir, "profile directory (default: user config dir)")
	fs.DurationVarP(&f.values.Timeout, "timeout", "t", f.values.Timeout, "timeout of a single request")
	fs.StringVarP(&f.ConfigFile, "config", "c", "", "path to JSON config file")
	return f
}

// Load builds the effective Config: defaults, then the JSON file if one was
// given, then every flag set explicitly.
func (f *Flags) Load() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if f.ConfigFile != "" {
		if err := parseJson(cfg, f.ConfigFile); err != nil {
			return nil, err
		}
	}

	if f.fs.Changed("server") {
		cfg.ServerAddr = f.values.ServerAddr
	}
	if f.fs.Changed("health") {
		cfg.HealthAddr = f.values.HealthAddr
	}
	if f.fs.Changed("profile") {
		cfg.ProfileDir = f.values.ProfileDir
	}
	if f.fs.Changed("timeout") {
		cfg.Timeout = f.values.Timeout
	}
	return cfg, nil
}
