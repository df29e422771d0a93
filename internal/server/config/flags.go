package config

import (
	"flag"
	"io"

	"github.com/dmitrijs2005/msgrelay/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     binary protocol bind address (e.g., ":1357")
//	-g string     gRPC health bind address (e.g., ":50051")
//	-driver name  database driver, sqlite or pgx
//	-d string     database DSN
//	-f path       port file; its first line is the listener port
//	-m int        max request payload size, bytes
//	-t duration   per-connection I/O timeout (e.g., "30s")
//	-i duration   store health check interval
//	-l string     log level
//
// Only the flags defined here are picked out of args, so -c and flags of
// other components do not cause parse errors.
func parseFlags(config *Config, args []string) error {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port of the gRPC health endpoint")
	fs.StringVar(&config.DatabaseDriver, "driver", config.DatabaseDriver, "database driver (sqlite or pgx)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.PortFile, "f", config.PortFile, "port file")
	fs.IntVar(&config.MaxPayloadSize, "m", config.MaxPayloadSize, "max request payload size in bytes")
	fs.DurationVar(&config.ConnTimeout, "t", config.ConnTimeout, "per-connection I/O timeout")
	fs.DurationVar(&config.HealthCheckInterval, "i", config.HealthCheckInterval, "store health check interval")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	return fs.Parse(flagx.FilterArgs(args, flagx.Names(fs)))
}
