// Package config loads runtime configuration for the relay CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c/--config.
//  3. Command-line flags set explicitly, which override earlier values.
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "5s" or integer
// nanoseconds:
//
//	{
//	  "server_addr": "127.0.0.1:1357",
//	  "health_addr": "127.0.0.1:50051",
//	  "profile_dir": "/home/alice/.config/msgrelay",
//	  "timeout": "5s"
//	}
package config
