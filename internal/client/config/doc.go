// Package config loads runtime configuration for lirra-admin.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file given with --config.
//  3. Command-line flags (--addr, --no-color), applied by the cli package.
//
// # JSON schema
//
// Durations use timex.Duration, so values can be strings like "15s" or
// integer nanoseconds:
//
//	{
//	  "server_url": "https://api.lirra.example",
//	  "request_timeout": "15s",
//	  "no_color": false
//	}
package config
