package config

import "github.com/caarlos0/env/v11"

// parseEnv overlays fields whose LIRRA_* variables are set. Unset variables
// leave the current value untouched. A malformed value panics, like the
// other loaders.
func parseEnv(config *Config) {
	if err := env.Parse(config); err != nil {
		panic(err)
	}
}
