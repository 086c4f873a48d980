package config

import "github.com/caarlos0/env/v11"

const envPrefix = "IDENTITY_"

// parseEnv overlays IDENTITY_* variables onto config. Unset variables leave
// the current value untouched. environ replaces the process environment when
// non-nil.
func parseEnv(config *Config, environ map[string]string) {
	opts := env.Options{Prefix: envPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(config, opts); err != nil {
		panic(err)
	}
}
