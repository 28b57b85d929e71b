// Package config loads process configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix namespaces every environment variable read by codemother commands.
const EnvPrefix = "CODEMOTHER_"

// ParseEnv loads configuration from environment variables.
//
// Struct tags name variables without the shared prefix, so a field tagged
// `env:"WEB_HTTP_ADDR"` reads CODEMOTHER_WEB_HTTP_ADDR.
func ParseEnv(target any) error {
	return ParseEnvWithLookup(target, nil)
}

// ParseEnvWithLookup loads configuration using an explicit environment map.
// A nil map reads the process environment.
func ParseEnvWithLookup(target any, environment map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environment != nil {
		opts.Environment = environment
	}
	if err := env.ParseWithOptions(target, opts); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
