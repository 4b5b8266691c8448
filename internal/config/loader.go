package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment prefixes.
const (
	envPrefix         = "HOURLYPROBE_"
	supabaseEnvPrefix = "SUPABASE_"
	configPathEnv     = "HOURLYPROBE_CONFIG"
)

// LoadOption tweaks Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	file    string
	envFile string
}

// WithFile loads the YAML file at path, taking precedence over HOURLYPROBE_CONFIG.
func WithFile(path string) LoadOption {
	return func(o *loadOptions) {
		if path != "" {
			o.file = path
		}
	}
}

// WithEnvFile reads dotenv values from path instead of ./.env.
func WithEnvFile(path string) LoadOption {
	return func(o *loadOptions) {
		if path != "" {
			o.envFile = path
		}
	}
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) from WithFile or HOURLYPROBE_CONFIG
//  3. SUPABASE_URL, SUPABASE_ANON_KEY
//  4. env (prefix HOURLYPROBE_)
//
// A dotenv file is read first; it only fills variables that are not set.
// Load does not validate: callers apply their overrides, then call Validate.
func Load(_ context.Context, opts ...LoadOption) (*Config, error) {
	o := &loadOptions{envFile: ".env"}
	for _, opt := range opts {
		opt(o)
	}

	// a missing .env is the normal case
	if err := godotenv.Load(o.envFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: read %s: %w", ErrLoadConfig, o.envFile, err)
	}

	base := New()
	k := koanf.New(".")

	path := o.file
	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrLoadConfig, path, err)
		}
	}

	// SUPABASE_URL -> supabase_url
	supabaseProvider := env.Provider(supabaseEnvPrefix, ".", strings.ToLower)
	if err := k.Load(supabaseProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// HOURLYPROBE_POLL_TIMEOUT -> poll_timeout
	envProvider := env.Provider(envPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	return &cfg, nil
}
