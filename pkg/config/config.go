// Package config contains the client-side configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/halyard-dev/neokit/pkg/clienterr"
	"github.com/halyard-dev/neokit/pkg/config/netmode"
	"github.com/halyard-dev/neokit/pkg/crypto/keys"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultRequestTimeout is used when the configuration doesn't set one.
	DefaultRequestTimeout = 30 * time.Second
	// DefaultDialTimeout is used when the configuration doesn't set one.
	DefaultDialTimeout = 4 * time.Second
)

// Config is the client configuration, usually loaded from a YAML file.
type Config struct {
	// Endpoints is a list of RPC node addresses, the first one is used and
	// the rest are fallbacks for the caller to cycle through.
	Endpoints []string `yaml:"endpoints"`
	// DialTimeout limits TCP connection establishment.
	DialTimeout time.Duration `yaml:"dial_timeout"`
	// RequestTimeout limits a single RPC round-trip.
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// Magic overrides the network magic learned from getversion when
	// non-zero. Useful for nodes that predate the protocol section of
	// the getversion reply.
	Magic netmode.Magic `yaml:"magic"`
	// Scrypt holds NEP-2 key derivation parameters for wallet operations.
	Scrypt keys.ScryptParams `yaml:"scrypt"`
}

// Load attempts to load the configuration from the given path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config '%s': %w", path, err)
	}
	return Unmarshal(data)
}

// Unmarshal parses the configuration from the given YAML data and fills in
// the defaults.
func Unmarshal(data []byte) (Config, error) {
	cfg := Config{
		DialTimeout:    DefaultDialTimeout,
		RequestTimeout: DefaultRequestTimeout,
		Scrypt:         keys.NEP2ScryptParams(),
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %w", clienterr.ErrInvalidFormat, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for obvious mistakes.
func (c Config) Validate() error {
	if len(c.Endpoints) == 0 {
		return fmt.Errorf("%w: no endpoints configured", clienterr.ErrInvalidArgument)
	}
	for _, e := range c.Endpoints {
		if e == "" {
			return fmt.Errorf("%w: empty endpoint", clienterr.ErrInvalidArgument)
		}
	}
	if c.DialTimeout < 0 || c.RequestTimeout < 0 {
		return fmt.Errorf("%w: negative timeout", clienterr.ErrInvalidArgument)
	}
	if c.Scrypt.N <= 1 || c.Scrypt.R <= 0 || c.Scrypt.P <= 0 {
		return fmt.Errorf("%w: invalid scrypt parameters", clienterr.ErrInvalidArgument)
	}
	return nil
}
