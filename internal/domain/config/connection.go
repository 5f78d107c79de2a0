package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v2"
)

const (
	BackendMemory  = "memory"
	BackendSurreal = "surreal"
	BackendRedis   = "redis"

	// PlaceholderEndpoint marks a compiled-in connection that was never filled in.
	PlaceholderEndpoint = "ws://YOUR_SURREAL_HOST/rpc"
)

type ContentConnection struct {
	Backend   string `mapstructure:"backend" yaml:"backend"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint"`
	Namespace string `mapstructure:"namespace" yaml:"namespace"`
	Database  string `mapstructure:"database" yaml:"database"`
	User      string `mapstructure:"user" yaml:"user"`
	Password  string `mapstructure:"password" yaml:"password"`
	RedisDB   int    `mapstructure:"redisDB" yaml:"redisDB"`
}

func (c *ContentConnection) IsPlaceholder() bool {
	if c.Backend == BackendMemory {
		return false
	}

	return c.Endpoint == "" || c.Endpoint == PlaceholderEndpoint
}

func (c *ContentConnection) String() string {
	return fmt.Sprintf("%s(%s %s/%s)", c.Backend, c.Endpoint, c.Namespace, c.Database)
}

// LoadOverride reads the local connection override. A missing or empty file yields nil.
func LoadOverride(path string) (*ContentConnection, error) {
	if path == "" {
		return nil, nil
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read content override %s: %w", path, err)
	}

	if strings.TrimSpace(string(raw)) == "" {
		return nil, nil
	}

	var override ContentConnection
	if err := yaml.Unmarshal(raw, &override); err != nil {
		return nil, fmt.Errorf("failed to parse content override %s: %w", path, err)
	}

	if override.Backend == "" {
		override.Backend = BackendSurreal
	}

	return &override, nil
}

// ResolveConnection picks the override when present, otherwise the configured
// connection unless it is still the placeholder. Nil means nothing usable.
func ResolveConnection(configured ContentConnection, override *ContentConnection) *ContentConnection {
	if override != nil {
		return override
	}

	if configured.IsPlaceholder() {
		return nil
	}

	return &configured
}
