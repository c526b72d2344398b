package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, the YAML file at path, and
// SLOTRACE_-prefixed environment variables (low to high precedence).
// Validation failures here are fatal before any network activity starts.
func Load(path string) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("cannot load config %q: %w", path, err)
	}

	// Environment variables: SLOTRACE_MAX_SLOTS, SLOTRACE_COMMITMENT, ...
	// Underscores are preserved to match the koanf tags on the struct.
	envProvider := env.Provider("SLOTRACE_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "slotrace_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("cannot parse config %q: %w", path, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Streams) == 0 {
		return fmt.Errorf("no streams configured")
	}

	for i, s := range c.Streams {
		if s.Name == "" {
			return fmt.Errorf("stream %d: name must not be empty", i+1)
		}
		if !strings.HasPrefix(s.Endpoint, "ws://") && !strings.HasPrefix(s.Endpoint, "wss://") {
			return fmt.Errorf("stream %q: endpoint must be a ws:// or wss:// URI, got %q", s.Name, s.Endpoint)
		}
	}

	if c.MaxSlots <= 0 {
		return fmt.Errorf("max_slots must be positive, got %d", c.MaxSlots)
	}
	if c.WarmupSlots < 0 {
		return fmt.Errorf("warmup_slots must not be negative, got %d", c.WarmupSlots)
	}
	if c.ReportInterval <= 0 {
		return fmt.Errorf("report_interval must be positive, got %d", c.ReportInterval)
	}

	return nil
}
