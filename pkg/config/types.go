package config

import (
	"fmt"
	"strings"
	"time"
)

// Config represents the persistent aviary configuration stored as config.toml
// in the .aviary/ directory. The TOML layout uses sections for logical grouping.
type Config struct {
	Version  int            `toml:"version"`
	Backends BackendsConfig `toml:"backends"`
	Client   ClientConfig   `toml:"client"`
	Models   ModelsConfig   `toml:"models"`
}

// BackendsConfig holds the base URLs of the two selectable backends.
type BackendsConfig struct {
	Primary   BackendConfig `toml:"primary"`
	Alternate BackendConfig `toml:"alternate"`
}

// BackendConfig holds settings for a single OpenAI-compatible backend.
// Bearer tokens are kept in credentials.toml, not here.
type BackendConfig struct {
	URL string `toml:"url,omitempty"`
}

// ClientConfig holds defaults for "aviary stream".
type ClientConfig struct {
	Model   string `toml:"model,omitempty"`
	Backend string `toml:"backend,omitempty"`

	// Timeout bounds a whole streaming request, as a Go duration string.
	Timeout string `toml:"timeout,omitempty"`
}

// ModelsConfig narrows which models may be streamed.
type ModelsConfig struct {
	FamilyPrefixes []string `toml:"family_prefixes,omitempty"`
}

// TimeoutDuration parses Client.Timeout. An empty value yields the default.
func (c *Config) TimeoutDuration() (time.Duration, error) {
	if c.Client.Timeout == "" {
		return time.ParseDuration(defaultTimeout)
	}
	d, err := time.ParseDuration(c.Client.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid value for client.timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid value for client.timeout: must be positive, got %s", d)
	}
	return d, nil
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"backends.primary.url": {
		get: func(c *Config) string { return c.Backends.Primary.URL },
		set: func(c *Config, v string) error { c.Backends.Primary.URL = v; return nil },
	},
	"backends.alternate.url": {
		get: func(c *Config) string { return c.Backends.Alternate.URL },
		set: func(c *Config, v string) error { c.Backends.Alternate.URL = v; return nil },
	},
	"client.model": {
		get: func(c *Config) string { return c.Client.Model },
		set: func(c *Config, v string) error { c.Client.Model = v; return nil },
	},
	"client.backend": {
		get: func(c *Config) string { return c.Client.Backend },
		set: func(c *Config, v string) error {
			switch v {
			case "primary", "alternate":
				c.Client.Backend = v
				return nil
			default:
				return fmt.Errorf("invalid value for client.backend: %q (expected primary or alternate)", v)
			}
		},
	},
	"client.timeout": {
		get: func(c *Config) string { return c.Client.Timeout },
		set: func(c *Config, v string) error {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("invalid value for client.timeout: %w", err)
			}
			if d <= 0 {
				return fmt.Errorf("invalid value for client.timeout: must be positive, got %s", d)
			}
			c.Client.Timeout = v
			return nil
		},
	},
	"models.family_prefixes": {
		get: func(c *Config) string { return strings.Join(c.Models.FamilyPrefixes, ",") },
		set: func(c *Config, v string) error {
			c.Models.FamilyPrefixes = splitList(v)
			return nil
		},
	},
}

// splitList splits a comma separated list, dropping blank entries.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
