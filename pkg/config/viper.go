package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/papercomputeco/aviary/pkg/dotdir"
)

// legacyEnv binds dotted keys to the environment variables historically used
// to point the client at its backends. They are consulted after the
// AVIARY_-prefixed form of the key.
var legacyEnv = map[string]string{
	"backends.primary.url":   "AVIARY_URL",
	"backends.alternate.url": "ENDPOINTS_URL",
}

// InitViper creates and returns a configured *viper.Viper.
// It sets defaults from NewDefaultConfig(), reads the config.toml file
// (if found via dotdir resolution), and binds environment variables
// with the AVIARY_ prefix.
//
// Config precedence (highest to lowest):
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. Environment variables (AVIARY_CLIENT_MODEL, AVIARY_URL, etc.)
//  3. config.toml file values
//  4. Defaults from NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()

	// 1. Register all defaults from NewDefaultConfig().
	setViperDefaults(v)

	// 2. Config file discovery via dotdir resolution.
	v.SetConfigName("config")
	v.SetConfigType("toml")

	ddm := dotdir.NewManager()
	target, err := ddm.Target(configDir)
	if err != nil {
		return nil, fmt.Errorf("resolving config dir: %w", err)
	}

	if target != "" {
		v.AddConfigPath(target)
	}

	if err := v.ReadInConfig(); err != nil {
		// Config file not found errors are fine, defaults will apply.
		if !errors.As(err, &viper.ConfigFileNotFoundError{}) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	// 3. Environment variables: AVIARY_CLIENT_MODEL, AVIARY_BACKENDS_PRIMARY_URL, etc.
	v.SetEnvPrefix("AVIARY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		prefixed := "AVIARY_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	return v, nil
}

// FromViper materializes a Config from the merged viper state.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Version: v.GetInt("version"),
		Backends: BackendsConfig{
			Primary:   BackendConfig{URL: v.GetString("backends.primary.url")},
			Alternate: BackendConfig{URL: v.GetString("backends.alternate.url")},
		},
		Client: ClientConfig{
			Model:   v.GetString("client.model"),
			Backend: v.GetString("client.backend"),
			Timeout: v.GetString("client.timeout"),
		},
		Models: ModelsConfig{
			FamilyPrefixes: familyPrefixes(v),
		},
	}
}

// familyPrefixes accepts either a TOML array or a comma separated string
// (the latter being the only form an environment variable can carry).
func familyPrefixes(v *viper.Viper) []string {
	var prefixes []string
	if s, ok := v.Get("models.family_prefixes").(string); ok {
		prefixes = splitList(s)
	} else {
		prefixes = v.GetStringSlice("models.family_prefixes")
	}

	if len(prefixes) == 0 {
		return nil
	}
	return prefixes
}

// LoadDotEnv loads KEY=value pairs from the given .env files into the process
// environment without overriding variables that are already set. Missing
// files are ignored. With no paths, ".env" in the working directory is used.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}

	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}

	return nil
}

// setViperDefaults registers defaults from NewDefaultConfig() into viper
// using dotted-key notation. This keeps defaults.go as the single source of truth.
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("version", d.Version)

	// Backends
	v.SetDefault("backends.primary.url", d.Backends.Primary.URL)
	v.SetDefault("backends.alternate.url", d.Backends.Alternate.URL)

	// Client
	v.SetDefault("client.model", d.Client.Model)
	v.SetDefault("client.backend", d.Client.Backend)
	v.SetDefault("client.timeout", d.Client.Timeout)

	// Models
	v.SetDefault("models.family_prefixes", d.Models.FamilyPrefixes)
}
