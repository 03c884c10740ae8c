package config

const (
	defaultPrimaryURL   = "http://localhost:8000/v1"
	defaultAlternateURL = "https://api.endpoints.anyscale.com/v1"

	defaultModel   = "meta-llama/Llama-2-7b-chat-hf"
	defaultBackend = "primary"
	defaultTimeout = "5m"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Backends: BackendsConfig{
			Primary:   BackendConfig{URL: defaultPrimaryURL},
			Alternate: BackendConfig{URL: defaultAlternateURL},
		},
		Client: ClientConfig{
			Model:   defaultModel,
			Backend: defaultBackend,
			Timeout: defaultTimeout,
		},
	}
}
