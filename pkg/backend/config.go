package backend

import (
	"fmt"

	"github.com/papercomputeco/aviary/pkg/config"
	"github.com/papercomputeco/aviary/pkg/llm"
)

// TokenSource supplies the bearer token of a backend by name.
// *credentials.Manager satisfies it.
type TokenSource interface {
	ResolveToken(backend string) (string, error)
}

// ConfigResolver resolves URLs from a Config and tokens from a TokenSource.
type ConfigResolver struct {
	cfg    *config.Config
	tokens TokenSource
}

// NewConfigResolver creates a ConfigResolver. A nil tokens source sends no
// Authorization header.
func NewConfigResolver(cfg *config.Config, tokens TokenSource) *ConfigResolver {
	return &ConfigResolver{cfg: cfg, tokens: tokens}
}

func (r *ConfigResolver) Resolve(sel Selector) (Backend, error) {
	var url string
	switch sel {
	case Primary:
		url = r.cfg.Backends.Primary.URL
	case Alternate:
		url = r.cfg.Backends.Alternate.URL
	default:
		return Backend{}, unknownSelector(string(sel))
	}

	if url == "" {
		return Backend{}, &llm.ConfigurationError{
			Field:  "backend",
			Value:  string(sel),
			Reason: fmt.Sprintf("no URL configured (set backends.%s.url)", sel),
		}
	}

	var token string
	if r.tokens != nil {
		var err error
		token, err = r.tokens.ResolveToken(string(sel))
		if err != nil {
			return Backend{}, fmt.Errorf("resolving token for %s backend: %w", sel, err)
		}
	}

	return Backend{
		Name:   sel,
		URL:    url,
		Bearer: BearerFromToken(token),
	}, nil
}
