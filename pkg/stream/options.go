package stream

import (
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/papercomputeco/aviary/pkg/models"
)

// DefaultTimeout bounds a whole streaming request when no timeout is given.
const DefaultTimeout = 5 * time.Minute

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Option configures a Client created with New.
type Option func(*Client)

// WithDoer overrides the HTTP transport. Defaults to a plain *http.Client;
// the overall timeout is enforced through the request context, so the Doer
// should not impose its own shorter one.
func WithDoer(d Doer) Option {
	return func(c *Client) {
		c.doer = d
	}
}

// WithTimeout sets the single timeout applied to a whole request, from
// connecting until the last record is read. Zero or negative disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithValidator overrides the model-family check. Defaults to
// models.NewFamilyValidator().
func WithValidator(v models.Validator) Option {
	return func(c *Client) {
		c.validator = v
	}
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithRawWriter tees every raw line received from the backend to w.
func WithRawWriter(w io.Writer) Option {
	return func(c *Client) {
		c.raw = w
	}
}
