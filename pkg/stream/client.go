// Package stream issues streaming chat-completion requests and decodes the
// response body into a lazy, single-pass sequence of events.
//
// A call opens exactly one connection. It is released when the sequence is
// exhausted, when a terminal error occurs, or when the caller closes the
// stream (including breaking out of a range over All).
package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/aviary/pkg/backend"
	"github.com/papercomputeco/aviary/pkg/llm"
	"github.com/papercomputeco/aviary/pkg/logger"
	"github.com/papercomputeco/aviary/pkg/models"
)

// Request is a single streaming prompt.
type Request struct {
	// Model must belong to the supported model family.
	Model string

	// Prompt is sent verbatim as the sole user message.
	Prompt string

	// Backend selects which service receives the request.
	Backend backend.Selector
}

// Client opens streams against the backends known to its resolver. A Client
// is safe for concurrent use; streams it returns are not.
type Client struct {
	resolver  backend.Resolver
	validator models.Validator
	doer      Doer
	timeout   time.Duration
	logger    *slog.Logger
	raw       io.Writer
}

// New creates a Client resolving backends through resolver.
func New(resolver backend.Resolver, opts ...Option) *Client {
	c := &Client{
		resolver:  resolver,
		validator: models.NewFamilyValidator(),
		doer:      &http.Client{},
		timeout:   DefaultTimeout,
		logger:    logger.Nop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Stream prepares a streaming request for req.
//
// An unsupported model or an unknown backend selector is reported here as a
// *llm.ConfigurationError and no network activity takes place. Otherwise the
// request is sent on the first call to Stream.Next; transport and server
// failures are reported by Stream.Err as a *llm.StreamError.
//
// The returned Stream must be drained or closed.
func (c *Client) Stream(ctx context.Context, req Request) (*Stream, error) {
	if err := models.Check(c.validator, req.Model); err != nil {
		return nil, err
	}

	b, err := c.resolver.Resolve(req.Backend)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(llm.NewStreamingRequest(req.Model, req.Prompt))
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	var cancel context.CancelFunc
	if c.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}

	url := b.ChatCompletionsURL()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		cancel()
		return nil, &llm.ConfigurationError{
			Field:  "backend URL",
			Value:  url,
			Reason: err.Error(),
		}
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")
	httpReq.Header.Set("X-Request-Id", requestID)
	if b.Bearer != "" {
		httpReq.Header.Set("Authorization", b.Bearer)
	}

	return &Stream{
		cancel:    cancel,
		doer:      c.doer,
		req:       httpReq,
		raw:       c.raw,
		requestID: requestID,
		logger: c.logger.With(
			"request_id", requestID,
			"backend", b.Name.String(),
			"model", req.Model,
		),
	}, nil
}

// Events is a convenience over Stream and Stream.All: configuration errors
// are delivered as the terminal element of the sequence instead of being
// returned separately.
func (c *Client) Events(ctx context.Context, req Request) iter.Seq2[llm.Event, error] {
	return func(yield func(llm.Event, error) bool) {
		s, err := c.Stream(ctx, req)
		if err != nil {
			yield(nil, err)
			return
		}

		for ev, err := range s.All() {
			if !yield(ev, err) {
				return
			}
		}
	}
}
