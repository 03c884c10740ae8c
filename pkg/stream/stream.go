package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"strings"

	"github.com/papercomputeco/aviary/pkg/llm"
	"github.com/papercomputeco/aviary/pkg/sse"
)

// errorBodyLimit caps how much of a non-2xx response body is quoted in the
// error message.
const errorBodyLimit = 4 * 1024

// errNoResponse is reported when a Doer returns neither a response nor an
// error.
var errNoResponse = errors.New("no response from backend")

// Stream is a lazy, single-pass, non-restartable sequence of events from one
// streaming request. It is not safe for concurrent use.
//
//	s, err := client.Stream(ctx, req)
//	if err != nil { ... }
//	defer s.Close()
//	for s.Next() {
//		handle(s.Event())
//	}
//	if err := s.Err(); err != nil { ... }
type Stream struct {
	cancel    context.CancelFunc
	doer      Doer
	req       *http.Request
	raw       io.Writer
	requestID string
	logger    *slog.Logger

	resp   *http.Response
	reader *sse.Reader

	current llm.Event
	err     error
	count   int
	done    bool
	closed  bool
}

// Next advances to the next event, sending the request on the first call. It
// returns false when the stream completes normally (sentinel or end of body)
// or fails; Err distinguishes the two. The connection is released before
// Next returns false.
func (s *Stream) Next() bool {
	s.current = nil
	if s.done {
		return false
	}

	if s.reader == nil && !s.open() {
		return false
	}

	line, err := s.reader.Next()
	if err != nil {
		s.fail(llm.AsStreamError(err, s.reader.LastRaw(), s.resp.StatusCode))
		return false
	}
	if line == nil {
		s.finish()
		return false
	}

	ev, err := llm.DecodeEvent([]byte(line.Data))
	if err != nil {
		s.fail(llm.NewStreamError(fmt.Errorf("decoding stream record: %w", err), line.Raw, s.resp.StatusCode))
		return false
	}

	if v, ok := ev.ErrorValue(); ok {
		s.fail(&llm.StreamError{
			Message:    llm.ErrorMessage(v),
			Payload:    line.Raw,
			StatusCode: s.resp.StatusCode,
		})
		return false
	}

	s.current = ev
	s.count++
	return true
}

// Event returns the event produced by the last successful call to Next.
// Ownership passes to the caller; the Stream keeps no reference after the
// following call to Next.
func (s *Stream) Event() llm.Event {
	return s.current
}

// Err returns the terminal *llm.StreamError, or nil if the stream completed
// normally or has not finished yet.
func (s *Stream) Err() error {
	return s.err
}

// Close releases the connection. It is safe to call more than once and after
// the stream has finished. Closing before the first Next sends no request.
func (s *Stream) Close() error {
	s.done = true
	return s.release()
}

// All returns the remaining events as a range-over-func sequence. A failure
// is delivered as a final (nil, err) pair. Breaking out of the loop closes the
// stream.
func (s *Stream) All() iter.Seq2[llm.Event, error] {
	return func(yield func(llm.Event, error) bool) {
		defer s.Close()

		for s.Next() {
			if !yield(s.Event(), nil) {
				return
			}
		}

		if err := s.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// StatusCode returns the HTTP status of the response, or 0 before the
// request was sent or when no response was received.
func (s *Stream) StatusCode() int {
	if s.resp == nil {
		return 0
	}
	return s.resp.StatusCode
}

// RequestID returns the X-Request-Id sent with the request.
func (s *Stream) RequestID() string {
	return s.requestID
}

// open sends the request and prepares the decoder.
func (s *Stream) open() bool {
	s.logger.Debug("sending streaming request", "url", s.req.URL.String())

	resp, err := s.doer.Do(s.req)
	if err != nil {
		s.fail(llm.NewStreamError(err, "", llm.DefaultErrorStatus))
		return false
	}
	if resp == nil {
		s.fail(llm.NewStreamError(errNoResponse, "", llm.DefaultErrorStatus))
		return false
	}
	s.resp = resp

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.fail(&llm.StreamError{
			Message:    statusMessage(resp),
			StatusCode: resp.StatusCode,
		})
		return false
	}

	s.logger.Debug("stream opened", "status", resp.StatusCode)
	s.reader = sse.NewTeeReader(resp.Body, s.raw)
	return true
}

func (s *Stream) finish() {
	s.done = true
	s.logger.Debug("stream completed", "events", s.count)
	_ = s.release()
}

func (s *Stream) fail(err *llm.StreamError) {
	s.err = err
	s.done = true
	s.logger.Warn("stream failed",
		"status", err.StatusCode,
		"events", s.count,
		"error", err.Message,
	)
	_ = s.release()
}

func (s *Stream) release() error {
	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.resp != nil {
		err = s.resp.Body.Close()
	}
	s.cancel()
	return err
}

// statusMessage describes a non-2xx response, quoting the start of its body.
func statusMessage(resp *http.Response) string {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	msg := fmt.Sprintf("unexpected status %s", resp.Status)
	if trimmed := strings.TrimSpace(string(body)); trimmed != "" {
		msg += ": " + trimmed
	}
	return msg
}
