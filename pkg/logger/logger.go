// Package logger builds the slog loggers used by aviary: a colorized console
// logger on stderr and an optional JSON log file.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
)

type config struct {
	level  slog.Level
	pretty bool
	json   bool
	w      io.Writer
}

// New returns a *slog.Logger configured by opts. Without options it is a text
// logger at Info level on os.Stderr, leaving stdout to completion output.
func New(opts ...Option) *slog.Logger {
	c := &config{level: slog.LevelInfo, w: os.Stderr}
	for _, opt := range opts {
		opt(c)
	}

	switch {
	case c.json:
		return slog.New(slog.NewJSONHandler(c.w, &slog.HandlerOptions{Level: c.level}))

	case c.pretty:
		return slog.New(charmlog.NewWithOptions(c.w, charmlog.Options{
			Level:           charmlog.Level(c.level),
			ReportTimestamp: true,
		}))

	default:
		return slog.New(slog.NewTextHandler(c.w, &slog.HandlerOptions{Level: c.level}))
	}
}

// Nop returns a logger that discards everything. It is the library default
// until a caller supplies its own logger.
func Nop() *slog.Logger {
	return slog.New(nopHandler{})
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }
