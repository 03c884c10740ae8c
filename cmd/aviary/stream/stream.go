// Package streamcmder provides the stream command, which sends a single
// prompt to a backend and prints the completion as it arrives.
package streamcmder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/aviary/pkg/backend"
	"github.com/papercomputeco/aviary/pkg/cliui"
	"github.com/papercomputeco/aviary/pkg/config"
	"github.com/papercomputeco/aviary/pkg/credentials"
	"github.com/papercomputeco/aviary/pkg/llm"
	"github.com/papercomputeco/aviary/pkg/logger"
	"github.com/papercomputeco/aviary/pkg/models"
	"github.com/papercomputeco/aviary/pkg/stream"
	"github.com/papercomputeco/aviary/pkg/utils"
)

// payloadLogLimit caps how much of a failing record is logged.
const payloadLogLimit = 256

type streamCommander struct {
	// Registry-backed flags, resolved through viper.
	model        string
	backend      string
	timeout      string
	primaryURL   string
	alternateURL string

	json     bool
	rawOut   string
	markdown bool

	debug     bool
	configDir string
	logFile   string

	cfg *config.Config

	// finishReason is the last finish_reason reported by the stream.
	finishReason string

	out    io.Writer
	errOut io.Writer
	in     io.Reader
	logger *slog.Logger
}

var streamFlagKeys = []string{
	config.FlagModel,
	config.FlagBackend,
	config.FlagTimeout,
	config.FlagPrimaryURL,
	config.FlagAlternateURL,
}

const streamLongDesc string = `Stream a chat completion for a single prompt.

The prompt is sent as the only user message to the selected backend's
/chat/completions endpoint with streaming enabled. Content deltas are printed
as they arrive. When no prompt argument is given (or it is "-") the prompt
is read from stdin.

Backends: primary (alias aviary), alternate (alias endpoints).

Flag values override environment variables (AVIARY_CLIENT_MODEL,
AVIARY_URL, ENDPOINTS_URL, ...), which override config.toml.

Examples:
  aviary stream "Write a haiku about Go"
  aviary stream -b alternate -m meta-llama/Llama-2-70b-chat-hf "Hello"
  aviary stream --json "Hello" | jq .
  echo "Summarize this" | aviary stream --raw-out wire.log`

const streamShortDesc string = "Stream a chat completion"

func NewStreamCmd() *cobra.Command {
	cmder := &streamCommander{}

	cmd := &cobra.Command{
		Use:   "stream [prompt]",
		Short: streamShortDesc,
		Long:  streamLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.StreamFlags, streamFlagKeys)
			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}
			cmder.logFile, _ = cmd.Flags().GetString("log-file")

			cmder.out = cmd.OutOrStdout()
			cmder.errOut = cmd.ErrOrStderr()
			cmder.in = cmd.InOrStdin()

			prompt, err := cmder.prompt(args)
			if err != nil {
				return err
			}

			return cmder.run(cmd.Context(), prompt)
		},
	}

	for _, key := range streamFlagKeys {
		config.AddStringFlag(cmd, config.StreamFlags, key, cmder.target(key))
	}
	cmd.Flags().BoolVar(&cmder.json, "json", false, "Print each event as a JSON line")
	cmd.Flags().StringVar(&cmder.rawOut, "raw-out", "", "Write the raw response lines to this file")
	cmd.Flags().BoolVar(&cmder.markdown, "markdown", false, "Render the complete answer as markdown when stdout is a terminal")

	return cmd
}

func (c *streamCommander) target(key string) *string {
	switch key {
	case config.FlagModel:
		return &c.model
	case config.FlagBackend:
		return &c.backend
	case config.FlagTimeout:
		return &c.timeout
	case config.FlagPrimaryURL:
		return &c.primaryURL
	default:
		return &c.alternateURL
	}
}

func (c *streamCommander) prompt(args []string) (string, error) {
	if len(args) > 0 && !(len(args) == 1 && args[0] == "-") {
		return strings.Join(args, " "), nil
	}

	b, err := io.ReadAll(c.in)
	if err != nil {
		return "", fmt.Errorf("reading prompt from stdin: %w", err)
	}

	prompt := strings.TrimSpace(string(b))
	if prompt == "" {
		return "", errors.New("prompt cannot be empty")
	}
	return prompt, nil
}

func (c *streamCommander) run(ctx context.Context, prompt string) error {
	closeLog, err := c.setupLogger()
	if err != nil {
		return err
	}
	defer closeLog()

	sel, err := backend.ParseSelector(c.cfg.Client.Backend)
	if err != nil {
		return err
	}

	timeout, err := c.cfg.TimeoutDuration()
	if err != nil {
		return err
	}

	creds, err := credentials.NewManager(c.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	opts := []stream.Option{
		stream.WithTimeout(timeout),
		stream.WithLogger(c.logger),
		stream.WithValidator(models.NewFamilyValidator(c.cfg.Models.FamilyPrefixes...)),
	}

	if c.rawOut != "" {
		f, err := os.Create(c.rawOut)
		if err != nil {
			return fmt.Errorf("creating raw output file: %w", err)
		}
		defer f.Close()
		opts = append(opts, stream.WithRawWriter(f))
	}

	client := stream.New(backend.NewConfigResolver(c.cfg, creds), opts...)

	s, err := client.Stream(ctx, stream.Request{
		Model:   c.cfg.Client.Model,
		Prompt:  prompt,
		Backend: sel,
	})
	if err != nil {
		return err
	}
	defer s.Close()

	c.logger.Debug("streaming",
		"backend", sel.String(),
		"model", c.cfg.Client.Model,
		"timeout", timeout.String(),
	)

	switch {
	case c.json:
		err = c.printJSON(s)
	case c.markdown && cliui.IsTerminal(c.out):
		err = c.printMarkdown(s)
	default:
		err = c.printText(s)
	}

	if err == nil {
		c.logger.Debug("stream finished",
			"finish_reason", c.finishReason,
			"request_id", s.RequestID(),
		)
	}

	return c.report(err)
}

// observe records per-event state that is logged once the stream ends.
func (c *streamCommander) observe(ev llm.Event) {
	if reason := ev.FinishReason(); reason != "" {
		c.finishReason = reason
	}
}

func (c *streamCommander) printText(s *stream.Stream) error {
	wrote := false
	for ev, err := range s.All() {
		if err != nil {
			if wrote {
				fmt.Fprintln(c.out)
			}
			return err
		}
		c.observe(ev)

		if content := ev.Content(); content != "" {
			if _, err := io.WriteString(c.out, content); err != nil {
				return err
			}
			wrote = true
		}
	}

	if wrote {
		fmt.Fprintln(c.out)
	}
	return nil
}

func (c *streamCommander) printJSON(s *stream.Stream) error {
	enc := json.NewEncoder(c.out)
	for ev, err := range s.All() {
		if err != nil {
			return err
		}
		c.observe(ev)
		if err := enc.Encode(ev); err != nil {
			return fmt.Errorf("encoding event: %w", err)
		}
	}
	return nil
}

func (c *streamCommander) printMarkdown(s *stream.Stream) error {
	var answer strings.Builder

	err := cliui.Step(c.errOut, "Streaming "+cliui.NameStyle.Render(c.cfg.Client.Model), func() error {
		for ev, err := range s.All() {
			if err != nil {
				return err
			}
			c.observe(ev)
			answer.WriteString(ev.Content())
		}
		return nil
	})
	if err != nil {
		return err
	}

	rendered, err := cliui.RenderMarkdown(answer.String())
	if err != nil {
		c.logger.Warn("rendering markdown", "error", err)
	}
	_, err = io.WriteString(c.out, rendered)
	return err
}

// report logs the details of a stream failure before it is returned.
func (c *streamCommander) report(err error) error {
	if err == nil {
		return nil
	}

	var se *llm.StreamError
	if errors.As(err, &se) {
		c.logger.Error("stream failed",
			"status", se.StatusCode,
			"payload", utils.Truncate(se.Payload, payloadLogLimit),
		)
	}
	return err
}

// setupLogger logs to stderr and, with --log-file, also as JSON to the file.
func (c *streamCommander) setupLogger() (func(), error) {
	console := logger.New(
		logger.WithDebug(c.debug),
		logger.WithPretty(true),
		logger.WithWriter(c.errOut),
	)

	if c.logFile == "" {
		c.logger = console
		return func() {}, nil
	}

	f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	c.logger = logger.Multi(console, logger.New(
		logger.WithDebug(true),
		logger.WithJSON(true),
		logger.WithWriter(f),
	))
	return func() { _ = f.Close() }, nil
}
