// Package aviarycmder is the root of the aviary command tree.
package aviarycmder

import (
	"fmt"

	"github.com/spf13/cobra"

	authcmder "github.com/papercomputeco/aviary/cmd/aviary/auth"
	configcmder "github.com/papercomputeco/aviary/cmd/aviary/config"
	streamcmder "github.com/papercomputeco/aviary/cmd/aviary/stream"
	versioncmder "github.com/papercomputeco/aviary/cmd/version"
	"github.com/papercomputeco/aviary/pkg/config"
)

const aviaryLongDesc string = `Aviary streams chat completions from OpenAI-compatible backends.

Two backends are selectable: "primary" (alias "aviary") and "alternate"
(alias "endpoints"). Their URLs and the default model live in config.toml
in the .aviary/ directory; bearer tokens live in credentials.toml.

A .env file in the working directory is loaded before configuration is read,
so AVIARY_URL, ENDPOINTS_URL, AVIARY_TOKEN and ENDPOINTS_TOKEN may be set there.

  aviary stream "Why is the sky blue?"    Stream a completion
  aviary auth primary                     Store a bearer token
  aviary config list                      Show configuration`

const aviaryShortDesc string = "Aviary - streaming chat completions"

func NewAviaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "aviary",
		Short:         aviaryShortDesc,
		Long:          aviaryLongDesc,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return fmt.Errorf("loading .env: %w", err)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Override path to .aviary/ config directory")
	cmd.PersistentFlags().String("log-file", "", "Also write JSON logs to this file")

	cmd.AddCommand(streamcmder.NewStreamCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(authcmder.NewAuthCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
