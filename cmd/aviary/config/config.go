// Package configcmder provides the config command for managing persistent
// aviary configuration stored in the .aviary/ directory.
package configcmder

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/aviary/pkg/config"
)

const configLongDesc string = `Manage persistent aviary configuration.

Configuration is stored as config.toml in the .aviary/ directory and provides
default values for command flags. CLI flags and environment variables take
precedence over config file values.

Keys use dotted notation matching the TOML section structure:
  backends.primary.url, backends.alternate.url,
  client.model, client.backend, client.timeout,
  models.family_prefixes

Use subcommands to get, set, or list configuration values:
  aviary config set <key> <value>    Set a configuration value
  aviary config get <key>            Get a configuration value
  aviary config list                 List all configuration values

Examples:
  aviary config set backends.primary.url http://localhost:8000/v1
  aviary config set client.backend alternate
  aviary config set models.family_prefixes meta-llama/,mistralai/
  aviary config get client.model
  aviary config list`

const configShortDesc string = "Manage persistent aviary configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}

func unknownKey(key string) error {
	return fmt.Errorf("unknown config key: %q\n\nValid keys: %s",
		key, strings.Join(config.ValidConfigKeys(), ", "))
}

func completeKeys(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) == 0 {
		return config.ValidConfigKeys(), cobra.ShellCompDirectiveNoFileComp
	}
	return nil, cobra.ShellCompDirectiveNoFileComp
}
