// Package configcmder provides the config command for managing persistent
// dalia configuration stored in the .dalia/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent dalia configuration.

Configuration is stored as config.toml in the .dalia/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  client.api_target, chat.mode, chat.timeout_seconds

Use subcommands to get, set, or list configuration values:
  dalia config set <key> <value>    Set a configuration value
  dalia config get <key>            Get a configuration value
  dalia config list                 List all configuration values

Examples:
  dalia config set client.api_target http://localhost:8000
  dalia config set chat.mode fallback
  dalia config get chat.mode
  dalia config list`

const configShortDesc string = "Manage persistent dalia configuration"

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
