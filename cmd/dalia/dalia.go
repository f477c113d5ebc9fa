// Package daliacmder
package daliacmder

import (
	"github.com/spf13/cobra"

	chatcmder "github.com/alexgoodison/dalia/cmd/dalia/chat"
	configcmder "github.com/alexgoodison/dalia/cmd/dalia/config"
	historycmder "github.com/alexgoodison/dalia/cmd/dalia/history"
	versioncmder "github.com/alexgoodison/dalia/cmd/version"
)

const daliaLongDesc string = `Dalia is a terminal client for the dalia chat service.

Chat with the assistant using:
  dalia chat                 Start an interactive chat session
  dalia chat -c <id>         Resume an existing conversation
  dalia history <id>         Print a conversation transcript`

const daliaShortDesc string = "Dalia - Chat from your terminal"

func NewDaliaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dalia",
		Short: daliaShortDesc,
		Long:  daliaLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Directory containing config.toml (defaults to ./.dalia or ~/.dalia)")

	// Add subcommands
	cmd.AddCommand(chatcmder.NewChatCmd())
	cmd.AddCommand(historycmder.NewHistoryCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
