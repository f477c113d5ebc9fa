// Package historycmder provides the history command for printing a stored
// conversation transcript.
package historycmder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexgoodison/dalia/pkg/chat"
	"github.com/alexgoodison/dalia/pkg/chat/client"
	"github.com/alexgoodison/dalia/pkg/cliui"
	"github.com/alexgoodison/dalia/pkg/config"
	"github.com/alexgoodison/dalia/pkg/logger"
)

type historyCommander struct {
	apiTarget string
	plain     bool
	debug     bool
	jsonLog   bool

	logger *slog.Logger
}

const historyLongDesc string = `Print the transcript of a stored conversation.

Fetches the conversation from the configured API target and prints every
message in order. Assistant messages are rendered as markdown unless --plain
is given.

Examples:
  dalia history 3f2a9c1e-8d4b-4f6a-9e21-7c5d0b8a4f13
  dalia history 3f2a9c1e-8d4b-4f6a-9e21-7c5d0b8a4f13 --plain`

const historyShortDesc string = "Print a conversation transcript"

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "history <conversation-id>",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.ClientFlags, []string{config.FlagAPITarget})
			cmder.apiTarget = v.GetString(config.ClientFlags[config.FlagAPITarget].ViperKey)

			cmder.debug = v.GetBool("log.debug")
			if f := cmd.Flags().Lookup("debug"); f != nil && f.Changed {
				cmder.debug, _ = cmd.Flags().GetBool("debug")
			}
			cmder.jsonLog = v.GetBool("log.json")
			return nil
		},
		RunE: func(_ *cobra.Command, args []string) error {
			return cmder.run(args[0])
		},
	}

	config.AddStringFlag(cmd, config.ClientFlags, config.FlagAPITarget, &cmder.apiTarget)
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Print raw message content without markdown rendering")

	return cmd
}

func (c *historyCommander) run(conversationID string) error {
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(c.jsonLog),
		logger.WithPretty(!c.jsonLog && term.IsTerminal(int(os.Stderr.Fd()))),
		logger.WithWriter(os.Stderr),
	)

	cl := client.New(c.apiTarget, client.WithLogger(c.logger))

	resp, err := cl.History(context.Background(), conversationID)
	if err != nil {
		return fmt.Errorf("fetching conversation: %w", err)
	}

	fmt.Printf("\n  %s %s %s\n\n",
		cliui.KeyStyle.Render("Conversation:"),
		cliui.ValueStyle.Render(resp.ConversationID),
		cliui.DimStyle.Render(fmt.Sprintf("(%d messages)", len(resp.Messages))),
	)

	for _, msg := range resp.Messages {
		switch msg.Role {
		case chat.RoleAssistant:
			fmt.Printf("%s\n", cliui.AssistantLabel)
			fmt.Println(c.renderContent(msg.Content))
		default:
			fmt.Printf("%s %s\n\n", cliui.UserLabel, msg.Content)
		}
	}

	return nil
}

// renderContent renders assistant markdown for the terminal, falling back to
// the raw text when rendering fails or --plain is set.
func (c *historyCommander) renderContent(content string) string {
	if c.plain {
		return content + "\n"
	}

	rendered, err := cliui.RenderMarkdown(content)
	if err != nil {
		c.logger.Debug("markdown rendering failed", "error", err)
		return content + "\n"
	}
	return strings.TrimRight(rendered, "\n") + "\n"
}
