// Package chatcmder provides the chat command for interactive conversations
// with the dalia backend.
package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/alexgoodison/dalia/pkg/chat"
	"github.com/alexgoodison/dalia/pkg/chat/client"
	"github.com/alexgoodison/dalia/pkg/chat/session"
	"github.com/alexgoodison/dalia/pkg/cliui"
	"github.com/alexgoodison/dalia/pkg/config"
	"github.com/alexgoodison/dalia/pkg/logger"
	"github.com/alexgoodison/dalia/pkg/utils"
)

var (
	userPrompt      = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true).Render("you> ")
	assistantPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("assistant> ")
)

type chatCommander struct {
	apiTarget      string
	mode           string
	conversationID string
	timeoutSeconds uint
	debug          bool
	jsonLog        bool
	logFile        string

	logger *slog.Logger
}

const chatLongDesc string = `Start an interactive chat session with the dalia backend.

Messages are sent to the configured API target and the assistant's reply is
streamed back token by token. Pass --mode fallback to use the single-shot
exchange instead, for backends without streaming support.

Resume an earlier conversation with --conversation; the transcript is loaded
before the first prompt.

Examples:
  dalia chat
  dalia chat --mode fallback
  dalia chat --conversation 3f2a9c1e-8d4b-4f6a-9e21-7c5d0b8a4f13
  dalia chat --api-target http://localhost:8000`

const chatShortDesc string = "Interactive chat with the dalia backend"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			v, err := config.InitViper(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.ClientFlags, []string{
				config.FlagAPITarget,
				config.FlagChatMode,
				config.FlagTimeout,
			})

			cmder.apiTarget = v.GetString(config.ClientFlags[config.FlagAPITarget].ViperKey)
			cmder.mode = v.GetString(config.ClientFlags[config.FlagChatMode].ViperKey)
			cmder.timeoutSeconds = v.GetUint(config.ClientFlags[config.FlagTimeout].ViperKey)

			cmder.debug = v.GetBool("log.debug")
			if f := cmd.Flags().Lookup("debug"); f != nil && f.Changed {
				cmder.debug, _ = cmd.Flags().GetBool("debug")
			}
			cmder.jsonLog = v.GetBool("log.json")

			if cmder.mode != config.ModeStreaming && cmder.mode != config.ModeFallback {
				return fmt.Errorf("invalid mode %q: must be %q or %q",
					cmder.mode, config.ModeStreaming, config.ModeFallback)
			}
			return nil
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.ClientFlags, config.FlagAPITarget, &cmder.apiTarget)
	config.AddStringFlag(cmd, config.ClientFlags, config.FlagChatMode, &cmder.mode)
	config.AddUintFlag(cmd, config.ClientFlags, config.FlagTimeout, &cmder.timeoutSeconds)
	cmd.Flags().StringVarP(&cmder.conversationID, "conversation", "c", "", "Conversation ID to resume")
	cmd.Flags().StringVar(&cmder.logFile, "log-file", "", "Append JSON logs to this file in addition to terminal output")

	return cmd
}

func (c *chatCommander) run() error {
	c.logger = logger.New(
		logger.WithDebug(c.debug),
		logger.WithJSON(c.jsonLog),
		logger.WithPretty(!c.jsonLog && term.IsTerminal(int(os.Stderr.Fd()))),
		logger.WithWriter(os.Stderr),
	)

	if c.logFile != "" {
		f, err := os.OpenFile(c.logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()

		// Pretty output stays on the terminal; the file gets JSON records.
		c.logger = logger.Multi(c.logger, logger.New(
			logger.WithDebug(c.debug),
			logger.WithJSON(true),
			logger.WithWriter(f),
		))
	}

	httpClient := &http.Client{
		// Assistant replies can be slow
		Timeout: time.Duration(c.timeoutSeconds) * time.Second,
	}

	cl := client.New(c.apiTarget,
		client.WithHTTPClient(httpClient),
		client.WithLogger(c.logger),
	)

	var ctrlOpts []session.Option
	ctrlOpts = append(ctrlOpts, session.WithLogger(c.logger))
	if c.conversationID != "" {
		ctrlOpts = append(ctrlOpts, session.WithConversationID(c.conversationID))
	}
	ctrl := session.NewController(cl, ctrlOpts...)

	fmt.Println()
	if c.conversationID != "" {
		err := cliui.Step(os.Stdout, "Loading conversation", func() error {
			return ctrl.Hydrate(context.Background(), c.conversationID)
		})
		if err != nil {
			return err
		}

		snap := ctrl.Snapshot()
		fmt.Printf("  %s Resuming %s %s\n",
			cliui.SuccessMark,
			cliui.ValueStyle.Render(utils.Truncate(snap.ConversationID, 16)),
			cliui.DimStyle.Render(fmt.Sprintf("(%d messages)", len(snap.Messages))),
		)
	} else {
		fmt.Printf("  %s New conversation\n", cliui.DimStyle.Render("●"))
	}

	fmt.Printf("  %s %s\n\n",
		cliui.KeyStyle.Render("Target:"),
		cliui.ValueStyle.Render(c.apiTarget),
	)
	fmt.Printf("  %s\n\n", cliui.FaintStyle.Render("Type your message and press Enter. /exit or Ctrl+D to quit."))

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(userPrompt)
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "/exit" {
			break
		}

		if err := c.exchange(ctrl, input); err != nil {
			fmt.Fprintf(os.Stderr, "\n  %s %s\n", cliui.FailMark, cliui.ErrorStyle.Render(err.Error()))
			continue
		}

		fmt.Println()
		fmt.Println()
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	if snap := ctrl.Snapshot(); snap.ConversationID != "" {
		fmt.Printf("\n  %s %s\n",
			cliui.DimStyle.Render("Conversation:"),
			cliui.ValueStyle.Render(snap.ConversationID),
		)
	}

	fmt.Println()
	return nil
}

// exchange sends one message and prints the assistant's reply, streamed or
// whole depending on the configured mode.
func (c *chatCommander) exchange(ctrl *session.Controller, input string) error {
	opts := session.SubmitOptions{}

	switch c.mode {
	case config.ModeFallback:
		opts.Mode = session.ModeFallback
		opts.OnResponse = func(resp *chat.SendResponse) {
			fmt.Print(assistantPrompt)
			if resp.LatestMessage != nil {
				fmt.Print(resp.LatestMessage.Content)
				return
			}
			for i := len(resp.Messages) - 1; i >= 0; i-- {
				if resp.Messages[i].Role == chat.RoleAssistant {
					fmt.Print(resp.Messages[i].Content)
					return
				}
			}
		}
	default:
		opts.Mode = session.ModeStreaming
		started := false
		opts.OnEvent = func(ev *chat.StreamEvent) {
			if ev.Type != chat.EventContent || ev.Chunk == "" {
				return
			}
			if !started {
				fmt.Print(assistantPrompt)
				started = true
			}
			fmt.Print(ev.Chunk)
		}
	}

	return ctrl.Submit(context.Background(), input, opts)
}
