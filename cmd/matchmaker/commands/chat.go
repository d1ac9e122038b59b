package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"pet-matchmaker/internal/common/logger"
	"pet-matchmaker/internal/matchmaking/conversation"
	"pet-matchmaker/internal/models"
)

type turnHandler interface {
	HandleChatTurn(ctx context.Context, userID string, msg conversation.Message, prior []models.TranscriptEntry) (*conversation.TurnResult, error)
}

// NewChatCmd runs an interview from the terminal against the configured
// backends.
func NewChatCmd() *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat with the matchmaker from the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
			defer zapLog.Sync()

			a, err := buildApp(cmd.Context(), cfg, zapLog)
			if err != nil {
				return err
			}
			defer a.Close()

			return chatLoop(cmd.Context(), a.engine, userID, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "cli", "user id the conversation is stored under")
	return cmd
}

func chatLoop(ctx context.Context, h turnHandler, userID string, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	fmt.Fprintln(out, conversation.Greeting)

	var transcript []models.TranscriptEntry
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "/quit" || line == "/exit" {
			return nil
		}

		res, err := h.HandleChatTurn(ctx, userID, conversation.Message{Kind: conversation.KindChat, Text: line}, transcript)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		transcript = res.Transcript
		fmt.Fprintln(out, res.Reply)
	}
}
