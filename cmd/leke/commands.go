package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"leke-chat/internal/chat"
	"leke-chat/internal/terminal"
)

var (
	sendFile    string
	historyHTML string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat",
	Long: `Loads the most recent conversations and reads questions from stdin.
Type /help inside the chat for the available commands.

Unless --no-clear is set, the server history is cleared when the chat ends.`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

var sendCmd = &cobra.Command{
	Use:   "send [prompt]",
	Short: "Send a single question and print the answer",
	Long: `Sends one question, optionally with a document, and prints the answer.

Example:
  leke send "Summarize this" --file lecture.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSend,
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the most recent conversations",
	Long: `Shows the last history_limit conversations (5 by default) stored on the
server, the same ones the interactive chat loads on start.`,
	Args:  cobra.NoArgs,
	RunE:  runHistory,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the server-side conversation history",
	Args:  cobra.NoArgs,
	RunE:  runClear,
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the LEKE server is up",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

func init() {
	sendCmd.Flags().StringVarP(&sendFile, "file", "f", "", "document to send with the question")
	historyCmd.Flags().StringVar(&historyHTML, "html", "", "write the history as an HTML page to this path")
}

func newPrinter() *terminal.Printer {
	return terminal.NewPrinter(os.Stdout, terminal.PrinterOptions{
		Plain:    cfg.PlainOutput,
		WordWrap: cfg.WordWrap,
	})
}

func runChat(cmd *cobra.Command, args []string) error {
	printer := newPrinter()
	session := chat.NewSession(newClient(), chat.SessionOptions{
		HistoryLimit:    cfg.HistoryLimit,
		ClearOnTeardown: cfg.ClearOnExit,
		Observer:        printer,
		Logger:          logger,
	})

	logger.Debug("starting chat", zap.String("api_url", cfg.APIURL), zap.Bool("clear_on_exit", cfg.ClearOnExit))
	return terminal.NewREPL(session, printer, os.Stdin, logger).Run(cmd.Context())
}

func runSend(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	printer := newPrinter()
	session := chat.NewSession(newClient(), chat.SessionOptions{
		Observer: printer,
		Logger:   logger,
	})

	if sendFile != "" {
		candidate, err := chat.CandidateFromFile(sendFile)
		if err != nil {
			return err
		}
		if err := session.Dispatch(ctx, chat.Intent{Kind: chat.IntentSelectFile, File: candidate}); err != nil {
			return err
		}
	}

	out := session.Submit(ctx, strings.Join(args, " "))
	switch out.Kind {
	case chat.OutcomeIgnored:
		return fmt.Errorf("prompt is empty")
	case chat.OutcomeFailed:
		return fmt.Errorf("%w: %w", errReported, out.Err)
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	entries, err := chat.NewConversationStore(newClient(), cfg.HistoryLimit).LoadRecent(cmd.Context())
	if err != nil {
		return err
	}

	view := chat.NewRenderer(nil).Render(chat.Snapshot{Entries: entries})

	if historyHTML == "" {
		newPrinter().PrintView(view)
		return nil
	}

	f, err := os.Create(historyHTML)
	if err != nil {
		return err
	}
	if err := terminal.WriteHTML(f, "LEKE conversation", view, time.Now()); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	newPrinter().Info(fmt.Sprintf("Wrote %d messages to %s", len(view.Records), historyHTML))
	return nil
}

func runClear(cmd *cobra.Command, args []string) error {
	if err := newClient().ClearConversations(cmd.Context()); err != nil {
		return err
	}
	newPrinter().Info("All conversations cleared")
	return nil
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	health, err := newClient().Health(ctx)
	if err != nil {
		return err
	}
	newPrinter().Info(fmt.Sprintf("%s (server time %s)", health.Status, health.Timestamp))
	return nil
}
