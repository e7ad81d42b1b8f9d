package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"leke-chat/internal/client"
	"leke-chat/internal/config"
)

var (
	apiURL      string
	timeout     time.Duration
	profilePath string
	verbose     bool
	plain       bool
	noClear     bool

	cfg    config.ClientConfig
	logger *zap.Logger
)

// errReported marks failures the printer has already shown.
var errReported = errors.New("already reported")

var rootCmd = &cobra.Command{
	Use:   "leke",
	Short: "LEKE - chat with your documents",
	Long: `LEKE sends your questions, optionally with a PDF, image or CSV file,
to a LEKE server and shows the answers.

Run without arguments to start the interactive chat.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = newLogger(verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		cfg, err = config.LoadClient(profilePath)
		if err != nil {
			return err
		}
		applyFlags(cmd)
		logger.Debug("client config loaded",
			zap.String("api_url", cfg.APIURL),
			zap.Duration("timeout", cfg.Timeout),
			zap.Int("history_limit", cfg.HistoryLimit),
		)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runChat,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&apiURL, "api-url", "", "LEKE API base URL (default from profile or http://localhost:5000/api)")
	flags.DurationVar(&timeout, "timeout", 0, "request timeout")
	flags.StringVar(&profilePath, "config", config.DefaultProfilePath(), "path to the YAML profile")
	flags.BoolVarP(&verbose, "verbose", "v", false, "log debug output to stderr")
	flags.BoolVar(&plain, "plain", false, "disable colors and markdown rendering")
	flags.BoolVar(&noClear, "no-clear", false, "keep the server history when the chat ends")

	rootCmd.AddCommand(chatCmd, sendCmd, historyCmd, clearCmd, healthCmd)
}

// applyFlags lets explicitly set flags win over the profile and environment.
func applyFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIURL = apiURL
	}
	if flags.Changed("timeout") {
		cfg.Timeout = timeout
	}
	if flags.Changed("plain") {
		cfg.PlainOutput = plain
	}
	if flags.Changed("no-clear") {
		cfg.ClearOnExit = !noClear
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	zcfg := zap.NewDevelopmentConfig()
	zcfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if verbose {
		zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	zcfg.OutputPaths = []string{"stderr"}
	zcfg.ErrorOutputPaths = []string{"stderr"}
	return zcfg.Build()
}

func newClient() *client.Client {
	return client.New(cfg.APIURL, client.WithTimeout(cfg.Timeout), client.WithLogger(logger))
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
