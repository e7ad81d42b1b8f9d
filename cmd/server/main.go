package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"leke-chat/internal/config"
	"leke-chat/internal/handlers"
	"leke-chat/internal/llm"
	"leke-chat/internal/middleware"
	"leke-chat/internal/router"
	"leke-chat/internal/services"
)

func main() {
	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("🚀 Starting LEKE server...")
	logger.Info("✓ Environment variables loaded", zap.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ──── Step 2: Open Conversation Store ────
	repo, closeStore, err := openStore(cfg, logger)
	if err != nil {
		logger.Fatal("✗ Conversation store failed", zap.String("backend", cfg.StoreBackend), zap.Error(err))
	}
	defer closeStore()
	logger.Info("✓ Conversation store ready", zap.String("backend", cfg.StoreBackend))

	// ──── Step 3: Initialize Model Provider ────
	provider, err := llm.New(ctx, llm.Options{
		Provider:    cfg.LLMProvider,
		Model:       cfg.LLMModel,
		APIKey:      cfg.LLMAPIKey,
		BaseURL:     providerBaseURL(cfg),
		OllamaHost:  cfg.OllamaHost,
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
	})
	if err != nil {
		logger.Fatal("✗ Model provider initialization failed", zap.Error(err))
	}
	if c, ok := provider.(interface{ Close() error }); ok {
		defer c.Close()
	}
	logger.Info("✓ Model provider initialized", zap.String("provider", provider.Name()))

	// ──── Initialize Services & Handlers ────
	chatService := services.NewChatService(provider, repo, cfg.LLMConcurrentReqs, logger)
	chatHandler := handlers.NewChatHandler(chatService, services.NewFileExtractService(), cfg.MaxUploadBytes(), logger)

	chatLimiter := middleware.NewRateLimiter(cfg.ChatRateLimit, time.Minute)
	defer chatLimiter.Stop()

	// ──── Step 4: Start HTTP Server ────
	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router.New(chatHandler, chatLimiter, cfg.FrontendURL),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 3 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("✓ LEKE server ready", zap.String("api", fmt.Sprintf("http://localhost:%s/api", cfg.Port)))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	if cfg.IsDevelopment() {
		zcfg = zap.NewDevelopmentConfig()
	}
	if lvl, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
		zcfg.Level = zap.NewAtomicLevelAt(lvl)
	}
	return zcfg.Build()
}

// providerBaseURL only applies DEEPSEEK_API_URL to the DeepSeek provider.
func providerBaseURL(cfg *config.Config) string {
	if cfg.LLMProvider == "deepseek" {
		return cfg.DeepSeekAPIURL
	}
	return ""
}
