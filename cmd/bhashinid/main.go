package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lodhshayaree/bhashini-voice/internal/api"
	"github.com/lodhshayaree/bhashini-voice/internal/audio"
	"github.com/lodhshayaree/bhashini-voice/internal/bhashini"
	"github.com/lodhshayaree/bhashini-voice/internal/config"
	"github.com/lodhshayaree/bhashini-voice/internal/language"
	"github.com/lodhshayaree/bhashini-voice/internal/logging"
	"github.com/lodhshayaree/bhashini-voice/internal/playback"
	"github.com/lodhshayaree/bhashini-voice/internal/queue"
)

func main() {
	// Load configuration from environment
	cfg, err := config.Load()
	if err != nil {
		// Use stderr before logger is initialized
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	// Initialize structured logger
	logger := logging.NewWithFile(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	logger.Info("starting bhashinid", "version", "0.1.0")

	// Warn if bearer token auth is disabled
	if cfg.AuthDisabled() {
		logger.Warn("HTTP bearer authentication is disabled (BEARER_TOKEN is empty)")
	}

	// Log loaded configuration (without sensitive values)
	logger.Info("configuration loaded",
		"log_level", cfg.LogLevel,
		"log_format", cfg.LogFormat,
		"http_port", cfg.HTTPPort,
		"max_text_length", cfg.MaxTextLength,
		"queue_capacity", cfg.QueueCapacity,
		"request_timeout", cfg.RequestTimeout,
	)

	if !cfg.HasCredentials() {
		logger.Error("ULCA credentials are required (set ULCA_USER_ID, ULCA_API_KEY, BHASHINI_AUTH_TOKEN, BHASHINI_PIPELINE_URL)")
		os.Exit(1)
	}

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig.String())
		cancel()
	}()

	// Initialize the pipeline client
	client, err := bhashini.NewClient(cfg.PipelineURL, bhashini.Credentials{
		UserID:    cfg.ULCAUserID,
		APIKey:    cfg.ULCAAPIKey,
		AuthToken: cfg.AuthToken,
	}, cfg.RequestTimeout)
	if err != nil {
		logger.Error("failed to create pipeline client", "error", err)
		os.Exit(1)
	}

	// Language registry starts from static defaults and is refreshed from
	// the models pipeline. A failed refresh is not fatal.
	registry := language.NewRegistry()
	client.SetScriptLookup(registry.Script)

	fetcher := language.NewFetcher(cfg.ModelsPipelineURL, cfg.AuthToken, cfg.RequestTimeout)
	refreshCtx, refreshCancel := context.WithTimeout(ctx, 30*time.Second)
	if err := fetcher.Refresh(refreshCtx, registry); err != nil {
		logger.Warn("failed to refresh language scripts, using built-in defaults", "error", err)
	} else {
		logger.Info("language scripts refreshed", "languages", registry.Len())
	}
	refreshCancel()

	// Initialize local audio output
	player, err := audio.NewPlayer()
	if err != nil {
		logger.Warn("ffplay not available, local playback will not work", "error", err)
	}

	// Create and start the speech queue
	speechQueue := queue.NewQueue(cfg.QueueCapacity, 0, logger)

	// Set playback handler
	if player != nil {
		handler := playback.NewHandler(client, player, logger, cfg.DefaultGender)
		speechQueue.SetPlaybackHandler(handler.Handle)
		logger.Info("audio pipeline ready")
	} else {
		// Fallback handler for when local playback is unavailable
		speechQueue.SetPlaybackHandler(func(ctx context.Context, job *queue.SpeakJob) error {
			logger.Info("would play speech (local playback not configured)",
				"job_id", job.ID,
				"text", job.Text,
				"language", job.Language,
			)
			return nil
		})
	}

	speechQueue.Start()
	defer speechQueue.Stop()

	// Create and start HTTP server
	server := api.New(cfg, logger, speechQueue, client, registry)

	go func() {
		if err := server.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
			cancel()
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
}
