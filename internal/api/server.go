package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/lodhshayaree/bhashini-voice/internal/config"
	"github.com/lodhshayaree/bhashini-voice/internal/language"
	"github.com/lodhshayaree/bhashini-voice/internal/queue"
)

// Pipeline is the subset of pipeline operations the HTTP API exposes.
type Pipeline interface {
	TTS(ctx context.Context, text, lang, gender string) (string, error)
	ASR(ctx context.Context, audioContent, sourceLang string) (string, error)
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
	SpeechToText(ctx context.Context, audioContent, sourceLang, targetLang string) (string, error)
	SpeechToSpeech(ctx context.Context, audioContent, sourceLang, targetLang string) (string, error)
}

// Server handles HTTP API requests.
type Server struct {
	cfg      *config.Config
	logger   *slog.Logger
	server   *http.Server
	queue    *queue.Queue
	pipeline Pipeline
	registry *language.Registry
}

// New creates a new API server.
func New(cfg *config.Config, logger *slog.Logger, q *queue.Queue, pipeline Pipeline, reg *language.Registry) *Server {
	s := &Server{
		cfg:      cfg,
		logger:   logger,
		queue:    q,
		pipeline: pipeline,
		registry: reg,
	}

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	if cfg.RateLimit > 0 {
		r.Use(httprate.LimitByIP(cfg.RateLimit, time.Minute))
	}

	r.Get("/v1/healthz", s.handleHealthz)
	r.Get("/v1/languages", s.handleLanguages)

	r.Group(func(r chi.Router) {
		r.Use(s.requireAuth)
		r.Post("/v1/tts", s.handleTTS)
		r.Post("/v1/asr", s.handleASR)
		r.Post("/v1/translate", s.handleTranslate)
		r.Post("/v1/speech-to-text", s.handleSpeechToText)
		r.Post("/v1/speech-to-speech", s.handleSpeechToSpeech)
		r.Post("/v1/speak", s.handleSpeak)
	})

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the router, for use in tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.server.Shutdown(ctx)
}
