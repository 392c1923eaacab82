// Package playback turns queued speak jobs into audio on the local
// output device via the remote TTS pipeline.
package playback

import (
	"context"
	"errors"
	"log/slog"

	"github.com/lodhshayaree/bhashini-voice/internal/queue"
)

var (
	// ErrNoSynthesizer is returned when no TTS client is configured.
	ErrNoSynthesizer = errors.New("no TTS client available")
	// ErrSynthesisFailed is returned when the TTS pipeline call fails.
	ErrSynthesisFailed = errors.New("TTS synthesis failed")
	// ErrPlaybackFailed is returned when local playback fails.
	ErrPlaybackFailed = errors.New("local playback failed")
)

// Synthesizer produces base64 WAV audio for text in a language.
type Synthesizer interface {
	TTS(ctx context.Context, text, lang, gender string) (string, error)
}

// Player plays a base64 audio blob on the local output device.
type Player interface {
	PlayBase64(ctx context.Context, content string) error
}

// Handler processes speak jobs using the TTS pipeline and local playback.
type Handler struct {
	synth         Synthesizer
	player        Player
	logger        *slog.Logger
	defaultGender string
}

// NewHandler creates a new playback handler.
func NewHandler(synth Synthesizer, player Player, logger *slog.Logger, defaultGender string) *Handler {
	if defaultGender == "" {
		defaultGender = "female"
	}
	return &Handler{
		synth:         synth,
		player:        player,
		logger:        logger,
		defaultGender: defaultGender,
	}
}

// Handle processes a single speech job.
// This is the function passed to queue.SetPlaybackHandler.
func (h *Handler) Handle(ctx context.Context, job *queue.SpeakJob) error {
	h.logger.Info("processing speech job",
		"job_id", job.ID,
		"text_length", len(job.Text),
		"language", job.Language,
	)

	if h.synth == nil {
		return ErrNoSynthesizer
	}

	gender := job.Gender
	if gender == "" {
		gender = h.defaultGender
	}

	// Step 1: Synthesize text to base64 WAV via the pipeline
	h.logger.Debug("synthesizing speech", "job_id", job.ID, "language", job.Language, "gender", gender)

	audioContent, err := h.synth.TTS(ctx, job.Text, job.Language, gender)
	if err != nil {
		h.logger.Error("TTS synthesis failed", "job_id", job.ID, "error", err)
		return errors.Join(ErrSynthesisFailed, err)
	}

	h.logger.Debug("synthesis complete", "job_id", job.ID, "encoded_bytes", len(audioContent))

	// Step 2: Decode and play on the local output device
	h.logger.Debug("playing audio", "job_id", job.ID)

	if err := h.player.PlayBase64(ctx, audioContent); err != nil {
		if errors.Is(err, context.Canceled) {
			h.logger.Info("playback interrupted", "job_id", job.ID)
			return err
		}
		h.logger.Error("playback failed", "job_id", job.ID, "error", err)
		return errors.Join(ErrPlaybackFailed, err)
	}

	h.logger.Info("speech playback complete", "job_id", job.ID)
	return nil
}
