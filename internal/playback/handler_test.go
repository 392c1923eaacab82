package playback

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/lodhshayaree/bhashini-voice/internal/queue"
)

// testLogger returns a no-op logger for tests
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testJob() *queue.SpeakJob {
	return &queue.SpeakJob{
		ID:        "test-job",
		Text:      "Hello",
		Language:  "en",
		CreatedAt: time.Now(),
	}
}

// mockSynth is a test TTS client
type mockSynth struct {
	audio      string
	err        error
	callCount  int
	lastLang   string
	lastGender string
}

func (m *mockSynth) TTS(ctx context.Context, text, lang, gender string) (string, error) {
	m.callCount++
	m.lastLang = lang
	m.lastGender = gender
	if m.err != nil {
		return "", m.err
	}
	return m.audio, nil
}

// mockPlayer is a test audio player
type mockPlayer struct {
	err       error
	callCount int
	lastAudio string
}

func (m *mockPlayer) PlayBase64(ctx context.Context, content string) error {
	m.callCount++
	m.lastAudio = content
	return m.err
}

func TestErrors(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{ErrNoSynthesizer, "no TTS client available"},
		{ErrSynthesisFailed, "TTS synthesis failed"},
		{ErrPlaybackFailed, "local playback failed"},
	}

	for _, tt := range tests {
		if tt.err.Error() != tt.want {
			t.Errorf("%v = %q, want %q", tt.err, tt.err.Error(), tt.want)
		}
	}
}

func TestNewHandler(t *testing.T) {
	handler := NewHandler(nil, nil, testLogger(), "")
	if handler == nil {
		t.Fatal("NewHandler() returned nil")
	}
	if handler.defaultGender != "female" {
		t.Errorf("defaultGender = %q, want female", handler.defaultGender)
	}
}

func TestHandler_Handle_NoSynthesizer(t *testing.T) {
	handler := NewHandler(nil, nil, testLogger(), "female")

	err := handler.Handle(context.Background(), testJob())
	if !errors.Is(err, ErrNoSynthesizer) {
		t.Errorf("Handle() error = %v, want ErrNoSynthesizer", err)
	}
}

func TestHandler_Handle_SynthesisFails(t *testing.T) {
	synth := &mockSynth{err: errors.New("synthesis error")}
	handler := NewHandler(synth, &mockPlayer{}, testLogger(), "female")

	err := handler.Handle(context.Background(), testJob())
	if !errors.Is(err, ErrSynthesisFailed) {
		t.Errorf("Handle() error = %v, want ErrSynthesisFailed", err)
	}
	if synth.callCount != 1 {
		t.Errorf("TTS called %d times, want 1", synth.callCount)
	}
}

func TestHandler_Handle_PlaybackFails(t *testing.T) {
	synth := &mockSynth{audio: "QUJD"}
	player := &mockPlayer{err: errors.New("device busy")}
	handler := NewHandler(synth, player, testLogger(), "female")

	err := handler.Handle(context.Background(), testJob())
	if !errors.Is(err, ErrPlaybackFailed) {
		t.Errorf("Handle() error = %v, want ErrPlaybackFailed", err)
	}
}

func TestHandler_Handle_Success(t *testing.T) {
	synth := &mockSynth{audio: "QUJD"}
	player := &mockPlayer{}
	handler := NewHandler(synth, player, testLogger(), "female")

	if err := handler.Handle(context.Background(), testJob()); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}

	if player.callCount != 1 {
		t.Errorf("PlayBase64 called %d times, want 1", player.callCount)
	}
	if player.lastAudio != "QUJD" {
		t.Errorf("played audio = %q, want QUJD", player.lastAudio)
	}
}

func TestHandler_Handle_DefaultGender(t *testing.T) {
	synth := &mockSynth{audio: "QUJD"}
	handler := NewHandler(synth, &mockPlayer{}, testLogger(), "male")

	job := testJob()
	job.Gender = ""

	if err := handler.Handle(context.Background(), job); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if synth.lastGender != "male" {
		t.Errorf("gender = %q, want male", synth.lastGender)
	}

	job.Gender = "female"
	if err := handler.Handle(context.Background(), job); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if synth.lastGender != "female" {
		t.Errorf("gender = %q, want female", synth.lastGender)
	}
}

func TestHandler_Handle_InterruptPropagatesCancel(t *testing.T) {
	synth := &mockSynth{audio: "QUJD"}
	player := &mockPlayer{err: context.Canceled}
	handler := NewHandler(synth, player, testLogger(), "female")

	err := handler.Handle(context.Background(), testJob())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Handle() error = %v, want context.Canceled", err)
	}
	if errors.Is(err, ErrPlaybackFailed) {
		t.Error("cancelled playback should not be wrapped as ErrPlaybackFailed")
	}
}
