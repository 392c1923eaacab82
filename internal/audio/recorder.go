package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"time"

	"github.com/lodhshayaree/bhashini-voice/internal/wav"
)

var (
	// ErrRecordingFailed is returned when microphone capture fails.
	ErrRecordingFailed = errors.New("audio recording failed")
	// ErrNoAudioCaptured is returned when the capture produced no data.
	ErrNoAudioCaptured = errors.New("no audio captured")
)

// Recorder captures audio from the default input device via ffmpeg.
type Recorder struct {
	ffmpegPath string
	device     string
	inputFmt   string
}

// NewRecorder creates a recorder using the platform's default capture
// backend. An empty device selects the system default microphone.
func NewRecorder(device string) (*Recorder, error) {
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, ErrFFmpegNotFound
	}

	inputFmt, defaultDevice := captureBackend()
	if device == "" {
		device = defaultDevice
	}

	return &Recorder{
		ffmpegPath: path,
		device:     device,
		inputFmt:   inputFmt,
	}, nil
}

// captureBackend returns the ffmpeg input format and default device name
// for the current platform.
func captureBackend() (format, device string) {
	switch runtime.GOOS {
	case "darwin":
		return "avfoundation", ":0"
	case "windows":
		return "dshow", "audio=default"
	default:
		return "alsa", "default"
	}
}

// Record captures audio for the given duration and returns it as a
// 16 kHz mono 16-bit WAV, ready for the ASR task.
func (r *Recorder) Record(ctx context.Context, duration time.Duration) ([]byte, error) {
	if duration <= 0 {
		return nil, errors.New("recording duration must be positive")
	}

	args := []string{
		"-f", r.inputFmt,
		"-i", r.device,
		"-t", fmt.Sprintf("%.1f", duration.Seconds()),
		"-ar", fmt.Sprintf("%d", wav.ASRSampleRate),
		"-ac", fmt.Sprintf("%d", wav.ASRChannels),
		"-sample_fmt", "s16",
		"-f", "wav",
		"-loglevel", "error",
		"pipe:1",
	}

	cmd := exec.CommandContext(ctx, r.ffmpegPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s", ErrRecordingFailed, stderr.String())
	}

	data := stdout.Bytes()
	if len(data) <= wav.HeaderSize {
		return nil, ErrNoAudioCaptured
	}

	return data, nil
}

// RecordBase64 records audio and returns it base64-encoded for a
// pipeline payload.
func (r *Recorder) RecordBase64(ctx context.Context, duration time.Duration) (string, error) {
	data, err := r.Record(ctx, duration)
	if err != nil {
		return "", err
	}
	return EncodeBase64(data), nil
}
