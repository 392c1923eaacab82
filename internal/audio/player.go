package audio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/lodhshayaree/bhashini-voice/internal/wav"
)

var (
	// ErrFFplayNotFound is returned when ffplay is not installed.
	ErrFFplayNotFound = errors.New("ffplay not found in PATH")
	// ErrPlaybackFailed is returned when local playback fails.
	ErrPlaybackFailed = errors.New("audio playback failed")
)

// Player plays WAV audio on the local output device via ffplay.
type Player struct {
	ffplayPath string
}

// NewPlayer creates a new local audio player.
func NewPlayer() (*Player, error) {
	path, err := exec.LookPath("ffplay")
	if err != nil {
		return nil, ErrFFplayNotFound
	}
	return &Player{ffplayPath: path}, nil
}

// NewPlayerWithPath creates a player with a specific ffplay path.
func NewPlayerWithPath(path string) *Player {
	return &Player{ffplayPath: path}
}

// Play validates the WAV data and plays it, blocking until playback
// finishes or the context is cancelled.
func (p *Player) Play(ctx context.Context, wavData []byte) error {
	if _, err := wav.Parse(wavData); err != nil {
		return err
	}

	// -autoexit: quit when the stream ends
	// -nodisp: no video window
	args := []string{
		"-autoexit",
		"-nodisp",
		"-loglevel", "error",
		"-i", "pipe:0",
	}

	cmd := exec.CommandContext(ctx, p.ffplayPath, args...)
	cmd.Stdin = bytes.NewReader(wavData)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %s", ErrPlaybackFailed, stderr.String())
	}

	return nil
}

// PlayBase64 decodes a base64 audio blob from a pipeline response and
// plays it.
func (p *Player) PlayBase64(ctx context.Context, content string) error {
	data, err := DecodeBase64(content)
	if err != nil {
		return err
	}
	return p.Play(ctx, data)
}
