// Package audio handles local audio I/O: format conversion for the ASR
// contract, microphone capture, and playback, all via ffmpeg tooling.
package audio

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os/exec"

	"github.com/lodhshayaree/bhashini-voice/internal/wav"
)

var (
	// ErrFFmpegNotFound is returned when ffmpeg is not installed.
	ErrFFmpegNotFound = errors.New("ffmpeg not found in PATH")
	// ErrConversionFailed is returned when ffmpeg conversion fails.
	ErrConversionFailed = errors.New("audio conversion failed")
)

// Converter normalizes audio input to the pipeline's ASR contract.
type Converter struct {
	ffmpegPath string
}

// NewConverter creates a new audio converter.
func NewConverter() (*Converter, error) {
	path, err := exec.LookPath("ffmpeg")
	if err != nil {
		return nil, ErrFFmpegNotFound
	}
	return &Converter{ffmpegPath: path}, nil
}

// NewConverterWithPath creates a converter with a specific ffmpeg path.
func NewConverterWithPath(path string) *Converter {
	return &Converter{ffmpegPath: path}
}

// ConvertToASRWAV converts arbitrary input audio to the ASR contract:
// 16 kHz mono 16-bit PCM WAV.
// Input: audio file bytes in any format ffmpeg can read
// Output: complete WAV file bytes
func (c *Converter) ConvertToASRWAV(ctx context.Context, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, errors.New("empty input data")
	}

	// ffmpeg command to normalize any input to the ASR contract:
	// -i pipe:0: Read from stdin, format sniffed from the stream
	// -ar 16000: Output sample rate 16kHz
	// -ac 1: Output mono
	// -sample_fmt s16: 16-bit samples
	// -f wav: Write a WAV container to stdout
	args := []string{
		"-i", "pipe:0",
		"-ar", fmt.Sprintf("%d", wav.ASRSampleRate),
		"-ac", fmt.Sprintf("%d", wav.ASRChannels),
		"-sample_fmt", "s16",
		"-f", "wav",
		"-loglevel", "error",
		"pipe:1",
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stdin = bytes.NewReader(data)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s", ErrConversionFailed, stderr.String())
	}

	return stdout.Bytes(), nil
}

// EncodeBase64 encodes audio bytes as the base64 string carried in
// pipeline payloads.
func EncodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// DecodeBase64 decodes a base64 audio blob from a pipeline response.
func DecodeBase64(content string) ([]byte, error) {
	data, err := base64.StdEncoding.DecodeString(content)
	if err != nil {
		return nil, fmt.Errorf("decode audio content: %w", err)
	}
	return data, nil
}
