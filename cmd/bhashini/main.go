// Command bhashini is a command line client for the ULCA speech pipeline.
// It builds the same task chains the HTTP daemon serves, but talks to the
// pipeline directly and reads and writes audio on the local machine.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lodhshayaree/bhashini-voice/internal/audio"
	"github.com/lodhshayaree/bhashini-voice/internal/bhashini"
	"github.com/lodhshayaree/bhashini-voice/internal/config"
	"github.com/lodhshayaree/bhashini-voice/internal/language"
	"github.com/lodhshayaree/bhashini-voice/internal/logging"
)

const usage = `Usage: bhashini <command> [flags]

Commands:
  tts         synthesize speech from text
  asr         transcribe a recording
  translate   translate text between languages
  s2t         transcribe a recording and translate the transcript
  s2s         speak a recording in another language
  languages   list supported languages and scripts

Run 'bhashini <command> -h' for command flags.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	app := &app{cfg: cfg}

	var runErr error
	switch os.Args[1] {
	case "tts":
		runErr = app.runTTS(ctx, os.Args[2:])
	case "asr":
		runErr = app.runASR(ctx, os.Args[2:])
	case "translate":
		runErr = app.runTranslate(ctx, os.Args[2:])
	case "s2t":
		runErr = app.runSpeechToText(ctx, os.Args[2:])
	case "s2s":
		runErr = app.runSpeechToSpeech(ctx, os.Args[2:])
	case "languages":
		runErr = app.runLanguages(ctx, os.Args[2:])
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", os.Args[1], usage)
		os.Exit(2)
	}

	if runErr != nil {
		logger.Error("command failed", "command", os.Args[1], "error", runErr)
		os.Exit(1)
	}
}

// app carries the pieces shared by all subcommands.
type app struct {
	cfg      *config.Config
	client   *bhashini.Client
	registry *language.Registry
}

// connect builds the pipeline client and refreshes the script registry.
// Subcommands that only touch local state skip it.
func (a *app) connect(ctx context.Context) error {
	if !a.cfg.HasCredentials() {
		return fmt.Errorf("ULCA credentials are required (set ULCA_USER_ID, ULCA_API_KEY, BHASHINI_AUTH_TOKEN, BHASHINI_PIPELINE_URL)")
	}

	client, err := bhashini.NewClient(a.cfg.PipelineURL, bhashini.Credentials{
		UserID:    a.cfg.ULCAUserID,
		APIKey:    a.cfg.ULCAAPIKey,
		AuthToken: a.cfg.AuthToken,
	}, a.cfg.RequestTimeout)
	if err != nil {
		return err
	}

	a.registry = language.NewRegistry()
	client.SetScriptLookup(a.registry.Script)
	a.client = client

	fetcher := language.NewFetcher(a.cfg.ModelsPipelineURL, a.cfg.AuthToken, a.cfg.RequestTimeout)
	if err := fetcher.Refresh(ctx, a.registry); err != nil {
		fmt.Fprintf(os.Stderr, "warning: script refresh failed, using built-in defaults: %v\n", err)
	}

	return nil
}

func (a *app) runTTS(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("tts", flag.ExitOnError)
	text := fs.String("text", "", "text to synthesize")
	lang := fs.String("lang", "hi", "language code")
	gender := fs.String("gender", "", "voice gender (male or female)")
	out := fs.String("out", "", "write synthesized WAV to this file")
	play := fs.Bool("play", false, "play the synthesized audio")
	fs.Parse(args)

	if *text == "" {
		return fmt.Errorf("-text is required")
	}
	if err := a.connect(ctx); err != nil {
		return err
	}

	g := *gender
	if g == "" {
		g = a.cfg.DefaultGender
	}

	audioContent, err := a.client.TTS(ctx, *text, *lang, g)
	if err != nil {
		return err
	}

	return a.deliverAudio(ctx, audioContent, *out, *play)
}

func (a *app) runASR(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("asr", flag.ExitOnError)
	in := fs.String("in", "", "input audio file")
	record := fs.Bool("record", false, "record from the microphone instead of reading a file")
	lang := fs.String("lang", "hi", "language code")
	fs.Parse(args)

	if err := a.connect(ctx); err != nil {
		return err
	}

	audioContent, err := a.inputAudio(ctx, *in, *record)
	if err != nil {
		return err
	}

	text, err := a.client.ASR(ctx, audioContent, *lang)
	if err != nil {
		return err
	}

	fmt.Println(text)
	return nil
}

func (a *app) runTranslate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("translate", flag.ExitOnError)
	text := fs.String("text", "", "text to translate")
	from := fs.String("from", "hi", "source language code")
	to := fs.String("to", "en", "target language code")
	fs.Parse(args)

	if *text == "" {
		return fmt.Errorf("-text is required")
	}
	if err := a.connect(ctx); err != nil {
		return err
	}

	translated, err := a.client.Translate(ctx, *text, *from, *to)
	if err != nil {
		return err
	}

	fmt.Println(translated)
	return nil
}

func (a *app) runSpeechToText(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("s2t", flag.ExitOnError)
	in := fs.String("in", "", "input audio file")
	record := fs.Bool("record", false, "record from the microphone instead of reading a file")
	from := fs.String("from", "hi", "source language code")
	to := fs.String("to", "en", "target language code")
	fs.Parse(args)

	if err := a.connect(ctx); err != nil {
		return err
	}

	audioContent, err := a.inputAudio(ctx, *in, *record)
	if err != nil {
		return err
	}

	text, err := a.client.SpeechToText(ctx, audioContent, *from, *to)
	if err != nil {
		return err
	}

	fmt.Println(text)
	return nil
}

func (a *app) runSpeechToSpeech(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("s2s", flag.ExitOnError)
	in := fs.String("in", "", "input audio file")
	record := fs.Bool("record", false, "record from the microphone instead of reading a file")
	from := fs.String("from", "hi", "source language code")
	to := fs.String("to", "en", "target language code")
	out := fs.String("out", "", "write synthesized WAV to this file")
	play := fs.Bool("play", false, "play the synthesized audio")
	fs.Parse(args)

	if err := a.connect(ctx); err != nil {
		return err
	}

	audioContent, err := a.inputAudio(ctx, *in, *record)
	if err != nil {
		return err
	}

	synthesized, err := a.client.SpeechToSpeech(ctx, audioContent, *from, *to)
	if err != nil {
		return err
	}

	return a.deliverAudio(ctx, synthesized, *out, *play)
}

func (a *app) runLanguages(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("languages", flag.ExitOnError)
	pairs := fs.Bool("pairs", false, "also list supported translation pairs")
	fs.Parse(args)

	if err := a.connect(ctx); err != nil {
		return err
	}

	langs := a.registry.Languages()
	for _, code := range langs {
		fmt.Printf("%s\t%s\n", code, a.registry.Script(code))
	}

	if *pairs {
		fetcher := language.NewFetcher(a.cfg.ModelsPipelineURL, a.cfg.AuthToken, a.cfg.RequestTimeout)
		translationPairs, err := fetcher.TranslationPairs(ctx)
		if err != nil {
			return fmt.Errorf("failed to fetch translation pairs: %w", err)
		}
		fmt.Println()
		for _, p := range translationPairs {
			fmt.Printf("%s -> %s\n", p.Source, p.Target)
		}
	}

	return nil
}

// inputAudio produces base64 WAV content from a file or a fresh recording.
// Files that are not already in the 16 kHz mono PCM layout the ASR service
// expects are converted through ffmpeg.
func (a *app) inputAudio(ctx context.Context, path string, record bool) (string, error) {
	if record {
		recorder, err := audio.NewRecorder(a.cfg.RecordDevice)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(os.Stderr, "recording for %s...\n", a.cfg.RecordDuration)
		return recorder.RecordBase64(ctx, a.cfg.RecordDuration)
	}

	if path == "" {
		return "", fmt.Errorf("-in or -record is required")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}

	converter, err := audio.NewConverter()
	if err != nil {
		// Without ffmpeg the file is sent as-is and the pipeline decides.
		return audio.EncodeBase64(data), nil
	}

	converted, err := converter.ConvertToASRWAV(ctx, data)
	if err != nil {
		return "", err
	}
	return audio.EncodeBase64(converted), nil
}

// deliverAudio writes and/or plays base64 WAV content. With no destination
// the raw base64 goes to stdout.
func (a *app) deliverAudio(ctx context.Context, audioContent, out string, play bool) error {
	if out != "" {
		data, err := audio.DecodeBase64(audioContent)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		fmt.Fprintf(os.Stderr, "wrote %s\n", out)
	}

	if play {
		player, err := audio.NewPlayer()
		if err != nil {
			return err
		}
		if err := player.PlayBase64(ctx, audioContent); err != nil {
			return err
		}
	}

	if out == "" && !play {
		fmt.Println(audioContent)
	}

	return nil
}
