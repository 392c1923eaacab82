package bhashini

import (
	"context"
	"fmt"
)

// ScriptLookup maps an ISO 639-1 language code to its script code
// (e.g. "hi" -> "Deva"). Unknown languages should map to "Latn".
type ScriptLookup func(lang string) string

// SetScriptLookup installs the language-to-script resolver used when
// building task configs. Without one, every language maps to Latn.
func (c *Client) SetScriptLookup(fn ScriptLookup) {
	c.scripts = fn
}

func (c *Client) script(lang string) string {
	if c.scripts == nil {
		return "Latn"
	}
	return c.scripts(lang)
}

// asrTask builds the ASR task entry for the given source language.
func (c *Client) asrTask(sourceLang string) PipelineTask {
	return PipelineTask{
		TaskType: TaskASR,
		Config: TaskConfig{
			ServiceID: DefaultASRServiceID,
			ModelID:   DefaultASRModelID,
			Language: LanguageConfig{
				SourceLanguage:   sourceLang,
				SourceScriptCode: c.script(sourceLang),
			},
			Domain:       []string{"general"},
			AudioFormat:  ASRAudioFormat,
			SamplingRate: ASRSamplingRate,
		},
	}
}

// translationTask builds the NMT task entry for the given language pair.
func (c *Client) translationTask(sourceLang, targetLang string) PipelineTask {
	return PipelineTask{
		TaskType: TaskTranslation,
		Config: TaskConfig{
			ServiceID: DefaultNMTServiceID,
			ModelID:   DefaultNMTModelID,
			Language: LanguageConfig{
				SourceLanguage:   sourceLang,
				SourceScriptCode: c.script(sourceLang),
				TargetLanguage:   targetLang,
				TargetScriptCode: c.script(targetLang),
			},
		},
	}
}

// ttsTask builds the TTS task entry. The "source" language is the language
// of the text being spoken.
func (c *Client) ttsTask(lang, gender string) PipelineTask {
	return PipelineTask{
		TaskType: TaskTTS,
		Config: TaskConfig{
			ServiceID: DefaultTTSServiceID,
			ModelID:   DefaultTTSModelID,
			Language: LanguageConfig{
				SourceLanguage:   lang,
				SourceScriptCode: c.script(lang),
			},
			Gender: gender,
		},
	}
}

// TTS synthesizes text in the given language and returns base64 WAV audio.
func (c *Client) TTS(ctx context.Context, text, lang, gender string) (string, error) {
	req := &PipelineRequest{
		PipelineTasks: []PipelineTask{c.ttsTask(lang, gender)},
		InputData:     InputData{Text: []TextInput{{Source: text}}},
	}

	resp, err := c.Compute(ctx, req)
	if err != nil {
		return "", err
	}

	out, ok := resp.Output(TaskTTS)
	if !ok || out.AudioContent == "" {
		return "", fmt.Errorf("%w: %s", ErrNoOutput, TaskTTS)
	}
	return out.AudioContent, nil
}

// ASR transcribes base64 WAV audio in the given source language.
func (c *Client) ASR(ctx context.Context, audioContent, sourceLang string) (string, error) {
	req := &PipelineRequest{
		PipelineTasks: []PipelineTask{c.asrTask(sourceLang)},
		InputData:     InputData{Audio: []AudioInput{{AudioContent: audioContent}}},
	}

	resp, err := c.Compute(ctx, req)
	if err != nil {
		return "", err
	}

	out, ok := resp.Output(TaskASR)
	if !ok || out.Source == "" {
		return "", fmt.Errorf("%w: %s", ErrNoOutput, TaskASR)
	}
	return out.Source, nil
}

// Translate translates text between the given language pair.
func (c *Client) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	req := &PipelineRequest{
		PipelineTasks: []PipelineTask{c.translationTask(sourceLang, targetLang)},
		InputData:     InputData{Text: []TextInput{{Source: text}}},
	}

	resp, err := c.Compute(ctx, req)
	if err != nil {
		return "", err
	}

	out, ok := resp.Output(TaskTranslation)
	if !ok || out.Target == "" {
		return "", fmt.Errorf("%w: %s", ErrNoOutput, TaskTranslation)
	}
	return out.Target, nil
}

// SpeechToText runs ASR followed by translation in a single pipeline call
// and returns the translated transcript.
func (c *Client) SpeechToText(ctx context.Context, audioContent, sourceLang, targetLang string) (string, error) {
	req := &PipelineRequest{
		PipelineTasks: []PipelineTask{
			c.asrTask(sourceLang),
			c.translationTask(sourceLang, targetLang),
		},
		InputData: InputData{Audio: []AudioInput{{AudioContent: audioContent}}},
	}

	resp, err := c.Compute(ctx, req)
	if err != nil {
		return "", err
	}

	out, ok := resp.Output(TaskTranslation)
	if !ok || out.Target == "" {
		return "", fmt.Errorf("%w: %s", ErrNoOutput, TaskTranslation)
	}
	return out.Target, nil
}

// SpeechToSpeech runs ASR, translation, and TTS in a single pipeline call
// and returns base64 WAV audio spoken in the target language.
func (c *Client) SpeechToSpeech(ctx context.Context, audioContent, sourceLang, targetLang string) (string, error) {
	req := &PipelineRequest{
		PipelineTasks: []PipelineTask{
			c.asrTask(sourceLang),
			c.translationTask(sourceLang, targetLang),
			c.ttsTask(targetLang, "female"),
		},
		InputData: InputData{Audio: []AudioInput{{AudioContent: audioContent}}},
	}

	resp, err := c.Compute(ctx, req)
	if err != nil {
		return "", err
	}

	out, ok := resp.Output(TaskTTS)
	if !ok || out.AudioContent == "" {
		return "", fmt.Errorf("%w: %s", ErrNoOutput, TaskTTS)
	}
	return out.AudioContent, nil
}
