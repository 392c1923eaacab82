package api

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/lodhshayaree/bhashini-voice/internal/bhashini"
	"github.com/lodhshayaree/bhashini-voice/internal/queue"
)

// TTSRequest represents the request body for /v1/tts.
type TTSRequest struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Gender   string `json:"gender,omitempty"`
}

// TTSResponse represents the response body for /v1/tts.
type TTSResponse struct {
	AudioContent string `json:"audio_content"`
}

// ASRRequest represents the request body for /v1/asr.
type ASRRequest struct {
	AudioContent string `json:"audio_content"`
	Language     string `json:"language"`
}

// ASRResponse represents the response body for /v1/asr.
type ASRResponse struct {
	Text string `json:"text"`
}

// TranslateRequest represents the request body for /v1/translate.
type TranslateRequest struct {
	Text           string `json:"text"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

// TranslateResponse represents the response body for /v1/translate.
type TranslateResponse struct {
	Text string `json:"text"`
}

// SpeechRequest represents the request body for /v1/speech-to-text
// and /v1/speech-to-speech.
type SpeechRequest struct {
	AudioContent   string `json:"audio_content"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
}

// SpeakRequest represents the request body for /v1/speak.
type SpeakRequest struct {
	Text      string `json:"text"`
	Language  string `json:"language,omitempty"`
	Gender    string `json:"gender,omitempty"`
	Interrupt bool   `json:"interrupt,omitempty"`
	TTLMS     int    `json:"ttl_ms,omitempty"`
	DedupeKey string `json:"dedupe_key,omitempty"`
}

// SpeakResponse represents the response body for /v1/speak.
type SpeakResponse struct {
	JobID   string `json:"job_id"`
	Message string `json:"message"`
}

// LanguageInfo describes one supported language.
type LanguageInfo struct {
	Code   string `json:"code"`
	Script string `json:"script"`
}

// LanguagesResponse represents the response body for /v1/languages.
type LanguagesResponse struct {
	Languages []LanguageInfo `json:"languages"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse represents the response body for /v1/healthz.
type HealthResponse struct {
	Status string `json:"status"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writePipelineError maps a pipeline failure onto an HTTP status. Upstream
// API errors pass through verbatim with a 502 so the caller can see exactly
// what the pipeline rejected.
func (s *Server) writePipelineError(w http.ResponseWriter, err error) {
	var apiErr *bhashini.APIError
	if errors.As(err, &apiErr) {
		s.logger.Warn("pipeline rejected request", "status", apiErr.StatusCode)
		writeError(w, http.StatusBadGateway, apiErr.Error())
		return
	}
	s.logger.Error("pipeline request failed", "error", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.logger.Warn("failed to decode request body", "path", r.URL.Path, "error", err)
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func (s *Server) validateText(w http.ResponseWriter, text string) bool {
	if text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return false
	}
	if len(text) > s.cfg.MaxTextLength {
		s.logger.Warn("text exceeds max length", "length", len(text), "max", s.cfg.MaxTextLength)
		writeError(w, http.StatusBadRequest, "text exceeds maximum length")
		return false
	}
	return true
}

func validateAudio(w http.ResponseWriter, audioContent string) bool {
	if audioContent == "" {
		writeError(w, http.StatusBadRequest, "audio_content is required")
		return false
	}
	if _, err := base64.StdEncoding.DecodeString(audioContent); err != nil {
		writeError(w, http.StatusBadRequest, "audio_content is not valid base64")
		return false
	}
	return true
}

// handleHealthz handles GET /v1/healthz requests.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// handleLanguages handles GET /v1/languages requests.
func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	resp := LanguagesResponse{Languages: []LanguageInfo{}}
	if s.registry != nil {
		for _, code := range s.registry.Languages() {
			resp.Languages = append(resp.Languages, LanguageInfo{
				Code:   code,
				Script: s.registry.Script(code),
			})
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleTTS handles POST /v1/tts requests.
func (s *Server) handleTTS(w http.ResponseWriter, r *http.Request) {
	var req TTSRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if !s.validateText(w, req.Text) {
		return
	}
	if req.Language == "" {
		writeError(w, http.StatusBadRequest, "language is required")
		return
	}

	gender := req.Gender
	if gender == "" {
		gender = s.cfg.DefaultGender
	}

	audio, err := s.pipeline.TTS(r.Context(), req.Text, req.Language, gender)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}

	s.logger.Info("tts request served", "language", req.Language, "text_length", len(req.Text))
	writeJSON(w, http.StatusOK, TTSResponse{AudioContent: audio})
}

// handleASR handles POST /v1/asr requests.
func (s *Server) handleASR(w http.ResponseWriter, r *http.Request) {
	var req ASRRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if !validateAudio(w, req.AudioContent) {
		return
	}
	if req.Language == "" {
		writeError(w, http.StatusBadRequest, "language is required")
		return
	}

	text, err := s.pipeline.ASR(r.Context(), req.AudioContent, req.Language)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}

	s.logger.Info("asr request served", "language", req.Language)
	writeJSON(w, http.StatusOK, ASRResponse{Text: text})
}

// handleTranslate handles POST /v1/translate requests.
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req TranslateRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if !s.validateText(w, req.Text) {
		return
	}
	if req.SourceLanguage == "" || req.TargetLanguage == "" {
		writeError(w, http.StatusBadRequest, "source_language and target_language are required")
		return
	}

	text, err := s.pipeline.Translate(r.Context(), req.Text, req.SourceLanguage, req.TargetLanguage)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}

	s.logger.Info("translate request served",
		"source", req.SourceLanguage,
		"target", req.TargetLanguage,
	)
	writeJSON(w, http.StatusOK, TranslateResponse{Text: text})
}

// handleSpeechToText handles POST /v1/speech-to-text requests.
func (s *Server) handleSpeechToText(w http.ResponseWriter, r *http.Request) {
	var req SpeechRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if !validateAudio(w, req.AudioContent) {
		return
	}
	if req.SourceLanguage == "" || req.TargetLanguage == "" {
		writeError(w, http.StatusBadRequest, "source_language and target_language are required")
		return
	}

	text, err := s.pipeline.SpeechToText(r.Context(), req.AudioContent, req.SourceLanguage, req.TargetLanguage)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}

	s.logger.Info("speech-to-text request served",
		"source", req.SourceLanguage,
		"target", req.TargetLanguage,
	)
	writeJSON(w, http.StatusOK, TranslateResponse{Text: text})
}

// handleSpeechToSpeech handles POST /v1/speech-to-speech requests.
func (s *Server) handleSpeechToSpeech(w http.ResponseWriter, r *http.Request) {
	var req SpeechRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if !validateAudio(w, req.AudioContent) {
		return
	}
	if req.SourceLanguage == "" || req.TargetLanguage == "" {
		writeError(w, http.StatusBadRequest, "source_language and target_language are required")
		return
	}

	audio, err := s.pipeline.SpeechToSpeech(r.Context(), req.AudioContent, req.SourceLanguage, req.TargetLanguage)
	if err != nil {
		s.writePipelineError(w, err)
		return
	}

	s.logger.Info("speech-to-speech request served",
		"source", req.SourceLanguage,
		"target", req.TargetLanguage,
	)
	writeJSON(w, http.StatusOK, TTSResponse{AudioContent: audio})
}

// handleSpeak handles POST /v1/speak requests.
func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	var req SpeakRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if !s.validateText(w, req.Text) {
		return
	}

	// Validate TTL if provided
	if req.TTLMS < 0 {
		writeError(w, http.StatusBadRequest, "ttl_ms must be non-negative")
		return
	}

	language := req.Language
	if language == "" {
		language = "hi"
	}
	gender := req.Gender
	if gender == "" {
		gender = s.cfg.DefaultGender
	}

	// Convert TTL from milliseconds to duration
	var ttl time.Duration
	if req.TTLMS > 0 {
		ttl = time.Duration(req.TTLMS) * time.Millisecond
	} else if s.cfg.DefaultTTL > 0 {
		ttl = s.cfg.DefaultTTL
	}

	// Handle interrupt: cancel current playback and clear queue
	if req.Interrupt && s.queue != nil {
		s.queue.Interrupt()
	}

	// Create and enqueue the job
	job := queue.NewSpeakJob(req.Text, language, gender, req.Interrupt, ttl, req.DedupeKey)

	if s.queue != nil {
		if err := s.queue.Enqueue(job); err != nil {
			if errors.Is(err, queue.ErrQueueFull) {
				writeError(w, http.StatusServiceUnavailable, "queue is full")
				return
			}
			if errors.Is(err, queue.ErrDuplicateJob) {
				writeError(w, http.StatusConflict, "duplicate job")
				return
			}
			s.logger.Error("failed to enqueue job", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to enqueue job")
			return
		}
	}

	s.logger.Info("speak request enqueued",
		"job_id", job.ID,
		"text_length", len(req.Text),
		"language", language,
		"interrupt", req.Interrupt,
		"ttl_ms", req.TTLMS,
		"dedupe_key", req.DedupeKey,
	)

	writeJSON(w, http.StatusAccepted, SpeakResponse{
		JobID:   job.ID,
		Message: "job enqueued",
	})
}
