package httpserver

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sezaiemrekonuk/freesight-ai/internal/application/analyze"
	domai "github.com/sezaiemrekonuk/freesight-ai/internal/domain/ai"
	"github.com/sezaiemrekonuk/freesight-ai/internal/domain/vision"
	apperr "github.com/sezaiemrekonuk/freesight-ai/internal/errors"
	"github.com/sezaiemrekonuk/freesight-ai/internal/logger"
	"github.com/sezaiemrekonuk/freesight-ai/internal/middleware"
)

type Router struct {
	svc  *analyze.Service
	chat domai.ChatClient
}

func NewRouter(svc *analyze.Service, checkers map[string]middleware.HealthChecker) http.Handler {
	r := &Router{svc: svc, chat: svc.Chat}
	mux := chi.NewRouter()

	mux.Get("/", r.wrap(r.handleRoot))
	mux.Get("/health", middleware.HealthHandler(checkers))
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1", func(rt chi.Router) {
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
		rt.Post("/detect", r.wrap(r.handleDetect))
		rt.Post("/chat/completions", r.wrap(r.handleChat))
		rt.Post("/tts/speech", r.wrap(r.handleSpeech))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			logger.WithError(err).WithField("request_id", middleware.GetRequestID(req.Context())).
				WithField("path", req.URL.Path).Error("request failed")

			var appErr *apperr.AppError
			if errors.As(err, &appErr) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(appErr.StatusCode)
				json.NewEncoder(w).Encode(map[string]any{
					"error":   appErr.Type,
					"message": appErr.Message,
					"details": appErr.Details,
				})
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}
}

func (r *Router) handleRoot(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]string{"message": "freesight API is running"})
}

// readImageUpload pulls the "file" part out of a multipart request and
// returns its bytes plus the declared content type.
func readImageUpload(req *http.Request) ([]byte, string, error) {
	req.Body = http.MaxBytesReader(nil, req.Body, middleware.MaxUploadBytes)
	if err := req.ParseMultipartForm(middleware.MaxUploadBytes); err != nil {
		return nil, "", apperr.NewInvalidInputError("expected multipart form with a \"file\" field", err)
	}

	file, header, err := req.FormFile("file")
	if err != nil {
		return nil, "", apperr.NewInvalidInputError("missing \"file\" upload field", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", apperr.NewInvalidInputError("reading upload", err)
	}
	return data, header.Header.Get("Content-Type"), nil
}

// analyzeResponse is the wire form of an analysis result.
type analyzeResponse struct {
	Detections  []vision.EnrichedDetection `json:"detections"`
	Description string                     `json:"description"`
	Panic       bool                       `json:"panic"`
	PanicLevel  vision.PanicLevel          `json:"panic_level"`
	AudioBase64 string                     `json:"audio_base64,omitempty"`
	AudioFormat string                     `json:"audio_format,omitempty"`
	DurationMS  int64                      `json:"duration_ms"`
}

// POST /v1/analyze
// Multipart image upload, optional provider/voice/format form fields for a
// per-request speech override.
func (r *Router) handleAnalyze(w http.ResponseWriter, req *http.Request) error {
	image, contentType, err := readImageUpload(req)
	if err != nil {
		return err
	}

	voice := middleware.SanitizeString(req.FormValue("voice"))
	if err := middleware.ValidateVoiceID(voice); err != nil {
		return apperr.NewInvalidInputError(err.Error(), nil)
	}

	cmd := analyze.Command{
		Image:       image,
		ContentType: contentType,
	}
	if provider := req.FormValue("provider"); provider != "" || voice != "" || req.FormValue("format") != "" {
		cmd.Speech = &analyze.SpeechOverride{
			Provider: middleware.SanitizeString(provider),
			Voice:    voice,
			Format:   middleware.SanitizeString(req.FormValue("format")),
		}
	}

	result, err := r.svc.Analyze(req.Context(), cmd)
	if err != nil {
		return err
	}

	middleware.IncrementAnalyses()
	if result.Panic {
		middleware.IncrementPanics()
	}

	resp := analyzeResponse{
		Detections:  result.Detections,
		Description: result.Description,
		Panic:       result.Panic,
		PanicLevel:  result.PanicLevel,
		DurationMS:  result.DurationMS,
	}
	if len(result.Audio) > 0 {
		resp.AudioBase64 = base64.StdEncoding.EncodeToString(result.Audio)
		resp.AudioFormat = string(result.AudioFormat)
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(resp)
}

// POST /v1/detect
// Detection only, no scoring or description.
func (r *Router) handleDetect(w http.ResponseWriter, req *http.Request) error {
	image, contentType, err := readImageUpload(req)
	if err != nil {
		return err
	}
	if err := middleware.ValidateImageContentType(contentType); err != nil {
		return apperr.NewInvalidInputError(err.Error(), nil)
	}

	if err := r.svc.Detector.Ready(req.Context()); err != nil {
		return err
	}
	detections, err := r.svc.Detector.Detect(req.Context(), image, r.svc.ConfThreshold)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]any{"detections": detections})
}

// POST /v1/chat/completions
// Thin passthrough to the language-generation collaborator.
func (r *Router) handleChat(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Messages    []domai.Message `json:"messages"`
		Model       string          `json:"model"`
		Temperature float32         `json:"temperature"`
		MaxTokens   int             `json:"max_tokens"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return apperr.NewInvalidInputError("invalid JSON body", err)
	}
	if len(body.Messages) == 0 {
		return apperr.NewInvalidInputError("messages is required", nil)
	}

	content, err := r.chat.Complete(req.Context(), body.Messages, domai.ChatOptions{
		Model:       body.Model,
		Temperature: body.Temperature,
		MaxTokens:   body.MaxTokens,
	})
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]string{
		"content": content,
		"model":   body.Model,
	})
}

// POST /v1/tts/speech
// Direct synthesis; returns raw audio bytes with the mapped media type.
func (r *Router) handleSpeech(w http.ResponseWriter, req *http.Request) error {
	var body struct {
		Provider       string `json:"provider"`
		Model          string `json:"model"`
		Input          string `json:"input"`
		Voice          string `json:"voice"`
		ResponseFormat string `json:"response_format"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		return apperr.NewInvalidInputError("invalid JSON body", err)
	}
	if body.Input == "" {
		return apperr.NewInvalidInputError("input text is required", nil)
	}
	if err := middleware.ValidateVoiceID(body.Voice); err != nil {
		return apperr.NewInvalidInputError(err.Error(), nil)
	}

	format, err := domai.ParseAudioFormat(body.ResponseFormat)
	if err != nil {
		return apperr.NewInvalidInputError(err.Error(), nil)
	}

	audio, err := r.svc.Synthesize(req.Context(), body.Provider, domai.SpeechRequest{
		Text:   body.Input,
		Voice:  body.Voice,
		Model:  body.Model,
		Format: format,
	})
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", format.MediaType())
	_, err = w.Write(audio)
	return err
}
