package analyze

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/sezaiemrekonuk/freesight-ai/internal/application"
	domai "github.com/sezaiemrekonuk/freesight-ai/internal/domain/ai"
	"github.com/sezaiemrekonuk/freesight-ai/internal/domain/vision"
	apperr "github.com/sezaiemrekonuk/freesight-ai/internal/errors"
	"github.com/sezaiemrekonuk/freesight-ai/internal/infra/ai/prompt"
)

// ClearPathMessage is returned when the detector finds nothing; the
// language model is not consulted for an empty scene.
const ClearPathMessage = "The path ahead appears clear. No obstacles detected."

// NavigationPrompt is the template rendered for the describe stage.
const NavigationPrompt = "Main"

const (
	describeTemperature = 0.3
	describeMaxTokens   = 100
)

// allowedImageTypes is the upload allow-list. image/jpg is a common
// non-standard alias clients send for JPEG.
var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
}

// SpeechBackend pairs a synthesizer with its configured default voice/model.
type SpeechBackend struct {
	Synth domai.Synthesizer
	Voice string
	Model string
}

// Service implements the analyze use-case: detect, assess, describe, speak.
// Safe for concurrent use.
type Service struct {
	Detector vision.Detector
	Chat     domai.ChatClient
	Prompts  *prompt.Manager

	Speech          map[domai.Provider]SpeechBackend
	DefaultProvider domai.Provider // empty disables speech unless overridden

	ConfThreshold float64
	Clock         application.Clock
	Log           *logrus.Logger

	// OnSpeechFailure is the observability hook invoked when the speak
	// stage fails softly. Optional.
	OnSpeechFailure func()
}

// Command is one analyze request.
type Command struct {
	Image       []byte
	ContentType string
	Speech      *SpeechOverride // per-request override, nil to use defaults
}

// SpeechOverride lets a request pick its own provider/voice/format.
type SpeechOverride struct {
	Provider string
	Voice    string
	Format   string
}

// Result is the assembled outcome of a successful pipeline run.
type Result struct {
	Detections  []vision.EnrichedDetection
	Description string
	Panic       bool
	PanicLevel  vision.PanicLevel
	Audio       []byte // nil when the speak stage was skipped or failed
	AudioFormat domai.AudioFormat
	DurationMS  int64
}

// Analyze runs the pipeline stages strictly in order. Stage failures up to
// and including describe abort the request; speak is best-effort.
func (s *Service) Analyze(ctx context.Context, cmd Command) (*Result, error) {
	start := s.Clock.Now()

	// stage 1: validate, before any external call
	if !allowedImageTypes[strings.ToLower(cmd.ContentType)] {
		return nil, apperr.NewInvalidInputError(
			fmt.Sprintf("unsupported image type %q, upload a JPEG or PNG", cmd.ContentType), nil)
	}
	if len(cmd.Image) == 0 {
		return nil, apperr.NewInvalidInputError("empty image upload", nil)
	}

	// stage 2: detect
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("pipeline aborted before detect: %w", err)
	}
	if err := s.Detector.Ready(ctx); err != nil {
		return nil, err
	}
	raw, err := s.Detector.Detect(ctx, cmd.Image, s.ConfThreshold)
	if err != nil {
		return nil, err
	}

	// stage 3: assess
	assessment := vision.Score(raw, vision.FrameWidth, vision.FrameHeight)

	// stage 4: describe, skipped for an empty scene
	description := ClearPathMessage
	if len(assessment.Detections) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("pipeline aborted before describe: %w", err)
		}
		description, err = s.describe(ctx, assessment)
		if err != nil {
			return nil, err
		}
	}

	// stage 5: speak, best-effort; failure never discards the result
	var audio []byte
	format := domai.FormatMP3
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("pipeline aborted before speak: %w", err)
	}
	if a, f, ok := s.speak(ctx, description, cmd.Speech); ok {
		audio, format = a, f
	}

	return &Result{
		Detections:  assessment.Detections,
		Description: description,
		Panic:       assessment.Panic,
		PanicLevel:  assessment.PanicLevel,
		Audio:       audio,
		AudioFormat: format,
		DurationMS:  s.Clock.Now().Sub(start).Milliseconds(),
	}, nil
}

func (s *Service) describe(ctx context.Context, assessment vision.SceneAssessment) (string, error) {
	rendered, err := s.Prompts.Render(ctx, NavigationPrompt, map[string]string{
		"objectsInImage": formatDetections(assessment.Detections),
		"isPanic":        strconv.FormatBool(assessment.Panic),
	})
	if err != nil {
		return "", err
	}

	text, err := s.Chat.Complete(ctx, rendered.Messages, domai.ChatOptions{
		Model:       rendered.Model,
		Temperature: describeTemperature,
		MaxTokens:   describeMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// speak resolves the provider and voice (request override wins over the
// configured default) and synthesizes the description. The ok=false path
// covers both "nothing configured" and soft failures; failures are logged.
func (s *Service) speak(ctx context.Context, text string, override *SpeechOverride) ([]byte, domai.AudioFormat, bool) {
	providerName := ""
	voice := ""
	formatName := ""
	if override != nil {
		providerName = override.Provider
		voice = override.Voice
		formatName = override.Format
	}

	var provider domai.Provider
	if providerName != "" {
		p, err := domai.ParseProvider(providerName)
		if err != nil {
			s.Log.WithError(err).Warn("speech skipped: bad provider override")
			return nil, "", false
		}
		provider = p
	} else if s.DefaultProvider != "" {
		provider = s.DefaultProvider
	} else {
		return nil, "", false // speech not configured for this deployment
	}

	backend, ok := s.Speech[provider]
	if !ok {
		s.Log.WithField("provider", provider).Warn("speech skipped: provider not configured")
		return nil, "", false
	}
	if voice == "" {
		voice = backend.Voice
	}
	if voice == "" {
		s.Log.WithField("provider", provider).Warn("speech skipped: no voice configured")
		return nil, "", false
	}

	format, err := domai.ParseAudioFormat(formatName)
	if err != nil {
		s.Log.WithError(err).Warn("speech skipped: bad format override")
		return nil, "", false
	}

	audio, err := backend.Synth.Synthesize(ctx, domai.SpeechRequest{
		Text:   text,
		Voice:  voice,
		Model:  backend.Model,
		Format: format,
	})
	if err != nil {
		s.Log.WithError(err).WithField("provider", provider).Warn("speech synthesis failed, returning result without audio")
		if s.OnSpeechFailure != nil {
			s.OnSpeechFailure()
		}
		return nil, "", false
	}
	return audio, format, true
}

// Synthesize is the direct text-to-speech entry point used by the TTS
// endpoint. Unlike the speak stage, failures here are hard errors.
func (s *Service) Synthesize(ctx context.Context, providerName string, req domai.SpeechRequest) ([]byte, error) {
	provider := s.DefaultProvider
	if providerName != "" {
		p, err := domai.ParseProvider(providerName)
		if err != nil {
			return nil, apperr.NewInvalidInputError(err.Error(), nil)
		}
		provider = p
	}
	if provider == "" {
		return nil, apperr.NewInvalidInputError("no speech provider configured or requested", nil)
	}

	backend, ok := s.Speech[provider]
	if !ok {
		return nil, apperr.NewInvalidInputError(fmt.Sprintf("speech provider %q is not configured", provider), nil)
	}
	if req.Voice == "" {
		req.Voice = backend.Voice
	}
	if req.Model == "" {
		req.Model = backend.Model
	}
	if req.Voice == "" {
		return nil, apperr.NewInvalidInputError("no voice configured or requested", nil)
	}

	return backend.Synth.Synthesize(ctx, req)
}

// formatDetections serializes the scene for the language model: name,
// position, closeness, dangerousness and rounded confidence per object.
func formatDetections(detections []vision.EnrichedDetection) string {
	type llmObject struct {
		Name        string          `json:"name"`
		Position    vision.Position `json:"position"`
		IsClose     bool            `json:"isClose"`
		IsDangerous bool            `json:"isDangerous"`
		Confidence  float64         `json:"confidence"`
	}

	objects := make([]llmObject, 0, len(detections))
	for _, det := range detections {
		objects = append(objects, llmObject{
			Name:        det.ClassName,
			Position:    det.Position,
			IsClose:     det.IsClose,
			IsDangerous: det.IsDangerous,
			Confidence:  math.Round(det.Confidence*100) / 100,
		})
	}

	data, err := json.MarshalIndent(objects, "", "  ")
	if err != nil {
		return "[]"
	}
	return string(data)
}
