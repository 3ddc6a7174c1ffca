package tts

import (
	"context"
	"time"

	"github.com/haguro/elevenlabs-go"

	domai "github.com/sezaiemrekonuk/freesight-ai/internal/domain/ai"
	apperr "github.com/sezaiemrekonuk/freesight-ai/internal/errors"
)

// ElevenLabs synthesizes speech through the ElevenLabs API.
// The request voice carries the ElevenLabs voice_id.
type ElevenLabs struct {
	apiKey  string
	timeout time.Duration
}

func NewElevenLabs(apiKey string, timeout time.Duration) *ElevenLabs {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ElevenLabs{apiKey: apiKey, timeout: timeout}
}

// Synthesize implements the ai.Synthesizer port.
func (e *ElevenLabs) Synthesize(ctx context.Context, req domai.SpeechRequest) ([]byte, error) {
	if req.Voice == "" {
		return nil, apperr.NewUpstreamError("elevenlabs voice_id is required", 0, nil)
	}

	client := elevenlabs.NewClient(ctx, e.apiKey, e.timeout)
	audio, err := client.TextToSpeech(req.Voice, elevenlabs.TextToSpeechRequest{
		Text:    req.Text,
		ModelID: req.Model,
		VoiceSettings: &elevenlabs.VoiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
		},
	}, elevenlabs.OutputFormat(outputFormat(req.Format)))
	if err != nil {
		return nil, apperr.NewUpstreamError("elevenlabs speech synthesis failed", 0, err)
	}
	return audio, nil
}

// outputFormat maps the generic audio format to an ElevenLabs output_format.
func outputFormat(f domai.AudioFormat) string {
	switch f {
	case domai.FormatWAV:
		return "pcm_44100"
	case domai.FormatPCM:
		return "pcm_16000"
	default:
		return "mp3_44100_128"
	}
}
