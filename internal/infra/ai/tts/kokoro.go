package tts

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	domai "github.com/sezaiemrekonuk/freesight-ai/internal/domain/ai"
	apperr "github.com/sezaiemrekonuk/freesight-ai/internal/errors"
)

// Kokoro synthesizes speech through a Kokoro-FastAPI deployment, which
// exposes the OpenAI-compatible /v1/audio/speech endpoint.
type Kokoro struct {
	client *openai.Client
}

func NewKokoro(baseURL, apiKey string, timeout time.Duration) *Kokoro {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/") + "/v1"
	if timeout > 0 {
		cfg.HTTPClient.Timeout = timeout
	}
	return &Kokoro{client: openai.NewClientWithConfig(cfg)}
}

// Synthesize implements the ai.Synthesizer port.
func (k *Kokoro) Synthesize(ctx context.Context, req domai.SpeechRequest) ([]byte, error) {
	resp, err := k.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(req.Model),
		Input:          req.Text,
		Voice:          openai.SpeechVoice(req.Voice),
		ResponseFormat: openai.SpeechResponseFormat(req.Format),
	})
	if err != nil {
		status := 0
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			status = apiErr.HTTPStatusCode
		}
		return nil, apperr.NewUpstreamError("kokoro speech synthesis failed", status, err)
	}
	defer resp.Close()

	audio, err := io.ReadAll(resp)
	if err != nil {
		return nil, apperr.NewUpstreamError("reading kokoro audio stream", 0, err)
	}
	return audio, nil
}
