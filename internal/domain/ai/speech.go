package ai

import "fmt"

// Provider enum: the closed set of speech-synthesis backends.
type Provider string

const (
	ProviderKokoro     Provider = "kokoro"
	ProviderElevenLabs Provider = "elevenlabs"
)

// ParseProvider validates a provider name.
func ParseProvider(s string) (Provider, error) {
	switch Provider(s) {
	case ProviderKokoro, ProviderElevenLabs:
		return Provider(s), nil
	}
	return "", fmt.Errorf("unknown speech provider: %q", s)
}

// AudioFormat enum: output encodings supported by the speech backends.
type AudioFormat string

const (
	FormatMP3 AudioFormat = "mp3"
	FormatWAV AudioFormat = "wav"
	FormatPCM AudioFormat = "pcm"
)

// ParseAudioFormat validates a format name, defaulting empty to mp3.
func ParseAudioFormat(s string) (AudioFormat, error) {
	if s == "" {
		return FormatMP3, nil
	}
	switch AudioFormat(s) {
	case FormatMP3, FormatWAV, FormatPCM:
		return AudioFormat(s), nil
	}
	return "", fmt.Errorf("unknown audio format: %q", s)
}

// MediaType maps the format to the response Content-Type.
func (f AudioFormat) MediaType() string {
	switch f {
	case FormatMP3:
		return "audio/mpeg"
	case FormatWAV:
		return "audio/wav"
	case FormatPCM:
		return "audio/raw"
	}
	return "application/octet-stream"
}
