package ai

import "context"

// Role of a chat message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one ordered chat message.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ChatOptions tune a single completion call.
type ChatOptions struct {
	Model       string
	Temperature float32
	MaxTokens   int
}

// ChatClient port (interface for the language-generation collaborator)
type ChatClient interface {
	// Complete returns the text of the first choice. A response with no
	// choices is an upstream failure.
	Complete(ctx context.Context, messages []Message, opts ChatOptions) (string, error)
}

// SpeechRequest describes one synthesis call.
type SpeechRequest struct {
	Text   string
	Voice  string
	Model  string
	Format AudioFormat
}

// Synthesizer port (interface for a speech-synthesis backend)
type Synthesizer interface {
	Synthesize(ctx context.Context, req SpeechRequest) ([]byte, error)
}
