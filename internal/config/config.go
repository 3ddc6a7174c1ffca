package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Port int `yaml:"port"`
	} `yaml:"server"`

	Auth struct {
		APIToken string `yaml:"apiToken"`
	} `yaml:"auth"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"cors"`

	Detector struct {
		Endpoint            string  `yaml:"endpoint"`
		ConfidenceThreshold float64 `yaml:"confidenceThreshold"`
		TimeoutSeconds      int     `yaml:"timeoutSeconds"`
	} `yaml:"detector"`

	Groq struct {
		APIKey         string `yaml:"apiKey"`
		BaseURL        string `yaml:"baseURL"`
		TimeoutSeconds int    `yaml:"timeoutSeconds"`
	} `yaml:"groq"`

	TTS struct {
		DefaultProvider string `yaml:"defaultProvider"`

		Kokoro struct {
			BaseURL string `yaml:"baseURL"`
			APIKey  string `yaml:"apiKey"`
			Model   string `yaml:"model"`
			Voice   string `yaml:"voice"`
		} `yaml:"kokoro"`

		ElevenLabs struct {
			APIKey  string `yaml:"apiKey"`
			VoiceID string `yaml:"voiceId"`
			Model   string `yaml:"model"`
		} `yaml:"elevenlabs"`
	} `yaml:"tts"`

	Prompts struct {
		Source string `yaml:"source"` // "file" or "minio"
		Dir    string `yaml:"dir"`
		Bucket string `yaml:"bucket"`
	} `yaml:"prompts"`

	Minio struct {
		Endpoint  string `yaml:"endpoint"`
		AccessKey string `yaml:"accessKey"`
		SecretKey string `yaml:"secretKey"`
		Region    string `yaml:"region"`
		UseSSL    bool   `yaml:"useSSL"`
	} `yaml:"minio"`
}

// Load reads the yaml config file and applies env overrides for secrets.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Detector.ConfidenceThreshold == 0 {
		c.Detector.ConfidenceThreshold = 0.25
	}
	if c.Detector.TimeoutSeconds == 0 {
		c.Detector.TimeoutSeconds = 30
	}
	if c.Groq.BaseURL == "" {
		c.Groq.BaseURL = "https://api.groq.com/openai/v1"
	}
	if c.Groq.TimeoutSeconds == 0 {
		c.Groq.TimeoutSeconds = 30
	}
	if c.TTS.Kokoro.Model == "" {
		c.TTS.Kokoro.Model = "kokoro"
	}
	if c.TTS.Kokoro.Voice == "" {
		c.TTS.Kokoro.Voice = "af_bella"
	}
	if c.TTS.ElevenLabs.Model == "" {
		c.TTS.ElevenLabs.Model = "eleven_multilingual_v2"
	}
	if c.Prompts.Source == "" {
		c.Prompts.Source = "file"
	}
	if c.Prompts.Dir == "" {
		c.Prompts.Dir = "prompts"
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("API_TOKEN"); v != "" {
		c.Auth.APIToken = v
	}
	if v := os.Getenv("GROQ_API_KEY"); v != "" {
		c.Groq.APIKey = v
	}
	if v := os.Getenv("ELEVENLABS_API_KEY"); v != "" {
		c.TTS.ElevenLabs.APIKey = v
	}
}

func (c *Config) validate() error {
	if c.Detector.Endpoint == "" {
		return fmt.Errorf("detector.endpoint is required")
	}
	if c.Groq.APIKey == "" {
		return fmt.Errorf("groq.apiKey is required (or set GROQ_API_KEY)")
	}
	if c.Prompts.Source != "file" && c.Prompts.Source != "minio" {
		return fmt.Errorf("prompts.source must be \"file\" or \"minio\", got %q", c.Prompts.Source)
	}
	return nil
}
