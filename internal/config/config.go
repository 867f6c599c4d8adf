package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	cenv "github.com/caarlos0/env/v11"
)

// ProviderKind identifies which AI backend handles summarization requests.
type ProviderKind string

const (
	ProviderGroq        ProviderKind = "groq"
	ProviderOllama      ProviderKind = "ollama"
	ProviderHuggingFace ProviderKind = "huggingface"
	ProviderOpenAI      ProviderKind = "openai"
)

type Config struct {
	ListenAddr string
	LogLevel   string

	Provider ProviderKind

	GroqBaseURL string
	GroqAPIKey  string
	GroqModel   string

	OllamaURL   string
	OllamaModel string

	HuggingFaceAPIKey  string
	HuggingFaceBaseURL string
	HuggingFaceModel   string

	OpenAIBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string

	OverpassURL      string
	WikipediaBaseURL string
	DefaultRadiusM   int

	AITimeout  time.Duration
	GeoTimeout time.Duration
}

type envConfig struct {
	ListenAddr         string `env:"LISTEN_ADDR" envDefault:":8080"`
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`
	Provider           string `env:"AI_PROVIDER" envDefault:"groq"`
	GroqBaseURL        string `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	GroqAPIKey         string `env:"GROQ_API_KEY"`
	GroqModel          string `env:"GROQ_MODEL" envDefault:"llama-3.3-70b-versatile"`
	OllamaURL          string `env:"OLLAMA_URL" envDefault:"http://localhost:11434"`
	OllamaModel        string `env:"OLLAMA_MODEL" envDefault:"llama2"`
	HuggingFaceAPIKey  string `env:"HUGGINGFACE_API_KEY"`
	HuggingFaceBaseURL string `env:"HUGGINGFACE_BASE_URL" envDefault:"https://api-inference.huggingface.co"`
	HuggingFaceModel   string `env:"HUGGINGFACE_MODEL" envDefault:"mistralai/Mistral-7B-Instruct-v0.2"`
	OpenAIBaseURL      string `env:"OPENAI_BASE_URL" envDefault:"https://api.openai.com/v1"`
	OpenAIAPIKey       string `env:"OPENAI_API_KEY"`
	OpenAIModel        string `env:"OPENAI_MODEL" envDefault:"gpt-3.5-turbo"`
	OverpassURL        string `env:"OVERPASS_URL" envDefault:"https://overpass-api.de/api/interpreter"`
	WikipediaBaseURL   string `env:"WIKIPEDIA_BASE_URL" envDefault:"https://en.wikipedia.org/api/rest_v1"`
	DefaultRadiusM     int    `env:"DEFAULT_RADIUS_M" envDefault:"5000"`
	AITimeoutSeconds   int    `env:"AI_TIMEOUT_SECONDS" envDefault:"15"`
	GeoTimeoutSeconds  int    `env:"GEO_TIMEOUT_SECONDS" envDefault:"8"`
}

func Load() (Config, error) {
	var raw envConfig
	if err := cenv.Parse(&raw); err != nil {
		return Config{}, err
	}

	cfg := Config{
		ListenAddr:         strings.TrimSpace(raw.ListenAddr),
		LogLevel:           strings.ToLower(strings.TrimSpace(raw.LogLevel)),
		Provider:           normalizeProviderKind(raw.Provider),
		GroqBaseURL:        trimBaseURL(raw.GroqBaseURL),
		GroqAPIKey:         strings.TrimSpace(raw.GroqAPIKey),
		GroqModel:          strings.TrimSpace(raw.GroqModel),
		OllamaURL:          trimBaseURL(raw.OllamaURL),
		OllamaModel:        strings.TrimSpace(raw.OllamaModel),
		HuggingFaceAPIKey:  strings.TrimSpace(raw.HuggingFaceAPIKey),
		HuggingFaceBaseURL: trimBaseURL(raw.HuggingFaceBaseURL),
		HuggingFaceModel:   strings.TrimSpace(raw.HuggingFaceModel),
		OpenAIBaseURL:      trimBaseURL(raw.OpenAIBaseURL),
		OpenAIAPIKey:       strings.TrimSpace(raw.OpenAIAPIKey),
		OpenAIModel:        strings.TrimSpace(raw.OpenAIModel),
		OverpassURL:        trimBaseURL(raw.OverpassURL),
		WikipediaBaseURL:   trimBaseURL(raw.WikipediaBaseURL),
		DefaultRadiusM:     raw.DefaultRadiusM,
		AITimeout:          time.Duration(raw.AITimeoutSeconds) * time.Second,
		GeoTimeout:         time.Duration(raw.GeoTimeoutSeconds) * time.Second,
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// normalizeProviderKind resolves the AI_PROVIDER selector. The paid OpenAI
// backend is coerced to the free default so a stray env value can never
// trigger billable calls; unknown values also fall back to the default.
func normalizeProviderKind(value string) ProviderKind {
	switch ProviderKind(strings.ToLower(strings.TrimSpace(value))) {
	case ProviderOllama:
		return ProviderOllama
	case ProviderHuggingFace:
		return ProviderHuggingFace
	case ProviderOpenAI:
		return ProviderGroq
	default:
		return ProviderGroq
	}
}

func trimBaseURL(value string) string {
	return strings.TrimRight(strings.TrimSpace(value), "/")
}

func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("LISTEN_ADDR must not be empty")
	}
	if c.OverpassURL == "" {
		return errors.New("OVERPASS_URL must not be empty")
	}
	if c.WikipediaBaseURL == "" {
		return errors.New("WIKIPEDIA_BASE_URL must not be empty")
	}
	if c.DefaultRadiusM <= 0 {
		return errors.New("DEFAULT_RADIUS_M must be > 0")
	}
	if c.AITimeout <= 0 {
		return errors.New("AI_TIMEOUT_SECONDS must be > 0")
	}
	if c.GeoTimeout <= 0 {
		return errors.New("GEO_TIMEOUT_SECONDS must be > 0")
	}
	switch c.Provider {
	case ProviderGroq:
		if c.GroqBaseURL == "" || c.GroqModel == "" {
			return errors.New("GROQ_BASE_URL and GROQ_MODEL must not be empty")
		}
	case ProviderOllama:
		if c.OllamaURL == "" || c.OllamaModel == "" {
			return errors.New("OLLAMA_URL and OLLAMA_MODEL must not be empty")
		}
	case ProviderHuggingFace:
		if c.HuggingFaceBaseURL == "" || c.HuggingFaceModel == "" {
			return errors.New("HUGGINGFACE_BASE_URL and HUGGINGFACE_MODEL must not be empty")
		}
	default:
		return fmt.Errorf("unsupported AI provider %q", c.Provider)
	}
	return nil
}

// ProviderConfigured reports whether the active provider has the credential
// it needs. Ollama runs locally and needs none.
func (c Config) ProviderConfigured() bool {
	switch c.Provider {
	case ProviderGroq:
		return c.GroqAPIKey != ""
	case ProviderHuggingFace:
		return c.HuggingFaceAPIKey != ""
	case ProviderOllama:
		return true
	default:
		return false
	}
}
