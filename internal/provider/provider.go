package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"patientbrief/internal/config"
)

// Reason classifies a failed completion call.
type Reason string

const (
	ReasonNetwork           Reason = "network"
	ReasonAuth              Reason = "auth"
	ReasonRateLimit         Reason = "rate_limit"
	ReasonMalformedResponse Reason = "malformed_response"
	ReasonTimeout           Reason = "timeout"
)

// Error is the typed failure returned by every backend.
type Error struct {
	Reason     Reason
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider request failed: %s (status %d)", e.Reason, e.StatusCode)
	}
	return fmt.Sprintf("provider request failed: %s", e.Reason)
}

// Request is a single completion request. It is rebuilt per call; backends
// translate it into their own payload shape.
type Request struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// Client is the uniform contract over the interchangeable AI backends.
// Complete issues exactly one outbound HTTP call; retries are the caller's
// decision.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
	Ping(ctx context.Context) error
	Kind() config.ProviderKind
}

type ObserverFunc func(backend string, status int, duration time.Duration)

// New builds the single active client for the process from the normalized
// configuration. The config layer has already coerced the paid kind away, so
// an OpenAI client is only ever constructed through an explicit NewOpenAI.
func New(cfg config.Config, httpClient *http.Client, observer ObserverFunc) (Client, error) {
	switch cfg.Provider {
	case config.ProviderGroq:
		return NewGroq(cfg.GroqBaseURL, cfg.GroqAPIKey, cfg.GroqModel, httpClient, observer), nil
	case config.ProviderOllama:
		return NewOllama(cfg.OllamaURL, cfg.OllamaModel, httpClient, observer), nil
	case config.ProviderHuggingFace:
		return NewHuggingFace(cfg.HuggingFaceBaseURL, cfg.HuggingFaceAPIKey, cfg.HuggingFaceModel, httpClient, observer), nil
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, httpClient, observer), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider %q", cfg.Provider)
	}
}

// classifyStatus maps a non-2xx upstream status to a failure reason.
func classifyStatus(status int) Reason {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ReasonAuth
	case http.StatusTooManyRequests:
		return ReasonRateLimit
	default:
		return ReasonNetwork
	}
}

// classifyTransport maps a request/transport error to a failure reason.
func classifyTransport(err error) Reason {
	if errors.Is(err, context.DeadlineExceeded) {
		return ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ReasonTimeout
	}
	return ReasonNetwork
}

func statusError(status int, body []byte) *Error {
	return &Error{Reason: classifyStatus(status), StatusCode: status, Body: truncateBody(string(body))}
}

func transportError(err error) *Error {
	return &Error{Reason: classifyTransport(err), Body: err.Error()}
}

func malformedError(status int, detail string) *Error {
	return &Error{Reason: ReasonMalformedResponse, StatusCode: status, Body: detail}
}

func readBody(r io.Reader) []byte {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil
	}
	return body
}

func truncateBody(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 4096 {
		return s
	}
	return s[:4096] + "..."
}

const pingPrompt = "Reply only: OK"
