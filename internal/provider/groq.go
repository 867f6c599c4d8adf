package provider

import (
	"context"
	"net/http"
	"strings"
	"time"

	"patientbrief/internal/config"
)

// Groq is the default free-tier backend, speaking the OpenAI-compatible chat
// completions API.
type Groq struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	observer   ObserverFunc
}

func NewGroq(baseURL, apiKey, model string, httpClient *http.Client, observer ObserverFunc) *Groq {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Groq{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     strings.TrimSpace(apiKey),
		model:      model,
		httpClient: httpClient,
		observer:   observer,
	}
}

func (c *Groq) Kind() config.ProviderKind { return config.ProviderGroq }

func (c *Groq) Complete(ctx context.Context, req Request) (string, error) {
	started := time.Now()
	text, status, err := chatComplete(ctx, c.httpClient, c.baseURL, c.apiKey, c.model, req)
	observe(c.observer, "groq", status, time.Since(started))
	return text, err
}

func (c *Groq) Ping(ctx context.Context) error {
	_, err := c.Complete(ctx, Request{User: pingPrompt, MaxTokens: 5})
	return err
}

func observe(observer ObserverFunc, backend string, status int, duration time.Duration) {
	if observer != nil {
		observer(backend, status, duration)
	}
}
