package provider

import (
	"context"
	"net/http"
	"strings"
	"time"

	"patientbrief/internal/config"
)

// OpenAI is the paid backend. Config normalization coerces the selector away
// from it, so this client only runs when wired up explicitly.
type OpenAI struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	observer   ObserverFunc
}

func NewOpenAI(baseURL, apiKey, model string, httpClient *http.Client, observer ObserverFunc) *OpenAI {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &OpenAI{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     strings.TrimSpace(apiKey),
		model:      model,
		httpClient: httpClient,
		observer:   observer,
	}
}

func (c *OpenAI) Kind() config.ProviderKind { return config.ProviderOpenAI }

func (c *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	started := time.Now()
	text, status, err := chatComplete(ctx, c.httpClient, c.baseURL, c.apiKey, c.model, req)
	observe(c.observer, "openai", status, time.Since(started))
	return text, err
}

func (c *OpenAI) Ping(ctx context.Context) error {
	_, err := c.Complete(ctx, Request{User: pingPrompt, MaxTokens: 5})
	return err
}
