package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"patientbrief/internal/config"
)

// Ollama talks to a locally running Ollama daemon. No credential required.
type Ollama struct {
	baseURL    string
	model      string
	httpClient *http.Client
	observer   ObserverFunc
}

func NewOllama(baseURL, model string, httpClient *http.Client, observer ObserverFunc) *Ollama {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Ollama{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: httpClient,
		observer:   observer,
	}
}

func (c *Ollama) Kind() config.ProviderKind { return config.ProviderOllama }

type ollamaGenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

func (c *Ollama) Complete(ctx context.Context, in Request) (string, error) {
	started := time.Now()
	statusCode := 0
	defer func() { observe(c.observer, "ollama", statusCode, time.Since(started)) }()

	prompt := in.User
	if in.System != "" {
		prompt = in.System + "\n\n" + in.User
	}

	payload, err := json.Marshal(ollamaGenerateRequest{Model: c.model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", transportError(err)
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode

	body := readBody(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp.StatusCode, body)
	}

	var parsed struct {
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", malformedError(resp.StatusCode, "invalid generate response")
	}
	if parsed.Response == "" {
		return "", malformedError(resp.StatusCode, "missing response field")
	}
	return parsed.Response, nil
}

func (c *Ollama) Ping(ctx context.Context) error {
	_, err := c.Complete(ctx, Request{User: pingPrompt, MaxTokens: 5})
	return err
}
