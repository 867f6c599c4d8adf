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

// HuggingFace targets the hosted Inference API. The response shape varies by
// model: some return a list of generations, some a single object.
type HuggingFace struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	observer   ObserverFunc
}

func NewHuggingFace(baseURL, apiKey, model string, httpClient *http.Client, observer ObserverFunc) *HuggingFace {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HuggingFace{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     strings.TrimSpace(apiKey),
		model:      model,
		httpClient: httpClient,
		observer:   observer,
	}
}

func (c *HuggingFace) Kind() config.ProviderKind { return config.ProviderHuggingFace }

type hfInferenceRequest struct {
	Inputs     string       `json:"inputs"`
	Parameters hfParameters `json:"parameters"`
}

type hfParameters struct {
	MaxNewTokens int     `json:"max_new_tokens,omitempty"`
	Temperature  float64 `json:"temperature,omitempty"`
}

func (c *HuggingFace) Complete(ctx context.Context, in Request) (string, error) {
	started := time.Now()
	statusCode := 0
	defer func() { observe(c.observer, "huggingface", statusCode, time.Since(started)) }()

	inputs := in.User
	if in.System != "" {
		inputs = in.System + "\n\n" + in.User
	}

	payload, err := json.Marshal(hfInferenceRequest{
		Inputs: inputs,
		Parameters: hfParameters{
			MaxNewTokens: in.MaxTokens,
			Temperature:  in.Temperature,
		},
	})
	if err != nil {
		return "", err
	}

	url := c.baseURL + "/models/" + c.model
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
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

	return parseHFGeneration(resp.StatusCode, body)
}

func parseHFGeneration(status int, data []byte) (string, error) {
	var list []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(data, &list); err == nil {
		if len(list) == 0 || list[0].GeneratedText == "" {
			return "", malformedError(status, "empty generation list")
		}
		return list[0].GeneratedText, nil
	}

	var single struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(data, &single); err != nil || single.GeneratedText == "" {
		return "", malformedError(status, "invalid inference response")
	}
	return single.GeneratedText, nil
}

func (c *HuggingFace) Ping(ctx context.Context) error {
	_, err := c.Complete(ctx, Request{User: pingPrompt, MaxTokens: 5})
	return err
}
