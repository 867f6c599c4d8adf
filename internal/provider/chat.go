package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
)

// OpenAI-style chat completions wire format, shared by the Groq and OpenAI
// backends.

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

func chatComplete(ctx context.Context, httpClient *http.Client, baseURL, apiKey, model string, in Request) (string, int, error) {
	messages := make([]chatMessage, 0, 2)
	if in.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: in.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: in.User})

	payload, err := json.Marshal(chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		Temperature: in.Temperature,
		MaxTokens:   in.MaxTokens,
	})
	if err != nil {
		return "", 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", 0, err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", 0, transportError(err)
	}
	defer resp.Body.Close()

	body := readBody(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return "", resp.StatusCode, statusError(resp.StatusCode, body)
	}

	text, err := parseChatCompletion(resp.StatusCode, body)
	return text, resp.StatusCode, err
}

func parseChatCompletion(status int, data []byte) (string, error) {
	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", malformedError(status, "invalid chat completion response")
	}
	if len(parsed.Choices) == 0 {
		return "", malformedError(status, "missing choices")
	}
	content := parsed.Choices[0].Message.Content
	if content == "" {
		return "", malformedError(status, "missing choices[0].message.content")
	}
	return content, nil
}
