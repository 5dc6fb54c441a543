package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

const openAIModel = "gpt-4o"

type openAI struct {
	key  string
	url  string
	http *http.Client
}

func newOpenAI(key, url string, httpc *http.Client) *openAI {
	return &openAI{key: key, url: url, http: httpc}
}

func (p *openAI) Name() string { return "OpenAI" }

type openAIRequest struct {
	Model       string          `json:"model"`
	Messages    []openAIMessage `json:"messages"`
	MaxTokens   int             `json:"max_tokens"`
	Temperature float64         `json:"temperature"`
}

type openAIMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// The chat completions API can answer 200 with an error object in the body;
// both the status code and the error field are checked.
type openAIResponse struct {
	Choices []struct {
		Message openAIMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (p *openAI) Complete(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(openAIRequest{
		Model:       openAIModel,
		Messages:    []openAIMessage{{Role: "user", Content: prompt}},
		MaxTokens:   completionMaxTokens,
		Temperature: completionTemp,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.key)

	resp, err := p.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("call openai: %w", err)
	}
	defer resp.Body.Close()

	var body openAIResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if body.Error != nil {
		return "", fmt.Errorf("openai: %s", body.Error.Message)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("openai: status %d", resp.StatusCode)
	}
	if len(body.Choices) == 0 {
		return "", errors.New("openai: no choices")
	}
	return body.Choices[0].Message.Content, nil
}
