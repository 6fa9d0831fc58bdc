package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Generator — внешний текстовый генератор. Медленный, может падать;
// на корректность сессий не влияет.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// Client — HTTP-клиент к inference-шлюзу (Workers-AI-совместимый контракт:
// POST {model, prompt, max_tokens} -> {response}).
type Client struct {
	baseURL string
	token   string
	model   string
	httpc   *http.Client
}

func NewClient(baseURL, token, model string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		model:   model,
		httpc:   &http.Client{Timeout: 60 * time.Second},
	}
}

type generateRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	MaxTokens int    `json:"max_tokens"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:     c.model,
		Prompt:    prompt,
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai generate: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ai generate: status %d: %s", resp.StatusCode, raw)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("ai generate: decode: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("ai generate: %s", out.Error)
	}
	return out.Response, nil
}

func (c *Client) Model() string { return c.model }
