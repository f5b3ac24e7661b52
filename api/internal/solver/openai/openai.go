package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mobtakir/api/internal/prompt"
	"mobtakir/api/internal/solver"
)

const DefaultBaseURL = "https://api.openai.com/v1"

// Engine talks to any OpenAI-compatible chat-completions endpoint.
type Engine struct {
	APIKey  string
	Model   string
	BaseURL string

	name  string
	httpc *http.Client
}

func New(key, model string) *Engine {
	return NewCompatible("gpt", DefaultBaseURL, key, model)
}

// NewCompatible builds an engine for another provider exposing the same API.
func NewCompatible(name, baseURL, key, model string) *Engine {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	return &Engine{
		APIKey:  strings.TrimSpace(key),
		Model:   strings.TrimSpace(model),
		BaseURL: strings.TrimRight(baseURL, "/"),
		name:    name,
		httpc:   &http.Client{Timeout: 120 * time.Second},
	}
}

func (e *Engine) Name() string { return e.name }

func (e *Engine) GetModel() string { return e.Model }

// WithModel returns a copy of e bound to model; the HTTP client is shared.
func (e *Engine) WithModel(model string) solver.Engine {
	c := *e
	c.Model = strings.TrimSpace(model)
	return &c
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (e *Engine) Generate(ctx context.Context, p prompt.Prompt) (string, error) {
	if e.APIKey == "" {
		return "", fmt.Errorf("%s: API key is empty", e.name)
	}
	body := chatRequest{
		Model: e.Model,
		Messages: []chatMessage{
			{Role: "system", Content: p.System + "\n\nsolve.schema.json:\n" + p.Schema},
			{Role: "user", Content: p.User},
		},
		Temperature:    0.7,
		ResponseFormat: map[string]string{"type": "json_object"},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.APIKey)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("%s solve %d: %s", e.name, resp.StatusCode, strings.TrimSpace(string(x)))
	}

	var raw struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return "", fmt.Errorf("%s: bad envelope: %w", e.name, err)
	}
	if len(raw.Choices) == 0 {
		return "", fmt.Errorf("%s solve: empty response", e.name)
	}
	return raw.Choices[0].Message.Content, nil
}
