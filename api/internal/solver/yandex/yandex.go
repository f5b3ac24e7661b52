// Package yandex runs solves on YandexGPT foundation models.
package yandex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"mobtakir/api/internal/prompt"
	"mobtakir/api/internal/solver"
)

const completionURL = "https://llm.api.cloud.yandex.net/foundationModels/v1/completion"

type Engine struct {
	tokens   *iamTokens
	folderID string
	model    string
	url      string
	httpc    *http.Client
}

type Option func(*options)

type options struct {
	log *zap.Logger
}

// WithLogger logs IAM token refreshes.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

// New takes the model as "<name>/<version>", e.g. "yandexgpt/latest".
func New(oauthToken, folderID, model string, opts ...Option) *Engine {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	return &Engine{
		tokens:   newIAMTokens(oauthToken, o.log.Named("yandex")),
		folderID: strings.TrimSpace(folderID),
		model:    strings.TrimSpace(model),
		url:      completionURL,
		httpc:    &http.Client{Timeout: 120 * time.Second},
	}
}

func (e *Engine) Name() string     { return "yandex" }
func (e *Engine) GetModel() string { return e.model }

// WithModel returns a copy of e bound to model. The copy shares the IAM token
// cache.
func (e *Engine) WithModel(model string) solver.Engine {
	c := *e
	c.model = strings.TrimSpace(model)
	return &c
}

func (e *Engine) modelURI() string {
	return "gpt://" + e.folderID + "/" + e.model
}

type completionRequest struct {
	ModelURI          string            `json:"modelUri"`
	CompletionOptions completionOptions `json:"completionOptions"`
	Messages          []message         `json:"messages"`
}

type completionOptions struct {
	Stream      bool    `json:"stream"`
	Temperature float64 `json:"temperature"`
	MaxTokens   string  `json:"maxTokens"`
}

type message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type completionResponse struct {
	Result struct {
		Alternatives []struct {
			Message message `json:"message"`
			Status  string  `json:"status"`
		} `json:"alternatives"`
	} `json:"result"`
}

// Generate fetches an IAM token (cached between calls) and sends one
// completion request.
func (e *Engine) Generate(ctx context.Context, p prompt.Prompt) (string, error) {
	if e.folderID == "" {
		return "", fmt.Errorf("YC_FOLDER_ID is empty")
	}
	iamToken, err := e.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("yandex iam: %w", err)
	}

	body := completionRequest{
		ModelURI: e.modelURI(),
		CompletionOptions: completionOptions{
			Temperature: 0.6,
			MaxTokens:   "4000",
		},
		Messages: []message{
			{Role: "system", Text: p.System},
			{Role: "user", Text: p.User},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+iamToken)
	req.Header.Set("x-folder-id", e.folderID)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusUnauthorized {
		e.tokens.invalidate()
	}
	if resp.StatusCode/100 != 2 {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("yandex completion %d: %s", resp.StatusCode, strings.TrimSpace(string(x)))
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("yandex: bad envelope: %w", err)
	}
	if len(out.Result.Alternatives) == 0 {
		return "", fmt.Errorf("yandex completion: empty response")
	}
	return out.Result.Alternatives[0].Message.Text, nil
}
