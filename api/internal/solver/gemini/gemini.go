package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"mobtakir/api/internal/prompt"
	"mobtakir/api/internal/solver"
)

type Engine struct {
	APIKey string
	Model  string

	// extra client options, e.g. option.WithEndpoint behind a proxy
	opts []option.ClientOption
}

func New(apiKey, model string, opts ...option.ClientOption) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
		opts:   opts,
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

// WithModel returns a copy of e bound to model.
func (e *Engine) WithModel(model string) solver.Engine {
	c := *e
	c.Model = strings.TrimSpace(model)
	return &c
}

// Generate sends one GenerateContent call with JSON output enforced by the
// reply schema.
func (e *Engine) Generate(ctx context.Context, p prompt.Prompt) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, append([]option.ClientOption{option.WithAPIKey(e.APIKey)}, e.opts...)...)
	if err != nil {
		return "", err
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0.7),
		ResponseMIMEType: "application/json",
		ResponseSchema:   replySchema(),
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(p.System)},
	}

	resp, err := m.GenerateContent(ctx, genai.Text(p.User))
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	txt := firstText(resp)
	if strings.TrimSpace(txt) == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return txt, nil
}

func replySchema() *genai.Schema {
	str := func() *genai.Schema { return &genai.Schema{Type: genai.TypeString} }
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"techniqueId": str(),
			"analysis":    str(),
			"solutions": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":    str(),
						"text":     str(),
						"emoji":    str(),
						"category": str(),
					},
					Required: []string{"title", "text", "emoji", "category"},
				},
			},
		},
		Required: []string{"techniqueId", "analysis", "solutions"},
	}
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
