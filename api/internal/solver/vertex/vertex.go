// Package vertex runs solves on Gemini through Vertex AI using the
// google.golang.org/genai SDK.
package vertex

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"mobtakir/api/internal/prompt"
	"mobtakir/api/internal/solver"
)

// generator is the slice of *genai.Models the engine uses.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

type Engine struct {
	models generator
	model  string
}

// New creates a Vertex AI client for project/location. Credentials come from
// the environment (application default credentials).
func New(ctx context.Context, project, location, model string) (*Engine, error) {
	if project == "" || location == "" {
		return nil, fmt.Errorf("VERTEX_PROJECT and VERTEX_LOCATION must be set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Project:  project,
		Location: location,
		Backend:  genai.BackendVertexAI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating Vertex AI client: %w", err)
	}
	return &Engine{models: client.Models, model: strings.TrimSpace(model)}, nil
}

func (e *Engine) Name() string     { return "vertex" }
func (e *Engine) GetModel() string { return e.model }

func (e *Engine) WithModel(model string) solver.Engine {
	c := *e
	c.model = strings.TrimSpace(model)
	return &c
}

func (e *Engine) Generate(ctx context.Context, p prompt.Prompt) (string, error) {
	temp := float32(0.7)
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(p.System, genai.RoleUser),
		Temperature:       &temp,
		ResponseMIMEType:  "application/json",
		ResponseSchema:    replySchema(),
	}
	contents := []*genai.Content{genai.NewContentFromText(p.User, genai.RoleUser)}

	res, err := e.models.GenerateContent(ctx, e.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("vertex generate content: %w", err)
	}
	text := res.Text()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("vertex returned empty text")
	}
	return text, nil
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
