package solver

import (
	"context"
	"strings"

	"mobtakir/api/internal/prompt"
)

// Engine is one external model backend. Generate performs exactly one
// outbound call and returns the model's raw text reply.
type Engine interface {
	Name() string
	GetModel() string
	Generate(ctx context.Context, p prompt.Prompt) (string, error)
}

// ModelSwitcher is implemented by engines that can serve another model of the
// same provider. WithModel returns a copy; the receiver is never changed, since
// one engine value is shared by every session.
type ModelSwitcher interface {
	WithModel(model string) Engine
}

// WithModel binds eng to model. A blank model returns eng itself; an engine
// that cannot switch models reports false.
func WithModel(eng Engine, model string) (Engine, bool) {
	model = strings.TrimSpace(model)
	if model == "" {
		return eng, true
	}
	ms, ok := eng.(ModelSwitcher)
	if !ok {
		return eng, false
	}
	return ms.WithModel(model), true
}

// Engines holds the configured backends; nil fields are not configured.
type Engines struct {
	Gemini   Engine
	Vertex   Engine
	OpenAI   Engine
	Deepseek Engine
	Yandex   Engine
}

func (e *Engines) GetEngine(name string) (Engine, error) {
	var eng Engine
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "gemini":
		eng = e.Gemini
	case "vertex":
		eng = e.Vertex
	case "gpt", "openai":
		eng = e.OpenAI
	case "deepseek":
		eng = e.Deepseek
	case "yandex":
		eng = e.Yandex
	}
	if eng == nil {
		return nil, &unknownEngineError{name: name}
	}
	return eng, nil
}

// Names lists the configured engines in a fixed order.
func (e *Engines) Names() []string {
	var out []string
	for _, c := range []struct {
		name string
		eng  Engine
	}{
		{"gemini", e.Gemini},
		{"vertex", e.Vertex},
		{"gpt", e.OpenAI},
		{"deepseek", e.Deepseek},
		{"yandex", e.Yandex},
	} {
		if c.eng != nil {
			out = append(out, c.name)
		}
	}
	return out
}
