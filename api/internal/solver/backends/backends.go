// Package backends wires the configured model engines from config.
package backends

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"mobtakir/api/internal/config"
	"mobtakir/api/internal/solver"
	"mobtakir/api/internal/solver/deepseek"
	"mobtakir/api/internal/solver/gemini"
	"mobtakir/api/internal/solver/openai"
	"mobtakir/api/internal/solver/vertex"
	"mobtakir/api/internal/solver/yandex"
)

// FromConfig builds every engine whose credentials are present. The default
// engine (cfg.Engine) must be among them.
func FromConfig(ctx context.Context, cfg *config.Config, log *zap.Logger) (*solver.Engines, error) {
	if log == nil {
		log = zap.NewNop()
	}
	engs := &solver.Engines{}

	if cfg.GeminiAPIKey != "" {
		engs.Gemini = gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel)
	}
	if cfg.VertexProject != "" && cfg.VertexLocation != "" {
		v, err := vertex.New(ctx, cfg.VertexProject, cfg.VertexLocation, cfg.VertexModel)
		if err != nil {
			log.Warn("vertex engine disabled", zap.Error(err))
		} else {
			engs.Vertex = v
		}
	}
	if cfg.OpenAIAPIKey != "" {
		engs.OpenAI = openai.NewCompatible("gpt", cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	}
	if cfg.DeepseekAPIKey != "" {
		engs.Deepseek = deepseek.New(cfg.DeepseekAPIKey, cfg.DeepseekModel)
	}
	if cfg.YCOAuthToken != "" && cfg.YCFolderID != "" {
		engs.Yandex = yandex.New(cfg.YCOAuthToken, cfg.YCFolderID, cfg.YandexModel, yandex.WithLogger(log))
	}

	if _, err := engs.GetEngine(cfg.Engine); err != nil {
		if missing := cfg.Require(config.EngineKeys(cfg.Engine)...); missing != nil {
			return nil, fmt.Errorf("default engine %s: %w", cfg.Engine, missing)
		}
		return nil, fmt.Errorf("default engine: %w", err)
	}
	log.Info("engines configured",
		zap.Strings("engines", engs.Names()),
		zap.String("default", cfg.Engine),
	)
	return engs, nil
}
