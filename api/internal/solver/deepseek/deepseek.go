// Package deepseek configures the OpenAI-compatible DeepSeek chat API.
package deepseek

import "mobtakir/api/internal/solver/openai"

const BaseURL = "https://api.deepseek.com"

func New(key, model string) *openai.Engine {
	return openai.NewCompatible("deepseek", BaseURL, key, model)
}
