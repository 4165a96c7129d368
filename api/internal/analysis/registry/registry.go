// Package registry builds the engine set from configuration.
package registry

import (
	"fmt"
	"log"

	"homework-tutor/api/internal/analysis"
	"homework-tutor/api/internal/analysis/gemini"
	"homework-tutor/api/internal/analysis/ollama"
	"homework-tutor/api/internal/analysis/openai"
	"homework-tutor/api/internal/config"
)

// FromConfig registers every engine that has credentials (or, for ollama, a URL).
func FromConfig(cfg *config.Config) (*analysis.Engines, error) {
	engs := analysis.NewEngines(cfg.DefaultLLM)

	if cfg.GeminiAPIKey != "" {
		engs.Register(gemini.New(cfg.GeminiAPIKey, cfg.GeminiModel))
	}
	if cfg.OpenAIAPIKey != "" {
		engs.Register(openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel), "openai")
	}
	if cfg.ZhipuAPIKey != "" {
		engs.Register(openai.NewZhipu(cfg.ZhipuAPIKey, cfg.ZhipuModel, cfg.ZhipuBaseURL), "glm")
	}
	if cfg.OllamaURL != "" {
		eng, err := ollama.New(cfg.OllamaURL, cfg.OllamaModel)
		if err != nil {
			return nil, fmt.Errorf("ollama: %w", err)
		}
		engs.Register(eng)
	}

	if engs.Len() == 0 {
		return nil, fmt.Errorf("no analysis engine configured: set GEMINI_API_KEY, OPENAI_API_KEY, ZHIPU_API_KEY or OLLAMA_URL")
	}
	for name, model := range engs.Describe() {
		log.Printf("engine %s: model=%s", name, model)
	}
	if _, err := engs.GetEngine(cfg.DefaultLLM); err != nil {
		log.Printf("DEFAULT_LLM=%q is not configured, requests without llm_name fall back to another engine", cfg.DefaultLLM)
	}
	return engs, nil
}
