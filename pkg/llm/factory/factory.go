package factory

import (
	"fmt"
	"time"

	"symptom-checker-be/pkg/llm"
	"symptom-checker-be/pkg/llm/gemini"
	"symptom-checker-be/pkg/llm/ollama"
)

type ProviderConfig struct {
	Provider     string // "gemini" or "ollama"
	Model        string
	GeminiAPIKey string
	OllamaURL    string
	Timeout      time.Duration
}

func NewLLMProvider(cfg ProviderConfig) (llm.LLMProvider, error) {
	switch cfg.Provider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("gemini provider requires GOOGLE_GEMINI_API_KEY")
		}
		return gemini.NewGeminiProvider(gemini.DefaultBaseURL, cfg.GeminiAPIKey, cfg.Model, cfg.Timeout), nil
	case "ollama":
		baseURL := cfg.OllamaURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.Model, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
