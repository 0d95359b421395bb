package factory

import (
	"context"
	"fmt"

	"store-locator-be/internal/config"
	"store-locator-be/internal/pkg/logger"
	"store-locator-be/pkg/llm"
	"store-locator-be/pkg/llm/gemini"
	"store-locator-be/pkg/llm/huggingface"
	"store-locator-be/pkg/llm/ollama"
)

const module = "LLM"

// NewLLMProvider builds a single provider by kind.
func NewLLMProvider(ctx context.Context, providerType string, cfg config.AIConfig) (llm.LLMProvider, error) {
	switch providerType {
	case "ollama":
		baseURL := cfg.OllamaBaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, cfg.OllamaModel, cfg.ProviderTimeout), nil
	case "huggingface":
		if cfg.HuggingFaceKey == "" {
			return nil, fmt.Errorf("huggingface: api key is empty")
		}
		return huggingface.NewHuggingFaceProvider(cfg.HuggingFaceKey, cfg.HostedBaseURL, cfg.HostedModel, cfg.ProviderTimeout), nil
	case "gemini":
		model := cfg.GeminiModel
		if cfg.HostedProvider == "gemini" && cfg.HostedModel != "" {
			model = cfg.HostedModel
		}
		return gemini.NewGeminiProvider(ctx, cfg.GeminiAPIKey, model)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", providerType)
	}
}

// NewAgentChain returns the local-then-hosted chain used by the intent
// classifier and the answer generator. Providers that cannot be built are
// skipped; an empty chain is valid and makes every call fall back.
func NewAgentChain(ctx context.Context, cfg config.AIConfig, log logger.ILogger) *llm.Chain {
	var providers []llm.Named

	if !cfg.DisableLocalLLM {
		if p, err := NewLLMProvider(ctx, "ollama", cfg); err == nil {
			providers = append(providers, llm.Named{Name: "ollama", Provider: p, Timeout: cfg.ProviderTimeout})
		}
	}

	if cfg.HostedProvider != "" {
		p, err := NewLLMProvider(ctx, cfg.HostedProvider, cfg)
		if err != nil {
			log.Warn(module, "Hosted provider disabled", map[string]interface{}{
				"provider": cfg.HostedProvider,
				"error":    err.Error(),
			})
		} else {
			providers = append(providers, llm.Named{Name: cfg.HostedProvider, Provider: p, Timeout: cfg.ProviderTimeout})
		}
	}

	chain := llm.NewChain(log, providers...)
	log.Info(module, "Agent provider chain ready", map[string]interface{}{"providers": chain.Names()})
	return chain
}

// NewEnrichmentProvider returns the Gemini provider used for enrichment, or nil
// when no key is configured. Nil disables enrichment.
func NewEnrichmentProvider(ctx context.Context, cfg config.AIConfig, log logger.ILogger) llm.LLMProvider {
	if cfg.GeminiAPIKey == "" {
		log.Info(module, "Enrichment disabled: no Gemini key", nil)
		return nil
	}
	p, err := gemini.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		log.Warn(module, "Enrichment disabled", map[string]interface{}{"error": err.Error()})
		return nil
	}
	return p
}
