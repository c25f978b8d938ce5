package llm

import (
	"fmt"

	"github.com/ternarybob/arbor"

	"github.com/kyamadi/ai-chat-service/internal/common"
	"github.com/kyamadi/ai-chat-service/internal/interfaces"
)

// NewLLMService creates the configured LLM provider
func NewLLMService(config *common.Config, logger arbor.ILogger) (interfaces.LLMService, error) {
	provider := config.LLM.DefaultProvider
	if provider == "" {
		provider = common.LLMProviderGemini
	}

	switch provider {
	case common.LLMProviderGemini:
		return NewGeminiService(&config.Gemini, logger)
	case common.LLMProviderClaude:
		return NewClaudeService(&config.Claude, logger)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", provider)
	}
}
