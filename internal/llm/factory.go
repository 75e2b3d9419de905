package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/sleuth/internal/store"
)

// mockHint is what the mock provider answers when nothing is queued, so
// the hint flow can be tried without an API key.
const mockHint = `{"hint": "Сравните условия в WHERE с тем, что требует задание: дата, время и сумма."}`

// NewProvider builds the configured provider wrapped as
// caller → retry → recording → base. repo may be nil.
func NewProvider(ctx context.Context, cfg Config, repo store.EventRepo, logger *zap.Logger) (Provider, error) {
	cfg = cfg.Resolve()
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		base Provider
		err  error
	)
	switch cfg.Provider {
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderMock:
		m := NewMockProvider()
		m.Default = &MockResponse{Content: json.RawMessage(mockHint)}
		base = m
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	logger = logger.Named("llm")
	logger.Info("llm provider ready", zap.String("provider", cfg.Provider), zap.String("model", base.ModelID()))

	recorded := WithRecording(base, cfg.Provider, repo, logger)
	return WithRetry(recorded, cfg.Retry, logger), nil
}
