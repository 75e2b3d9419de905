package llm

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
	ProviderAuto       = "auto" // pick whichever standard API key is set
)

// ErrDisabled is returned by NewProvider when no provider is configured.
var ErrDisabled = errors.New("llm: no provider configured")

// Config holds LLM provider configuration. An empty Provider disables
// the feature.
type Config struct {
	Provider string

	Anthropic  ProviderConfig
	OpenAI     ProviderConfig
	Gemini     ProviderConfig
	OpenRouter ProviderConfig
	Retry      RetryConfig

	// Timeout bounds a single Generate call including retries.
	Timeout time.Duration
}

// ProviderConfig is the per-provider part of Config. BaseURL is optional
// and points the SDK at a proxy or a compatible API.
type ProviderConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a disabled Config with per-provider model defaults.
func DefaultConfig() Config {
	return Config{
		Anthropic:  ProviderConfig{Model: "claude-haiku"},
		OpenAI:     ProviderConfig{Model: "gpt-4o-mini"},
		Gemini:     ProviderConfig{Model: "gemini-flash"},
		OpenRouter: ProviderConfig{Model: "google/gemini-2.0-flash-001"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     8 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 20 * time.Second,
	}
}

// Enabled reports whether a provider is selected.
func (c Config) Enabled() bool {
	return c.Provider != ""
}

// Resolve turns ProviderAuto into a concrete provider by probing the
// standard API key variables (Gemini, OpenAI, Anthropic, OpenRouter). Keys
// already set in c win over the environment. With nothing found the
// returned config is disabled.
func (c Config) Resolve() Config {
	if c.Provider != ProviderAuto {
		return c
	}
	candidates := []struct {
		name string
		env  string
		cfg  *ProviderConfig
	}{
		{ProviderGemini, "GEMINI_API_KEY", &c.Gemini},
		{ProviderOpenAI, "OPENAI_API_KEY", &c.OpenAI},
		{ProviderAnthropic, "ANTHROPIC_API_KEY", &c.Anthropic},
		{ProviderOpenRouter, "OPENROUTER_API_KEY", &c.OpenRouter},
	}
	for _, p := range candidates {
		if p.cfg.APIKey == "" {
			p.cfg.APIKey = os.Getenv(p.env)
		}
		if p.cfg.APIKey != "" {
			c.Provider = p.name
			return c
		}
	}
	c.Provider = ""
	return c
}

// Validate checks that the selected provider has its API key set.
func (c Config) Validate() error {
	var pc ProviderConfig
	switch c.Provider {
	case "", ProviderMock, ProviderAuto:
		return nil
	case ProviderAnthropic:
		pc = c.Anthropic
	case ProviderOpenAI:
		pc = c.OpenAI
	case ProviderGemini:
		pc = c.Gemini
	case ProviderOpenRouter:
		pc = c.OpenRouter
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if pc.APIKey == "" {
		return fmt.Errorf("hints.%s.api_key is required for the %s provider", c.Provider, c.Provider)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("hints retry max attempts must be >= 1, got %d", c.Retry.MaxAttempts)
	}
	return nil
}
