// Package config loads sleuth's settings from an optional YAML file,
// SLEUTH_* environment variables and command-line overrides, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/abhisek/sleuth/internal/api"
	"github.com/abhisek/sleuth/internal/engine"
	"github.com/abhisek/sleuth/internal/hints"
	"github.com/abhisek/sleuth/internal/llm"
	"github.com/abhisek/sleuth/internal/logging"
	"github.com/abhisek/sleuth/internal/server"
)

// EnvPrefix prefixes every environment variable, e.g. SLEUTH_API_BASE_URL.
const EnvPrefix = "SLEUTH"

type Config struct {
	API    APIConfig    `mapstructure:"api"`
	Server ServerConfig `mapstructure:"server"`
	Engine EngineConfig `mapstructure:"engine"`
	Store  StoreConfig  `mapstructure:"store"`
	Log    LogConfig    `mapstructure:"log"`
	Hints  HintsConfig  `mapstructure:"hints"`
}

type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	Retry   RetryConfig   `mapstructure:"retry"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

type ServerConfig struct {
	Addr            string          `mapstructure:"addr"`
	Mode            string          `mapstructure:"mode"`
	AllowedOrigins  []string        `mapstructure:"allowed_origins"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
}

type EngineConfig struct {
	QueryTimeout time.Duration `mapstructure:"query_timeout"`
	MaxRows      int           `mapstructure:"max_rows"`
}

// StoreConfig locates the local progress database. An empty Path means
// store.DefaultDBPath.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
	Console    bool   `mapstructure:"console"`
}

type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// HintsConfig selects the hint model. An empty Provider leaves hints to
// the local rules.
type HintsConfig struct {
	Provider    string         `mapstructure:"provider"`
	Timeout     time.Duration  `mapstructure:"timeout"`
	MaxTokens   int            `mapstructure:"max_tokens"`
	Temperature float64        `mapstructure:"temperature"`
	Anthropic   ProviderConfig `mapstructure:"anthropic"`
	OpenAI      ProviderConfig `mapstructure:"openai"`
	Gemini      ProviderConfig `mapstructure:"gemini"`
	OpenRouter  ProviderConfig `mapstructure:"openrouter"`
	Retry       RetryConfig    `mapstructure:"retry"`
}

// DefaultConfig assembles every component's defaults.
func DefaultConfig() Config {
	a := api.DefaultConfig()
	s := server.DefaultConfig()
	e := engine.DefaultConfig()
	l := logging.DefaultConfig()
	m := llm.DefaultConfig()
	h := hints.DefaultConfig()

	return Config{
		API: APIConfig{
			BaseURL: a.BaseURL,
			Timeout: a.Timeout,
			Retry:   RetryConfig(a.Retry),
		},
		Server: ServerConfig{
			Addr:            s.Addr,
			Mode:            s.Mode,
			AllowedOrigins:  s.AllowedOrigins,
			RateLimit:       RateLimitConfig(s.RateLimit),
			ShutdownTimeout: s.ShutdownTimeout,
		},
		Engine: EngineConfig(e),
		Log:    LogConfig(l),
		Hints: HintsConfig{
			Provider:    m.Provider,
			Timeout:     h.Timeout,
			MaxTokens:   h.MaxTokens,
			Temperature: h.Temperature,
			Anthropic:   ProviderConfig(m.Anthropic),
			OpenAI:      ProviderConfig(m.OpenAI),
			Gemini:      ProviderConfig(m.Gemini),
			OpenRouter:  ProviderConfig(m.OpenRouter),
			Retry:       RetryConfig(m.Retry),
		},
	}
}

// Load reads the config file at path, or sleuth.yaml from the working
// directory and $XDG_CONFIG_HOME/sleuth when path is empty, then applies
// the environment and overrides. Overrides are keyed by dotted names such
// as "api.base_url".
func Load(path string, overrides map[string]any) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Standard provider variables work without the prefix.
	v.BindEnv("hints.anthropic.api_key", "SLEUTH_HINTS_ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY")
	v.BindEnv("hints.openai.api_key", "SLEUTH_HINTS_OPENAI_API_KEY", "OPENAI_API_KEY")
	v.BindEnv("hints.gemini.api_key", "SLEUTH_HINTS_GEMINI_API_KEY", "GEMINI_API_KEY")
	v.BindEnv("hints.openrouter.api_key", "SLEUTH_HINTS_OPENROUTER_API_KEY", "OPENROUTER_API_KEY")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("sleuth")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	for k, val := range overrides {
		v.Set(k, val)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func configDir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "sleuth"), nil
}

// setDefaults registers every key so AutomaticEnv can see it during
// Unmarshal.
func setDefaults(v *viper.Viper, c Config) {
	retry := func(prefix string, r RetryConfig) {
		v.SetDefault(prefix+".max_attempts", r.MaxAttempts)
		v.SetDefault(prefix+".initial_wait", r.InitialWait)
		v.SetDefault(prefix+".max_wait", r.MaxWait)
		v.SetDefault(prefix+".multiplier", r.Multiplier)
	}
	provider := func(prefix string, p ProviderConfig) {
		v.SetDefault(prefix+".api_key", p.APIKey)
		v.SetDefault(prefix+".model", p.Model)
		v.SetDefault(prefix+".base_url", p.BaseURL)
	}

	v.SetDefault("api.base_url", c.API.BaseURL)
	v.SetDefault("api.timeout", c.API.Timeout)
	retry("api.retry", c.API.Retry)

	v.SetDefault("server.addr", c.Server.Addr)
	v.SetDefault("server.mode", c.Server.Mode)
	v.SetDefault("server.allowed_origins", c.Server.AllowedOrigins)
	v.SetDefault("server.rate_limit.requests", c.Server.RateLimit.Requests)
	v.SetDefault("server.rate_limit.window", c.Server.RateLimit.Window)
	v.SetDefault("server.shutdown_timeout", c.Server.ShutdownTimeout)

	v.SetDefault("engine.query_timeout", c.Engine.QueryTimeout)
	v.SetDefault("engine.max_rows", c.Engine.MaxRows)

	v.SetDefault("store.path", c.Store.Path)

	v.SetDefault("log.level", c.Log.Level)
	v.SetDefault("log.file", c.Log.File)
	v.SetDefault("log.max_size_mb", c.Log.MaxSizeMB)
	v.SetDefault("log.max_backups", c.Log.MaxBackups)
	v.SetDefault("log.max_age_days", c.Log.MaxAgeDays)
	v.SetDefault("log.compress", c.Log.Compress)
	v.SetDefault("log.console", c.Log.Console)

	v.SetDefault("hints.provider", c.Hints.Provider)
	v.SetDefault("hints.timeout", c.Hints.Timeout)
	v.SetDefault("hints.max_tokens", c.Hints.MaxTokens)
	v.SetDefault("hints.temperature", c.Hints.Temperature)
	provider("hints.anthropic", c.Hints.Anthropic)
	provider("hints.openai", c.Hints.OpenAI)
	provider("hints.gemini", c.Hints.Gemini)
	provider("hints.openrouter", c.Hints.OpenRouter)
	retry("hints.retry", c.Hints.Retry)
}

// Validate checks every section through its component's own rules.
func (c Config) Validate() error {
	checks := []struct {
		section string
		err     error
	}{
		{"api", c.APIClient().Validate()},
		{"server", c.HTTPServer().Validate()},
		{"engine", c.QueryEngine().Validate()},
		{"log", c.Logging().Validate()},
		{"hints", c.LLM().Validate()},
	}
	var errs []error
	for _, ch := range checks {
		if ch.err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", ch.section, ch.err))
		}
	}
	if c.Hints.MaxTokens < 1 {
		errs = append(errs, fmt.Errorf("hints: max_tokens must be >= 1, got %d", c.Hints.MaxTokens))
	}
	return errors.Join(errs...)
}

// APIClient returns the backend client settings.
func (c Config) APIClient() api.Config {
	return api.Config{
		BaseURL: c.API.BaseURL,
		Timeout: c.API.Timeout,
		Retry:   api.RetryConfig(c.API.Retry),
	}
}

func (c Config) HTTPServer() server.Config {
	return server.Config{
		Addr:            c.Server.Addr,
		Mode:            c.Server.Mode,
		AllowedOrigins:  c.Server.AllowedOrigins,
		RateLimit:       server.RateLimitConfig(c.Server.RateLimit),
		ShutdownTimeout: c.Server.ShutdownTimeout,
	}
}

func (c Config) QueryEngine() engine.Config {
	return engine.Config(c.Engine)
}

func (c Config) Logging() logging.Config {
	return logging.Config(c.Log)
}

// LLM returns the hint provider settings.
func (c Config) LLM() llm.Config {
	return llm.Config{
		Provider:   c.Hints.Provider,
		Anthropic:  llm.ProviderConfig(c.Hints.Anthropic),
		OpenAI:     llm.ProviderConfig(c.Hints.OpenAI),
		Gemini:     llm.ProviderConfig(c.Hints.Gemini),
		OpenRouter: llm.ProviderConfig(c.Hints.OpenRouter),
		Retry:      llm.RetryConfig(c.Hints.Retry),
		Timeout:    c.Hints.Timeout,
	}
}

// HintService returns the hint request settings.
func (c Config) HintService() hints.Config {
	return hints.Config{
		MaxTokens:   c.Hints.MaxTokens,
		Temperature: c.Hints.Temperature,
		Timeout:     c.Hints.Timeout,
	}
}
