package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderGemini     = "gemini"
	ProviderMock       = "mock"
)

// Config selects and configures the sample-answer backend.
type Config struct {
	// Provider is one of the Provider* names. Empty means no backend; the
	// interview still runs without sample answers.
	Provider string `mapstructure:"provider"`

	Anthropic  BackendConfig `mapstructure:"anthropic"`
	OpenAI     BackendConfig `mapstructure:"openai"`
	OpenRouter BackendConfig `mapstructure:"openrouter"`
	Gemini     BackendConfig `mapstructure:"gemini"`
	Retry      RetryConfig   `mapstructure:"retry"`

	// Timeout bounds one request including retries.
	Timeout time.Duration `mapstructure:"timeout"`
}

// BackendConfig holds the credentials and model for one backend.
type BackendConfig struct {
	APIKey  string `mapstructure:"api-key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base-url"`
}

// RetryConfig controls backoff for transient failures.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max-attempts"`
	InitialWait time.Duration `mapstructure:"initial-wait"`
	MaxWait     time.Duration `mapstructure:"max-wait"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

// DefaultConfig returns the defaults used when a key is not configured.
func DefaultConfig() Config {
	return Config{
		Anthropic:  BackendConfig{Model: "claude-haiku"},
		OpenAI:     BackendConfig{Model: "gpt-4o-mini"},
		OpenRouter: BackendConfig{Model: "google/gemini-2.0-flash-exp", BaseURL: defaultOpenRouterBaseURL},
		Gemini:     BackendConfig{Model: "gemini-flash"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// Discover fills Provider and its API key from the conventional vendor
// environment variables when no provider was configured explicitly.
// It reports whether a key was found.
func (c *Config) Discover() bool {
	if c.Provider != "" {
		return true
	}
	probes := []struct {
		env      string
		provider string
		backend  *BackendConfig
	}{
		{"GEMINI_API_KEY", ProviderGemini, &c.Gemini},
		{"OPENAI_API_KEY", ProviderOpenAI, &c.OpenAI},
		{"ANTHROPIC_API_KEY", ProviderAnthropic, &c.Anthropic},
		{"OPENROUTER_API_KEY", ProviderOpenRouter, &c.OpenRouter},
	}
	for _, p := range probes {
		if k := os.Getenv(p.env); k != "" {
			c.Provider = p.provider
			if p.backend.APIKey == "" {
				p.backend.APIKey = k
			}
			return true
		}
	}
	return false
}

// Backend returns the settings of the selected provider.
func (c Config) Backend() BackendConfig {
	switch c.Provider {
	case ProviderAnthropic:
		return c.Anthropic
	case ProviderOpenAI:
		return c.OpenAI
	case ProviderOpenRouter:
		return c.OpenRouter
	case ProviderGemini:
		return c.Gemini
	default:
		return BackendConfig{}
	}
}

// Validate checks that the selected provider is known and has a key.
func (c Config) Validate() error {
	switch c.Provider {
	case "", ProviderMock:
		return nil
	case ProviderAnthropic, ProviderOpenAI, ProviderOpenRouter, ProviderGemini:
		if c.Backend().APIKey == "" {
			return fmt.Errorf("llm.%s.api-key is required for the %s provider", c.Provider, c.Provider)
		}
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("llm.retry.max-attempts must be at least 1")
	}
	return nil
}
