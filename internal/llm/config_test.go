package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "no provider", mutate: func(c *Config) {}},
		{name: "mock", mutate: func(c *Config) { c.Provider = ProviderMock }},
		{name: "anthropic without key", mutate: func(c *Config) { c.Provider = ProviderAnthropic }, wantErr: "llm.anthropic.api-key"},
		{name: "openai with key", mutate: func(c *Config) { c.Provider = ProviderOpenAI; c.OpenAI.APIKey = "k" }},
		{name: "unknown", mutate: func(c *Config) { c.Provider = "llama" }, wantErr: "unknown LLM provider"},
		{name: "no attempts", mutate: func(c *Config) {
			c.Provider = ProviderGemini
			c.Gemini.APIKey = "k"
			c.Retry.MaxAttempts = 0
		}, wantErr: "max-attempts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigDiscover(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("OPENROUTER_API_KEY", "sk-or")

	cfg := DefaultConfig()
	require.True(t, cfg.Discover())
	assert.Equal(t, ProviderAnthropic, cfg.Provider)
	assert.Equal(t, "sk-ant", cfg.Anthropic.APIKey)

	explicit := DefaultConfig()
	explicit.Provider = ProviderMock
	require.True(t, explicit.Discover())
	assert.Equal(t, ProviderMock, explicit.Provider)
}

func TestConfigDiscover_NothingSet(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	cfg := DefaultConfig()
	assert.False(t, cfg.Discover())
	assert.Empty(t, cfg.Provider)
}
