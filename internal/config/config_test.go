package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/mockprep/internal/llm"
	"github.com/abhisek/mockprep/internal/question"
	"github.com/abhisek/mockprep/internal/sample"
	"github.com/abhisek/mockprep/internal/scoring"
)

func clearVendorKeys(t *testing.T) {
	t.Helper()
	for _, k := range []string{"GEMINI_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearVendorKeys(t)
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "live", cfg.Scoring.Flow)
	assert.Equal(t, 45*time.Second, cfg.Sample.Timeout)
	assert.Equal(t, 700, cfg.Sample.MaxTokens)
	assert.Equal(t, "", cfg.LLM.Provider)
	assert.Equal(t, 3, cfg.LLM.Retry.MaxAttempts)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.OpenAI.Model)
	assert.Equal(t, "127.0.0.1:8080", cfg.Serve.Addr)
	assert.False(t, cfg.Telemetry.Enabled)
}

func TestLoad_File(t *testing.T) {
	clearVendorKeys(t)
	path := filepath.Join(t.TempDir(), "mockprep.yaml")
	doc := `
db: /tmp/mockprep-test.db
user:
  id: u-42
  email: me@example.com
scoring:
  flow: review
llm:
  provider: mock
  timeout: 5s
sample:
  timeout: 10s
telemetry:
  enabled: true
  endpoint: localhost:4317
  insecure: true
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/mockprep-test.db", cfg.DB)
	assert.Equal(t, UserConfig{ID: "u-42", Email: "me@example.com"}, cfg.User)
	assert.Equal(t, scoring.FlowReview, cfg.ScoringFlow())
	assert.Equal(t, llm.ProviderMock, cfg.LLM.Provider)
	assert.Equal(t, 5*time.Second, cfg.LLM.Timeout)
	assert.Equal(t, 10*time.Second, cfg.Sample.Timeout)
	assert.True(t, cfg.Telemetry.Insecure)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Env(t *testing.T) {
	clearVendorKeys(t)
	t.Chdir(t.TempDir())
	t.Setenv("MOCKPREP_USER_ID", "u-env")
	t.Setenv("MOCKPREP_LLM_PROVIDER", "openai")
	t.Setenv("MOCKPREP_LLM_OPENAI_API_KEY", "sk-test")
	t.Setenv("MOCKPREP_SAMPLE_TIMEOUT", "0s")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, "u-env", cfg.User.ID)
	assert.Equal(t, llm.ProviderOpenAI, cfg.LLM.Provider)
	assert.Equal(t, "sk-test", cfg.LLM.OpenAI.APIKey)
	assert.Equal(t, time.Duration(0), cfg.Sample.Timeout)
}

func TestLoad_DiscoversVendorKey(t *testing.T) {
	clearVendorKeys(t)
	t.Chdir(t.TempDir())
	t.Setenv("ANTHROPIC_API_KEY", "ak-test")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderAnthropic, cfg.LLM.Provider)
	assert.Equal(t, "ak-test", cfg.LLM.Anthropic.APIKey)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	assert.NoError(t, LoadDotEnv(filepath.Join(dir, ".env")))

	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("MOCKPREP_DOTENV_PROBE=from-file\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("MOCKPREP_DOTENV_PROBE") })

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-file", os.Getenv("MOCKPREP_DOTENV_PROBE"))
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			DB:      "/tmp/x.db",
			Scoring: ScoringConfig{Flow: "live"},
			LLM:     llm.DefaultConfig(),
			Sample:  sample.DefaultConfig(),
		}
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"empty db", func(c *Config) { c.DB = " " }, "db path"},
		{"bad flow", func(c *Config) { c.Scoring.Flow = "fast" }, "scoring flow"},
		{"negative timeout", func(c *Config) { c.Sample.Timeout = -time.Second }, "sample.timeout"},
		{"zero max tokens", func(c *Config) { c.Sample.MaxTokens = 0 }, "max-tokens"},
		{"telemetry without endpoint", func(c *Config) { c.Telemetry.Enabled = true }, "telemetry.endpoint"},
		{"provider without key", func(c *Config) { c.LLM.Provider = llm.ProviderGemini }, "api-key"},
		{"mock needs no key", func(c *Config) { c.LLM.Provider = llm.ProviderMock }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.modify(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestResolveDB(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("MOCKPREP_DB", filepath.Join(dir, "data", "env.db"))

	c := Config{}
	require.NoError(t, c.ResolveDB())
	assert.Equal(t, filepath.Join(dir, "data", "env.db"), c.DB)
	assert.DirExists(t, filepath.Join(dir, "data"))

	c = Config{DB: filepath.Join(dir, "flag", "x.db")}
	require.NoError(t, c.ResolveDB())
	assert.DirExists(t, filepath.Join(dir, "flag"))
}

func TestQuestionBank(t *testing.T) {
	c := Config{}
	b, err := c.QuestionBank()
	require.NoError(t, err)
	qs, err := b.Questions(question.CategoryManagerial)
	require.NoError(t, err)
	assert.Len(t, qs, question.QuestionsPerSession)

	c.Questions.File = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = c.QuestionBank()
	assert.Error(t, err)
}
