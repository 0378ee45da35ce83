// Package config loads mockprep settings from mockprep.yaml, a .env file,
// MOCKPREP_* environment variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/mockprep/internal/llm"
	"github.com/abhisek/mockprep/internal/question"
	"github.com/abhisek/mockprep/internal/sample"
	"github.com/abhisek/mockprep/internal/scoring"
	"github.com/abhisek/mockprep/internal/store"
	"github.com/abhisek/mockprep/internal/telemetry"
)

const (
	AppName   = "mockprep"
	EnvPrefix = "MOCKPREP"
)

// Config is the full application configuration.
type Config struct {
	DB        string           `mapstructure:"db"`
	User      UserConfig       `mapstructure:"user"`
	Questions QuestionsConfig  `mapstructure:"questions"`
	Scoring   ScoringConfig    `mapstructure:"scoring"`
	LLM       llm.Config       `mapstructure:"llm"`
	Sample    sample.Config    `mapstructure:"sample"`
	Telemetry telemetry.Config `mapstructure:"telemetry"`
	Serve     ServeConfig      `mapstructure:"serve"`
	Log       LogConfig        `mapstructure:"log"`
}

// UserConfig identifies who takes assessments from this machine.
type UserConfig struct {
	ID    string `mapstructure:"id"`
	Email string `mapstructure:"email"`
}

type QuestionsConfig struct {
	// File replaces the built-in question bank when set.
	File string `mapstructure:"file"`
}

type ScoringConfig struct {
	Flow string `mapstructure:"flow"`
}

type ServeConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	JSON  bool `mapstructure:"json"`
	Debug bool `mapstructure:"debug"`
}

// SetDefaults registers every key with its default. Keys must be known to
// v for environment overrides to reach Unmarshal.
func SetDefaults(v *viper.Viper) {
	l := llm.DefaultConfig()
	s := sample.DefaultConfig()

	v.SetDefault("db", "")
	v.SetDefault("user.id", "")
	v.SetDefault("user.email", "")
	v.SetDefault("questions.file", "")
	v.SetDefault("scoring.flow", string(scoring.FlowLive))

	v.SetDefault("llm.provider", l.Provider)
	for name, b := range map[string]llm.BackendConfig{
		llm.ProviderAnthropic:  l.Anthropic,
		llm.ProviderOpenAI:     l.OpenAI,
		llm.ProviderOpenRouter: l.OpenRouter,
		llm.ProviderGemini:     l.Gemini,
	} {
		v.SetDefault("llm."+name+".api-key", b.APIKey)
		v.SetDefault("llm."+name+".model", b.Model)
		v.SetDefault("llm."+name+".base-url", b.BaseURL)
	}
	v.SetDefault("llm.retry.max-attempts", l.Retry.MaxAttempts)
	v.SetDefault("llm.retry.initial-wait", l.Retry.InitialWait)
	v.SetDefault("llm.retry.max-wait", l.Retry.MaxWait)
	v.SetDefault("llm.retry.multiplier", l.Retry.Multiplier)
	v.SetDefault("llm.timeout", l.Timeout)

	v.SetDefault("sample.max-tokens", s.MaxTokens)
	v.SetDefault("sample.temperature", s.Temperature)
	v.SetDefault("sample.timeout", s.Timeout)

	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.endpoint", "")
	v.SetDefault("telemetry.insecure", false)

	v.SetDefault("serve.addr", "127.0.0.1:8080")
	v.SetDefault("log.json", false)
	v.SetDefault("log.debug", false)
}

// LoadDotEnv loads path into the process environment without overriding
// variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads configuration into v and unmarshals it. An explicit file must
// exist; otherwise mockprep.yaml in the current directory is optional.
func Load(v *viper.Viper, file string) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(AppName)
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.LLM.Discover()
	return &cfg, nil
}

// ResolveDB fills DB with the default data path when unset and makes sure
// its directory exists.
func (c *Config) ResolveDB() error {
	if c.DB != "" {
		return store.EnsureDir(c.DB)
	}
	p, err := store.DefaultDBPath()
	if err != nil {
		return err
	}
	c.DB = p
	return nil
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DB) == "" {
		return errors.New("db path cannot be empty")
	}
	if _, ok := scoring.ParseFlow(c.Scoring.Flow); !ok {
		return fmt.Errorf("unknown scoring flow %q (want %s or %s)", c.Scoring.Flow, scoring.FlowLive, scoring.FlowReview)
	}
	if c.Sample.Timeout < 0 {
		return fmt.Errorf("sample.timeout must not be negative, got %s", c.Sample.Timeout)
	}
	if c.Sample.MaxTokens <= 0 {
		return errors.New("sample.max-tokens must be > 0")
	}
	if c.Telemetry.Enabled && c.Telemetry.Endpoint == "" {
		return errors.New("telemetry.endpoint is required when telemetry is enabled")
	}
	if err := c.LLM.Validate(); err != nil {
		return err
	}
	return nil
}

// ScoringFlow returns the configured keyword flow.
func (c *Config) ScoringFlow() scoring.Flow {
	f, _ := scoring.ParseFlow(c.Scoring.Flow)
	return f
}

// QuestionBank returns the override bank from Questions.File, or the
// built-in one.
func (c *Config) QuestionBank() (*question.Bank, error) {
	if c.Questions.File == "" {
		return question.Builtin(), nil
	}
	b, err := question.LoadFile(c.Questions.File)
	if err != nil {
		return nil, fmt.Errorf("question bank %s: %w", c.Questions.File, err)
	}
	return b, nil
}
