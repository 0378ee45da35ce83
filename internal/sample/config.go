package sample

import "time"

// Config controls sample-answer generation.
type Config struct {
	MaxTokens   int           `mapstructure:"max-tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"` // 0 = no bound
}

// DefaultConfig returns the defaults used by the interview runner.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   700,
		Temperature: 0.7,
		Timeout:     45 * time.Second,
	}
}
