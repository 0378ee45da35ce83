package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/mockprep/internal/store"
)

type factoryOptions struct {
	events   store.EventRepo
	log      *zap.Logger
	fallback func(Request) MockResponse
}

// Option customizes NewProvider.
type Option func(*factoryOptions)

// WithEventRepo records every request in repo.
func WithEventRepo(repo store.EventRepo) Option {
	return func(o *factoryOptions) { o.events = repo }
}

// WithLogger sets the logger for request logging.
func WithLogger(l *zap.Logger) Option {
	return func(o *factoryOptions) { o.log = l }
}

// WithMockFallback sets the response generator used by the mock provider.
func WithMockFallback(fn func(Request) MockResponse) Option {
	return func(o *factoryOptions) { o.fallback = fn }
}

// NewProvider builds the configured Provider wrapped as
// caller → timeout → retry → logging → backend. It returns nil, nil when no provider
// is configured.
func NewProvider(ctx context.Context, cfg Config, opts ...Option) (Provider, error) {
	var o factoryOptions
	for _, opt := range opts {
		opt(&o)
	}

	var base Provider
	var err error

	switch cfg.Provider {
	case "":
		return nil, nil
	case ProviderAnthropic:
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case ProviderOpenAI:
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case ProviderOpenRouter:
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case ProviderGemini:
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case ProviderMock:
		mock := NewMockProvider()
		mock.Fallback = o.fallback
		base = mock
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	logged := WithLogging(base, cfg.Provider, o.events, o.log)
	return WithTimeout(WithRetry(logged, cfg.Retry, o.log), cfg.Timeout), nil
}

type timeoutProvider struct {
	next    Provider
	timeout time.Duration
}

// WithTimeout bounds every Generate call on p by d. A non-positive d
// returns p unchanged.
func WithTimeout(p Provider, d time.Duration) Provider {
	if d <= 0 {
		return p
	}
	return &timeoutProvider{next: p, timeout: d}
}

func (t *timeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.next.Generate(ctx, req)
}

func (t *timeoutProvider) ModelID() string { return t.next.ModelID() }
