// Package sample produces model answers for interview questions.
package sample

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/mockprep/internal/llm"
	"github.com/abhisek/mockprep/internal/question"
)

var (
	// ErrUnavailable is returned when no generator is configured.
	ErrUnavailable = errors.New("sample answers unavailable")

	// ErrEmptySample is returned when the model produced no answer text.
	ErrEmptySample = errors.New("empty sample answer")
)

// Fetcher generates a sample answer for a question.
type Fetcher interface {
	GenerateSampleAnswer(ctx context.Context, questionText string, category question.Category) (string, error)
}

// Answer is a generated sample answer.
type Answer struct {
	Text      string   `json:"sample_answer"`
	KeyPoints []string `json:"key_points"`
}

// String renders the answer followed by its key points.
func (a Answer) String() string {
	if len(a.KeyPoints) == 0 {
		return a.Text
	}
	var b strings.Builder
	b.WriteString(a.Text)
	b.WriteString("\n\nKey points:")
	for _, p := range a.KeyPoints {
		b.WriteString("\n- ")
		b.WriteString(p)
	}
	return b.String()
}

// LLMFetcher generates sample answers with an llm.Provider.
type LLMFetcher struct {
	provider llm.Provider
	cfg      Config
}

var _ Fetcher = (*LLMFetcher)(nil)

// NewLLMFetcher returns a fetcher backed by provider.
func NewLLMFetcher(provider llm.Provider, cfg Config) *LLMFetcher {
	return &LLMFetcher{provider: provider, cfg: cfg}
}

// Generate asks the model for a structured sample answer. Requests are
// labeled sample-answer in the event log unless ctx already carries a
// purpose.
func (f *LLMFetcher) Generate(ctx context.Context, questionText string, category question.Category) (*Answer, error) {
	if f == nil || f.provider == nil {
		return nil, ErrUnavailable
	}
	if llm.PurposeFrom(ctx) == "unknown" {
		ctx = llm.WithPurpose(ctx, llm.PurposeSampleAnswer)
	}

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(questionText, category)},
		},
		Schema:      AnswerSchema,
		MaxTokens:   f.cfg.MaxTokens,
		Temperature: f.cfg.Temperature,
	}

	resp, err := f.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("sample answer generation: %w", err)
	}

	var out Answer
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse sample answer: %w", err)
	}
	out.Text = strings.TrimSpace(out.Text)
	if out.Text == "" {
		return nil, ErrEmptySample
	}
	return &out, nil
}

func (f *LLMFetcher) GenerateSampleAnswer(ctx context.Context, questionText string, category question.Category) (string, error) {
	a, err := f.Generate(ctx, questionText, category)
	if err != nil {
		return "", err
	}
	return a.String(), nil
}
