// Package llm abstracts the text-generation backends used to write sample
// interview answers.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates a completion for a Request.
type Provider interface {
	// Generate sends req to the backend. When req.Schema is set the
	// response Content is JSON validated against it; otherwise Content is
	// the raw completion text.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier requests are sent to.
	ModelID() string
}

// Request describes one completion call.
type Request struct {
	// System sets the model's role, e.g. "You are an interview coach".
	System string

	// Messages is the conversation. Sample answers are single-turn, so
	// this usually holds one user message.
	Messages []Message

	// Schema, when set, asks the backend for JSON matching it.
	Schema *Schema

	MaxTokens int

	// Temperature ranges 0.0-1.0. Zero leaves the backend default.
	Temperature float64
}

// Message is one conversation turn.
type Message struct {
	Role    Role
	Content string
}

// Role is the sender of a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a named JSON Schema for structured output.
type Schema struct {
	// Name identifies the schema to the backend, kebab-case.
	Name string

	Description string

	// Definition is the JSON Schema document.
	Definition map[string]any
}

// Response is a completed generation.
type Response struct {
	Content json.RawMessage
	Usage   Usage

	// Model is the model that actually served the request.
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage counts tokens for one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}

// resolveModel maps a friendly alias to a provider model ID. Unknown names
// pass through so full model IDs work too.
func resolveModel(name string, aliases map[string]string) string {
	if id, ok := aliases[name]; ok {
		return id
	}
	return name
}
