package llm

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProvider_QueueThenUnavailable(t *testing.T) {
	m := NewMockProvider(MockResponse{Content: json.RawMessage(`"first"`)})

	resp, err := m.Generate(context.Background(), Request{System: "a"})
	require.NoError(t, err)
	assert.Equal(t, `"first"`, string(resp.Content))
	assert.Equal(t, "mock", resp.Model)

	_, err = m.Generate(context.Background(), Request{System: "b"})
	var unavail *ErrProviderUnavailable
	assert.ErrorAs(t, err, &unavail)

	require.Len(t, m.Calls, 2)
	assert.Equal(t, "b", m.Calls[1].System)
}

func TestMockProvider_Fallback(t *testing.T) {
	m := NewMockProvider()
	m.Fallback = func(req Request) MockResponse {
		return MockResponse{Content: json.RawMessage(`"` + req.Messages[0].Content + `"`)}
	}

	resp, err := m.Generate(context.Background(), Request{Messages: []Message{{Role: RoleUser, Content: "echo"}}})
	require.NoError(t, err)
	assert.Equal(t, `"echo"`, string(resp.Content))
}

func TestMockProvider_CancelledContext(t *testing.T) {
	m := NewMockProvider(MockResponse{Content: json.RawMessage(`{}`)})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
}
