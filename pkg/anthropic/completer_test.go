package anthropic

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testCompleterConfig() CompleterConfig {
	return CompleterConfig{
		Model:       "claude-haiku-4-5-20251001",
		MaxTokens:   500,
		Temperature: 0.7,
		Cache:       true,
	}
}

func TestCompleter_Complete(t *testing.T) {
	mc := new(MockClient)
	mc.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req MessageRequest) bool {
		return req.Model == "claude-haiku-4-5-20251001" &&
			req.MaxTokens == 500 &&
			req.Temperature != nil && *req.Temperature == 0.7 &&
			len(req.System) == 2 &&
			req.System[1].CacheControl != nil &&
			req.Question == "Which boroughs improve?"
	})).Return(&MessageResponse{
		Content: []ContentBlock{
			{Type: "text", Text: "Hartlepool: improving"},
			{Type: "tool_use"},
			{Type: "text", Text: "\n\nAllerdale: stable"},
		},
		StopReason: "end_turn",
	}, nil)

	c := NewCompleter(mc, testCompleterConfig())
	got, err := c.Complete(context.Background(), "instructions", "context", "Which boroughs improve?")
	require.NoError(t, err)
	assert.Equal(t, "Hartlepool: improving\n\nAllerdale: stable", got)
	mc.AssertExpectations(t)
}

func TestCompleter_Error(t *testing.T) {
	mc := new(MockClient)
	mc.On("CreateMessage", mock.Anything, mock.Anything).Return(nil, errors.New("quota exceeded"))

	c := NewCompleter(mc, testCompleterConfig())
	_, err := c.Complete(context.Background(), "i", "c", "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestCompleter_EmptyReply(t *testing.T) {
	mc := new(MockClient)
	mc.On("CreateMessage", mock.Anything, mock.Anything).Return(&MessageResponse{StopReason: "max_tokens"}, nil)

	c := NewCompleter(mc, testCompleterConfig())
	_, err := c.Complete(context.Background(), "i", "c", "q")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_tokens")
}
