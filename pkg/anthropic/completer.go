package anthropic

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
)

// CompleterConfig holds the per-call parameters of a Completer.
type CompleterConfig struct {
	Model       string
	MaxTokens   int64
	Temperature float64
	Cache       bool
}

// Completer turns a system prompt and a user question into answer text
// with a single Messages call.
type Completer struct {
	client Client
	cfg    CompleterConfig
}

// NewCompleter returns a Completer over client.
func NewCompleter(client Client, cfg CompleterConfig) *Completer {
	return &Completer{client: client, cfg: cfg}
}

// Complete sends one request and returns the concatenated text blocks of
// the reply. The instructions and data context are sent as separate system
// blocks so the context can be cached.
func (c *Completer) Complete(ctx context.Context, instructions, dataContext, question string) (string, error) {
	temp := c.cfg.Temperature
	req := MessageRequest{
		Model:       c.cfg.Model,
		MaxTokens:   c.cfg.MaxTokens,
		System:      BuildSystemBlocks(instructions, dataContext, c.cfg.Cache),
		Question:    question,
		Temperature: &temp,
	}

	resp, err := c.client.CreateMessage(ctx, req)
	if err != nil {
		return "", eris.Wrap(err, "anthropic: complete")
	}
	resp.Usage.LogCost(c.cfg.Model, uuid.NewString())

	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	if sb.Len() == 0 {
		return "", eris.Errorf("anthropic: empty completion (stop reason %q)", resp.StopReason)
	}
	return sb.String(), nil
}
