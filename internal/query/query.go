// Package query answers natural-language questions about the forecasts by
// grounding a single LLM completion in the formatted tables.
package query

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/home-capacity-viewer/internal/llmcontext"
	"github.com/sells-group/home-capacity-viewer/internal/monitoring"
)

// EmptyQueryReply is returned for a blank question without calling the LLM.
const EmptyQueryReply = "Please enter a question about the water or energy supply data."

// Completer is the LLM boundary: one blocking call from prompt to text.
type Completer interface {
	Complete(ctx context.Context, instructions, dataContext, question string) (string, error)
}

// Handler answers questions against a fixed data context.
type Handler struct {
	completer    Completer
	instructions string
	context      string
	metrics      *monitoring.Metrics
}

// NewHandler renders the context once; it is reused for every question.
func NewHandler(c Completer, ctx llmcontext.Context, metrics *monitoring.Metrics) *Handler {
	return &Handler{
		completer:    c,
		instructions: llmcontext.Instructions,
		context:      ctx.Render(),
		metrics:      metrics,
	}
}

// Answer returns the LLM's reply. It never fails: a completion error is
// logged and returned to the user as an apology that includes the detail.
func (h *Handler) Answer(ctx context.Context, question string) string {
	start := h.metrics.Now()
	if strings.TrimSpace(question) == "" {
		h.metrics.ObserveQuery(monitoring.OutcomeEmpty, start)
		return EmptyQueryReply
	}

	answer, err := h.completer.Complete(ctx, h.instructions, h.context, question)
	if err != nil {
		h.metrics.ObserveQuery(monitoring.OutcomeError, start)
		zap.L().Error("query: completion failed", zap.Error(err))
		return fmt.Sprintf("Sorry, I encountered an error while processing your query: %v", err)
	}
	h.metrics.ObserveQuery(monitoring.OutcomeAnswered, start)
	return answer
}

// Paragraphs splits an answer on blank lines, drops empty paragraphs and
// strips markdown emphasis markers.
func Paragraphs(answer string) []string {
	var out []string
	for _, p := range strings.Split(answer, "\n\n") {
		if strings.TrimSpace(p) == "" {
			continue
		}
		p = strings.ReplaceAll(p, "**", "")
		p = strings.ReplaceAll(p, "*", "")
		out = append(out, p)
	}
	return out
}
