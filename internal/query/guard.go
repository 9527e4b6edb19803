package query

import (
	"context"

	"github.com/sells-group/home-capacity-viewer/internal/resilience"
)

// Guarded is a Completer behind a circuit breaker. While the breaker is
// open, Complete fails with resilience.ErrOpen without calling the model.
type Guarded struct {
	next    Completer
	breaker *resilience.Breaker
}

// Guard wraps c with b.
func Guard(c Completer, b *resilience.Breaker) *Guarded {
	return &Guarded{next: c, breaker: b}
}

// Complete implements Completer.
func (g *Guarded) Complete(ctx context.Context, instructions, dataContext, question string) (string, error) {
	return resilience.Execute(ctx, g.breaker, func(ctx context.Context) (string, error) {
		return g.next.Complete(ctx, instructions, dataContext, question)
	})
}
