// Package generate provides the flashcard generators: a hosted Claude model,
// a local Ollama model, a remote generation service and a rule-based
// generator that needs no model at all. Model-backed generators parse their
// free-form output with flashcard.Parse.
package generate

import (
	"fmt"

	"github.com/dgallion1/flashgest/internal/aggregate"
)

// Named is implemented by generators that can report the model behind them.
type Named interface {
	Name() string
}

// NameOf returns the model name of gen, or "unknown".
func NameOf(gen aggregate.Generator) string {
	if n, ok := gen.(Named); ok {
		return n.Name()
	}
	return "unknown"
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
