package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/flashgest/internal/aggregate"
	"github.com/dgallion1/flashgest/internal/flashcard"
	"github.com/dgallion1/flashgest/internal/generate"
)

const maxBackoff = 30 * time.Second

// RetryPolicy bounds the attempts made for one generation call.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	Timeout     time.Duration // Per attempt; 0 disables.
	Jitter      bool
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Multiplier:  2,
		Timeout:     30 * time.Second,
		Jitter:      true,
	}
}

// Backoff returns the delay after attempt n (0-indexed):
// BaseDelay*Multiplier^n capped at 30s, plus up to 50% jitter.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	mult := p.Multiplier
	if mult < 1 {
		mult = 1
	}
	d := float64(p.BaseDelay) * math.Pow(mult, float64(attempt))
	if d > float64(maxBackoff) {
		d = float64(maxBackoff)
	}
	base := time.Duration(d)
	if p.Jitter && base >= 2 {
		base += time.Duration(rand.Int64N(int64(base) / 2))
	}
	return base
}

// IsRetryable checks if an error is worth retrying.
func IsRetryable(err error) bool {
	var retryErr *generate.RetryableError
	return errors.As(err, &retryErr) || errors.Is(err, context.DeadlineExceeded)
}

// Retrying applies a RetryPolicy around a generator.
type Retrying struct {
	Generator aggregate.Generator
	Policy    RetryPolicy
	Log       *slog.Logger
}

func (r *Retrying) Name() string { return generate.NameOf(r.Generator) }

func (r *Retrying) Generate(ctx context.Context, text string, maxQuestions int) ([]flashcard.Candidate, error) {
	attempts := max(r.Policy.MaxAttempts, 1)
	var lastErr error
	for attempt := range attempts {
		cands, err := r.attempt(ctx, text, maxQuestions)
		if err == nil {
			return cands, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !IsRetryable(err) || attempt == attempts-1 {
			break
		}

		delay := r.Policy.Backoff(attempt)
		if r.Log != nil {
			r.Log.Warn("retryable generation error", "attempt", attempt, "delay_ms", delay.Milliseconds(), "error", err)
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return nil, lastErr
}

func (r *Retrying) attempt(ctx context.Context, text string, maxQuestions int) ([]flashcard.Candidate, error) {
	if r.Policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Policy.Timeout)
		defer cancel()
	}
	return r.Generator.Generate(ctx, text, maxQuestions)
}
