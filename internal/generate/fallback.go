package generate

import (
	"context"
	"log/slog"

	"github.com/dgallion1/flashgest/internal/aggregate"
	"github.com/dgallion1/flashgest/internal/flashcard"
)

// Fallback tries Primary and, when it fails or yields no candidates, asks
// Secondary instead. A primary error is logged, not returned, unless the
// secondary fails too.
type Fallback struct {
	Primary   aggregate.Generator
	Secondary aggregate.Generator
	Log       *slog.Logger
}

func (f *Fallback) Name() string { return NameOf(f.Primary) }

func (f *Fallback) Generate(ctx context.Context, text string, maxQuestions int) ([]flashcard.Candidate, error) {
	cands, err := f.Primary.Generate(ctx, text, maxQuestions)
	if err == nil && len(cands) > 0 {
		return cands, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err != nil && f.Log != nil {
		f.Log.Warn("primary generator failed, using fallback",
			"primary", NameOf(f.Primary), "fallback", NameOf(f.Secondary), "error", err)
	}
	return f.Secondary.Generate(ctx, text, maxQuestions)
}
