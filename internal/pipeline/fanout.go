package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/speechforge/internal/llm"
	"github.com/jonathan/speechforge/internal/stages"
)

// runDrafts generates one draft per variant concurrently. Results land in a
// fixed-size slice indexed by submission order, so "Draft A" always refers
// to variant 0 irrespective of which branch finishes first. A failure in
// any branch fails the whole stage, but all in-flight calls are drained
// before the first error propagates; the group deliberately does not cancel
// sibling calls mid-flight.
func (r *Runner) runDrafts(ctx context.Context, stage stages.StageConfig, variants []stages.DraftVariant, userContent string) ([]DraftResult, error) {
	results := make([]DraftResult, len(variants))

	var g errgroup.Group
	for i, variant := range variants {
		g.Go(func() error {
			text, err := r.Client.Invoke(ctx, llm.Request{
				Provider:    variant.Provider,
				System:      stage.System,
				User:        userContent,
				Temperature: variant.Temperature,
				Model:       variant.Model,
			})
			if err != nil {
				return fmt.Errorf("draft %q failed: %w", variant.Label, err)
			}
			results[i] = DraftResult{Label: variant.Label, Text: text}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
