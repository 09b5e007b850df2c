package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/speechforge/internal/llm"
	"github.com/jonathan/speechforge/internal/stages"
)

// testVariants returns variants with distinct temperatures so stub
// responses can be keyed per branch (requests don't carry labels).
func testVariants(n int) []stages.DraftVariant {
	variants := make([]stages.DraftVariant, n)
	for i := range variants {
		variants[i] = stages.DraftVariant{
			Label:       fmt.Sprintf("Variant %d", i),
			Provider:    llm.ProviderGemini,
			Model:       "test-model",
			Temperature: float32(i+1) / 10,
		}
	}
	return variants
}

func TestRunDrafts_OrderPreservedUnderShuffledCompletion(t *testing.T) {
	variants := testVariants(3)
	stub := &stubClient{
		respond: func(_ int, req llm.Request) (string, error) {
			// Invert completion order: the first-submitted variant
			// finishes last.
			switch req.Temperature {
			case variants[0].Temperature:
				time.Sleep(40 * time.Millisecond)
			case variants[1].Temperature:
				time.Sleep(20 * time.Millisecond)
			}
			return fmt.Sprintf("text at %.1f", req.Temperature), nil
		},
	}
	r := &Runner{Client: stub, Catalog: loadCatalog(t)}
	draftStage, err := r.Catalog.Draft(stages.PresetShort)
	require.NoError(t, err)

	results, err := r.runDrafts(context.Background(), draftStage, variants, "content")
	require.NoError(t, err)

	require.Len(t, results, len(variants))
	for i, variant := range variants {
		assert.Equal(t, variant.Label, results[i].Label)
		assert.Equal(t, fmt.Sprintf("text at %.1f", variant.Temperature), results[i].Text)
	}
}

func TestRunDrafts_FailureDrainsInFlightCalls(t *testing.T) {
	variants := testVariants(3)
	var completed atomic.Int32
	stub := &stubClient{
		respond: func(_ int, req llm.Request) (string, error) {
			defer completed.Add(1)
			if req.Temperature == variants[1].Temperature {
				return "", errors.New("variant 2 exploded")
			}
			time.Sleep(20 * time.Millisecond)
			return "ok", nil
		},
	}
	r := &Runner{Client: stub, Catalog: loadCatalog(t)}
	draftStage, err := r.Catalog.Draft(stages.PresetShort)
	require.NoError(t, err)

	_, err = r.runDrafts(context.Background(), draftStage, variants, "content")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "variant 2 exploded")
	assert.Contains(t, err.Error(), variants[1].Label)
	// Every branch ran to completion before the error propagated.
	assert.Equal(t, int32(3), completed.Load())
}

func TestRunDrafts_OneResultPerVariant(t *testing.T) {
	for _, k := range []int{1, 2, 3, 5} {
		t.Run(fmt.Sprintf("%d variants", k), func(t *testing.T) {
			stub := &stubClient{
				respond: func(n int, _ llm.Request) (string, error) {
					return fmt.Sprintf("draft %d", n), nil
				},
			}
			r := &Runner{Client: stub, Catalog: loadCatalog(t)}
			draftStage, err := r.Catalog.Draft(stages.PresetShort)
			require.NoError(t, err)

			results, err := r.runDrafts(context.Background(), draftStage, testVariants(k), "content")
			require.NoError(t, err)
			assert.Len(t, results, k)
		})
	}
}
