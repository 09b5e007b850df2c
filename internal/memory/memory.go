// Package memory provides the bounded history of prior script openings
// used to force stylistic novelty in new draft generations.
package memory

import (
	"context"
	"strings"

	"github.com/jonathan/speechforge/internal/prompts"
)

// Capacity limits.
const (
	// MaxOpenings is the FIFO capacity of the stored history.
	MaxOpenings = 20
	// OpeningLength is the number of leading characters kept per script.
	OpeningLength = 300
	// RecallDepth is how many recent openings are injected into draft prompts.
	RecallDepth = 5
)

// Store persists script openings across runs. Implementations must make
// Append an atomic read-modify-write; concurrent runs may share one store.
type Store interface {
	// Recent returns up to n openings, oldest first.
	Recent(ctx context.Context, n int) ([]string, error)
	// Append records one opening, evicting the oldest beyond MaxOpenings.
	Append(ctx context.Context, opening string) error
}

// Clip reduces a finished script to the stored opening excerpt. The cut is
// counted in runes so a multi-byte character is never split.
func Clip(text string) string {
	if runes := []rune(text); len(runes) > OpeningLength {
		text = string(runes[:OpeningLength])
	}
	return strings.TrimSpace(text)
}

// Preamble renders prior openings into the instructional prefix prepended
// to every draft prompt. Returns "" when there is no history.
func Preamble(openings []string) string {
	if len(openings) == 0 {
		return ""
	}
	return prompts.Format(prompts.MustGet("differentiation.json", "preamble"), map[string]string{
		"PreviousOpenings": strings.Join(openings, "\n---\n"),
	})
}
