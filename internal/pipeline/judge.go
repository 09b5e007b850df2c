package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jonathan/speechforge/internal/llm"
	"github.com/jonathan/speechforge/internal/prompts"
)

var (
	winnerRe = regexp.MustCompile(`(?i)WINNER:\s*\[?([A-Z])`)
	borrowRe = regexp.MustCompile(`(?is)BORROW FROM LOSERS?:\s*\n(.*)`)
)

// draftLabel maps a submission index to its heading letter (A=0, B=1, ...).
func draftLabel(i int) string {
	return string(rune('A' + i))
}

// runJudge issues one comparison call across all drafts and parses the
// structured verdict from the reply.
func (r *Runner) runJudge(ctx context.Context, topic string, drafts []DraftResult) (JudgeVerdict, error) {
	stage := r.Catalog.Judge()

	var block strings.Builder
	for i, d := range drafts {
		if i > 0 {
			block.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&block, "DRAFT %s:\n%s\n", draftLabel(i), d.Text)
	}

	judgment, err := r.Client.Invoke(ctx, llm.Request{
		Provider: stage.Provider,
		System:   stage.System,
		User: prompts.Format(stage.UserTemplate, map[string]string{
			"Topic":  topic,
			"Drafts": block.String(),
		}),
		Temperature: stage.Temperature,
		Model:       stage.Model,
	})
	if err != nil {
		return JudgeVerdict{}, fmt.Errorf("judge failed: %w", err)
	}

	return parseVerdict(judgment, drafts), nil
}

// parseVerdict extracts the winner and borrow notes from the judgment text.
// When no valid winner line is found the verdict defaults to the first
// draft and is flagged Ambiguous so callers can observe the soft failure.
func parseVerdict(judgment string, drafts []DraftResult) JudgeVerdict {
	winnerIndex := 0
	ambiguous := true

	if m := winnerRe.FindStringSubmatch(judgment); m != nil {
		idx := int(strings.ToUpper(m[1])[0] - 'A')
		if idx >= 0 && idx < len(drafts) {
			winnerIndex = idx
			ambiguous = false
		}
	}

	borrowNotes := ""
	if m := borrowRe.FindStringSubmatch(judgment); m != nil {
		borrowNotes = strings.TrimSpace(m[1])
	}

	return JudgeVerdict{
		WinnerIndex: winnerIndex,
		WinnerLabel: drafts[winnerIndex].Label,
		WinnerText:  drafts[winnerIndex].Text,
		Judgment:    judgment,
		BorrowNotes: borrowNotes,
		Ambiguous:   ambiguous,
	}
}
