package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/speechforge/internal/llm"
)

func twoDrafts() []DraftResult {
	return []DraftResult{
		{Label: "Draft A", Text: "text of draft a"},
		{Label: "Draft B", Text: "text of draft b"},
	}
}

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name          string
		judgment      string
		wantIndex     int
		wantAmbiguous bool
	}{
		{
			name:      "plain winner line",
			judgment:  "SCORES:\nDraft A: ...\n\nWINNER: B\n",
			wantIndex: 1,
		},
		{
			name:      "lowercase winner",
			judgment:  "winner: b",
			wantIndex: 1,
		},
		{
			name:      "bracketed winner",
			judgment:  "WINNER: [A]",
			wantIndex: 0,
		},
		{
			name:          "no winner line defaults to first",
			judgment:      "Both drafts are excellent in their own ways.",
			wantIndex:     0,
			wantAmbiguous: true,
		},
		{
			name:          "letter out of range defaults to first",
			judgment:      "WINNER: F",
			wantIndex:     0,
			wantAmbiguous: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			drafts := twoDrafts()
			verdict := parseVerdict(tt.judgment, drafts)

			assert.Equal(t, tt.wantIndex, verdict.WinnerIndex)
			assert.Equal(t, tt.wantAmbiguous, verdict.Ambiguous)
			assert.Equal(t, drafts[tt.wantIndex].Label, verdict.WinnerLabel)
			assert.Equal(t, drafts[tt.wantIndex].Text, verdict.WinnerText)
			assert.Equal(t, tt.judgment, verdict.Judgment)
		})
	}
}

func TestParseVerdict_BorrowNotes(t *testing.T) {
	judgment := "WINNER: A\n\nBORROW FROM LOSERS:\n- the closing image from B\n- B's pacing in the middle third"

	verdict := parseVerdict(judgment, twoDrafts())

	assert.Equal(t, 0, verdict.WinnerIndex)
	assert.Equal(t, "- the closing image from B\n- B's pacing in the middle third", verdict.BorrowNotes)
}

func TestParseVerdict_NoBorrowSection(t *testing.T) {
	verdict := parseVerdict("WINNER: B", twoDrafts())
	assert.Empty(t, verdict.BorrowNotes)
}

func TestRunJudge_BuildsLabeledPrompt(t *testing.T) {
	stub := &stubClient{
		respond: func(_ int, _ llm.Request) (string, error) {
			return "WINNER: B", nil
		},
	}
	r := &Runner{Client: stub, Catalog: loadCatalog(t)}

	verdict, err := r.runJudge(context.Background(), "Photosynthesis", twoDrafts())
	require.NoError(t, err)
	assert.Equal(t, 1, verdict.WinnerIndex)

	calls := stub.recorded()
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].User, "Photosynthesis")
	assert.Contains(t, calls[0].User, "DRAFT A:\ntext of draft a")
	assert.Contains(t, calls[0].User, "DRAFT B:\ntext of draft b")
}

func TestDraftLabel(t *testing.T) {
	assert.Equal(t, "A", draftLabel(0))
	assert.Equal(t, "B", draftLabel(1))
	assert.Equal(t, "C", draftLabel(2))
}
