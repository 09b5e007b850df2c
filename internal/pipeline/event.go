// Package pipeline provides the high-level orchestration for the script
// generation process: research, parallel drafts, judging, and the
// sequential critique-enhancement loop, with progress streamed as events.
package pipeline

// Kind names the category of pipeline phase an event belongs to.
type Kind string

// Phase kinds, in pipeline order.
const (
	KindResearch    Kind = "research"
	KindDrafts      Kind = "drafts"
	KindJudge       Kind = "judge"
	KindCritique    Kind = "critique"
	KindEnhancement Kind = "enhancement"
	KindDone        Kind = "done"
)

// Status marks whether a phase is starting or finished. Every phase emits
// exactly one running event followed by exactly one done event, unless the
// run fails first.
type Status string

// Phase statuses.
const (
	StatusRunning Status = "running"
	StatusDone    Status = "done"
)

// DraftResult is the output of one fan-out branch. Its index in the result
// collection equals the variant's submission index, not completion order.
type DraftResult struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// JudgeVerdict is the parsed outcome of the draft comparison call.
// Ambiguous is set when no winner line could be parsed; the verdict then
// defaults to the first draft rather than failing the run.
type JudgeVerdict struct {
	WinnerIndex int    `json:"winner_index"`
	WinnerLabel string `json:"winner_label"`
	WinnerText  string `json:"winner_text"`
	Judgment    string `json:"judgment"`
	BorrowNotes string `json:"borrow_notes"`
	Ambiguous   bool   `json:"ambiguous"`
}

// Event is one progress update from a pipeline run.
type Event struct {
	Phase      string        `json:"phase"`
	Kind       Kind          `json:"kind"`
	Status     Status        `json:"status"`
	StageIndex int           `json:"stage_index,omitempty"`
	Text       string        `json:"text,omitempty"`
	Drafts     []DraftResult `json:"drafts,omitempty"`
	Verdict    *JudgeVerdict `json:"verdict,omitempty"`
}
