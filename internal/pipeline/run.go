package pipeline

import (
	"context"
	"fmt"

	"github.com/jonathan/speechforge/internal/llm"
	"github.com/jonathan/speechforge/internal/memory"
	"github.com/jonathan/speechforge/internal/prompts"
	"github.com/jonathan/speechforge/internal/stages"
)

// Runner drives a topic through the full pipeline. Zero-value overrides
// fall back to the catalog's defaults.
type Runner struct {
	Client  llm.Client
	Catalog *stages.Catalog
	// Memory is optional; when nil no differentiation history is read or
	// written.
	Memory memory.Store
	// Variants overrides the catalog's draft fan-out variants when non-nil.
	Variants []stages.DraftVariant
	// Enhancements overrides the catalog's enhancement stages when non-nil.
	Enhancements []stages.StageConfig
}

// Run is one in-flight pipeline invocation. The events channel carries the
// ordered phase stream and closes when the run ends, normally or not.
type Run struct {
	events chan Event
	done   chan struct{}
	err    error
}

// Events returns the ordered stream of phase-transition events. The channel
// closes after the final done event, or early on failure.
func (r *Run) Events() <-chan Event {
	return r.events
}

// Err blocks until the run has ended and reports the first fatal error, or
// nil on a normal completion.
func (r *Run) Err() error {
	<-r.done
	return r.err
}

// Start launches one pipeline run. Cancelling ctx aborts the run between
// phases and inside any provider call that honors cancellation.
func (r *Runner) Start(ctx context.Context, topic string, preset stages.LengthPreset) *Run {
	run := &Run{
		events: make(chan Event),
		done:   make(chan struct{}),
	}
	go func() {
		run.err = r.execute(ctx, topic, preset, run.events)
		close(run.events)
		close(run.done)
	}()
	return run
}

// execute performs the phase sequence, sending events as each phase starts
// and finishes. Any failure aborts immediately: no done event for the
// in-flight phase, no subsequent phases, and no memory append.
func (r *Runner) execute(ctx context.Context, topic string, preset stages.LengthPreset, events chan<- Event) error {
	emit := func(ev Event) error {
		select {
		case events <- ev:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	researchStage, err := r.Catalog.Research(preset)
	if err != nil {
		return err
	}
	draftStage, err := r.Catalog.Draft(preset)
	if err != nil {
		return err
	}
	variants := r.Variants
	if variants == nil {
		variants = r.Catalog.Variants()
	}
	enhancements := r.Enhancements
	if enhancements == nil {
		enhancements = r.Catalog.Enhancements()
	}
	if len(variants) == 0 {
		return fmt.Errorf("no draft variants configured")
	}

	// Stage 0: research.
	if err := emit(Event{Phase: researchStage.Name, Kind: KindResearch, Status: StatusRunning}); err != nil {
		return err
	}
	research, err := r.invokeStage(ctx, researchStage, map[string]string{"Topic": topic})
	if err != nil {
		return fmt.Errorf("research failed: %w", err)
	}
	if err := emit(Event{Phase: researchStage.Name, Kind: KindResearch, Status: StatusDone, Text: research}); err != nil {
		return err
	}

	// Stage 1: parallel drafts, with the differentiation preamble prepended
	// when prior openings exist.
	if err := emit(Event{Phase: draftStage.Name, Kind: KindDrafts, Status: StatusRunning}); err != nil {
		return err
	}
	userContent := prompts.Format(draftStage.UserTemplate, map[string]string{
		"Topic":    topic,
		"Research": research,
	})
	if r.Memory != nil {
		openings, err := r.Memory.Recent(ctx, memory.RecallDepth)
		if err != nil {
			return fmt.Errorf("reading opening history failed: %w", err)
		}
		userContent = memory.Preamble(openings) + userContent
	}
	drafts, err := r.runDrafts(ctx, draftStage, variants, userContent)
	if err != nil {
		return err
	}
	if err := emit(Event{Phase: draftStage.Name, Kind: KindDrafts, Status: StatusDone, Drafts: drafts}); err != nil {
		return err
	}

	// Judge: select the best draft.
	judgeStage := r.Catalog.Judge()
	if err := emit(Event{Phase: judgeStage.Name, Kind: KindJudge, Status: StatusRunning}); err != nil {
		return err
	}
	verdict, err := r.runJudge(ctx, topic, drafts)
	if err != nil {
		return err
	}
	if err := emit(Event{Phase: judgeStage.Name, Kind: KindJudge, Status: StatusDone, Verdict: &verdict}); err != nil {
		return err
	}

	// Enhancement stages, each preceded by a critique of the current text.
	current := verdict.WinnerText
	prevName := judgeStage.Name
	for i, stage := range enhancements {
		critiquePhase := fmt.Sprintf("Critique: %s", stage.Name)
		if err := emit(Event{Phase: critiquePhase, Kind: KindCritique, Status: StatusRunning, StageIndex: i}); err != nil {
			return err
		}
		critique, err := r.runCritique(ctx, topic, current, prevName, stage.Name)
		if err != nil {
			return err
		}
		if err := emit(Event{Phase: critiquePhase, Kind: KindCritique, Status: StatusDone, StageIndex: i, Text: critique}); err != nil {
			return err
		}

		if err := emit(Event{Phase: stage.Name, Kind: KindEnhancement, Status: StatusRunning, StageIndex: i}); err != nil {
			return err
		}
		current, err = r.runEnhancement(ctx, stage, topic, research, critique, current)
		if err != nil {
			return err
		}
		if err := emit(Event{Phase: stage.Name, Kind: KindEnhancement, Status: StatusDone, StageIndex: i, Text: current}); err != nil {
			return err
		}
		prevName = stage.Name
	}

	// Persist the opening only after the whole run has succeeded.
	if r.Memory != nil {
		if err := r.Memory.Append(ctx, current); err != nil {
			return fmt.Errorf("saving opening failed: %w", err)
		}
	}

	return emit(Event{Phase: "Complete", Kind: KindDone, Status: StatusDone, Text: current})
}
