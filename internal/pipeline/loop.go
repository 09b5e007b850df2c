package pipeline

import (
	"context"
	"fmt"

	"github.com/jonathan/speechforge/internal/llm"
	"github.com/jonathan/speechforge/internal/prompts"
	"github.com/jonathan/speechforge/internal/stages"
)

// runCritique issues one diagnostic call against the current text before
// the next enhancement stage consumes it.
func (r *Runner) runCritique(ctx context.Context, topic, text, completedStage, nextStage string) (string, error) {
	stage := r.Catalog.Critique()
	critique, err := r.invokeStage(ctx, stage, map[string]string{
		"Topic":          topic,
		"CompletedStage": completedStage,
		"NextStage":      nextStage,
		"Text":           text,
	})
	if err != nil {
		return "", fmt.Errorf("critique before %q failed: %w", nextStage, err)
	}
	return critique, nil
}

// runEnhancement rewrites the current text using the latest critique and
// the original research brief. Its output becomes the new current text.
func (r *Runner) runEnhancement(ctx context.Context, stage stages.StageConfig, topic, research, critique, previousOutput string) (string, error) {
	text, err := r.invokeStage(ctx, stage, map[string]string{
		"Topic":          topic,
		"Research":       research,
		"Critique":       critique,
		"PreviousOutput": previousOutput,
	})
	if err != nil {
		return "", fmt.Errorf("%s failed: %w", stage.Name, err)
	}
	return text, nil
}

// invokeStage renders a stage's user template and issues the call with the
// stage's own provider, model, and temperature.
func (r *Runner) invokeStage(ctx context.Context, stage stages.StageConfig, data map[string]string) (string, error) {
	return r.Client.Invoke(ctx, llm.Request{
		Provider:    stage.Provider,
		System:      stage.System,
		User:        prompts.Format(stage.UserTemplate, data),
		Temperature: stage.Temperature,
		Model:       stage.Model,
	})
}
