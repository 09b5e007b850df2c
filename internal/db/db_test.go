package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStageConstants(t *testing.T) {
	// Verify stage constants are defined
	stages := []string{
		StageResearch,
		StageDrafts,
		StageJudgment,
		StageFinalScript,
	}

	for _, stage := range stages {
		assert.NotEmpty(t, stage, "stage constant should not be empty")
	}
}

func TestRunType(t *testing.T) {
	// Verify Run struct can be instantiated
	run := Run{
		Topic:        "Photosynthesis",
		LengthPreset: "short",
		Status:       StatusRunning,
	}

	assert.Equal(t, "Photosynthesis", run.Topic)
	assert.Equal(t, "short", run.LengthPreset)
	assert.Equal(t, "running", run.Status)
	assert.Nil(t, run.CompletedAt)
}
