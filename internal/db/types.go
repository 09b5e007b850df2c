package db

import (
	"time"

	"github.com/google/uuid"
)

// Run represents a speech run record
type Run struct {
	ID           uuid.UUID  `json:"id"`
	Topic        string     `json:"topic"`
	LengthPreset string     `json:"length_preset"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// Run status values
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Stage constants for known artifact types
const (
	StageResearch    = "research"
	StageDrafts      = "drafts"
	StageJudgment    = "judgment"
	StageFinalScript = "final_script"
)
