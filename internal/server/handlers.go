package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/speechforge/internal/db"
	"github.com/jonathan/speechforge/internal/memory"
	"github.com/jonathan/speechforge/internal/pipeline"
	"github.com/jonathan/speechforge/internal/stages"
)

// RunRequest is the body for POST /run/stream
type RunRequest struct {
	Topic  string `json:"topic"`
	Length string `json:"length"`
}

// handleRunStream starts a pipeline run and streams its events via SSE
func (s *Server) handleRunStream(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.Topic == "" {
		s.errorResponse(w, http.StatusBadRequest, "topic is required")
		return
	}
	if req.Length == "" {
		req.Length = string(stages.PresetMedium)
	}
	preset, err := stages.ParsePreset(req.Length)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var runID uuid.UUID
	if s.db != nil {
		runID, err = s.db.CreateRun(r.Context(), req.Topic, string(preset))
		if err != nil {
			s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
			return
		}
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		if s.db != nil {
			if dbErr := s.db.CompleteRun(r.Context(), runID, db.StatusFailed); dbErr != nil {
				log.Printf("Error marking run failed: %v", dbErr)
			}
		}
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	log.Printf("Starting streaming run for topic %q (%s)", req.Topic, preset)

	ctx := r.Context()
	run := s.runner.Start(ctx, req.Topic, preset)

	var research, drafts, judgment, final string
	for ev := range run.Events() {
		switch {
		case ev.Kind == pipeline.KindResearch && ev.Status == pipeline.StatusDone:
			research = ev.Text
		case ev.Kind == pipeline.KindDrafts && ev.Status == pipeline.StatusDone:
			drafts = joinDrafts(ev.Drafts)
		case ev.Kind == pipeline.KindJudge && ev.Status == pipeline.StatusDone && ev.Verdict != nil:
			judgment = ev.Verdict.Judgment
		case ev.Kind == pipeline.KindDone:
			final = ev.Text
		}
		if err := sse.WriteStage(ev); err != nil {
			log.Printf("Error writing SSE event: %v", err)
		}
	}

	if err := run.Err(); err != nil {
		log.Printf("Run failed: %v", err)
		sse.WriteError(err.Error())
		if s.db != nil {
			if dbErr := s.db.CompleteRun(ctx, runID, db.StatusFailed); dbErr != nil {
				log.Printf("Error marking run failed: %v", dbErr)
			}
		}
		return
	}

	completedID := ""
	if s.db != nil {
		s.saveArtifacts(r, runID, map[string]string{
			db.StageResearch:    research,
			db.StageDrafts:      drafts,
			db.StageJudgment:    judgment,
			db.StageFinalScript: final,
		})
		completedID = runID.String()
	}
	sse.WriteComplete(completedID, final)
}

// joinDrafts renders the fan-out results as one labeled text artifact
func joinDrafts(drafts []pipeline.DraftResult) string {
	var b strings.Builder
	for i, d := range drafts {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&b, "%s:\n%s\n", d.Label, d.Text)
	}
	return b.String()
}

// saveArtifacts persists the run's stage outputs; persistence failures are
// logged but do not fail a run that already produced its script.
func (s *Server) saveArtifacts(r *http.Request, runID uuid.UUID, artifacts map[string]string) {
	ctx := r.Context()
	for stage, text := range artifacts {
		if text == "" {
			continue
		}
		if err := s.db.SaveTextArtifact(ctx, runID, stage, text); err != nil {
			log.Printf("Error saving %s artifact: %v", stage, err)
		}
	}
	if err := s.db.CompleteRun(ctx, runID, db.StatusCompleted); err != nil {
		log.Printf("Error completing run: %v", err)
	}
}

// handleOpenings lists the retained opening paragraphs, oldest first
func (s *Server) handleOpenings(w http.ResponseWriter, r *http.Request) {
	openings, err := s.store.Recent(r.Context(), memory.MaxOpenings)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to read openings: "+err.Error())
		return
	}
	if openings == nil {
		openings = []string{}
	}
	s.jsonResponse(w, http.StatusOK, map[string][]string{"openings": openings})
}

// handleListRuns lists recent persisted runs
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Run persistence is not configured")
		return
	}

	runs, err := s.db.ListRuns(r.Context(), 50)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	s.jsonResponse(w, http.StatusOK, map[string][]db.Run{"runs": runs})
}

// handleGetRun returns one persisted run
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Run persistence is not configured")
		return
	}

	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid run ID format")
		return
	}

	run, err := s.db.GetRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if run == nil {
		s.errorResponse(w, http.StatusNotFound, "Run not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, run)
}

// handleDeleteRun deletes a run and its artifacts
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Run persistence is not configured")
		return
	}

	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid run ID format")
		return
	}

	if err := s.db.DeleteRun(r.Context(), runID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			s.errorResponse(w, http.StatusNotFound, "Run not found")
			return
		}
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleRunScript returns the final script artifact for a run
func (s *Server) handleRunScript(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Run persistence is not configured")
		return
	}

	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid run ID format")
		return
	}

	text, err := s.db.GetTextArtifact(r.Context(), runID, db.StageFinalScript)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if text == "" {
		s.errorResponse(w, http.StatusNotFound, "Script not found")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(text)); err != nil {
		log.Printf("Error writing script response: %v", err)
	}
}
