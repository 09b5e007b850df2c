//go:build integration

package db

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/jonathan/speechforge/internal/memory"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	db, err := Connect(context.Background(), dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	_, _ = db.pool.Exec(context.Background(), "DELETE FROM openings")
	return db
}

func TestIntegration_RunLifecycle(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	runID, err := db.CreateRun(ctx, "Photosynthesis", "short")
	if err != nil {
		t.Fatalf("CreateRun failed: %v", err)
	}
	defer db.DeleteRun(ctx, runID)

	if err := db.SaveTextArtifact(ctx, runID, StageFinalScript, "final text"); err != nil {
		t.Fatalf("SaveTextArtifact failed: %v", err)
	}

	text, err := db.GetTextArtifact(ctx, runID, StageFinalScript)
	if err != nil {
		t.Fatalf("GetTextArtifact failed: %v", err)
	}
	if text != "final text" {
		t.Errorf("artifact text = %q, want 'final text'", text)
	}

	if err := db.CompleteRun(ctx, runID, StatusCompleted); err != nil {
		t.Fatalf("CompleteRun failed: %v", err)
	}

	run, err := db.GetRun(ctx, runID)
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if run.Status != StatusCompleted {
		t.Errorf("Status = %q, want 'completed'", run.Status)
	}
	if run.CompletedAt == nil {
		t.Error("CompletedAt should be set")
	}
}

func TestIntegration_OpeningStore_AppendAndRecent(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()
	store := db.Openings()

	for i := 1; i <= memory.MaxOpenings+5; i++ {
		if err := store.Append(ctx, fmt.Sprintf("opening %d", i)); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	all, err := store.Recent(ctx, memory.MaxOpenings+10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(all) != memory.MaxOpenings {
		t.Errorf("retained %d openings, want %d", len(all), memory.MaxOpenings)
	}
	if all[0] != "opening 6" {
		t.Errorf("oldest retained = %q, want 'opening 6'", all[0])
	}
	if all[len(all)-1] != fmt.Sprintf("opening %d", memory.MaxOpenings+5) {
		t.Errorf("newest retained = %q", all[len(all)-1])
	}

	last5, err := store.Recent(ctx, 5)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(last5) != 5 {
		t.Fatalf("Recent(5) returned %d openings", len(last5))
	}
	if last5[0] != fmt.Sprintf("opening %d", memory.MaxOpenings+1) {
		t.Errorf("Recent(5) starts at %q", last5[0])
	}
}

func TestIntegration_OpeningStore_ClipsLongOpenings(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()
	store := db.Openings()

	if err := store.Append(ctx, strings.Repeat("x", memory.OpeningLength*2)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	openings, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(openings) != 1 {
		t.Fatalf("Recent returned %d openings", len(openings))
	}
	if len(openings[0]) != memory.OpeningLength {
		t.Errorf("stored opening length = %d, want %d", len(openings[0]), memory.OpeningLength)
	}
}
