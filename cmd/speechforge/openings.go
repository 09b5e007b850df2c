package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/speechforge/internal/memory"
)

var openingsCmd = &cobra.Command{
	Use:   "openings",
	Short: "List the retained opening paragraphs",
	Long:  `Prints the opening history used to steer new drafts away from previously generated scripts, oldest first.`,
	RunE:  runOpenings,
}

func init() {
	openingsCmd.Flags().StringVar(&generateHistoryPath, "history", "", "Opening history file (optional, defaults to SPEECH_HISTORY_PATH env var or speech_history.json)")
	rootCmd.AddCommand(openingsCmd)
}

func runOpenings(_ *cobra.Command, _ []string) error {
	store := memory.NewFileStore(historyPath())
	openings, err := store.Recent(context.Background(), memory.MaxOpenings)
	if err != nil {
		return fmt.Errorf("failed to read opening history: %w", err)
	}

	if len(openings) == 0 {
		fmt.Println("No openings recorded yet.")
		return nil
	}

	for i, opening := range openings {
		fmt.Printf("%2d. %s\n", i+1, opening)
	}
	return nil
}
