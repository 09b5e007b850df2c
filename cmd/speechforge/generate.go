package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/speechforge/internal/llm"
	"github.com/jonathan/speechforge/internal/memory"
	"github.com/jonathan/speechforge/internal/pipeline"
	"github.com/jonathan/speechforge/internal/stages"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a speech script for a topic",
	Long: `Runs the full pipeline for one topic: research, parallel drafting,
judging, and the critique-driven enhancement stages. Stage progress is
printed as it happens and the finished script goes to stdout or --output.`,
	RunE: runGenerate,
}

var (
	generateTopic       string
	generateLength      string
	generateOutput      string
	generateHistoryPath string
	generateVerbose     bool
)

func init() {
	generateCmd.Flags().StringVarP(&generateTopic, "topic", "t", "", "Topic to generate a script for (required)")
	generateCmd.Flags().StringVarP(&generateLength, "length", "l", "medium", "Target length: short, medium, long, or xlong")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "o", "", "Write the final script to this file instead of stdout")
	generateCmd.Flags().StringVar(&generateHistoryPath, "history", "", "Opening history file (optional, defaults to SPEECH_HISTORY_PATH env var or speech_history.json)")
	generateCmd.Flags().BoolVarP(&generateVerbose, "verbose", "v", false, "Print stage outputs as they arrive")
	_ = generateCmd.MarkFlagRequired("topic")

	rootCmd.AddCommand(generateCmd)
}

func runGenerate(_ *cobra.Command, _ []string) error {
	preset, err := stages.ParsePreset(generateLength)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client, err := newRouterFromEnv(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	catalog, err := stages.Load()
	if err != nil {
		return fmt.Errorf("failed to load stage catalog: %w", err)
	}

	runner := &pipeline.Runner{
		Client:  client,
		Catalog: catalog,
		Memory:  memory.NewFileStore(historyPath()),
	}

	run := runner.Start(ctx, generateTopic, preset)

	var final string
	for ev := range run.Events() {
		switch ev.Status {
		case pipeline.StatusRunning:
			fmt.Fprintf(os.Stderr, "==> %s\n", ev.Phase)
		case pipeline.StatusDone:
			fmt.Fprintf(os.Stderr, "    %s done\n", ev.Phase)
		}
		if ev.Kind == pipeline.KindJudge && ev.Status == pipeline.StatusDone && ev.Verdict != nil {
			fmt.Fprintf(os.Stderr, "    winner: draft %s\n", ev.Verdict.WinnerLabel)
			if ev.Verdict.Ambiguous {
				fmt.Fprintln(os.Stderr, "    judge verdict was ambiguous, using the first draft")
			}
		}
		if generateVerbose && ev.Status == pipeline.StatusDone && ev.Text != "" {
			fmt.Fprintf(os.Stderr, "----- %s -----\n%s\n\n", ev.Phase, ev.Text)
		}
		if ev.Kind == pipeline.KindDone {
			final = ev.Text
		}
	}
	if err := run.Err(); err != nil {
		return fmt.Errorf("pipeline failed: %w", err)
	}

	if generateOutput != "" {
		if err := os.WriteFile(generateOutput, []byte(final), 0o644); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Script written to %s\n", generateOutput)
		return nil
	}

	fmt.Println(final)
	return nil
}

// newRouterFromEnv builds a provider router from GEMINI_API_KEY and
// OPENAI_API_KEY. At least one must be set.
func newRouterFromEnv(ctx context.Context) (*llm.Router, error) {
	creds := llm.Credentials{
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
	}
	if creds.GeminiAPIKey == "" && creds.OpenAIAPIKey == "" {
		return nil, fmt.Errorf("at least one of GEMINI_API_KEY or OPENAI_API_KEY must be set")
	}
	return llm.NewRouter(ctx, creds)
}

// historyPath resolves the opening history location: the --history flag,
// then SPEECH_HISTORY_PATH, then a file in the working directory.
func historyPath() string {
	if generateHistoryPath != "" {
		return generateHistoryPath
	}
	if p := os.Getenv("SPEECH_HISTORY_PATH"); p != "" {
		return p
	}
	return "speech_history.json"
}
