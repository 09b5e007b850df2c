// Package main provides the SpeechForge command-line interface.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "speechforge",
	Short: "Multi-stage speech script generator",
	Long:  "SpeechForge turns a topic into a polished spoken-word script through a research, drafting, judging, and enhancement pipeline backed by multiple LLM providers.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
