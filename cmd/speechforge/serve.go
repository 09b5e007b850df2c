package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/speechforge/internal/memory"
	"github.com/jonathan/speechforge/internal/pipeline"
	"github.com/jonathan/speechforge/internal/server"
	"github.com/jonathan/speechforge/internal/stages"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that streams speech generation runs over
Server-Sent Events. Set DATABASE_URL to persist runs and artifacts.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	client, err := newRouterFromEnv(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	catalog, err := stages.Load()
	if err != nil {
		return fmt.Errorf("failed to load stage catalog: %w", err)
	}

	// The file store is the default; server.New swaps in the shared
	// database-backed openings store when DATABASE_URL is set.
	runner := &pipeline.Runner{
		Client:  client,
		Catalog: catalog,
		Memory:  memory.NewFileStore(historyPath()),
	}

	cfg := server.Config{
		Port:        servePort,
		DatabaseURL: os.Getenv("DATABASE_URL"),
	}

	srv, err := server.New(cfg, runner)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
