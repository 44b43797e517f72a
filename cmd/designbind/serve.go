package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crafthq/designbind/internal/app"
	"github.com/crafthq/designbind/internal/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the designbind service",
	Long:  `Start the HTTP API server, the job tracker and the metrics endpoint.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	if cfgFile == "" {
		return fmt.Errorf("config file is required (use -c flag)")
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	application, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	return application.Run(context.Background())
}
