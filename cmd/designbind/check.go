package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/crafthq/designbind/internal/catalog"
	"github.com/crafthq/designbind/internal/config"
	"github.com/crafthq/designbind/internal/platform"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Probe platform and provider connectivity",
	Long:  `Check that the platform API answers and report which design providers have usable credentials.`,
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	if cfgFile == "" {
		return fmt.Errorf("config file is required (use -c flag)")
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pc := platform.NewClient(cfg.Platform.BaseURL, cfg.Platform.Token)

	health, err := pc.Health(ctx)
	if err != nil {
		fmt.Printf("platform: UNREACHABLE (%v)\n", err)
		return fmt.Errorf("platform check failed")
	}
	fmt.Printf("platform: %s (%s)\n", health.Status, cfg.Platform.BaseURL)

	registry := catalog.NewRegistry(
		catalog.NewBuiltin(),
		catalog.NewFigma(platform.NewConnectionToken(pc, string(catalog.ProviderFigma), cfg.Providers.Figma.Token)),
		catalog.NewCanva(platform.NewConnectionToken(pc, string(catalog.ProviderCanva), cfg.Providers.Canva.Token)),
	)

	for _, p := range registry.Providers() {
		src, err := registry.Source(p)
		if err != nil {
			continue
		}
		connected, err := src.IsConnected(ctx)
		switch {
		case err != nil:
			fmt.Printf("%s: check failed (%v)\n", p, err)
		case connected:
			fmt.Printf("%s: connected\n", p)
		default:
			fmt.Printf("%s: not connected\n", p)
		}
	}

	return nil
}
