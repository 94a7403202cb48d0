package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sylverant/psoserv/internal/config"
	"github.com/sylverant/psoserv/internal/ship"
)

func main() {
	var configPath, envPath string

	root := &cobra.Command{
		Use:   "ship",
		Short: "Runs a ship game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, envPath)
		},
	}
	root.Flags().StringVar(&configPath, "config", "config/ship.yaml", "path to config file")
	root.Flags().StringVar(&envPath, "env", ".env", "path to .env file for secrets")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath, envPath string) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))
	slog.Info("psoserv ship starting")

	cfg, err := config.LoadShip(configPath, envPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.SharedSecret == "" {
		return fmt.Errorf("PSOSERV_SHIPGATE_SECRET must be set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := ship.NewServer(cfg)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	return srv.Run(ctx)
}
