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
	"github.com/sylverant/psoserv/internal/db"
	"github.com/sylverant/psoserv/internal/shipgate"
)

func main() {
	var configPath, envPath string

	root := &cobra.Command{
		Use:   "shipgate",
		Short: "Runs the ship federation gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, envPath)
		},
	}
	root.Flags().StringVar(&configPath, "config", "config/shipgate.yaml", "path to config file")
	root.Flags().StringVar(&envPath, "env", ".env", "path to .env file for secrets")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath, envPath string) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))
	slog.Info("psoserv shipgate starting")

	cfg, err := config.LoadShipgate(configPath, envPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.SharedSecret == "" {
		return fmt.Errorf("PSOSERV_SHIPGATE_SECRET must be set")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	srv := shipgate.NewServer(cfg, database)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	return srv.Run(ctx)
}
