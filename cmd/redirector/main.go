package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sylverant/psoserv/internal/config"
	"github.com/sylverant/psoserv/internal/redirector"
)

func main() {
	var configPath, targetHost string

	root := &cobra.Command{
		Use:   "redirector",
		Short: "Redirects incoming PSO clients to the login service",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath, targetHost)
		},
	}
	root.Flags().StringVar(&configPath, "config", "config/redirector.yaml", "path to config file")
	root.Flags().StringVarP(&targetHost, "server", "S", "", "IPv4 address of the login service clients are redirected to")
	_ = root.MarkFlagRequired("server")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(configPath, targetHost string) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})))
	slog.Info("psoserv redirector starting")

	cfg, err := config.LoadRedirector(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if net.ParseIP(targetHost).To4() == nil {
		return fmt.Errorf("-S %q is not an IPv4 address", targetHost)
	}
	cfg.TargetHost = targetHost
	slog.Info("config loaded", "bind", cfg.BindAddress, "target", cfg.TargetHost)

	srv, err := redirector.NewServer(cfg)
	if err != nil {
		return fmt.Errorf("creating redirector: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	return srv.Run(ctx)
}
