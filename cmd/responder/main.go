package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/tcpsum/internal/observability"
	"github.com/danmuck/tcpsum/internal/responder"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "responder: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	observability.InitLogger("responder")

	cfg, err := loadServiceConfig(os.Getenv(EnvConfigPath))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := observability.ServeMetrics(ctx, cfg.MetricsAddr); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	r, err := responder.New(cfg.Responder)
	if err != nil {
		return err
	}
	return r.Run(ctx)
}
