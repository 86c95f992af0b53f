package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/tcpsum/internal/initiator"
	"github.com/danmuck/tcpsum/internal/observability"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "initiator: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	observability.InitLogger("initiator")

	cfg, err := loadClientConfig(os.Getenv(EnvConfigPath))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := initiator.New(cfg)
	if err != nil {
		return err
	}
	return c.Run(ctx, os.Stdin, os.Stdout)
}
