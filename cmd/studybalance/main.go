package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ayaanrathod/studybalance/adapter/cli"
	"github.com/ayaanrathod/studybalance/internal/app"
	"github.com/ayaanrathod/studybalance/pkg/config"
	"github.com/ayaanrathod/studybalance/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cli.SetLogger(logger)

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	// The CLI publishes events through the outbox; drain it in-process so
	// single-shot commands do not leave events behind for the worker.
	if container.OutboxProcessor != nil {
		container.OutboxProcessor.Start(ctx)
	}

	cli.SetContainer(container)
	cli.Execute(ctx)
}
