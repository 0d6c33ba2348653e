// The worker drains the transactional outbox to RabbitMQ and consumes
// wellness nudges, delivering each one as an email.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ayaanrathod/studybalance/internal/app"
	"github.com/ayaanrathod/studybalance/internal/shared/infrastructure/eventbus"
	wellnessCommands "github.com/ayaanrathod/studybalance/internal/wellness/application/commands"
	"github.com/ayaanrathod/studybalance/pkg/config"
	"github.com/ayaanrathod/studybalance/pkg/observability"
)

func main() {
	logger := observability.LoggerFromEnv()
	logger.Info("starting studybalance worker")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize application", "error", err)
		os.Exit(1)
	}
	defer container.Close()

	if container.OutboxProcessor != nil {
		container.OutboxProcessor.Start(ctx)
		logger.Info("outbox processor started",
			"poll_interval", cfg.OutboxPollInterval,
			"batch_size", cfg.OutboxBatchSize,
		)
	}

	if err := consumeNudges(ctx, cfg, container, logger); err != nil && ctx.Err() == nil {
		logger.Error("nudge consumer stopped", "error", err)
		os.Exit(1)
	}

	logger.Info("worker stopped")
}

// consumeNudges blocks until the context is canceled, delivering each due
// nudge as an email through the toolkit.
func consumeNudges(ctx context.Context, cfg *config.Config, container *app.Container, logger *slog.Logger) error {
	if container.SendNudgeHandler == nil {
		logger.Warn("toolkit not configured; nudges will be consumed but not delivered")
	}

	consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
		URL:       cfg.RabbitMQURL,
		QueueName: "studybalance.nudges",
		Logger:    logger,
	})
	if err != nil {
		return err
	}
	defer consumer.Close()

	if err := consumer.Bind(wellnessCommands.RoutingKeyNudgeDue); err != nil {
		return err
	}

	return consumer.Consume(ctx, func(ctx context.Context, routingKey string, payload []byte) error {
		var envelope wellnessCommands.NudgeEnvelope
		if err := json.Unmarshal(payload, &envelope); err != nil {
			logger.Error("dropping malformed nudge", "error", err)
			return nil
		}

		if container.SendNudgeHandler == nil {
			logger.Info("nudge received but toolkit not configured",
				"type", envelope.Nudge.Type,
				"due_at", envelope.Nudge.DueAt,
			)
			return nil
		}

		_, err := container.SendNudgeHandler.Handle(ctx, wellnessCommands.SendNudgeCommand{
			To:    cfg.ToolkitUserEmail,
			Nudge: &envelope.Nudge,
		})
		return err
	})
}
