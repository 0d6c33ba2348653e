// Package app wires the application's dependencies into a container shared
// by the CLI and the worker.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	calendarApp "github.com/ayaanrathod/studybalance/internal/calendar/application"
	"github.com/ayaanrathod/studybalance/internal/calendar/infrastructure/caldav"
	"github.com/ayaanrathod/studybalance/internal/calendar/infrastructure/gcal"
	inboxCommands "github.com/ayaanrathod/studybalance/internal/inbox/application/commands"
	inboxQueries "github.com/ayaanrathod/studybalance/internal/inbox/application/queries"
	inboxServices "github.com/ayaanrathod/studybalance/internal/inbox/application/services"
	inboxDomain "github.com/ayaanrathod/studybalance/internal/inbox/domain"
	inboxCache "github.com/ayaanrathod/studybalance/internal/inbox/infrastructure/cache"
	inboxMail "github.com/ayaanrathod/studybalance/internal/inbox/infrastructure/mail"
	plannerCommands "github.com/ayaanrathod/studybalance/internal/planner/application/commands"
	plannerQueries "github.com/ayaanrathod/studybalance/internal/planner/application/queries"
	plannerServices "github.com/ayaanrathod/studybalance/internal/planner/application/services"
	plannerDomain "github.com/ayaanrathod/studybalance/internal/planner/domain"
	sharedApplication "github.com/ayaanrathod/studybalance/internal/shared/application"
	"github.com/ayaanrathod/studybalance/internal/shared/infrastructure/database"
	"github.com/ayaanrathod/studybalance/internal/shared/infrastructure/eventbus"
	"github.com/ayaanrathod/studybalance/internal/shared/infrastructure/migrations"
	"github.com/ayaanrathod/studybalance/internal/shared/infrastructure/outbox"
	"github.com/ayaanrathod/studybalance/internal/toolkit"
	wellnessCommands "github.com/ayaanrathod/studybalance/internal/wellness/application/commands"
	wellnessServices "github.com/ayaanrathod/studybalance/internal/wellness/services"
	"github.com/ayaanrathod/studybalance/pkg/config"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	DBConn     database.Connection
	UnitOfWork sharedApplication.UnitOfWork

	AnalysisCache *inboxCache.RedisCache

	PlanRepo     plannerDomain.Repository
	AnalysisRepo inboxDomain.Repository
	OutboxRepo   outbox.Repository

	EventPublisher  eventbus.Publisher
	OutboxProcessor *outbox.Processor

	CalendarSyncer *caldav.Syncer
	ToolkitClient  *toolkit.Client

	// Planner
	CreatePlanHandler *plannerCommands.CreatePlanHandler
	SyncPlanHandler   *plannerCommands.SyncPlanHandler
	GetPlanHandler    *plannerQueries.GetPlanHandler
	ListPlansHandler  *plannerQueries.ListPlansHandler

	// Inbox
	AnalyzeInboxHandler      *inboxCommands.AnalyzeInboxHandler
	GetLatestAnalysisHandler *inboxQueries.GetLatestAnalysisHandler
	ListAnalysesHandler      *inboxQueries.ListAnalysesHandler

	// Wellness
	PublishDueNudgesHandler *wellnessCommands.PublishDueNudgesHandler
	SendNudgeHandler        *wellnessCommands.SendNudgeHandler
}

// NewContainer creates and wires all application dependencies. CalDAV,
// toolkit, Redis and RabbitMQ are optional: an unset URL leaves the
// corresponding capability disabled rather than failing startup.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := database.NewConnection(ctx, database.Config{
		URL:        cfg.DatabaseURL,
		SQLitePath: database.DefaultSQLitePath(),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := migrations.Run(ctx, conn); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	c := &Container{
		Config:     cfg,
		Logger:     logger,
		DBConn:     conn,
		UnitOfWork: database.NewUnitOfWork(conn),
	}

	factory := NewRepositoryFactory(conn)
	planRepo, err := factory.PlanRepository()
	if err != nil {
		return nil, err
	}
	analysisRepo, err := factory.AnalysisRepository()
	if err != nil {
		return nil, err
	}
	outboxRepo, err := factory.OutboxRepository()
	if err != nil {
		return nil, err
	}
	c.PlanRepo = planRepo
	c.AnalysisRepo = analysisRepo
	c.OutboxRepo = outboxRepo

	c.EventPublisher = newPublisher(cfg, logger)
	if cfg.OutboxProcessorEnabled {
		processorCfg := outbox.DefaultProcessorConfig()
		processorCfg.PollInterval = cfg.OutboxPollInterval
		processorCfg.BatchSize = cfg.OutboxBatchSize
		processorCfg.MaxRetries = cfg.OutboxMaxRetries
		c.OutboxProcessor = outbox.NewProcessor(outboxRepo, c.EventPublisher, processorCfg, logger)
	}

	if cfg.ToolkitBaseURL != "" {
		c.ToolkitClient, err = toolkit.NewClient(toolkit.Config{
			BaseURL:      cfg.ToolkitBaseURL,
			ClientID:     cfg.ToolkitClientID,
			ClientSecret: cfg.ToolkitClientSecret,
			TokenURL:     cfg.ToolkitTokenURL,
			UserID:       cfg.ToolkitUserEmail,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("create toolkit client: %w", err)
		}
	}

	// Calendar: busy events in, study blocks out. Busy reads prefer CalDAV,
	// then fall back to the toolkit's calendar tools, then an empty
	// calendar. Sync writes are CalDAV-only.
	var busySource plannerServices.BusySource = emptyBusySource{}
	var planSink plannerServices.PlanSink
	switch {
	case cfg.CalDAVURL != "":
		c.CalendarSyncer = caldav.NewSyncer(cfg.CalDAVURL, cfg.CalDAVUsername, cfg.CalDAVPassword, logger)
		if cfg.CalDAVCalendar != "" {
			c.CalendarSyncer = c.CalendarSyncer.WithCalendarPath(cfg.CalDAVCalendar)
		}
		busySource = calendarApp.NewBusyProvider(c.CalendarSyncer, logger)
		planSink = calendarApp.NewPlanWriter(c.CalendarSyncer, logger)
	case c.ToolkitClient != nil:
		busySource = gcal.NewBusySource(c.ToolkitClient, logger)
	}

	breakPolicy := plannerDomain.DefaultBreakPolicy()
	breakPolicy.MinBreak = cfg.MinBreak
	breakPolicy.BreakEvery = cfg.BreakEvery
	breakPolicy.MaxConsecutiveStudy = cfg.MaxConsecutiveStudy

	c.CreatePlanHandler = plannerCommands.NewCreatePlanHandler(planRepo, busySource,
		outboxRepo, c.UnitOfWork, breakPolicy, plannerDomain.DefaultScorePolicy())
	c.GetPlanHandler = plannerQueries.NewGetPlanHandler(planRepo)
	c.ListPlansHandler = plannerQueries.NewListPlansHandler(planRepo)
	if planSink != nil {
		c.SyncPlanHandler = plannerCommands.NewSyncPlanHandler(planRepo, planSink)
	}

	var analysisCache inboxServices.AnalysisCache
	if cfg.RedisURL != "" {
		cache, err := inboxCache.NewRedisCache(cfg.RedisURL, cfg.AnalysisCacheTTL)
		if err != nil {
			logger.Warn("redis cache disabled", "error", err)
		} else {
			c.AnalysisCache = cache
			analysisCache = cache
		}
	}

	if c.ToolkitClient != nil {
		c.AnalyzeInboxHandler = inboxCommands.NewAnalyzeInboxHandler(
			analysisRepo,
			inboxMail.NewToolkitSource(c.ToolkitClient),
			inboxServices.NewAnalyzer(),
			analysisCache,
			outboxRepo,
			c.UnitOfWork,
			logger,
		)
		c.SendNudgeHandler = wellnessCommands.NewSendNudgeHandler(c.ToolkitClient, logger)
	}
	c.GetLatestAnalysisHandler = inboxQueries.NewGetLatestAnalysisHandler(analysisRepo)
	c.ListAnalysesHandler = inboxQueries.NewListAnalysesHandler(analysisRepo)

	c.PublishDueNudgesHandler = wellnessCommands.NewPublishDueNudgesHandler(
		planRepo, wellnessServices.NewNudgePlanner(), c.EventPublisher, logger)

	return c, nil
}

// Close releases all held resources.
func (c *Container) Close() {
	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}
	if c.EventPublisher != nil {
		_ = c.EventPublisher.Close()
	}
	if c.AnalysisCache != nil {
		_ = c.AnalysisCache.Close()
	}
	if c.DBConn != nil {
		_ = c.DBConn.Close()
	}
}

func newPublisher(cfg *config.Config, logger *slog.Logger) eventbus.Publisher {
	if cfg.RabbitMQURL == "" {
		return eventbus.NewNoopPublisher(logger)
	}
	publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
	if err != nil {
		logger.Warn("rabbitmq unavailable, events will not be published", "error", err)
		return eventbus.NewNoopPublisher(logger)
	}
	return publisher
}

// emptyBusySource reports no calendar commitments. Used when neither a
// CalDAV account nor the toolkit is configured.
type emptyBusySource struct{}

func (emptyBusySource) BusyEvents(context.Context, uuid.UUID, plannerDomain.Window) ([]plannerDomain.BusyEvent, error) {
	return nil, nil
}
