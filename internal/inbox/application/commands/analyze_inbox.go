// Package commands contains the inbox context's write operations.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ayaanrathod/studybalance/internal/inbox/application/services"
	inboxDomain "github.com/ayaanrathod/studybalance/internal/inbox/domain"
	sharedApplication "github.com/ayaanrathod/studybalance/internal/shared/application"
	"github.com/ayaanrathod/studybalance/internal/shared/infrastructure/outbox"
)

// Default fetch size for inbox scans.
const defaultEmailLimit = 50

// AnalyzeInboxCommand requests a fresh scan of the user's inbox.
type AnalyzeInboxCommand struct {
	UserID       uuid.UUID
	LookbackDays int

	// Force skips the cache and always fetches from the mail provider.
	Force bool
}

// AnalyzeInboxHandler handles the AnalyzeInboxCommand.
type AnalyzeInboxHandler struct {
	analysisRepo inboxDomain.Repository
	mailSource   services.MailSource
	analyzer     *services.Analyzer
	cache        services.AnalysisCache
	outboxRepo   outbox.Repository
	uow          sharedApplication.UnitOfWork
	logger       *slog.Logger
}

// NewAnalyzeInboxHandler creates a new handler. The cache is optional.
func NewAnalyzeInboxHandler(
	analysisRepo inboxDomain.Repository,
	mailSource services.MailSource,
	analyzer *services.Analyzer,
	cache services.AnalysisCache,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	logger *slog.Logger,
) *AnalyzeInboxHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalyzeInboxHandler{
		analysisRepo: analysisRepo,
		mailSource:   mailSource,
		analyzer:     analyzer,
		cache:        cache,
		outboxRepo:   outboxRepo,
		uow:          uow,
		logger:       logger,
	}
}

// Handle executes the command.
func (h *AnalyzeInboxHandler) Handle(ctx context.Context, cmd AnalyzeInboxCommand) (*inboxDomain.Analysis, error) {
	if cmd.LookbackDays <= 0 {
		cmd.LookbackDays = 7
	}

	if !cmd.Force && h.cache != nil {
		cached, err := h.cache.Get(ctx, cmd.UserID.String())
		if err != nil {
			h.logger.Warn("analysis cache lookup failed", "error", err)
		} else if cached != nil {
			h.logger.Debug("serving cached inbox analysis", "analyzed_at", cached.AnalyzedAt())
			return cached, nil
		}
	}

	messages, err := h.mailSource.ListEmails(ctx, defaultEmailLimit)
	if err != nil {
		return nil, fmt.Errorf("fetch emails: %w", err)
	}

	report := h.analyzer.Analyze(messages, time.Now().UTC(), cmd.LookbackDays)

	analysis, err := inboxDomain.NewAnalysis(cmd.UserID, time.Now().UTC(), cmd.LookbackDays, report)
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(ctx context.Context) error {
		if err := h.analysisRepo.Save(ctx, analysis); err != nil {
			return err
		}
		for _, event := range analysis.DomainEvents() {
			msg, err := outbox.NewMessage(event)
			if err != nil {
				return err
			}
			if err := h.outboxRepo.Save(ctx, msg); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	analysis.ClearDomainEvents()

	if h.cache != nil {
		if err := h.cache.Set(ctx, analysis); err != nil {
			h.logger.Warn("analysis cache write failed", "error", err)
		}
	}

	return analysis, nil
}
