// Package commands contains the wellness context's write operations.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ayaanrathod/studybalance/internal/shared/infrastructure/eventbus"
	"github.com/ayaanrathod/studybalance/internal/wellness/domain"
	"github.com/ayaanrathod/studybalance/internal/wellness/services"

	plannerDomain "github.com/ayaanrathod/studybalance/internal/planner/domain"
)

// RoutingKeyNudgeDue is the topic nudges are delivered on.
const RoutingKeyNudgeDue = "wellness.nudge.due"

// NudgeEnvelope is the wire shape of a published nudge.
type NudgeEnvelope struct {
	UserID string       `json:"user_id"`
	Nudge  domain.Nudge `json:"nudge"`
}

// PublishDueNudgesCommand publishes every nudge for the user's plan that
// falls due within [Now, Now+Horizon). Run it periodically.
type PublishDueNudgesCommand struct {
	UserID  uuid.UUID
	Date    time.Time
	Now     time.Time
	Horizon time.Duration
}

// PublishDueNudgesHandler handles the PublishDueNudgesCommand.
type PublishDueNudgesHandler struct {
	planRepo  plannerDomain.Repository
	planner   *services.NudgePlanner
	publisher eventbus.Publisher
	logger    *slog.Logger
}

// NewPublishDueNudgesHandler creates a new handler.
func NewPublishDueNudgesHandler(
	planRepo plannerDomain.Repository,
	planner *services.NudgePlanner,
	publisher eventbus.Publisher,
	logger *slog.Logger,
) *PublishDueNudgesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublishDueNudgesHandler{
		planRepo:  planRepo,
		planner:   planner,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle derives the plan's nudges and publishes the due ones. It returns
// the published nudges.
func (h *PublishDueNudgesHandler) Handle(ctx context.Context, cmd PublishDueNudgesCommand) ([]domain.Nudge, error) {
	if cmd.Horizon <= 0 {
		cmd.Horizon = 15 * time.Minute
	}

	plan, err := h.planRepo.FindByUserAndDate(ctx, cmd.UserID, cmd.Date)
	if err != nil {
		return nil, err
	}

	nudges, err := h.planner.NudgesForPlan(plan)
	if err != nil {
		return nil, err
	}

	var published []domain.Nudge
	for _, nudge := range nudges {
		if nudge.DueAt.Before(cmd.Now) || !nudge.DueAt.Before(cmd.Now.Add(cmd.Horizon)) {
			continue
		}

		payload, err := json.Marshal(NudgeEnvelope{
			UserID: cmd.UserID.String(),
			Nudge:  nudge,
		})
		if err != nil {
			return published, fmt.Errorf("encode nudge: %w", err)
		}
		if err := h.publisher.Publish(ctx, RoutingKeyNudgeDue, payload); err != nil {
			return published, fmt.Errorf("publish nudge: %w", err)
		}
		published = append(published, nudge)
	}

	h.logger.Info("published due nudges",
		"user_id", cmd.UserID,
		"derived", len(nudges),
		"published", len(published),
	)
	return published, nil
}
