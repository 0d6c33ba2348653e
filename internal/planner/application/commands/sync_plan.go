package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ayaanrathod/studybalance/internal/planner/application/services"
	plannerDomain "github.com/ayaanrathod/studybalance/internal/planner/domain"
)

// SyncPlanCommand pushes a day's study blocks to the external calendar.
type SyncPlanCommand struct {
	UserID uuid.UUID
	Date   time.Time
}

// SyncPlanHandler handles the SyncPlanCommand.
type SyncPlanHandler struct {
	planRepo plannerDomain.Repository
	planSink services.PlanSink
}

// NewSyncPlanHandler creates a new handler.
func NewSyncPlanHandler(planRepo plannerDomain.Repository, planSink services.PlanSink) *SyncPlanHandler {
	return &SyncPlanHandler{planRepo: planRepo, planSink: planSink}
}

// Handle executes the command.
func (h *SyncPlanHandler) Handle(ctx context.Context, cmd SyncPlanCommand) (*plannerDomain.StudyPlan, error) {
	plan, err := h.planRepo.FindByUserAndDate(ctx, cmd.UserID, startOfDay(cmd.Date))
	if err != nil {
		return nil, err
	}

	if err := h.planSink.WritePlan(ctx, cmd.UserID, plan); err != nil {
		return nil, err
	}
	return plan, nil
}
