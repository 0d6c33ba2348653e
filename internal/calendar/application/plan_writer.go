package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	plannerDomain "github.com/ayaanrathod/studybalance/internal/planner/domain"
)

// BlockSyncer pushes schedule entries to the remote calendar.
type BlockSyncer interface {
	Sync(ctx context.Context, userID uuid.UUID, entries []ScheduleEntry) (*SyncResult, error)
}

// PlanWriter publishes a study plan's study blocks to the remote calendar.
// It implements the planner's PlanSink port. Break blocks stay local.
type PlanWriter struct {
	syncer BlockSyncer
	logger *slog.Logger
}

// NewPlanWriter creates a plan writer backed by a calendar syncer.
func NewPlanWriter(syncer BlockSyncer, logger *slog.Logger) *PlanWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlanWriter{syncer: syncer, logger: logger}
}

// WritePlan pushes the plan's study blocks to the calendar.
func (w *PlanWriter) WritePlan(ctx context.Context, userID uuid.UUID, plan *plannerDomain.StudyPlan) error {
	blocks := plan.StudyBlocks()
	entries := make([]ScheduleEntry, 0, len(blocks))
	for _, b := range blocks {
		entries = append(entries, ScheduleEntry{
			ID:    entryID(plan.ID(), b),
			Title: fmt.Sprintf("Study: %s", b.Subject()),
			Description: fmt.Sprintf("Subject: %s\nDifficulty: %s\nWellness score: %.1f",
				b.Subject(), b.Difficulty(), plan.WellnessScore()),
			StartTime: b.Start(),
			EndTime:   b.End(),
		})
	}

	result, err := w.syncer.Sync(ctx, userID, entries)
	if err != nil {
		return fmt.Errorf("sync plan to calendar: %w", err)
	}

	w.logger.Info("study plan synced to calendar",
		"plan_id", plan.ID(),
		"created", result.Created,
		"updated", result.Updated,
		"failed", result.Failed,
	)
	return nil
}

// entryID derives a stable event ID from the plan and block so re-syncing
// the same plan upserts instead of duplicating.
func entryID(planID uuid.UUID, block plannerDomain.Block) uuid.UUID {
	name := fmt.Sprintf("%s/%s", block.Subject(), block.Start().UTC().Format("2006-01-02T15:04"))
	return uuid.NewSHA1(planID, []byte(name))
}
