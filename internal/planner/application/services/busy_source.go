// Package services defines the planner's outbound ports.
package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/ayaanrathod/studybalance/internal/planner/domain"
)

// BusySource supplies existing calendar commitments for a planning window.
// An empty slice means the calendar explicitly reported no events; fetch
// failures must surface as errors, never as an empty day.
type BusySource interface {
	BusyEvents(ctx context.Context, userID uuid.UUID, window domain.Window) ([]domain.BusyEvent, error)
}

// PlanSink writes generated study blocks back to an external calendar.
type PlanSink interface {
	WritePlan(ctx context.Context, userID uuid.UUID, plan *domain.StudyPlan) error
}
