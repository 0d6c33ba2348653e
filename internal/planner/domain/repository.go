package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines persistence for study plans.
type Repository interface {
	// Save persists a plan. Returns ErrPlanExists when the user already
	// has a plan for the same date.
	Save(ctx context.Context, plan *StudyPlan) error

	// FindByID retrieves a plan by its ID. Returns ErrPlanNotFound when
	// it does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*StudyPlan, error)

	// FindByUserAndDate retrieves the plan for a user on a calendar day.
	// Returns ErrPlanNotFound when none exists.
	FindByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*StudyPlan, error)

	// FindByUser retrieves all plans for a user, most recent first.
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*StudyPlan, error)

	// Delete removes a plan and its blocks.
	Delete(ctx context.Context, id uuid.UUID) error
}
