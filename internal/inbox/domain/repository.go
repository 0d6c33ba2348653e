package domain

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence for email analyses.
type Repository interface {
	// Save persists an analysis.
	Save(ctx context.Context, analysis *Analysis) error

	// FindLatestByUser retrieves the most recent analysis for a user.
	// Returns ErrAnalysisNotFound when none exists.
	FindLatestByUser(ctx context.Context, userID uuid.UUID) (*Analysis, error)

	// FindByUser retrieves all analyses for a user, most recent first.
	FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Analysis, error)
}
