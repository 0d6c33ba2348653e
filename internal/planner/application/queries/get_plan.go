// Package queries contains the planner's read operations.
package queries

import (
	"context"
	"time"

	"github.com/google/uuid"

	plannerDomain "github.com/ayaanrathod/studybalance/internal/planner/domain"
)

// GetPlanQuery retrieves the study plan for a user on a calendar day.
type GetPlanQuery struct {
	UserID uuid.UUID
	Date   time.Time
}

// GetPlanHandler handles the GetPlanQuery.
type GetPlanHandler struct {
	planRepo plannerDomain.Repository
}

// NewGetPlanHandler creates a new handler.
func NewGetPlanHandler(planRepo plannerDomain.Repository) *GetPlanHandler {
	return &GetPlanHandler{planRepo: planRepo}
}

// Handle executes the query.
func (h *GetPlanHandler) Handle(ctx context.Context, query GetPlanQuery) (*plannerDomain.StudyPlan, error) {
	date := time.Date(query.Date.Year(), query.Date.Month(), query.Date.Day(), 0, 0, 0, 0, query.Date.Location())
	return h.planRepo.FindByUserAndDate(ctx, query.UserID, date)
}

// ListPlansQuery retrieves all plans for a user, most recent first.
type ListPlansQuery struct {
	UserID uuid.UUID
}

// ListPlansHandler handles the ListPlansQuery.
type ListPlansHandler struct {
	planRepo plannerDomain.Repository
}

// NewListPlansHandler creates a new handler.
func NewListPlansHandler(planRepo plannerDomain.Repository) *ListPlansHandler {
	return &ListPlansHandler{planRepo: planRepo}
}

// Handle executes the query.
func (h *ListPlansHandler) Handle(ctx context.Context, query ListPlansQuery) ([]*plannerDomain.StudyPlan, error) {
	return h.planRepo.FindByUser(ctx, query.UserID)
}
