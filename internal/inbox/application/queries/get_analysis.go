// Package queries contains the inbox context's read operations.
package queries

import (
	"context"

	"github.com/google/uuid"

	inboxDomain "github.com/ayaanrathod/studybalance/internal/inbox/domain"
)

// GetLatestAnalysisQuery retrieves the most recent inbox analysis for a user.
type GetLatestAnalysisQuery struct {
	UserID uuid.UUID
}

// GetLatestAnalysisHandler handles the GetLatestAnalysisQuery.
type GetLatestAnalysisHandler struct {
	analysisRepo inboxDomain.Repository
}

// NewGetLatestAnalysisHandler creates a new handler.
func NewGetLatestAnalysisHandler(analysisRepo inboxDomain.Repository) *GetLatestAnalysisHandler {
	return &GetLatestAnalysisHandler{analysisRepo: analysisRepo}
}

// Handle executes the query.
func (h *GetLatestAnalysisHandler) Handle(ctx context.Context, query GetLatestAnalysisQuery) (*inboxDomain.Analysis, error) {
	return h.analysisRepo.FindLatestByUser(ctx, query.UserID)
}

// ListAnalysesQuery retrieves recent analyses for a user, most recent first.
type ListAnalysesQuery struct {
	UserID uuid.UUID
	Limit  int
}

// ListAnalysesHandler handles the ListAnalysesQuery.
type ListAnalysesHandler struct {
	analysisRepo inboxDomain.Repository
}

// NewListAnalysesHandler creates a new handler.
func NewListAnalysesHandler(analysisRepo inboxDomain.Repository) *ListAnalysesHandler {
	return &ListAnalysesHandler{analysisRepo: analysisRepo}
}

// Handle executes the query.
func (h *ListAnalysesHandler) Handle(ctx context.Context, query ListAnalysesQuery) ([]*inboxDomain.Analysis, error) {
	return h.analysisRepo.FindByUser(ctx, query.UserID, query.Limit)
}
