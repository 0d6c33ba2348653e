package services

import (
	"context"

	"github.com/ayaanrathod/studybalance/internal/inbox/domain"
)

// MailSource fetches recent emails from the external mail provider.
type MailSource interface {
	ListEmails(ctx context.Context, limit int) ([]domain.EmailMessage, error)
}

// AnalysisCache holds recent analysis results so repeated lookups skip the
// mail provider.
type AnalysisCache interface {
	Get(ctx context.Context, userID string) (*domain.Analysis, error)
	Set(ctx context.Context, analysis *domain.Analysis) error
}
