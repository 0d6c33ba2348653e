package domain

import (
	shareddomain "github.com/ayaanrathod/studybalance/internal/shared/domain"
)

// Event routing keys for the inbox context.
const (
	EventTypeAnalysisCompleted = "inbox.analysis.completed"
)

// AnalysisCompleted is raised when an inbox scan finishes.
type AnalysisCompleted struct {
	shareddomain.BaseEvent
	UserID        string  `json:"user_id"`
	TotalEmails   int     `json:"total_emails"`
	UrgentEmails  int     `json:"urgent_emails"`
	WorkEmails    int     `json:"work_emails"`
	WorkloadScore float64 `json:"workload_score"`
	BurnoutRisk   string  `json:"burnout_risk"`
}

// NewAnalysisCompleted creates an AnalysisCompleted event.
func NewAnalysisCompleted(analysis *Analysis) *AnalysisCompleted {
	return &AnalysisCompleted{
		BaseEvent:     shareddomain.NewBaseEvent(analysis.ID(), "Analysis", EventTypeAnalysisCompleted),
		UserID:        analysis.UserID().String(),
		TotalEmails:   analysis.TotalEmails(),
		UrgentEmails:  analysis.UrgentEmails(),
		WorkEmails:    analysis.WorkEmails(),
		WorkloadScore: analysis.WorkloadScore(),
		BurnoutRisk:   string(analysis.BurnoutRisk()),
	}
}
