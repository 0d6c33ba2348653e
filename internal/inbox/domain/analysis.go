package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"

	shareddomain "github.com/ayaanrathod/studybalance/internal/shared/domain"
)

var (
	// ErrAnalysisNotFound indicates no analysis exists for the user.
	ErrAnalysisNotFound = errors.New("email analysis not found")
)

// BurnoutRisk classifies the workload score into coarse risk levels.
type BurnoutRisk string

const (
	BurnoutRiskLow      BurnoutRisk = "low"
	BurnoutRiskModerate BurnoutRisk = "moderate"
	BurnoutRiskHigh     BurnoutRisk = "high"
)

// Workload score thresholds for burnout classification.
const (
	HighRiskThreshold     = 7.0
	ModerateRiskThreshold = 4.0
)

// RiskForScore maps a workload score to a burnout risk level.
func RiskForScore(score float64) BurnoutRisk {
	switch {
	case score >= HighRiskThreshold:
		return BurnoutRiskHigh
	case score >= ModerateRiskThreshold:
		return BurnoutRiskModerate
	default:
		return BurnoutRiskLow
	}
}

// Analysis is the persisted outcome of one inbox scan: keyword counts, the
// derived workload score and burnout risk, and timing patterns.
type Analysis struct {
	shareddomain.BaseAggregateRoot
	userID          uuid.UUID
	analyzedAt      time.Time
	daysAnalyzed    int
	totalEmails     int
	urgentEmails    int
	workEmails      int
	workloadScore   float64
	burnoutRisk     BurnoutRisk
	stressKeywords  []string
	peakHours       []string
	hourlyCounts    map[int]int
	recommendations []string
}

// NewAnalysis creates an analysis aggregate and raises AnalysisCompleted.
func NewAnalysis(userID uuid.UUID, analyzedAt time.Time, daysAnalyzed int, report Report) (*Analysis, error) {
	if userID == uuid.Nil {
		return nil, errors.New("user ID is required")
	}

	analysis := &Analysis{
		BaseAggregateRoot: shareddomain.NewBaseAggregateRoot(),
		userID:            userID,
		analyzedAt:        analyzedAt,
		daysAnalyzed:      daysAnalyzed,
		totalEmails:       report.TotalEmails,
		urgentEmails:      report.UrgentEmails,
		workEmails:        report.WorkEmails,
		workloadScore:     report.WorkloadScore,
		burnoutRisk:       report.BurnoutRisk,
		stressKeywords:    report.StressKeywords,
		peakHours:         report.PeakHours,
		hourlyCounts:      report.HourlyCounts,
		recommendations:   report.Recommendations,
	}

	analysis.AddDomainEvent(NewAnalysisCompleted(analysis))
	return analysis, nil
}

// RehydrateAnalysis recreates an analysis from persisted state.
func RehydrateAnalysis(
	id uuid.UUID,
	userID uuid.UUID,
	analyzedAt time.Time,
	daysAnalyzed int,
	report Report,
	createdAt time.Time,
) *Analysis {
	return &Analysis{
		BaseAggregateRoot: shareddomain.RehydrateBaseAggregateRoot(
			shareddomain.RehydrateBaseEntity(id, createdAt, createdAt)),
		userID:          userID,
		analyzedAt:      analyzedAt,
		daysAnalyzed:    daysAnalyzed,
		totalEmails:     report.TotalEmails,
		urgentEmails:    report.UrgentEmails,
		workEmails:      report.WorkEmails,
		workloadScore:   report.WorkloadScore,
		burnoutRisk:     report.BurnoutRisk,
		stressKeywords:  report.StressKeywords,
		peakHours:       report.PeakHours,
		hourlyCounts:    report.HourlyCounts,
		recommendations: report.Recommendations,
	}
}

func (a *Analysis) UserID() uuid.UUID         { return a.userID }
func (a *Analysis) AnalyzedAt() time.Time     { return a.analyzedAt }
func (a *Analysis) DaysAnalyzed() int         { return a.daysAnalyzed }
func (a *Analysis) TotalEmails() int          { return a.totalEmails }
func (a *Analysis) UrgentEmails() int         { return a.urgentEmails }
func (a *Analysis) WorkEmails() int           { return a.workEmails }
func (a *Analysis) WorkloadScore() float64    { return a.workloadScore }
func (a *Analysis) BurnoutRisk() BurnoutRisk  { return a.burnoutRisk }
func (a *Analysis) StressKeywords() []string  { return a.stressKeywords }
func (a *Analysis) PeakHours() []string       { return a.peakHours }
func (a *Analysis) HourlyCounts() map[int]int { return a.hourlyCounts }
func (a *Analysis) Recommendations() []string { return a.recommendations }

// Report bundles the analyzer's raw findings for aggregate construction.
type Report struct {
	TotalEmails     int
	UrgentEmails    int
	WorkEmails      int
	WorkloadScore   float64
	BurnoutRisk     BurnoutRisk
	StressKeywords  []string
	PeakHours       []string
	HourlyCounts    map[int]int
	Recommendations []string
}
