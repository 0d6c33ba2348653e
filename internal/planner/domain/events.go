package domain

import (
	"time"

	shareddomain "github.com/ayaanrathod/studybalance/internal/shared/domain"
)

// Event routing keys for the planner context.
const (
	EventTypePlanCreated = "planner.plan.created"
)

// PlanCreated is raised when a study plan is generated and saved.
type PlanCreated struct {
	shareddomain.BaseEvent
	UserID          string    `json:"user_id"`
	PlanDate        time.Time `json:"plan_date"`
	WindowStart     time.Time `json:"window_start"`
	WindowEnd       time.Time `json:"window_end"`
	StudyBlockCount int       `json:"study_block_count"`
	BreakBlockCount int       `json:"break_block_count"`
	WellnessScore   float64   `json:"wellness_score"`
}

// NewPlanCreated creates a PlanCreated event from a plan.
func NewPlanCreated(plan *StudyPlan) *PlanCreated {
	studyCount, breakCount := 0, 0
	for _, b := range plan.Blocks() {
		if b.IsStudy() {
			studyCount++
		} else {
			breakCount++
		}
	}

	return &PlanCreated{
		BaseEvent:       shareddomain.NewBaseEvent(plan.ID(), "StudyPlan", EventTypePlanCreated),
		UserID:          plan.UserID().String(),
		PlanDate:        plan.PlanDate(),
		WindowStart:     plan.Window().Start(),
		WindowEnd:       plan.Window().End(),
		StudyBlockCount: studyCount,
		BreakBlockCount: breakCount,
		WellnessScore:   plan.WellnessScore(),
	}
}
