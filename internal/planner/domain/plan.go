package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"

	shareddomain "github.com/ayaanrathod/studybalance/internal/shared/domain"
)

var (
	// ErrPlanNotFound indicates the requested plan does not exist.
	ErrPlanNotFound = errors.New("study plan not found")

	// ErrPlanExists indicates a plan already exists for the user and date.
	ErrPlanExists = errors.New("study plan already exists for this date")
)

// StudyPlan is the persisted result of one optimizer run: the generated
// blocks and scores for one user on one day.
type StudyPlan struct {
	shareddomain.BaseAggregateRoot
	userID          uuid.UUID
	planDate        time.Time
	window          Window
	blocks          []Block
	totalStudy      time.Duration
	totalBreak      time.Duration
	wellnessScore   float64
	efficiencyScore float64
	rating          string
}

// NewStudyPlan creates a plan from an optimized schedule and raises
// PlanCreated.
func NewStudyPlan(userID uuid.UUID, planDate time.Time, schedule *Schedule) (*StudyPlan, error) {
	if userID == uuid.Nil {
		return nil, errors.New("user ID is required")
	}
	if schedule == nil {
		return nil, errors.New("schedule is required")
	}

	plan := &StudyPlan{
		BaseAggregateRoot: shareddomain.NewBaseAggregateRoot(),
		userID:            userID,
		planDate:          planDate,
		window:            schedule.Window(),
		blocks:            schedule.Blocks(),
		totalStudy:        schedule.TotalStudy(),
		totalBreak:        schedule.TotalBreak(),
		wellnessScore:     schedule.WellnessScore(),
		efficiencyScore:   schedule.EfficiencyScore(),
		rating:            schedule.Rating(),
	}

	plan.AddDomainEvent(NewPlanCreated(plan))
	return plan, nil
}

// RehydrateStudyPlan recreates a plan from persisted state without raising
// events.
func RehydrateStudyPlan(
	id uuid.UUID,
	userID uuid.UUID,
	planDate time.Time,
	window Window,
	blocks []Block,
	wellnessScore float64,
	efficiencyScore float64,
	rating string,
	createdAt time.Time,
	updatedAt time.Time,
) *StudyPlan {
	var totalStudy, totalBreak time.Duration
	for _, b := range blocks {
		if b.IsStudy() {
			totalStudy += b.Duration()
		} else {
			totalBreak += b.Duration()
		}
	}

	return &StudyPlan{
		BaseAggregateRoot: shareddomain.RehydrateBaseAggregateRoot(
			shareddomain.RehydrateBaseEntity(id, createdAt, updatedAt)),
		userID:          userID,
		planDate:        planDate,
		window:          window,
		blocks:          blocks,
		totalStudy:      totalStudy,
		totalBreak:      totalBreak,
		wellnessScore:   wellnessScore,
		efficiencyScore: efficiencyScore,
		rating:          rating,
	}
}

func (p *StudyPlan) UserID() uuid.UUID         { return p.userID }
func (p *StudyPlan) PlanDate() time.Time       { return p.planDate }
func (p *StudyPlan) Window() Window            { return p.window }
func (p *StudyPlan) Blocks() []Block           { return p.blocks }
func (p *StudyPlan) TotalStudy() time.Duration { return p.totalStudy }
func (p *StudyPlan) TotalBreak() time.Duration { return p.totalBreak }
func (p *StudyPlan) WellnessScore() float64    { return p.wellnessScore }
func (p *StudyPlan) EfficiencyScore() float64  { return p.efficiencyScore }
func (p *StudyPlan) Rating() string            { return p.rating }

// StudyBlocks returns only the study blocks, in chronological order.
func (p *StudyPlan) StudyBlocks() []Block {
	var study []Block
	for _, b := range p.blocks {
		if b.IsStudy() {
			study = append(study, b)
		}
	}
	return study
}
