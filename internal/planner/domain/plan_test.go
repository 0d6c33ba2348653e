package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStudyPlanRaisesPlanCreated(t *testing.T) {
	window := mustWindow(t, at(9, 0), at(12, 0))
	schedule, err := Optimize(window, nil, []StudyRequest{
		mustRequest(t, "Math", 60, DifficultyHigh),
		mustRequest(t, "Art", 30, DifficultyLow),
	}, DefaultBreakPolicy(), DefaultScorePolicy())
	require.NoError(t, err)

	userID := uuid.New()
	plan, err := NewStudyPlan(userID, at(0, 0), schedule)
	require.NoError(t, err)

	assert.Equal(t, userID, plan.UserID())
	assert.Equal(t, schedule.WellnessScore(), plan.WellnessScore())
	assert.Len(t, plan.Blocks(), 3)
	assert.Len(t, plan.StudyBlocks(), 2)

	events := plan.DomainEvents()
	require.Len(t, events, 1)

	created, ok := events[0].(*PlanCreated)
	require.True(t, ok)
	assert.Equal(t, EventTypePlanCreated, created.RoutingKey())
	assert.Equal(t, plan.ID(), created.AggregateID())
	assert.Equal(t, 2, created.StudyBlockCount)
	assert.Equal(t, 1, created.BreakBlockCount)
}

func TestNewStudyPlanRequiresUserAndSchedule(t *testing.T) {
	window := mustWindow(t, at(9, 0), at(12, 0))
	schedule, err := Optimize(window, nil, nil, DefaultBreakPolicy(), DefaultScorePolicy())
	require.NoError(t, err)

	_, err = NewStudyPlan(uuid.Nil, at(0, 0), schedule)
	assert.Error(t, err)

	_, err = NewStudyPlan(uuid.New(), at(0, 0), nil)
	assert.Error(t, err)
}

func TestRehydrateStudyPlanRecomputesTotals(t *testing.T) {
	id := uuid.New()
	userID := uuid.New()
	window := mustWindow(t, at(9, 0), at(12, 0))
	blocks := []Block{
		studyBlock(t, "Math", DifficultyHigh, at(9, 0), at(10, 0)),
		breakBlock(t, at(10, 0), at(10, 10)),
		studyBlock(t, "Art", DifficultyLow, at(10, 10), at(10, 40)),
	}
	now := time.Now().UTC()

	plan := RehydrateStudyPlan(id, userID, at(0, 0), window, blocks, 8.0, 10.0, "Good", now, now)

	assert.Equal(t, id, plan.ID())
	assert.Equal(t, 90*time.Minute, plan.TotalStudy())
	assert.Equal(t, 10*time.Minute, plan.TotalBreak())
	assert.Empty(t, plan.DomainEvents())
}
