package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	plannerDomain "github.com/ayaanrathod/studybalance/internal/planner/domain"
	"github.com/ayaanrathod/studybalance/internal/shared/infrastructure/database"
	"github.com/ayaanrathod/studybalance/internal/shared/infrastructure/migrations"
)

func newTestConnection(t *testing.T) database.Connection {
	t.Helper()

	conn, err := database.NewConnection(context.Background(), database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, migrations.Run(context.Background(), conn))
	return conn
}

func testPlan(t *testing.T, userID uuid.UUID, date time.Time) *plannerDomain.StudyPlan {
	t.Helper()

	window, err := plannerDomain.NewWindow(date.Add(9*time.Hour), date.Add(12*time.Hour))
	require.NoError(t, err)

	math, err := plannerDomain.NewStudyRequest("Math", 60*time.Minute, plannerDomain.DifficultyHigh)
	require.NoError(t, err)
	art, err := plannerDomain.NewStudyRequest("Art", 30*time.Minute, plannerDomain.DifficultyLow)
	require.NoError(t, err)

	schedule, err := plannerDomain.Optimize(window, nil, []plannerDomain.StudyRequest{math, art},
		plannerDomain.DefaultBreakPolicy(), plannerDomain.DefaultScorePolicy())
	require.NoError(t, err)

	plan, err := plannerDomain.NewStudyPlan(userID, date, schedule)
	require.NoError(t, err)
	return plan
}

func TestSQLitePlanRepositorySaveAndFind(t *testing.T) {
	conn := newTestConnection(t)
	repo := NewSQLitePlanRepository(conn)
	ctx := context.Background()

	userID := uuid.New()
	date := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	plan := testPlan(t, userID, date)

	require.NoError(t, repo.Save(ctx, plan))

	loaded, err := repo.FindByID(ctx, plan.ID())
	require.NoError(t, err)
	assert.Equal(t, plan.ID(), loaded.ID())
	assert.Equal(t, userID, loaded.UserID())
	assert.Equal(t, plan.WellnessScore(), loaded.WellnessScore())
	assert.Equal(t, plan.Rating(), loaded.Rating())

	blocks := loaded.Blocks()
	require.Len(t, blocks, 3)
	assert.Equal(t, "Math", blocks[0].Subject())
	assert.Equal(t, plannerDomain.DifficultyHigh, blocks[0].Difficulty())
	assert.True(t, blocks[1].IsBreak())
	assert.Equal(t, "Art", blocks[2].Subject())
	assert.Equal(t, plan.TotalStudy(), loaded.TotalStudy())

	byDate, err := repo.FindByUserAndDate(ctx, userID, date)
	require.NoError(t, err)
	assert.Equal(t, plan.ID(), byDate.ID())
}

func TestSQLitePlanRepositoryFindMissingPlan(t *testing.T) {
	repo := NewSQLitePlanRepository(newTestConnection(t))

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, plannerDomain.ErrPlanNotFound)

	_, err = repo.FindByUserAndDate(context.Background(), uuid.New(), time.Now())
	assert.ErrorIs(t, err, plannerDomain.ErrPlanNotFound)
}

func TestSQLitePlanRepositoryDuplicateDateReturnsErrPlanExists(t *testing.T) {
	conn := newTestConnection(t)
	repo := NewSQLitePlanRepository(conn)
	ctx := context.Background()

	userID := uuid.New()
	date := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Save(ctx, testPlan(t, userID, date)))

	// A second writer for the same (user, date) hits the UNIQUE index and
	// must surface the domain error, not a raw driver error.
	assert.ErrorIs(t, repo.Save(ctx, testPlan(t, userID, date)), plannerDomain.ErrPlanExists)

	assert.NoError(t, repo.Save(ctx, testPlan(t, userID, date.AddDate(0, 0, 1))))
	assert.NoError(t, repo.Save(ctx, testPlan(t, uuid.New(), date)))
}

func TestSQLitePlanRepositoryDeleteCascadesBlocks(t *testing.T) {
	conn := newTestConnection(t)
	repo := NewSQLitePlanRepository(conn)
	ctx := context.Background()

	userID := uuid.New()
	date := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	plan := testPlan(t, userID, date)
	require.NoError(t, repo.Save(ctx, plan))

	require.NoError(t, repo.Delete(ctx, plan.ID()))

	_, err := repo.FindByID(ctx, plan.ID())
	assert.ErrorIs(t, err, plannerDomain.ErrPlanNotFound)

	row := conn.QueryRow(ctx, `SELECT COUNT(*) FROM plan_blocks WHERE plan_id = ?`, plan.ID().String())
	var count int
	require.NoError(t, row.Scan(&count))
	assert.Zero(t, count)
}

func TestSQLitePlanRepositoryListsPlansMostRecentFirst(t *testing.T) {
	conn := newTestConnection(t)
	repo := NewSQLitePlanRepository(conn)
	ctx := context.Background()

	userID := uuid.New()
	day1 := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	require.NoError(t, repo.Save(ctx, testPlan(t, userID, day1)))
	require.NoError(t, repo.Save(ctx, testPlan(t, userID, day2)))
	require.NoError(t, repo.Save(ctx, testPlan(t, uuid.New(), day1)))

	plans, err := repo.FindByUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, day2, plans[0].PlanDate())
	assert.Equal(t, day1, plans[1].PlanDate())
}
