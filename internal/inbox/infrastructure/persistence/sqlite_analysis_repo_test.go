package persistence

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inboxDomain "github.com/ayaanrathod/studybalance/internal/inbox/domain"
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

func testAnalysis(t *testing.T, userID uuid.UUID, analyzedAt time.Time) *inboxDomain.Analysis {
	t.Helper()

	analysis, err := inboxDomain.NewAnalysis(userID, analyzedAt, 7, inboxDomain.Report{
		TotalEmails:     12,
		UrgentEmails:    4,
		WorkEmails:      9,
		WorkloadScore:   6.3,
		BurnoutRisk:     inboxDomain.BurnoutRiskModerate,
		StressKeywords:  []string{"urgent", "deadline"},
		PeakHours:       []string{"09:00-10:00", "20:00-21:00"},
		HourlyCounts:    map[int]int{9: 5, 20: 4, 14: 3},
		Recommendations: []string{"High urgency email volume detected - consider discussing deadlines"},
	})
	require.NoError(t, err)
	return analysis
}

func TestSQLiteAnalysisRepositorySaveAndFind(t *testing.T) {
	conn := newTestConnection(t)
	repo := NewSQLiteAnalysisRepository(conn)
	ctx := context.Background()

	userID := uuid.New()
	analyzedAt := time.Date(2026, time.September, 1, 18, 0, 0, 0, time.UTC)
	analysis := testAnalysis(t, userID, analyzedAt)

	require.NoError(t, repo.Save(ctx, analysis))

	loaded, err := repo.FindLatestByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, analysis.ID(), loaded.ID())
	assert.Equal(t, userID, loaded.UserID())
	assert.True(t, analyzedAt.Equal(loaded.AnalyzedAt()))
	assert.Equal(t, 7, loaded.DaysAnalyzed())
	assert.Equal(t, 12, loaded.TotalEmails())
	assert.Equal(t, 4, loaded.UrgentEmails())
	assert.Equal(t, 9, loaded.WorkEmails())
	assert.Equal(t, 6.3, loaded.WorkloadScore())
	assert.Equal(t, inboxDomain.BurnoutRiskModerate, loaded.BurnoutRisk())
	assert.Equal(t, []string{"urgent", "deadline"}, loaded.StressKeywords())
	assert.Equal(t, []string{"09:00-10:00", "20:00-21:00"}, loaded.PeakHours())
	assert.Equal(t, map[int]int{9: 5, 20: 4, 14: 3}, loaded.HourlyCounts())
	assert.Len(t, loaded.Recommendations(), 1)
}

func TestSQLiteAnalysisRepositoryMissingUser(t *testing.T) {
	conn := newTestConnection(t)
	repo := NewSQLiteAnalysisRepository(conn)

	_, err := repo.FindLatestByUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, inboxDomain.ErrAnalysisNotFound)
}

func TestSQLiteAnalysisRepositoryLatestWins(t *testing.T) {
	conn := newTestConnection(t)
	repo := NewSQLiteAnalysisRepository(conn)
	ctx := context.Background()

	userID := uuid.New()
	older := testAnalysis(t, userID, time.Date(2026, time.August, 30, 8, 0, 0, 0, time.UTC))
	newer := testAnalysis(t, userID, time.Date(2026, time.September, 1, 8, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Save(ctx, older))
	require.NoError(t, repo.Save(ctx, newer))

	latest, err := repo.FindLatestByUser(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, newer.ID(), latest.ID())
}

func TestSQLiteAnalysisRepositoryListRespectsLimit(t *testing.T) {
	conn := newTestConnection(t)
	repo := NewSQLiteAnalysisRepository(conn)
	ctx := context.Background()

	userID := uuid.New()
	base := time.Date(2026, time.September, 1, 8, 0, 0, 0, time.UTC)
	for day := 0; day < 3; day++ {
		require.NoError(t, repo.Save(ctx, testAnalysis(t, userID, base.AddDate(0, 0, -day))))
	}

	analyses, err := repo.FindByUser(ctx, userID, 2)
	require.NoError(t, err)
	require.Len(t, analyses, 2)
	assert.True(t, analyses[0].AnalyzedAt().After(analyses[1].AnalyzedAt()))
}
