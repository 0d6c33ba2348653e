package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	inboxDomain "github.com/ayaanrathod/studybalance/internal/inbox/domain"
	"github.com/ayaanrathod/studybalance/internal/shared/infrastructure/database"
)

// PostgresAnalysisRepository implements inboxDomain.Repository using
// PostgreSQL. Slice and map fields are stored as JSONB columns.
type PostgresAnalysisRepository struct {
	conn database.Connection
}

// NewPostgresAnalysisRepository creates a new PostgreSQL analysis repository.
func NewPostgresAnalysisRepository(conn database.Connection) *PostgresAnalysisRepository {
	return &PostgresAnalysisRepository{conn: conn}
}

// Save persists an analysis.
func (r *PostgresAnalysisRepository) Save(ctx context.Context, analysis *inboxDomain.Analysis) error {
	exec := database.ExecutorFromContext(ctx, r.conn)

	stress, peaks, hourly, recs, err := encodeReportColumns(analysis)
	if err != nil {
		return err
	}

	_, err = exec.Exec(ctx, `
		INSERT INTO email_analyses (id, user_id, analyzed_at, days_analyzed,
			total_emails, urgent_emails, work_emails, workload_score, burnout_risk,
			stress_keywords, peak_hours, hourly_counts, recommendations, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		analysis.ID(),
		analysis.UserID(),
		analysis.AnalyzedAt().UTC(),
		analysis.DaysAnalyzed(),
		analysis.TotalEmails(),
		analysis.UrgentEmails(),
		analysis.WorkEmails(),
		analysis.WorkloadScore(),
		string(analysis.BurnoutRisk()),
		stress,
		peaks,
		hourly,
		recs,
		analysis.CreatedAt().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert email analysis: %w", err)
	}
	return nil
}

// FindLatestByUser retrieves the most recent analysis for a user.
func (r *PostgresAnalysisRepository) FindLatestByUser(ctx context.Context, userID uuid.UUID) (*inboxDomain.Analysis, error) {
	analyses, err := r.FindByUser(ctx, userID, 1)
	if err != nil {
		return nil, err
	}
	if len(analyses) == 0 {
		return nil, inboxDomain.ErrAnalysisNotFound
	}
	return analyses[0], nil
}

// FindByUser retrieves analyses for a user, most recent first.
func (r *PostgresAnalysisRepository) FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*inboxDomain.Analysis, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	if limit <= 0 {
		limit = 20
	}
	rows, err := exec.Query(ctx, `
		SELECT id, user_id, analyzed_at, days_analyzed,
			total_emails, urgent_emails, work_emails, workload_score, burnout_risk,
			stress_keywords, peak_hours, hourly_counts, recommendations, created_at
		FROM email_analyses
		WHERE user_id = $1
		ORDER BY analyzed_at DESC
		LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []*inboxDomain.Analysis
	for rows.Next() {
		var (
			id, uid                     uuid.UUID
			analyzedAt, createdAt       time.Time
			daysAnalyzed                int
			totalEmails, urgent, work   int
			workload                    float64
			risk                        string
			stress, peaks, hourly, recs []byte
		)
		if err := rows.Scan(&id, &uid, &analyzedAt, &daysAnalyzed,
			&totalEmails, &urgent, &work, &workload, &risk,
			&stress, &peaks, &hourly, &recs, &createdAt); err != nil {
			return nil, err
		}

		report, err := decodeReportColumns(totalEmails, urgent, work, workload, risk,
			stress, peaks, hourly, recs)
		if err != nil {
			return nil, err
		}

		analyses = append(analyses, inboxDomain.RehydrateAnalysis(
			id, uid, analyzedAt, daysAnalyzed, report, createdAt))
	}
	return analyses, rows.Err()
}
