// Package persistence provides email analysis repositories for the supported
// database drivers.
package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	inboxDomain "github.com/ayaanrathod/studybalance/internal/inbox/domain"
	"github.com/ayaanrathod/studybalance/internal/shared/infrastructure/database"
)

// SQLiteAnalysisRepository implements inboxDomain.Repository using SQLite.
// Slice and map fields are stored as JSON text columns.
type SQLiteAnalysisRepository struct {
	conn database.Connection
}

// NewSQLiteAnalysisRepository creates a new SQLite analysis repository.
func NewSQLiteAnalysisRepository(conn database.Connection) *SQLiteAnalysisRepository {
	return &SQLiteAnalysisRepository{conn: conn}
}

// Save persists an analysis.
func (r *SQLiteAnalysisRepository) Save(ctx context.Context, analysis *inboxDomain.Analysis) error {
	exec := database.ExecutorFromContext(ctx, r.conn)

	stress, peaks, hourly, recs, err := encodeReportColumns(analysis)
	if err != nil {
		return err
	}

	_, err = exec.Exec(ctx, `
		INSERT INTO email_analyses (id, user_id, analyzed_at, days_analyzed,
			total_emails, urgent_emails, work_emails, workload_score, burnout_risk,
			stress_keywords, peak_hours, hourly_counts, recommendations, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		analysis.ID().String(),
		analysis.UserID().String(),
		analysis.AnalyzedAt().UTC().Format(time.RFC3339),
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
		analysis.CreatedAt().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert email analysis: %w", err)
	}
	return nil
}

// FindLatestByUser retrieves the most recent analysis for a user.
func (r *SQLiteAnalysisRepository) FindLatestByUser(ctx context.Context, userID uuid.UUID) (*inboxDomain.Analysis, error) {
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
func (r *SQLiteAnalysisRepository) FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*inboxDomain.Analysis, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	if limit <= 0 {
		limit = 20
	}
	rows, err := exec.Query(ctx, `
		SELECT id, user_id, analyzed_at, days_analyzed,
			total_emails, urgent_emails, work_emails, workload_score, burnout_risk,
			stress_keywords, peak_hours, hourly_counts, recommendations, created_at
		FROM email_analyses
		WHERE user_id = ?
		ORDER BY analyzed_at DESC
		LIMIT ?`,
		userID.String(), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var analyses []*inboxDomain.Analysis
	for rows.Next() {
		var (
			idStr, userIDStr, analyzedAtStr string
			daysAnalyzed                    int
			totalEmails, urgent, work       int
			workload                        float64
			risk                            string
			stress, peaks, hourly, recs     []byte
			createdAtStr                    string
		)
		if err := rows.Scan(&idStr, &userIDStr, &analyzedAtStr, &daysAnalyzed,
			&totalEmails, &urgent, &work, &workload, &risk,
			&stress, &peaks, &hourly, &recs, &createdAtStr); err != nil {
			return nil, err
		}

		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("parse analysis id: %w", err)
		}
		uid, err := uuid.Parse(userIDStr)
		if err != nil {
			return nil, fmt.Errorf("parse user id: %w", err)
		}
		analyzedAt, err := time.Parse(time.RFC3339, analyzedAtStr)
		if err != nil {
			return nil, fmt.Errorf("parse analyzed at: %w", err)
		}
		createdAt, err := time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parse created at: %w", err)
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

func encodeReportColumns(analysis *inboxDomain.Analysis) (stress, peaks, hourly, recs []byte, err error) {
	if stress, err = json.Marshal(emptyIfNil(analysis.StressKeywords())); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode stress keywords: %w", err)
	}
	if peaks, err = json.Marshal(emptyIfNil(analysis.PeakHours())); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode peak hours: %w", err)
	}
	counts := analysis.HourlyCounts()
	if counts == nil {
		counts = map[int]int{}
	}
	if hourly, err = json.Marshal(counts); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode hourly counts: %w", err)
	}
	if recs, err = json.Marshal(emptyIfNil(analysis.Recommendations())); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("encode recommendations: %w", err)
	}
	return stress, peaks, hourly, recs, nil
}

func decodeReportColumns(totalEmails, urgent, work int, workload float64, risk string,
	stress, peaks, hourly, recs []byte) (inboxDomain.Report, error) {
	report := inboxDomain.Report{
		TotalEmails:   totalEmails,
		UrgentEmails:  urgent,
		WorkEmails:    work,
		WorkloadScore: workload,
		BurnoutRisk:   inboxDomain.BurnoutRisk(risk),
	}
	if err := json.Unmarshal(stress, &report.StressKeywords); err != nil {
		return inboxDomain.Report{}, fmt.Errorf("decode stress keywords: %w", err)
	}
	if err := json.Unmarshal(peaks, &report.PeakHours); err != nil {
		return inboxDomain.Report{}, fmt.Errorf("decode peak hours: %w", err)
	}
	if err := json.Unmarshal(hourly, &report.HourlyCounts); err != nil {
		return inboxDomain.Report{}, fmt.Errorf("decode hourly counts: %w", err)
	}
	if err := json.Unmarshal(recs, &report.Recommendations); err != nil {
		return inboxDomain.Report{}, fmt.Errorf("decode recommendations: %w", err)
	}
	return report, nil
}

func emptyIfNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
