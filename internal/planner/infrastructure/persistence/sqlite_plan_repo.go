// Package persistence provides study plan repositories for the supported
// database drivers.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	plannerDomain "github.com/ayaanrathod/studybalance/internal/planner/domain"
	"github.com/ayaanrathod/studybalance/internal/shared/infrastructure/database"
)

const sqliteDateLayout = "2006-01-02"

// SQLitePlanRepository implements plannerDomain.Repository using SQLite.
type SQLitePlanRepository struct {
	conn database.Connection
}

// NewSQLitePlanRepository creates a new SQLite plan repository.
func NewSQLitePlanRepository(conn database.Connection) *SQLitePlanRepository {
	return &SQLitePlanRepository{conn: conn}
}

// Save persists a plan and its blocks.
func (r *SQLitePlanRepository) Save(ctx context.Context, plan *plannerDomain.StudyPlan) error {
	exec := database.ExecutorFromContext(ctx, r.conn)

	_, err := exec.Exec(ctx, `
		INSERT INTO study_plans (id, user_id, plan_date, window_start, window_end,
			wellness_score, efficiency_score, rating, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		plan.ID().String(),
		plan.UserID().String(),
		plan.PlanDate().Format(sqliteDateLayout),
		plan.Window().Start().UTC().Format(time.RFC3339),
		plan.Window().End().UTC().Format(time.RFC3339),
		plan.WellnessScore(),
		plan.EfficiencyScore(),
		plan.Rating(),
		plan.CreatedAt().UTC().Format(time.RFC3339),
		plan.UpdatedAt().UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return plannerDomain.ErrPlanExists
		}
		return fmt.Errorf("insert study plan: %w", err)
	}

	for position, block := range plan.Blocks() {
		_, err := exec.Exec(ctx, `
			INSERT INTO plan_blocks (id, plan_id, kind, subject, difficulty, start_time, end_time, position)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(),
			plan.ID().String(),
			string(block.Kind()),
			block.Subject(),
			difficultyLabel(block),
			block.Start().UTC().Format(time.RFC3339),
			block.End().UTC().Format(time.RFC3339),
			position,
		)
		if err != nil {
			return fmt.Errorf("insert plan block: %w", err)
		}
	}
	return nil
}

// FindByID retrieves a plan by its ID.
func (r *SQLitePlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*plannerDomain.StudyPlan, error) {
	return r.findOne(ctx, `WHERE id = ?`, id.String())
}

// FindByUserAndDate retrieves the plan for a user on a calendar day.
func (r *SQLitePlanRepository) FindByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*plannerDomain.StudyPlan, error) {
	return r.findOne(ctx, `WHERE user_id = ? AND plan_date = ?`,
		userID.String(), date.Format(sqliteDateLayout))
}

// FindByUser retrieves all plans for a user, most recent first.
func (r *SQLitePlanRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*plannerDomain.StudyPlan, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	rows, err := exec.Query(ctx, `
		SELECT id, user_id, plan_date, window_start, window_end,
			wellness_score, efficiency_score, rating, created_at, updated_at
		FROM study_plans
		WHERE user_id = ?
		ORDER BY plan_date DESC`,
		userID.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []*plannerDomain.StudyPlan
	for rows.Next() {
		plan, err := r.scanPlan(ctx, rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, rows.Err()
}

// Delete removes a plan; its blocks follow via foreign key cascade.
func (r *SQLitePlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `DELETE FROM study_plans WHERE id = ?`, id.String())
	return err
}

func (r *SQLitePlanRepository) findOne(ctx context.Context, where string, args ...any) (*plannerDomain.StudyPlan, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	rows, err := exec.Query(ctx, `
		SELECT id, user_id, plan_date, window_start, window_end,
			wellness_score, efficiency_score, rating, created_at, updated_at
		FROM study_plans `+where,
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, plannerDomain.ErrPlanNotFound
	}
	return r.scanPlan(ctx, rows)
}

type planScanner interface {
	Scan(dest ...any) error
}

func (r *SQLitePlanRepository) scanPlan(ctx context.Context, row planScanner) (*plannerDomain.StudyPlan, error) {
	var (
		idStr, userIDStr, dateStr          string
		windowStartStr, windowEndStr       string
		wellness, efficiency               float64
		rating, createdAtStr, updatedAtStr string
	)
	if err := row.Scan(&idStr, &userIDStr, &dateStr, &windowStartStr, &windowEndStr,
		&wellness, &efficiency, &rating, &createdAtStr, &updatedAtStr); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parse plan id: %w", err)
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	planDate, err := time.ParseInLocation(sqliteDateLayout, dateStr, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse plan date: %w", err)
	}
	windowStart, err := time.Parse(time.RFC3339, windowStartStr)
	if err != nil {
		return nil, fmt.Errorf("parse window start: %w", err)
	}
	windowEnd, err := time.Parse(time.RFC3339, windowEndStr)
	if err != nil {
		return nil, fmt.Errorf("parse window end: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parse created at: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parse updated at: %w", err)
	}

	window, err := plannerDomain.NewWindow(windowStart, windowEnd)
	if err != nil {
		return nil, err
	}

	blocks, err := r.loadBlocks(ctx, id)
	if err != nil {
		return nil, err
	}

	return plannerDomain.RehydrateStudyPlan(id, userID, planDate, window, blocks,
		wellness, efficiency, rating, createdAt, updatedAt), nil
}

func (r *SQLitePlanRepository) loadBlocks(ctx context.Context, planID uuid.UUID) ([]plannerDomain.Block, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	rows, err := exec.Query(ctx, `
		SELECT kind, subject, difficulty, start_time, end_time
		FROM plan_blocks
		WHERE plan_id = ?
		ORDER BY position`,
		planID.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []plannerDomain.Block
	for rows.Next() {
		var kind, subject, difficultyStr, startStr, endStr string
		if err := rows.Scan(&kind, &subject, &difficultyStr, &startStr, &endStr); err != nil {
			return nil, err
		}

		start, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			return nil, fmt.Errorf("parse block start: %w", err)
		}
		end, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			return nil, fmt.Errorf("parse block end: %w", err)
		}
		interval, err := plannerDomain.NewInterval(start, end)
		if err != nil {
			return nil, err
		}

		var difficulty plannerDomain.Difficulty
		if difficultyStr != "" {
			difficulty, err = plannerDomain.ParseDifficulty(difficultyStr)
			if err != nil {
				return nil, err
			}
		}

		blocks = append(blocks, plannerDomain.RehydrateBlock(
			plannerDomain.BlockKind(kind), subject, difficulty, interval))
	}
	return blocks, rows.Err()
}

// isSQLiteUniqueViolation reports whether err is a UNIQUE (or primary key)
// constraint failure, covering the study_plans (user_id, plan_date) index
// that a concurrent create races on.
func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	code := sqliteErr.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

func difficultyLabel(block plannerDomain.Block) string {
	if block.IsBreak() {
		return ""
	}
	return block.Difficulty().String()
}
