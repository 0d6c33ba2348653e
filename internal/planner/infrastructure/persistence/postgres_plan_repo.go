package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	plannerDomain "github.com/ayaanrathod/studybalance/internal/planner/domain"
	"github.com/ayaanrathod/studybalance/internal/shared/infrastructure/database"
)

// pgUniqueViolation is the PostgreSQL error code for unique_violation.
const pgUniqueViolation = "23505"

// PostgresPlanRepository implements plannerDomain.Repository using PostgreSQL.
type PostgresPlanRepository struct {
	conn database.Connection
}

// NewPostgresPlanRepository creates a new PostgreSQL plan repository.
func NewPostgresPlanRepository(conn database.Connection) *PostgresPlanRepository {
	return &PostgresPlanRepository{conn: conn}
}

// Save persists a plan and its blocks.
func (r *PostgresPlanRepository) Save(ctx context.Context, plan *plannerDomain.StudyPlan) error {
	exec := database.ExecutorFromContext(ctx, r.conn)

	_, err := exec.Exec(ctx, `
		INSERT INTO study_plans (id, user_id, plan_date, window_start, window_end,
			wellness_score, efficiency_score, rating, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		plan.ID(),
		plan.UserID(),
		plan.PlanDate(),
		plan.Window().Start().UTC(),
		plan.Window().End().UTC(),
		plan.WellnessScore(),
		plan.EfficiencyScore(),
		plan.Rating(),
		plan.CreatedAt().UTC(),
		plan.UpdatedAt().UTC(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return plannerDomain.ErrPlanExists
		}
		return fmt.Errorf("insert study plan: %w", err)
	}

	for position, block := range plan.Blocks() {
		_, err := exec.Exec(ctx, `
			INSERT INTO plan_blocks (id, plan_id, kind, subject, difficulty, start_time, end_time, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			uuid.New(),
			plan.ID(),
			string(block.Kind()),
			block.Subject(),
			difficultyLabel(block),
			block.Start().UTC(),
			block.End().UTC(),
			position,
		)
		if err != nil {
			return fmt.Errorf("insert plan block: %w", err)
		}
	}
	return nil
}

// FindByID retrieves a plan by its ID.
func (r *PostgresPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*plannerDomain.StudyPlan, error) {
	return r.findOne(ctx, `WHERE id = $1`, id)
}

// FindByUserAndDate retrieves the plan for a user on a calendar day.
func (r *PostgresPlanRepository) FindByUserAndDate(ctx context.Context, userID uuid.UUID, date time.Time) (*plannerDomain.StudyPlan, error) {
	return r.findOne(ctx, `WHERE user_id = $1 AND plan_date = $2`, userID, date)
}

// FindByUser retrieves all plans for a user, most recent first.
func (r *PostgresPlanRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*plannerDomain.StudyPlan, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	rows, err := exec.Query(ctx, `
		SELECT id, user_id, plan_date, window_start, window_end,
			wellness_score, efficiency_score, rating, created_at, updated_at
		FROM study_plans
		WHERE user_id = $1
		ORDER BY plan_date DESC`,
		userID,
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
func (r *PostgresPlanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	exec := database.ExecutorFromContext(ctx, r.conn)
	_, err := exec.Exec(ctx, `DELETE FROM study_plans WHERE id = $1`, id)
	return err
}

func (r *PostgresPlanRepository) findOne(ctx context.Context, where string, args ...any) (*plannerDomain.StudyPlan, error) {
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

func (r *PostgresPlanRepository) scanPlan(ctx context.Context, row planScanner) (*plannerDomain.StudyPlan, error) {
	var (
		id, userID             uuid.UUID
		planDate               time.Time
		windowStart, windowEnd time.Time
		wellness, efficiency   float64
		rating                 string
		createdAt, updatedAt   time.Time
	)
	if err := row.Scan(&id, &userID, &planDate, &windowStart, &windowEnd,
		&wellness, &efficiency, &rating, &createdAt, &updatedAt); err != nil {
		return nil, err
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

func (r *PostgresPlanRepository) loadBlocks(ctx context.Context, planID uuid.UUID) ([]plannerDomain.Block, error) {
	exec := database.ExecutorFromContext(ctx, r.conn)

	rows, err := exec.Query(ctx, `
		SELECT kind, subject, difficulty, start_time, end_time
		FROM plan_blocks
		WHERE plan_id = $1
		ORDER BY position`,
		planID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var blocks []plannerDomain.Block
	for rows.Next() {
		var (
			kind, subject, difficultyStr string
			start, end                   time.Time
		)
		if err := rows.Scan(&kind, &subject, &difficultyStr, &start, &end); err != nil {
			return nil, err
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
