// Package commands contains the planner's write operations.
package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayaanrathod/studybalance/internal/planner/application/services"
	plannerDomain "github.com/ayaanrathod/studybalance/internal/planner/domain"
	sharedApplication "github.com/ayaanrathod/studybalance/internal/shared/application"
	"github.com/ayaanrathod/studybalance/internal/shared/infrastructure/outbox"
)

// StudyRequestInput describes one subject to place in the plan. Difficulty
// is optional; when empty it is inferred from the subject name.
type StudyRequestInput struct {
	Subject    string
	Duration   time.Duration
	Difficulty string
}

// CreatePlanCommand requests an optimized study plan for one day.
type CreatePlanCommand struct {
	UserID      uuid.UUID
	WindowStart time.Time
	WindowEnd   time.Time
	Requests    []StudyRequestInput

	// Replace regenerates the plan when one already exists for the date.
	Replace bool
}

// CreatePlanResult carries the persisted plan and schedule observations.
type CreatePlanResult struct {
	Plan  *plannerDomain.StudyPlan
	Notes []string
}

// CreatePlanHandler handles the CreatePlanCommand.
type CreatePlanHandler struct {
	planRepo    plannerDomain.Repository
	busySource  services.BusySource
	outboxRepo  outbox.Repository
	uow         sharedApplication.UnitOfWork
	breakPolicy plannerDomain.BreakPolicy
	scorePolicy plannerDomain.ScorePolicy
}

// NewCreatePlanHandler creates a new handler.
func NewCreatePlanHandler(
	planRepo plannerDomain.Repository,
	busySource services.BusySource,
	outboxRepo outbox.Repository,
	uow sharedApplication.UnitOfWork,
	breakPolicy plannerDomain.BreakPolicy,
	scorePolicy plannerDomain.ScorePolicy,
) *CreatePlanHandler {
	return &CreatePlanHandler{
		planRepo:    planRepo,
		busySource:  busySource,
		outboxRepo:  outboxRepo,
		uow:         uow,
		breakPolicy: breakPolicy,
		scorePolicy: scorePolicy,
	}
}

// Handle executes the command.
func (h *CreatePlanHandler) Handle(ctx context.Context, cmd CreatePlanCommand) (*CreatePlanResult, error) {
	window, err := plannerDomain.NewWindow(cmd.WindowStart, cmd.WindowEnd)
	if err != nil {
		return nil, err
	}

	requests, err := buildRequests(cmd.Requests)
	if err != nil {
		return nil, err
	}

	busy, err := h.busySource.BusyEvents(ctx, cmd.UserID, window)
	if err != nil {
		return nil, fmt.Errorf("fetch busy events: %w", err)
	}

	schedule, err := plannerDomain.Optimize(window, busy, requests, h.breakPolicy, h.scorePolicy)
	if err != nil {
		return nil, err
	}

	date := startOfDay(cmd.WindowStart)

	existing, err := h.planRepo.FindByUserAndDate(ctx, cmd.UserID, date)
	if err != nil && !errors.Is(err, plannerDomain.ErrPlanNotFound) {
		return nil, err
	}
	if existing != nil && !cmd.Replace {
		return nil, plannerDomain.ErrPlanExists
	}

	plan, err := plannerDomain.NewStudyPlan(cmd.UserID, date, schedule)
	if err != nil {
		return nil, err
	}

	err = sharedApplication.WithUnitOfWork(ctx, h.uow, func(ctx context.Context) error {
		if existing != nil {
			if err := h.planRepo.Delete(ctx, existing.ID()); err != nil {
				return err
			}
		}
		if err := h.planRepo.Save(ctx, plan); err != nil {
			return err
		}

		for _, event := range plan.DomainEvents() {
			msg, err := outbox.NewMessage(event)
			if err != nil {
				return err
			}
			if err := h.outboxRepo.Save(ctx, msg); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	plan.ClearDomainEvents()

	return &CreatePlanResult{Plan: plan, Notes: schedule.Notes()}, nil
}

func buildRequests(inputs []StudyRequestInput) ([]plannerDomain.StudyRequest, error) {
	requests := make([]plannerDomain.StudyRequest, 0, len(inputs))
	for _, in := range inputs {
		difficulty := plannerDomain.DifficultyForSubject(in.Subject)
		if in.Difficulty != "" {
			parsed, err := plannerDomain.ParseDifficulty(in.Difficulty)
			if err != nil {
				return nil, err
			}
			difficulty = parsed
		}

		req, err := plannerDomain.NewStudyRequest(in.Subject, in.Duration, difficulty)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
