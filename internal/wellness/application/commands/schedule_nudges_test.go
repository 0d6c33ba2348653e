package commands

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	plannerDomain "github.com/ayaanrathod/studybalance/internal/planner/domain"
	"github.com/ayaanrathod/studybalance/internal/wellness/domain"
	"github.com/ayaanrathod/studybalance/internal/wellness/services"
)

type stubPlanRepo struct {
	plan *plannerDomain.StudyPlan
	err  error
}

func (r *stubPlanRepo) Save(context.Context, *plannerDomain.StudyPlan) error { return nil }

func (r *stubPlanRepo) FindByID(context.Context, uuid.UUID) (*plannerDomain.StudyPlan, error) {
	return r.plan, r.err
}

func (r *stubPlanRepo) FindByUserAndDate(context.Context, uuid.UUID, time.Time) (*plannerDomain.StudyPlan, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.plan, nil
}

func (r *stubPlanRepo) FindByUser(context.Context, uuid.UUID) ([]*plannerDomain.StudyPlan, error) {
	return nil, nil
}

func (r *stubPlanRepo) Delete(context.Context, uuid.UUID) error { return nil }

type capturePublisher struct {
	payloads [][]byte
	err      error
}

func (p *capturePublisher) Publish(_ context.Context, routingKey string, payload []byte) error {
	if p.err != nil {
		return p.err
	}
	if routingKey != RoutingKeyNudgeDue {
		return errors.New("unexpected routing key " + routingKey)
	}
	p.payloads = append(p.payloads, payload)
	return nil
}

func (p *capturePublisher) Close() error { return nil }

func at(h, m int) time.Time {
	return time.Date(2026, time.September, 1, h, m, 0, 0, time.UTC)
}

func planForTest(t *testing.T) *plannerDomain.StudyPlan {
	t.Helper()

	window, err := plannerDomain.NewWindow(at(9, 0), at(12, 0))
	require.NoError(t, err)

	math, err := plannerDomain.NewStudyRequest("Math", 60*time.Minute, plannerDomain.DifficultyHigh)
	require.NoError(t, err)

	schedule, err := plannerDomain.Optimize(window, nil, []plannerDomain.StudyRequest{math},
		plannerDomain.DefaultBreakPolicy(), plannerDomain.DefaultScorePolicy())
	require.NoError(t, err)

	plan, err := plannerDomain.NewStudyPlan(uuid.New(), at(0, 0), schedule)
	require.NoError(t, err)
	return plan
}

func TestPublishDueNudgesPublishesWithinHorizon(t *testing.T) {
	publisher := &capturePublisher{}
	handler := NewPublishDueNudgesHandler(&stubPlanRepo{plan: planForTest(t)},
		services.NewNudgePlanner(), publisher, nil)

	// The Math block runs 09:00-10:00, so its break reminder is due 09:45.
	published, err := handler.Handle(context.Background(), PublishDueNudgesCommand{
		UserID:  uuid.New(),
		Date:    at(0, 0),
		Now:     at(9, 40),
		Horizon: 15 * time.Minute,
	})
	require.NoError(t, err)

	require.Len(t, published, 1)
	assert.Equal(t, domain.NudgeBreakReminder, published[0].Type)

	require.Len(t, publisher.payloads, 1)
	var envelope NudgeEnvelope
	require.NoError(t, json.Unmarshal(publisher.payloads[0], &envelope))
	assert.Equal(t, domain.NudgeBreakReminder, envelope.Nudge.Type)
	assert.NotEmpty(t, envelope.UserID)
}

func TestPublishDueNudgesSkipsOutsideHorizon(t *testing.T) {
	publisher := &capturePublisher{}
	handler := NewPublishDueNudgesHandler(&stubPlanRepo{plan: planForTest(t)},
		services.NewNudgePlanner(), publisher, nil)

	published, err := handler.Handle(context.Background(), PublishDueNudgesCommand{
		UserID:  uuid.New(),
		Date:    at(0, 0),
		Now:     at(9, 0),
		Horizon: 15 * time.Minute,
	})
	require.NoError(t, err)
	assert.Empty(t, published)
	assert.Empty(t, publisher.payloads)
}

func TestPublishDueNudgesMissingPlan(t *testing.T) {
	handler := NewPublishDueNudgesHandler(&stubPlanRepo{err: plannerDomain.ErrPlanNotFound},
		services.NewNudgePlanner(), &capturePublisher{}, nil)

	_, err := handler.Handle(context.Background(), PublishDueNudgesCommand{
		UserID: uuid.New(),
		Date:   at(0, 0),
		Now:    at(9, 0),
	})
	assert.ErrorIs(t, err, plannerDomain.ErrPlanNotFound)
}

type stubSender struct {
	to, subject, body string
	err               error
}

func (s *stubSender) SendEmail(_ context.Context, to, subject, body string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.to, s.subject, s.body = to, subject, body
	return "msg-1", nil
}

func TestSendNudgeDeliversRenderedEmail(t *testing.T) {
	sender := &stubSender{}
	handler := NewSendNudgeHandler(sender, nil)

	nudge, err := handler.Handle(context.Background(), SendNudgeCommand{
		To:   "student@example.com",
		Type: domain.NudgeHydration,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.NudgeHydration, nudge.Type)
	assert.Equal(t, "student@example.com", sender.to)
	assert.Equal(t, "Hydration Reminder", sender.subject)
	assert.Contains(t, sender.body, "hydrated")
}

func TestSendNudgePropagatesSendFailure(t *testing.T) {
	handler := NewSendNudgeHandler(&stubSender{err: errors.New("smtp down")}, nil)

	_, err := handler.Handle(context.Background(), SendNudgeCommand{
		To:   "student@example.com",
		Type: domain.NudgePostureCheck,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
}

func TestSendNudgePrerenderedContentSentAsIs(t *testing.T) {
	sender := &stubSender{}
	handler := NewSendNudgeHandler(sender, nil)

	prerendered := domain.Nudge{
		Type:    domain.NudgeBreakReminder,
		DueAt:   at(9, 45),
		Subject: "Time for a Study Break",
		Body:    "You've been studying Math for 45 minutes.",
	}
	nudge, err := handler.Handle(context.Background(), SendNudgeCommand{
		To:    "student@example.com",
		Nudge: &prerendered,
	})
	require.NoError(t, err)

	assert.Equal(t, prerendered, nudge)
	assert.Equal(t, prerendered.Body, sender.body)
}

func TestSendNudgeUnknownType(t *testing.T) {
	handler := NewSendNudgeHandler(&stubSender{}, nil)

	_, err := handler.Handle(context.Background(), SendNudgeCommand{
		To:   "student@example.com",
		Type: domain.NudgeType("nap_time"),
	})
	assert.ErrorIs(t, err, domain.ErrUnknownNudgeType)
}
