package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayaanrathod/studybalance/internal/inbox/application/services"
	inboxDomain "github.com/ayaanrathod/studybalance/internal/inbox/domain"
	"github.com/ayaanrathod/studybalance/internal/shared/infrastructure/outbox"
)

type memoryAnalysisRepo struct {
	analyses []*inboxDomain.Analysis
}

func (r *memoryAnalysisRepo) Save(_ context.Context, analysis *inboxDomain.Analysis) error {
	r.analyses = append(r.analyses, analysis)
	return nil
}

func (r *memoryAnalysisRepo) FindLatestByUser(_ context.Context, userID uuid.UUID) (*inboxDomain.Analysis, error) {
	for i := len(r.analyses) - 1; i >= 0; i-- {
		if r.analyses[i].UserID() == userID {
			return r.analyses[i], nil
		}
	}
	return nil, inboxDomain.ErrAnalysisNotFound
}

func (r *memoryAnalysisRepo) FindByUser(_ context.Context, userID uuid.UUID, _ int) ([]*inboxDomain.Analysis, error) {
	var out []*inboxDomain.Analysis
	for _, a := range r.analyses {
		if a.UserID() == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

type memoryOutbox struct {
	messages []*outbox.Message
}

func (o *memoryOutbox) Save(_ context.Context, msg *outbox.Message) error {
	o.messages = append(o.messages, msg)
	return nil
}

func (o *memoryOutbox) GetUnpublished(context.Context, int) ([]*outbox.Message, error) {
	return nil, nil
}
func (o *memoryOutbox) MarkPublished(context.Context, int64) error { return nil }
func (o *memoryOutbox) MarkFailed(context.Context, int64, string, time.Time) error {
	return nil
}

type noopUow struct{}

func (noopUow) Begin(ctx context.Context) (context.Context, error) { return ctx, nil }
func (noopUow) Commit(context.Context) error                       { return nil }
func (noopUow) Rollback(context.Context) error                     { return nil }

type stubMailSource struct {
	emails []inboxDomain.EmailMessage
	err    error
	calls  int
}

func (s *stubMailSource) ListEmails(context.Context, int) ([]inboxDomain.EmailMessage, error) {
	s.calls++
	return s.emails, s.err
}

type memoryCache struct {
	entries map[string]*inboxDomain.Analysis
	getErr  error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]*inboxDomain.Analysis)}
}

func (c *memoryCache) Get(_ context.Context, userID string) (*inboxDomain.Analysis, error) {
	if c.getErr != nil {
		return nil, c.getErr
	}
	return c.entries[userID], nil
}

func (c *memoryCache) Set(_ context.Context, analysis *inboxDomain.Analysis) error {
	c.entries[analysis.UserID().String()] = analysis
	return nil
}

func newAnalyzeHandler(repo *memoryAnalysisRepo, mail *stubMailSource, cache services.AnalysisCache, ob *memoryOutbox) *AnalyzeInboxHandler {
	return NewAnalyzeInboxHandler(repo, mail, services.NewAnalyzer(), cache, ob, noopUow{}, nil)
}

func recentEmails() []inboxDomain.EmailMessage {
	now := time.Now().UTC()
	return []inboxDomain.EmailMessage{
		{ID: "1", Subject: "Urgent assignment deadline", Sender: "prof@university.edu", ReceivedAt: now.Add(-2 * time.Hour)},
		{ID: "2", Subject: "Lecture notes for the course", Sender: "prof@university.edu", ReceivedAt: now.Add(-26 * time.Hour)},
		{ID: "3", Subject: "Lunch on Friday?", Sender: "friend@example.com", ReceivedAt: now.Add(-3 * time.Hour)},
	}
}

func TestAnalyzeInboxPersistsAnalysisAndOutboxEvent(t *testing.T) {
	repo := &memoryAnalysisRepo{}
	ob := &memoryOutbox{}
	mail := &stubMailSource{emails: recentEmails()}
	handler := newAnalyzeHandler(repo, mail, nil, ob)

	userID := uuid.New()
	analysis, err := handler.Handle(context.Background(), AnalyzeInboxCommand{UserID: userID})
	require.NoError(t, err)

	require.NotNil(t, analysis)
	assert.Equal(t, userID, analysis.UserID())
	assert.Equal(t, 3, analysis.TotalEmails())
	assert.Equal(t, 7, analysis.DaysAnalyzed())
	assert.Empty(t, analysis.DomainEvents())
	require.Len(t, repo.analyses, 1)

	require.Len(t, ob.messages, 1)
	assert.Equal(t, inboxDomain.EventTypeAnalysisCompleted, ob.messages[0].RoutingKey)
}

func TestAnalyzeInboxServesCachedResult(t *testing.T) {
	repo := &memoryAnalysisRepo{}
	mail := &stubMailSource{emails: recentEmails()}
	cache := newMemoryCache()
	handler := newAnalyzeHandler(repo, mail, cache, &memoryOutbox{})

	userID := uuid.New()
	first, err := handler.Handle(context.Background(), AnalyzeInboxCommand{UserID: userID})
	require.NoError(t, err)
	require.Equal(t, 1, mail.calls)

	second, err := handler.Handle(context.Background(), AnalyzeInboxCommand{UserID: userID})
	require.NoError(t, err)

	assert.Equal(t, 1, mail.calls, "cached result should skip the mail provider")
	assert.Equal(t, first.ID(), second.ID())
	assert.Len(t, repo.analyses, 1)
}

func TestAnalyzeInboxForceBypassesCache(t *testing.T) {
	repo := &memoryAnalysisRepo{}
	mail := &stubMailSource{emails: recentEmails()}
	cache := newMemoryCache()
	handler := newAnalyzeHandler(repo, mail, cache, &memoryOutbox{})

	userID := uuid.New()
	_, err := handler.Handle(context.Background(), AnalyzeInboxCommand{UserID: userID})
	require.NoError(t, err)

	_, err = handler.Handle(context.Background(), AnalyzeInboxCommand{UserID: userID, Force: true})
	require.NoError(t, err)

	assert.Equal(t, 2, mail.calls)
	assert.Len(t, repo.analyses, 2)
}

func TestAnalyzeInboxToleratesCacheFailure(t *testing.T) {
	repo := &memoryAnalysisRepo{}
	mail := &stubMailSource{emails: recentEmails()}
	cache := newMemoryCache()
	cache.getErr = errors.New("redis unreachable")
	handler := newAnalyzeHandler(repo, mail, cache, &memoryOutbox{})

	analysis, err := handler.Handle(context.Background(), AnalyzeInboxCommand{UserID: uuid.New()})
	require.NoError(t, err)
	assert.NotNil(t, analysis)
}

func TestAnalyzeInboxPropagatesMailFailure(t *testing.T) {
	repo := &memoryAnalysisRepo{}
	mail := &stubMailSource{err: errors.New("toolkit unreachable")}
	handler := newAnalyzeHandler(repo, mail, nil, &memoryOutbox{})

	_, err := handler.Handle(context.Background(), AnalyzeInboxCommand{UserID: uuid.New()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "toolkit unreachable")
	assert.Empty(t, repo.analyses)
}
