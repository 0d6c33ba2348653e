package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	mu        sync.Mutex
	messages  []*Message
	published map[int64]bool
	failed    map[int64]string
}

func newFakeRepo(messages ...*Message) *fakeRepo {
	return &fakeRepo{
		messages:  messages,
		published: make(map[int64]bool),
		failed:    make(map[int64]string),
	}
}

func (r *fakeRepo) Save(_ context.Context, msg *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.ID = int64(len(r.messages) + 1)
	r.messages = append(r.messages, msg)
	return nil
}

func (r *fakeRepo) GetUnpublished(_ context.Context, limit int) ([]*Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*Message
	for _, msg := range r.messages {
		if len(out) >= limit {
			break
		}
		if !r.published[msg.ID] {
			out = append(out, msg)
		}
	}
	return out, nil
}

func (r *fakeRepo) MarkPublished(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published[id] = true
	return nil
}

func (r *fakeRepo) MarkFailed(_ context.Context, id int64, errMsg string, _ time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed[id] = errMsg
	for _, msg := range r.messages {
		if msg.ID == id {
			msg.RetryCount++
		}
	}
	return nil
}

type fakePublisher struct {
	mu       sync.Mutex
	err      error
	routings []string
}

func (p *fakePublisher) Publish(_ context.Context, routingKey string, _ []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.routings = append(p.routings, routingKey)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func testMessage(id int64, routingKey string) *Message {
	return &Message{
		ID:         id,
		EventID:    uuid.New(),
		EventType:  routingKey,
		RoutingKey: routingKey,
		Payload:    json.RawMessage(`{}`),
		CreatedAt:  time.Now(),
	}
}

func TestProcessorPublishesBatch(t *testing.T) {
	repo := newFakeRepo(testMessage(1, "planner.plan.created"), testMessage(2, "inbox.analysis.completed"))
	pub := &fakePublisher{}
	proc := NewProcessor(repo, pub, DefaultProcessorConfig(), nil)

	require.NoError(t, proc.ProcessOnce(context.Background()))

	assert.Equal(t, []string{"planner.plan.created", "inbox.analysis.completed"}, pub.routings)
	assert.True(t, repo.published[1])
	assert.True(t, repo.published[2])
}

func TestProcessorMarksFailedOnPublishError(t *testing.T) {
	repo := newFakeRepo(testMessage(1, "planner.plan.created"))
	pub := &fakePublisher{err: errors.New("broker unavailable")}
	proc := NewProcessor(repo, pub, DefaultProcessorConfig(), nil)

	require.NoError(t, proc.ProcessOnce(context.Background()))

	assert.False(t, repo.published[1])
	assert.Equal(t, "broker unavailable", repo.failed[1])
	assert.Equal(t, 1, repo.messages[0].RetryCount)
}

func TestProcessorParksMessageAfterMaxRetries(t *testing.T) {
	msg := testMessage(1, "planner.plan.created")
	msg.RetryCount = 5
	repo := newFakeRepo(msg)
	pub := &fakePublisher{}
	proc := NewProcessor(repo, pub, DefaultProcessorConfig(), nil)

	require.NoError(t, proc.ProcessOnce(context.Background()))

	assert.Empty(t, pub.routings)
	assert.Equal(t, "max retries exceeded", repo.failed[1])
}

func TestRetryBackoffGrowsAndCaps(t *testing.T) {
	proc := NewProcessor(nil, nil, ProcessorConfig{
		RetryBackoffBase: time.Second,
		RetryBackoffMax:  10 * time.Second,
	}, nil)

	assert.Equal(t, time.Second, proc.retryBackoff(1))
	assert.Equal(t, 2*time.Second, proc.retryBackoff(2))
	assert.Equal(t, 8*time.Second, proc.retryBackoff(4))
	assert.Equal(t, 10*time.Second, proc.retryBackoff(5))
	assert.Equal(t, 10*time.Second, proc.retryBackoff(40))
}
