package toolkit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		BaseURL: server.URL,
		UserID:  "student@example.com",
	}, nil)
	require.NoError(t, err)
	return client
}

func TestExecuteSendsToolRequest(t *testing.T) {
	var got executeRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/tools/execute", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"output":{"value":{"ok":true}}}`))
	})

	var out struct {
		OK bool `json:"ok"`
	}
	err := client.Execute(context.Background(), "Gmail.ListEmails", map[string]any{"n_emails": 5}, &out)
	require.NoError(t, err)

	assert.Equal(t, "Gmail.ListEmails", got.ToolName)
	assert.Equal(t, "student@example.com", got.UserID)
	assert.True(t, out.OK)
}

func TestExecuteDiscardsOutputWhenOutIsNil(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"output":{"value":[1,2,3]}}`))
	})

	err := client.Execute(context.Background(), "Gmail.SendEmail", nil, nil)
	assert.NoError(t, err)
}

func TestExecuteAuthorizationRequired(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	err := client.Execute(context.Background(), "Gmail.ListEmails", nil, nil)
	assert.ErrorIs(t, err, ErrAuthorizationRequired)
}

func TestExecuteToolErrorInBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"error":"tool authorization required for Gmail"}`))
	})

	err := client.Execute(context.Background(), "Gmail.ListEmails", nil, nil)
	assert.ErrorIs(t, err, ErrAuthorizationRequired)
}

func TestExecuteCircuitOpensAfterConsecutiveFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	client, err := NewClient(Config{
		BaseURL:          server.URL,
		UserID:           "student@example.com",
		FailureThreshold: 3,
		OpenTimeout:      time.Minute,
	}, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		err := client.Execute(context.Background(), "Gmail.ListEmails", nil, nil)
		require.Error(t, err)
		require.NotErrorIs(t, err, ErrCircuitOpen)
	}

	err = client.Execute(context.Background(), "Gmail.ListEmails", nil, nil)
	assert.ErrorIs(t, err, ErrCircuitOpen)
}

func TestListEmails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"output":{"value":[
			{"id":"m1","subject":"Exam schedule","snippet":"see attached","from":"prof@university.edu","date":"2026-09-01T10:30:00Z"},
			{"id":"m2","subject":"Hi","body":"hello","sender":"friend@example.com","timestamp":1756719000}
		]}}`))
	})

	emails, err := client.ListEmails(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, emails, 2)

	assert.Equal(t, "see attached", emails[0].BodyText())
	assert.Equal(t, "prof@university.edu", emails[0].SenderAddress())
	assert.Equal(t, time.Date(2026, time.September, 1, 10, 30, 0, 0, time.UTC), emails[0].ReceivedAt())

	assert.Equal(t, "hello", emails[1].BodyText())
	assert.Equal(t, "friend@example.com", emails[1].SenderAddress())
	assert.False(t, emails[1].ReceivedAt().IsZero())
}

func TestSendEmail(t *testing.T) {
	var got executeRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"output":{"value":{"id":"msg-42"}}}`))
	})

	id, err := client.SendEmail(context.Background(), "student@example.com", "Break time", "Step away for ten minutes.")
	require.NoError(t, err)
	assert.Equal(t, "msg-42", id)
	assert.Equal(t, "Gmail.SendEmail", got.ToolName)

	input, ok := got.Input.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Break time", input["subject"])
	assert.Equal(t, "text", input["body_format"])
}

func TestReceivedAtUnparseableDate(t *testing.T) {
	email := Email{Date: "not a date"}
	assert.True(t, email.ReceivedAt().IsZero())
}
