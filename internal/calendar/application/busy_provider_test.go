package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	plannerDomain "github.com/ayaanrathod/studybalance/internal/planner/domain"
)

type stubLister struct {
	events []CalendarEvent
	err    error
}

func (s *stubLister) ListEvents(context.Context, uuid.UUID, time.Time, time.Time, bool) ([]CalendarEvent, error) {
	return s.events, s.err
}

func testWindow(t *testing.T) plannerDomain.Window {
	t.Helper()
	start := time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)
	w, err := plannerDomain.NewWindow(start, start.Add(8*time.Hour))
	require.NoError(t, err)
	return w
}

func TestBusyProviderMapsEvents(t *testing.T) {
	start := time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)
	lister := &stubLister{events: []CalendarEvent{
		{Summary: "Lecture", StartTime: start, EndTime: start.Add(90 * time.Minute)},
	}}

	busy, err := NewBusyProvider(lister, nil).BusyEvents(context.Background(), uuid.New(), testWindow(t))
	require.NoError(t, err)

	require.Len(t, busy, 1)
	assert.Equal(t, "Lecture", busy[0].Title())
	assert.Equal(t, start, busy[0].Interval().Start())
}

func TestBusyProviderSkipsManagedAndMalformedEvents(t *testing.T) {
	start := time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)
	lister := &stubLister{events: []CalendarEvent{
		{Summary: "Earlier study block", StartTime: start, EndTime: start.Add(time.Hour), IsManaged: true},
		{Summary: "Broken", StartTime: start, EndTime: start},
		{Summary: "Lecture", StartTime: start, EndTime: start.Add(time.Hour)},
	}}

	busy, err := NewBusyProvider(lister, nil).BusyEvents(context.Background(), uuid.New(), testWindow(t))
	require.NoError(t, err)

	require.Len(t, busy, 1)
	assert.Equal(t, "Lecture", busy[0].Title())
}

func TestBusyProviderPropagatesFetchErrors(t *testing.T) {
	lister := &stubLister{err: errors.New("unauthorized")}

	_, err := NewBusyProvider(lister, nil).BusyEvents(context.Background(), uuid.New(), testWindow(t))

	require.Error(t, err)
	assert.ErrorContains(t, err, "unauthorized")
}
