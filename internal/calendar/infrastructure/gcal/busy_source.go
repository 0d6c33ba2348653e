// Package gcal adapts the toolkit's Google Calendar tools to the planner's
// BusySource port. It serves deployments that connect a Google account
// through the toolkit instead of a CalDAV server.
package gcal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	plannerDomain "github.com/ayaanrathod/studybalance/internal/planner/domain"
	"github.com/ayaanrathod/studybalance/internal/toolkit"
)

// BusySource fetches calendar commitments through the toolkit API.
type BusySource struct {
	client *toolkit.Client
	logger *slog.Logger
}

// NewBusySource creates a busy source backed by the toolkit's calendar tools.
func NewBusySource(client *toolkit.Client, logger *slog.Logger) *BusySource {
	if logger == nil {
		logger = slog.Default()
	}
	return &BusySource{client: client, logger: logger}
}

// BusyEvents returns the user's commitments overlapping the window. Fetch
// failures propagate: an unreachable calendar must never be planned as an
// empty day. All-day events carry no timed interval and are skipped.
func (s *BusySource) BusyEvents(ctx context.Context, _ uuid.UUID, window plannerDomain.Window) ([]plannerDomain.BusyEvent, error) {
	events, err := s.client.ListCalendarEvents(ctx, window.Start(), window.End())
	if err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}

	busy := make([]plannerDomain.BusyEvent, 0, len(events))
	for _, ev := range events {
		if ev.Start.DateTime == "" || ev.End.DateTime == "" {
			s.logger.Debug("skipping all-day calendar event", "summary", ev.Summary)
			continue
		}
		start, err := time.Parse(time.RFC3339, ev.Start.DateTime)
		if err != nil {
			s.logger.Warn("skipping calendar event with unparseable start",
				"summary", ev.Summary, "start", ev.Start.DateTime)
			continue
		}
		end, err := time.Parse(time.RFC3339, ev.End.DateTime)
		if err != nil {
			s.logger.Warn("skipping calendar event with unparseable end",
				"summary", ev.Summary, "end", ev.End.DateTime)
			continue
		}
		if !end.After(start) {
			s.logger.Warn("skipping calendar event with invalid time range",
				"summary", ev.Summary, "start", start, "end", end)
			continue
		}

		event, err := plannerDomain.NewBusyEvent(ev.Summary, start, end)
		if err != nil {
			return nil, err
		}
		busy = append(busy, event)
	}
	return busy, nil
}
