package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	plannerDomain "github.com/ayaanrathod/studybalance/internal/planner/domain"
)

// EventLister fetches calendar events within a time range.
type EventLister interface {
	ListEvents(ctx context.Context, userID uuid.UUID, start, end time.Time, onlyManaged bool) ([]CalendarEvent, error)
}

// BusyProvider adapts remote calendar events into the planner's busy
// intervals. It implements the planner's BusySource port.
type BusyProvider struct {
	lister EventLister
	logger *slog.Logger
}

// NewBusyProvider creates a busy provider backed by a calendar.
func NewBusyProvider(lister EventLister, logger *slog.Logger) *BusyProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &BusyProvider{lister: lister, logger: logger}
}

// BusyEvents returns the user's existing commitments within the window.
// Fetch failures propagate: an unreachable calendar must never be planned
// as an empty day. Blocks this application wrote itself are excluded so a
// plan can be regenerated without colliding with its previous version.
func (p *BusyProvider) BusyEvents(ctx context.Context, userID uuid.UUID, window plannerDomain.Window) ([]plannerDomain.BusyEvent, error) {
	events, err := p.lister.ListEvents(ctx, userID, window.Start(), window.End(), false)
	if err != nil {
		return nil, fmt.Errorf("list calendar events: %w", err)
	}

	busy := make([]plannerDomain.BusyEvent, 0, len(events))
	for _, ev := range events {
		if ev.IsManaged {
			continue
		}
		if !ev.EndTime.After(ev.StartTime) {
			p.logger.Warn("skipping calendar event with invalid time range",
				"summary", ev.Summary,
				"start", ev.StartTime,
				"end", ev.EndTime,
			)
			continue
		}

		event, err := plannerDomain.NewBusyEvent(ev.Summary, ev.StartTime, ev.EndTime)
		if err != nil {
			return nil, err
		}
		busy = append(busy, event)
	}
	return busy, nil
}
