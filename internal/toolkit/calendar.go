package toolkit

import (
	"context"
	"time"
)

// CalendarEvent is one event as returned by the calendar tool.
type CalendarEvent struct {
	ID      string `json:"id"`
	Summary string `json:"summary"`
	Start   struct {
		DateTime string `json:"dateTime"`
	} `json:"start"`
	End struct {
		DateTime string `json:"dateTime"`
	} `json:"end"`
}

// ListCalendarEvents fetches the user's primary calendar events in a
// time range.
func (c *Client) ListCalendarEvents(ctx context.Context, start, end time.Time) ([]CalendarEvent, error) {
	var events []CalendarEvent
	err := c.Execute(ctx, "GoogleCalendar.ListEvents", map[string]any{
		"min_end_datetime":   start.Format(time.RFC3339),
		"max_start_datetime": end.Format(time.RFC3339),
		"calendar_id":        "primary",
		"max_results":        50,
	}, &events)
	if err != nil {
		return nil, err
	}
	return events, nil
}
