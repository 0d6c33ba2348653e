// Package application defines the calendar context's DTOs and the adapters
// bridging external calendars to the planner.
package application

import (
	"time"

	"github.com/google/uuid"
)

// Calendar describes one calendar collection on the remote server.
type Calendar struct {
	ID      string
	Name    string
	Primary bool
}

// CalendarEvent is one event fetched from the remote calendar. IsManaged
// marks events this application created itself.
type CalendarEvent struct {
	ID          string
	Summary     string
	Description string
	Location    string
	Status      string
	StartTime   time.Time
	EndTime     time.Time
	IsAllDay    bool
	IsManaged   bool
}

// ScheduleEntry is one study block headed for the remote calendar.
type ScheduleEntry struct {
	ID          uuid.UUID
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
}

// SyncResult summarizes one push to the remote calendar.
type SyncResult struct {
	Created int
	Updated int
	Deleted int
	Failed  int
}
