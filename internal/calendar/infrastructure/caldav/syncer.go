// Package caldav syncs study plans with CalDAV calendars (Apple Calendar,
// Fastmail, Nextcloud, Radicale, etc.).
package caldav

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"

	calendarApp "github.com/ayaanrathod/studybalance/internal/calendar/application"
)

// Common CalDAV server URLs.
const (
	AppleCalDAVURL    = "https://caldav.icloud.com"
	FastmailCalDAVURL = "https://caldav.fastmail.com"
)

// PropXStudyBalance marks events created by this application.
const PropXStudyBalance = "X-STUDYBALANCE"

// Syncer reads busy events from and writes study blocks to a CalDAV
// calendar.
type Syncer struct {
	baseURL       string
	username      string
	password      string // app-specific password for Apple
	calendarPath  string // specific calendar path, or empty for the default
	logger        *slog.Logger
	deleteMissing bool
}

// NewSyncer creates a CalDAV syncer.
func NewSyncer(baseURL, username, password string, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{
		baseURL:  baseURL,
		username: username,
		password: password,
		logger:   logger,
	}
}

// WithCalendarPath sets the specific calendar path to use.
func (s *Syncer) WithCalendarPath(path string) *Syncer {
	s.calendarPath = path
	return s
}

// WithDeleteMissing enables deletion of managed events missing from the
// current sync set.
func (s *Syncer) WithDeleteMissing(enabled bool) *Syncer {
	s.deleteMissing = enabled
	return s
}

// Sync upserts schedule entries into the CalDAV calendar.
func (s *Syncer) Sync(ctx context.Context, userID uuid.UUID, entries []calendarApp.ScheduleEntry) (*calendarApp.SyncResult, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}

	calPath, err := s.findCalendarPath(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar: %w", err)
	}

	result := &calendarApp.SyncResult{}
	keepPaths := make(map[string]struct{}, len(entries))

	for _, entry := range entries {
		eventPath := fmt.Sprintf("%s%s.ics", calPath, entry.ID.String())
		keepPaths[eventPath] = struct{}{}

		cal := toICalendar(entry)
		updated, err := s.upsertEvent(ctx, client, eventPath, cal)
		if err != nil {
			s.logger.Warn("caldav sync failed", "event_path", eventPath, "error", err)
			result.Failed++
			continue
		}
		if updated {
			result.Updated++
		} else {
			result.Created++
		}
	}

	if s.deleteMissing {
		deleted, err := s.deleteMissingEvents(ctx, client, calPath, keepPaths)
		if err != nil {
			s.logger.Warn("caldav delete missing failed", "error", err)
		} else {
			result.Deleted = deleted
		}
	}

	return result, nil
}

// ListCalendars returns calendars accessible to the user.
func (s *Syncer) ListCalendars(ctx context.Context, userID uuid.UUID) ([]calendarApp.Calendar, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to find principal: %w", err)
	}

	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar home set: %w", err)
	}

	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendars: %w", err)
	}

	calendars := make([]calendarApp.Calendar, 0, len(cals))
	for i, cal := range cals {
		calendars = append(calendars, calendarApp.Calendar{
			ID:      cal.Path,
			Name:    cal.Name,
			Primary: i == 0, // first calendar is usually the default
		})
	}
	return calendars, nil
}

// ListEvents returns events within the given time range. With onlyManaged
// set, only events this application created are returned.
func (s *Syncer) ListEvents(ctx context.Context, userID uuid.UUID, start, end time.Time, onlyManaged bool) ([]calendarApp.CalendarEvent, error) {
	client, err := s.getClient()
	if err != nil {
		return nil, err
	}

	calPath, err := s.findCalendarPath(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar: %w", err)
	}

	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:  "VCALENDAR",
			Props: []string{"VERSION"},
			Comps: []caldav.CalendarCompRequest{
				{
					Name:  "VEVENT",
					Props: []string{"SUMMARY", "DTSTART", "DTEND", "UID", "DESCRIPTION", "LOCATION", "STATUS", PropXStudyBalance},
				},
			},
		},
		CompFilter: caldav.CompFilter{
			Name: "VCALENDAR",
			Comps: []caldav.CompFilter{
				{
					Name:  "VEVENT",
					Start: start,
					End:   end,
				},
			},
		},
	}

	objects, err := client.QueryCalendar(ctx, calPath, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query calendar: %w", err)
	}

	events := make([]calendarApp.CalendarEvent, 0, len(objects))
	for _, obj := range objects {
		event := parseCalendarObject(&obj)
		if event == nil {
			continue
		}
		if onlyManaged && !event.IsManaged {
			continue
		}
		events = append(events, *event)
	}

	return events, nil
}

// DeleteEvent deletes a calendar event by entry ID.
func (s *Syncer) DeleteEvent(ctx context.Context, userID uuid.UUID, entryID uuid.UUID) error {
	client, err := s.getClient()
	if err != nil {
		return err
	}

	calPath, err := s.findCalendarPath(ctx, client)
	if err != nil {
		return fmt.Errorf("failed to find calendar: %w", err)
	}

	eventPath := fmt.Sprintf("%s%s.ics", calPath, entryID.String())
	return client.RemoveAll(ctx, eventPath)
}

func (s *Syncer) getClient() (*caldav.Client, error) {
	httpClient := &http.Client{Timeout: 30 * time.Second}

	client, err := caldav.NewClient(webdav.HTTPClientWithBasicAuth(httpClient, s.username, s.password), s.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	return client, nil
}

func (s *Syncer) findCalendarPath(ctx context.Context, client *caldav.Client) (string, error) {
	if s.calendarPath != "" {
		return s.calendarPath, nil
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal: %w", err)
	}

	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}

	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}

	if len(cals) == 0 {
		return "", fmt.Errorf("no calendars found")
	}

	return cals[0].Path, nil
}

func (s *Syncer) upsertEvent(ctx context.Context, client *caldav.Client, eventPath string, cal *ical.Calendar) (bool, error) {
	_, err := client.GetCalendarObject(ctx, eventPath)
	exists := err == nil

	_, err = client.PutCalendarObject(ctx, eventPath, cal)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (s *Syncer) deleteMissingEvents(ctx context.Context, client *caldav.Client, calPath string, keepPaths map[string]struct{}) (int, error) {
	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name: "VCALENDAR",
			Comps: []caldav.CalendarCompRequest{
				{
					Name:  "VEVENT",
					Props: []string{"UID", PropXStudyBalance},
				},
			},
		},
		CompFilter: caldav.CompFilter{
			Name: "VCALENDAR",
			Comps: []caldav.CompFilter{
				{Name: "VEVENT"},
			},
		},
	}

	objects, err := client.QueryCalendar(ctx, calPath, query)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, obj := range objects {
		if !isManagedEvent(&obj) {
			continue
		}
		if _, ok := keepPaths[obj.Path]; ok {
			continue
		}

		if err := client.RemoveAll(ctx, obj.Path); err != nil {
			s.logger.Warn("failed to delete caldav event", "path", obj.Path, "error", err)
			continue
		}
		deleted++
	}

	return deleted, nil
}

// isManagedEvent checks whether a calendar object carries the
// X-STUDYBALANCE marker property.
func isManagedEvent(obj *caldav.CalendarObject) bool {
	if obj == nil || obj.Data == nil {
		return false
	}

	for _, child := range obj.Data.Children {
		if child.Name != ical.CompEvent {
			continue
		}
		if props := child.Props[PropXStudyBalance]; len(props) > 0 && props[0].Value == "1" {
			return true
		}
	}
	return false
}

// toICalendar converts a schedule entry to an iCalendar document.
func toICalendar(entry calendarApp.ScheduleEntry) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//StudyBalance//Calendar Sync//EN")

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, entry.ID.String())
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, entry.StartTime.UTC())
	event.Props.SetDateTime(ical.PropDateTimeEnd, entry.EndTime.UTC())
	event.Props.SetText(ical.PropSummary, entry.Title)
	event.Props.SetText(ical.PropDescription, entry.Description+"\n\nManaged by StudyBalance")

	marker := ical.NewProp(PropXStudyBalance)
	marker.Value = "1"
	event.Props[PropXStudyBalance] = []ical.Prop{*marker}

	cal.Children = append(cal.Children, event.Component)

	return cal
}

func parseCalendarObject(obj *caldav.CalendarObject) *calendarApp.CalendarEvent {
	if obj == nil || obj.Data == nil {
		return nil
	}

	event := &calendarApp.CalendarEvent{
		ID:        obj.Path,
		IsManaged: isManagedEvent(obj),
	}

	for _, child := range obj.Data.Children {
		if child.Name != ical.CompEvent {
			continue
		}

		if props := child.Props[ical.PropSummary]; len(props) > 0 {
			event.Summary = props[0].Value
		}
		if props := child.Props[ical.PropDescription]; len(props) > 0 {
			event.Description = props[0].Value
		}
		if props := child.Props[ical.PropLocation]; len(props) > 0 {
			event.Location = props[0].Value
		}
		if props := child.Props[ical.PropStatus]; len(props) > 0 {
			event.Status = strings.ToLower(props[0].Value)
		}
		if props := child.Props[ical.PropUID]; len(props) > 0 {
			event.ID = props[0].Value
		}

		icalEvent := &ical.Event{Component: child}
		if start, err := icalEvent.DateTimeStart(time.UTC); err == nil {
			event.StartTime = start
		}
		if end, err := icalEvent.DateTimeEnd(time.UTC); err == nil {
			event.EndTime = end
		}

		if event.StartTime.Hour() == 0 && event.StartTime.Minute() == 0 &&
			event.EndTime.Hour() == 0 && event.EndTime.Minute() == 0 {
			event.IsAllDay = true
		}

		break // only the first VEVENT
	}

	return event
}
