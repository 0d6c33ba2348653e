package caldav

import (
	"strings"
	"testing"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"

	calendarApp "github.com/ayaanrathod/studybalance/internal/calendar/application"
)

func TestNewSyncer(t *testing.T) {
	syncer := NewSyncer("https://caldav.example.com", "user", "pass", nil)

	if syncer == nil {
		t.Fatal("expected non-nil syncer")
	}
	if syncer.baseURL != "https://caldav.example.com" {
		t.Errorf("expected baseURL 'https://caldav.example.com', got %s", syncer.baseURL)
	}
	if syncer.deleteMissing {
		t.Error("expected deleteMissing to be false by default")
	}
	if syncer.calendarPath != "" {
		t.Errorf("expected empty calendarPath, got %s", syncer.calendarPath)
	}
}

func TestSyncerBuilders(t *testing.T) {
	syncer := NewSyncer("https://caldav.example.com", "user", "pass", nil)

	if syncer.WithDeleteMissing(true) != syncer {
		t.Error("expected same syncer instance returned for chaining")
	}
	if !syncer.deleteMissing {
		t.Error("expected deleteMissing to be true")
	}

	if syncer.WithCalendarPath("/calendars/user/study/") != syncer {
		t.Error("expected same syncer instance returned for chaining")
	}
	if syncer.calendarPath != "/calendars/user/study/" {
		t.Errorf("unexpected calendarPath %s", syncer.calendarPath)
	}
}

func TestToICalendar(t *testing.T) {
	entryID := uuid.New()
	start := time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC)
	end := time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC)

	entry := calendarApp.ScheduleEntry{
		ID:          entryID,
		Title:       "Study: Math",
		Description: "Subject: Math\nDifficulty: high",
		StartTime:   start,
		EndTime:     end,
	}

	cal := toICalendar(entry)

	if version := cal.Props.Get(ical.PropVersion); version == nil || version.Value != "2.0" {
		t.Error("expected VERSION:2.0")
	}
	if prodID := cal.Props.Get(ical.PropProductID); prodID == nil || !strings.Contains(prodID.Value, "StudyBalance") {
		t.Error("expected PRODID containing 'StudyBalance'")
	}

	if len(cal.Children) != 1 {
		t.Fatalf("expected 1 child (VEVENT), got %d", len(cal.Children))
	}

	vevent := cal.Children[0]
	if vevent.Name != ical.CompEvent {
		t.Errorf("expected VEVENT, got %s", vevent.Name)
	}
	if uid := vevent.Props.Get(ical.PropUID); uid == nil || uid.Value != entryID.String() {
		t.Error("expected UID to match entry ID")
	}
	if summary := vevent.Props.Get(ical.PropSummary); summary == nil || summary.Value != "Study: Math" {
		t.Error("expected SUMMARY 'Study: Math'")
	}
	if desc := vevent.Props.Get(ical.PropDescription); desc == nil || !strings.Contains(desc.Value, "Managed by StudyBalance") {
		t.Error("expected DESCRIPTION with managed marker")
	}
	if marker := vevent.Props.Get(PropXStudyBalance); marker == nil || marker.Value != "1" {
		t.Error("expected X-STUDYBALANCE:1")
	}
}

func TestIsManagedEventRoundTrip(t *testing.T) {
	entry := calendarApp.ScheduleEntry{
		ID:        uuid.New(),
		Title:     "Study: Physics",
		StartTime: time.Date(2026, time.September, 1, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2026, time.September, 1, 10, 0, 0, 0, time.UTC),
	}

	obj := &caldav.CalendarObject{
		Path: "/calendars/user/study/" + entry.ID.String() + ".ics",
		Data: toICalendar(entry),
	}

	if !isManagedEvent(obj) {
		t.Error("expected event written by the syncer to be recognized as managed")
	}

	parsed := parseCalendarObject(obj)
	if parsed == nil {
		t.Fatal("expected parsed event")
	}
	if !parsed.IsManaged {
		t.Error("expected parsed event to be flagged as managed")
	}
	if parsed.Summary != "Study: Physics" {
		t.Errorf("unexpected summary %q", parsed.Summary)
	}
	if !parsed.StartTime.Equal(entry.StartTime) || !parsed.EndTime.Equal(entry.EndTime) {
		t.Error("expected start/end times to round-trip")
	}
}

func TestIsManagedEventForeignEvent(t *testing.T) {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//SomeoneElse//EN")

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, "external-1")
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, time.Date(2026, time.September, 1, 14, 0, 0, 0, time.UTC))
	event.Props.SetDateTime(ical.PropDateTimeEnd, time.Date(2026, time.September, 1, 15, 0, 0, 0, time.UTC))
	event.Props.SetText(ical.PropSummary, "Dentist")
	cal.Children = append(cal.Children, event.Component)

	obj := &caldav.CalendarObject{Path: "/calendars/user/study/external-1.ics", Data: cal}

	if isManagedEvent(obj) {
		t.Error("expected foreign event not to be managed")
	}

	parsed := parseCalendarObject(obj)
	if parsed == nil || parsed.IsManaged {
		t.Error("expected parsed foreign event with IsManaged false")
	}
}

func TestIsManagedEventNilSafety(t *testing.T) {
	if isManagedEvent(nil) {
		t.Error("expected nil object not to be managed")
	}
	if isManagedEvent(&caldav.CalendarObject{}) {
		t.Error("expected object without data not to be managed")
	}
	if parseCalendarObject(nil) != nil {
		t.Error("expected nil parse result for nil object")
	}
}
