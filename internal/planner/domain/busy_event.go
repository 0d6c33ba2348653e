package domain

import "time"

// BusyEvent is an existing calendar commitment with an opaque title. The
// optimizer only cares about its interval; the title travels along for
// diagnostics.
type BusyEvent struct {
	interval Interval
	title    string
}

// NewBusyEvent creates a busy event, validating its interval.
func NewBusyEvent(title string, start, end time.Time) (BusyEvent, error) {
	iv, err := NewInterval(start, end)
	if err != nil {
		return BusyEvent{}, err
	}
	return BusyEvent{interval: iv, title: title}, nil
}

func (e BusyEvent) Interval() Interval { return e.interval }
func (e BusyEvent) Title() string      { return e.title }

// MergeBusyEvents coalesces the events' intervals into a minimal disjoint
// occupied set. Overlapping commitments count once, never twice.
func MergeBusyEvents(events []BusyEvent) []Interval {
	if len(events) == 0 {
		return nil
	}
	intervals := make([]Interval, len(events))
	for i, e := range events {
		intervals[i] = e.interval
	}
	return MergeIntervals(intervals)
}
