// Package domain contains the study planner core: interval arithmetic,
// the schedule optimizer, and the StudyPlan aggregate.
package domain

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

var (
	// ErrInvalidInterval indicates an interval whose start is not before its end.
	ErrInvalidInterval = errors.New("interval start must be before end")

	// ErrInvalidWindow indicates a planning window outside the supported bounds.
	ErrInvalidWindow = errors.New("invalid planning window")
)

// Interval is a half-open time span [start, end).
type Interval struct {
	start time.Time
	end   time.Time
}

// NewInterval creates an interval, validating start < end.
func NewInterval(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, fmt.Errorf("%w: start=%s end=%s",
			ErrInvalidInterval, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Interval{start: start, end: end}, nil
}

func (i Interval) Start() time.Time        { return i.start }
func (i Interval) End() time.Time          { return i.end }
func (i Interval) Duration() time.Duration { return i.end.Sub(i.start) }

// IsZero reports whether the interval is the zero value.
func (i Interval) IsZero() bool {
	return i.start.IsZero() && i.end.IsZero()
}

// Overlaps reports whether two half-open intervals share any instant.
// Touching endpoints do not overlap.
func (i Interval) Overlaps(other Interval) bool {
	return i.start.Before(other.end) && other.start.Before(i.end)
}

// Contains reports whether t falls within [start, end).
func (i Interval) Contains(t time.Time) bool {
	return !t.Before(i.start) && t.Before(i.end)
}

// Covers reports whether other lies entirely within i.
func (i Interval) Covers(other Interval) bool {
	return !other.start.Before(i.start) && !other.end.After(i.end)
}

// Clip returns the intersection of i with bounds. The second return value
// is false when the two do not overlap.
func (i Interval) Clip(bounds Interval) (Interval, bool) {
	start := i.start
	if start.Before(bounds.start) {
		start = bounds.start
	}
	end := i.end
	if end.After(bounds.end) {
		end = bounds.end
	}
	if !start.Before(end) {
		return Interval{}, false
	}
	return Interval{start: start, end: end}, true
}

// Window is the bounded time-of-day range within which all scheduling
// must occur. Every generated block falls inside it.
type Window struct {
	Interval
}

// NewWindow creates a planning window of at most one day.
func NewWindow(start, end time.Time) (Window, error) {
	iv, err := NewInterval(start, end)
	if err != nil {
		return Window{}, fmt.Errorf("%w: %v", ErrInvalidWindow, err)
	}
	if iv.Duration() > 24*time.Hour {
		return Window{}, fmt.Errorf("%w: window spans more than one day", ErrInvalidWindow)
	}
	return Window{Interval: iv}, nil
}

// MergeIntervals coalesces overlapping and adjacent intervals into a minimal
// disjoint set, sorted by start. Merging an already-disjoint sorted list is
// a no-op. The input slice is not modified.
func MergeIntervals(intervals []Interval) []Interval {
	if len(intervals) == 0 {
		return nil
	}

	sorted := make([]Interval, len(intervals))
	copy(sorted, intervals)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].start.Equal(sorted[j].start) {
			return sorted[i].end.Before(sorted[j].end)
		}
		return sorted[i].start.Before(sorted[j].start)
	})

	merged := []Interval{sorted[0]}
	for _, next := range sorted[1:] {
		current := &merged[len(merged)-1]
		if !next.start.After(current.end) {
			if next.end.After(current.end) {
				current.end = next.end
			}
			continue
		}
		merged = append(merged, next)
	}
	return merged
}

// FreeGaps computes the ordered list of maximal intervals within window not
// covered by any busy interval. The busy list must be disjoint and sorted,
// as produced by MergeIntervals.
func FreeGaps(window Interval, busy []Interval) []Interval {
	var gaps []Interval
	cursor := window.start

	for _, b := range busy {
		clipped, ok := b.Clip(window)
		if !ok {
			continue
		}
		if cursor.Before(clipped.start) {
			gaps = append(gaps, Interval{start: cursor, end: clipped.start})
		}
		if clipped.end.After(cursor) {
			cursor = clipped.end
		}
	}

	if cursor.Before(window.end) {
		gaps = append(gaps, Interval{start: cursor, end: window.end})
	}
	return gaps
}
