package domain

import (
	"fmt"
	"sort"
	"time"
)

// Schedule is the optimizer's output: a chronological, non-overlapping
// sequence of study and break blocks together with its derived scores.
type Schedule struct {
	window          Window
	blocks          []Block
	totalStudy      time.Duration
	totalBreak      time.Duration
	wellnessScore   float64
	efficiencyScore float64
	rating          string
	notes           []string
}

func (s *Schedule) Window() Window            { return s.window }
func (s *Schedule) Blocks() []Block           { return s.blocks }
func (s *Schedule) TotalStudy() time.Duration { return s.totalStudy }
func (s *Schedule) TotalBreak() time.Duration { return s.totalBreak }
func (s *Schedule) WellnessScore() float64    { return s.wellnessScore }
func (s *Schedule) EfficiencyScore() float64  { return s.efficiencyScore }
func (s *Schedule) Rating() string            { return s.rating }
func (s *Schedule) Notes() []string           { return s.notes }

// StudyBlocks returns only the study blocks, in chronological order.
func (s *Schedule) StudyBlocks() []Block {
	var study []Block
	for _, b := range s.blocks {
		if b.IsStudy() {
			study = append(study, b)
		}
	}
	return study
}

// Optimize produces a conflict-free schedule placing every study request
// into the window's free gaps, hardest subjects first, with breaks
// interleaved per the break policy.
//
// It is a pure function of its inputs: no clock reads, no randomness, no
// I/O. Identical inputs always yield identical output.
//
// It returns ErrInvalidInput for malformed input and *InfeasibleError when
// no arrangement fits every request.
func Optimize(window Window, busy []BusyEvent, requests []StudyRequest, breakPolicy BreakPolicy, scorePolicy ScorePolicy) (*Schedule, error) {
	if window.IsZero() {
		return nil, fmt.Errorf("%w: planning window is required", ErrInvalidInput)
	}
	if err := breakPolicy.Validate(); err != nil {
		return nil, err
	}
	if err := scorePolicy.Validate(); err != nil {
		return nil, err
	}
	for _, req := range requests {
		if req.duration <= 0 {
			return nil, fmt.Errorf("%w: request %q has non-positive duration", ErrInvalidInput, req.subject)
		}
		if req.duration > window.Duration() {
			return nil, fmt.Errorf("%w: request %q (%s) exceeds the planning window (%s)",
				ErrInvalidInput, req.subject, req.duration, window.Duration())
		}
	}

	gaps := FreeGaps(window.Interval, MergeBusyEvents(busy))

	// Hardest subjects go into the earliest gaps; ties keep input order.
	pending := make([]StudyRequest, len(requests))
	copy(pending, requests)
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].difficulty > pending[j].difficulty
	})

	var (
		blocks     []Block
		totalStudy time.Duration
		totalBreak time.Duration
	)

	for _, gap := range gaps {
		cursor := gap.Start()
		var consecutive time.Duration

		for len(pending) > 0 {
			idx, breakLen := nextPlacement(pending, gap, cursor, consecutive, breakPolicy)
			if idx < 0 {
				break
			}
			req := pending[idx]
			pending = append(pending[:idx], pending[idx+1:]...)

			if breakLen > 0 {
				blocks = append(blocks, NewBreakBlock(Interval{start: cursor, end: cursor.Add(breakLen)}))
				totalBreak += breakLen
				cursor = cursor.Add(breakLen)
				consecutive = 0
			}

			blocks = append(blocks, NewStudyBlock(req.subject, req.difficulty,
				Interval{start: cursor, end: cursor.Add(req.duration)}))
			totalStudy += req.duration
			cursor = cursor.Add(req.duration)
			consecutive += req.duration
		}
	}

	if len(pending) > 0 {
		unplaced := make([]string, len(pending))
		for i, req := range pending {
			unplaced[i] = req.subject
		}
		return nil, &InfeasibleError{Unplaced: unplaced}
	}

	wellness := wellnessScore(blocks, totalStudy, totalBreak, breakPolicy.MaxConsecutiveStudy, scorePolicy)

	return &Schedule{
		window:          window,
		blocks:          blocks,
		totalStudy:      totalStudy,
		totalBreak:      totalBreak,
		wellnessScore:   wellness,
		efficiencyScore: efficiencyScore(blocks),
		rating:          scheduleRating(wellness),
		notes:           optimizationNotes(blocks),
	}, nil
}

// nextPlacement scans pending in priority order for the first request that
// fits the remaining gap space, together with any break due before it. It
// returns the request's index and the break length to insert, or -1 when
// nothing fits. Skipping a too-large request lets smaller, easier subjects
// use the space; the skipped request is retried in every later gap. A break
// is only ever placed when a study block follows it in the same gap.
func nextPlacement(pending []StudyRequest, gap Interval, cursor time.Time, consecutive time.Duration, policy BreakPolicy) (int, time.Duration) {
	for idx, req := range pending {
		var breakLen time.Duration
		if consecutive > 0 &&
			(consecutive+req.duration >= policy.BreakEvery || consecutive+req.duration > policy.MaxConsecutiveStudy) {
			breakLen = policy.BreakLength(consecutive)
		}
		if !cursor.Add(breakLen + req.duration).After(gap.End()) {
			return idx, breakLen
		}
	}
	return -1, 0
}
