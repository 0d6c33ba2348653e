package domain

import (
	"math"
	"time"
)

// Study block sizing bands. Blocks in the ideal band score full marks,
// blocks in the acceptable band most of them, anything else a flat floor.
const (
	idealBlockMin      = 60 * time.Minute
	idealBlockMax      = 120 * time.Minute
	acceptableBlockMin = 45 * time.Minute
	acceptableBlockMax = 150 * time.Minute

	idealBlockScore      = 10.0
	acceptableBlockScore = 8.0
	offBandBlockScore    = 5.0
)

// Hourly efficiency scores: high-difficulty subjects studied during peak
// cognitive hours (morning and late afternoon) score full marks.
const (
	optimalHourScore = 10.0
	offHourScore     = 6.0
)

// Rating thresholds for the wellness score.
const (
	ratingExcellentAbove = 8.5
	ratingGoodAbove      = 7.0
)

// wellnessScore rates a schedule 0-10 from break balance and block sizing,
// plus the ordering bonus and overrun penalty. Recomputed from scratch for
// every schedule; one decimal place.
func wellnessScore(blocks []Block, totalStudy, totalBreak, maxConsecutive time.Duration, policy ScorePolicy) float64 {
	studyMinutes := totalStudy.Minutes()
	if studyMinutes < 1 {
		studyMinutes = 1
	}
	ratio := totalBreak.Minutes() / studyMinutes
	balance := 10 * (1 - math.Abs(ratio-policy.IdealBreakRatio)/policy.IdealBreakRatio)

	var sizing float64
	studyCount := 0
	for _, b := range blocks {
		if !b.IsStudy() {
			continue
		}
		studyCount++
		switch d := b.Duration(); {
		case d >= idealBlockMin && d <= idealBlockMax:
			sizing += idealBlockScore
		case d >= acceptableBlockMin && d <= acceptableBlockMax:
			sizing += acceptableBlockScore
		default:
			sizing += offBandBlockScore
		}
	}
	if studyCount > 0 {
		sizing /= float64(studyCount)
	}

	score := balance*policy.BalanceWeight + sizing*policy.DurationWeight
	if studyCount > 0 && hardestFirst(blocks) {
		score += policy.OrderingBonus
	}
	if longestStudyRun(blocks) > maxConsecutive {
		score -= policy.OverrunPenalty
	}

	return round1(clamp(score, 0, 10))
}

// efficiencyScore rates how well study blocks align with cognitive peak
// hours, 0-10 with one decimal place.
func efficiencyScore(blocks []Block) float64 {
	var total float64
	studyCount := 0
	for _, b := range blocks {
		if !b.IsStudy() {
			continue
		}
		studyCount++
		if isOptimalHour(b.Start(), b.Difficulty()) {
			total += optimalHourScore
		} else {
			total += offHourScore
		}
	}
	if studyCount == 0 {
		return 0
	}
	return round1(total / float64(studyCount))
}

// isOptimalHour reports whether the hour suits the subject's difficulty.
// Hard subjects want morning or late-afternoon peaks; everything else is
// fine any time during waking hours.
func isOptimalHour(start time.Time, difficulty Difficulty) bool {
	hour := start.Hour()
	if difficulty >= DifficultyHigh {
		return (hour >= 9 && hour <= 12) || (hour >= 15 && hour <= 17)
	}
	return hour >= 9 && hour <= 20
}

// hardestFirst reports whether study blocks run in non-increasing
// difficulty order chronologically.
func hardestFirst(blocks []Block) bool {
	last := DifficultyHigh
	for _, b := range blocks {
		if !b.IsStudy() {
			continue
		}
		if b.Difficulty() > last {
			return false
		}
		last = b.Difficulty()
	}
	return true
}

// longestStudyRun returns the longest stretch of back-to-back study time.
// A break block or a discontinuity ends a run.
func longestStudyRun(blocks []Block) time.Duration {
	var longest, run time.Duration
	var prevEnd time.Time

	for _, b := range blocks {
		if !b.IsStudy() || (!prevEnd.IsZero() && !b.Start().Equal(prevEnd)) {
			run = 0
		}
		if b.IsStudy() {
			run += b.Duration()
			if run > longest {
				longest = run
			}
		}
		prevEnd = b.End()
	}
	return longest
}

// scheduleRating maps a wellness score to a human-readable label.
func scheduleRating(wellness float64) string {
	switch {
	case wellness > ratingExcellentAbove:
		return "Excellent"
	case wellness > ratingGoodAbove:
		return "Good"
	default:
		return "Needs Improvement"
	}
}

// optimizationNotes produces short observations about schedule quality.
func optimizationNotes(blocks []Block) []string {
	var notes []string

	studyCount, breakCount := 0, 0
	hardMorning := false
	activities := make(map[string]struct{})

	for _, b := range blocks {
		switch {
		case b.IsStudy():
			studyCount++
			if b.Start().Hour() < 12 && b.Difficulty() >= DifficultyHigh {
				hardMorning = true
			}
		case b.IsBreak():
			breakCount++
			activities[b.Activity()] = struct{}{}
		}
	}

	if hardMorning {
		notes = append(notes, "Difficult subjects scheduled during peak morning hours")
	}
	if studyCount > 0 && float64(breakCount) >= float64(studyCount)*0.8 {
		notes = append(notes, "Adequate break frequency maintained")
	}
	if len(activities) > 1 {
		notes = append(notes, "Varied break activities aid recovery")
	}
	return notes
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
