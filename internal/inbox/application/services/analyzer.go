// Package services contains the inbox analysis logic and outbound ports.
package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/ayaanrathod/studybalance/internal/inbox/domain"
)

// stressKeywords signal urgency or pressure. An email counts as urgent on
// its first match.
var stressKeywords = []string{
	"urgent", "deadline", "asap", "emergency", "critical",
	"overdue", "late", "failed", "missing", "important",
	"immediately", "quickly", "rush", "priority",
}

// workKeywords signal academic workload. An email counts as work-related
// on its first match.
var workKeywords = []string{
	"assignment", "homework", "project", "exam", "test",
	"quiz", "submission", "grade", "course", "class",
	"study", "lecture", "professor", "teacher",
}

// Workload score weighting: urgency weighs heavier than sheer volume of
// academic mail.
const (
	urgentRatioWeight = 5.0
	workRatioWeight   = 3.0

	// peakHourShare marks an hour as a peak when its email count reaches
	// this share of the busiest hour's count.
	peakHourShare = 0.7
)

// Analyzer scores an inbox snapshot for workload and burnout indicators.
// It is a pure computation: the reference time and lookback are supplied
// by the caller, so identical inputs yield identical reports.
type Analyzer struct{}

// NewAnalyzer creates an analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze scans messages received within the lookback period before the
// reference time and derives keyword counts, the workload score, burnout
// risk, timing patterns, and recommendations. Messages without a date are
// included in keyword totals but not in hourly patterns.
func (a *Analyzer) Analyze(messages []domain.EmailMessage, reference time.Time, lookbackDays int) domain.Report {
	cutoff := reference.AddDate(0, 0, -lookbackDays)

	var recent []domain.EmailMessage
	for _, msg := range messages {
		if msg.ReceivedAt.IsZero() || !msg.ReceivedAt.Before(cutoff) {
			recent = append(recent, msg)
		}
	}

	var (
		urgentCount  int
		workCount    int
		foundStress  []string
		seenStress   = make(map[string]struct{})
		hourlyCounts = make(map[int]int)
	)

	for _, msg := range recent {
		text := strings.ToLower(msg.Subject + " " + msg.Body + " " + msg.Sender)

		for _, keyword := range stressKeywords {
			if strings.Contains(text, keyword) {
				urgentCount++
				if _, ok := seenStress[keyword]; !ok {
					seenStress[keyword] = struct{}{}
					foundStress = append(foundStress, keyword)
				}
				break
			}
		}

		for _, keyword := range workKeywords {
			if strings.Contains(text, keyword) {
				workCount++
				break
			}
		}

		if !msg.ReceivedAt.IsZero() {
			hourlyCounts[msg.ReceivedAt.Hour()]++
		}
	}

	total := len(recent)
	peakHours := peakHoursFromCounts(hourlyCounts)

	var workloadScore float64
	if total > 0 {
		urgentRatio := float64(urgentCount) / float64(total)
		workRatio := float64(workCount) / float64(total)
		workloadScore = math.Min(10, (urgentRatio*urgentRatioWeight+workRatio*workRatioWeight)*10)
		workloadScore = math.Round(workloadScore*10) / 10
	}

	return domain.Report{
		TotalEmails:     total,
		UrgentEmails:    urgentCount,
		WorkEmails:      workCount,
		WorkloadScore:   workloadScore,
		BurnoutRisk:     domain.RiskForScore(workloadScore),
		StressKeywords:  foundStress,
		PeakHours:       peakHours,
		HourlyCounts:    hourlyCounts,
		Recommendations: recommendations(total, urgentCount, workCount, peakHours, hourlyCounts),
	}
}

// peakHoursFromCounts returns the hours whose email volume reaches the
// peak share of the busiest hour, formatted as ranges and sorted.
func peakHoursFromCounts(hourlyCounts map[int]int) []string {
	if len(hourlyCounts) == 0 {
		return nil
	}

	maxCount := 0
	for _, count := range hourlyCounts {
		if count > maxCount {
			maxCount = count
		}
	}

	var hours []int
	for hour, count := range hourlyCounts {
		if float64(count) >= float64(maxCount)*peakHourShare {
			hours = append(hours, hour)
		}
	}
	sort.Ints(hours)

	peaks := make([]string, 0, len(hours))
	for _, hour := range hours {
		peaks = append(peaks, fmt.Sprintf("%02d:00-%02d:00", hour, (hour+1)%24))
	}
	return peaks
}

func recommendations(total, urgent, work int, peakHours []string, hourlyCounts map[int]int) []string {
	var recs []string
	if total > 0 {
		if float64(urgent) > float64(total)*0.25 {
			recs = append(recs, "High urgency emails detected - consider prioritization techniques")
		}
		if len(peakHours) > 3 {
			recs = append(recs, "Email scattered throughout day - try batching email checks")
		}
		if hasLateNightActivity(hourlyCounts) {
			recs = append(recs, "Late night/early morning emails - set email boundaries")
		}
		if float64(work) > float64(total)*0.6 {
			recs = append(recs, "High volume of academic emails - consider organizing with filters")
		}
	}

	if len(recs) == 0 {
		recs = append(recs, "Email patterns look healthy - keep up the good work!")
	}
	return recs
}

func hasLateNightActivity(hourlyCounts map[int]int) bool {
	for hour := range hourlyCounts {
		if hour >= 22 || hour <= 6 {
			return true
		}
	}
	return false
}
