package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayaanrathod/studybalance/internal/inbox/domain"
)

var reference = time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)

func email(subject, body string, receivedAt time.Time) domain.EmailMessage {
	return domain.EmailMessage{Subject: subject, Body: body, Sender: "someone@university.edu", ReceivedAt: receivedAt}
}

func TestAnalyzeCountsKeywordsOncePerEmail(t *testing.T) {
	messages := []domain.EmailMessage{
		// Multiple stress keywords still count this email once.
		email("URGENT deadline ASAP", "the assignment is overdue", reference.Add(-time.Hour)),
		email("Lunch plans", "see you at noon", reference.Add(-2*time.Hour)),
	}

	report := NewAnalyzer().Analyze(messages, reference, 7)

	assert.Equal(t, 2, report.TotalEmails)
	assert.Equal(t, 1, report.UrgentEmails)
	assert.Equal(t, 1, report.WorkEmails)
	// First matching keyword in scan order is recorded.
	assert.Equal(t, []string{"urgent"}, report.StressKeywords)
}

func TestAnalyzeIgnoresMessagesOutsideLookback(t *testing.T) {
	messages := []domain.EmailMessage{
		email("urgent exam", "", reference.AddDate(0, 0, -10)),
		email("class notes", "", reference.Add(-time.Hour)),
	}

	report := NewAnalyzer().Analyze(messages, reference, 7)

	assert.Equal(t, 1, report.TotalEmails)
	assert.Zero(t, report.UrgentEmails)
	assert.Equal(t, 1, report.WorkEmails)
}

func TestAnalyzeIncludesUndatedMessages(t *testing.T) {
	messages := []domain.EmailMessage{
		email("urgent quiz", "", time.Time{}),
	}

	report := NewAnalyzer().Analyze(messages, reference, 7)

	assert.Equal(t, 1, report.TotalEmails)
	assert.Equal(t, 1, report.UrgentEmails)
	assert.Empty(t, report.HourlyCounts)
}

func TestAnalyzeWorkloadScoreAndRisk(t *testing.T) {
	// 4 emails: 2 urgent, 3 work-related.
	// (0.5*5 + 0.75*3) * 10 = 47.5, capped at 10 -> high risk.
	messages := []domain.EmailMessage{
		email("urgent assignment", "", reference.Add(-time.Hour)),
		email("deadline for project", "", reference.Add(-2*time.Hour)),
		email("lecture notes", "", reference.Add(-3*time.Hour)),
		email("lunch", "", reference.Add(-4*time.Hour)),
	}

	report := NewAnalyzer().Analyze(messages, reference, 7)

	assert.InDelta(t, 10.0, report.WorkloadScore, 0.001)
	assert.Equal(t, domain.BurnoutRiskHigh, report.BurnoutRisk)
}

func TestAnalyzeEmptyInboxIsLowRisk(t *testing.T) {
	report := NewAnalyzer().Analyze(nil, reference, 7)

	assert.Zero(t, report.TotalEmails)
	assert.Zero(t, report.WorkloadScore)
	assert.Equal(t, domain.BurnoutRiskLow, report.BurnoutRisk)
	assert.Equal(t, []string{"Email patterns look healthy - keep up the good work!"}, report.Recommendations)
}

func TestAnalyzePeakHoursSortedAndThresholded(t *testing.T) {
	at := func(hour, n int) []domain.EmailMessage {
		msgs := make([]domain.EmailMessage, n)
		for i := range msgs {
			msgs[i] = email("hello", "", time.Date(2026, time.August, 30, hour, 10+i, 0, 0, time.UTC))
		}
		return msgs
	}

	var messages []domain.EmailMessage
	messages = append(messages, at(20, 4)...) // busiest hour
	messages = append(messages, at(9, 3)...)  // 75% of max, peak
	messages = append(messages, at(14, 1)...) // below threshold

	report := NewAnalyzer().Analyze(messages, reference, 7)

	assert.Equal(t, []string{"09:00-10:00", "20:00-21:00"}, report.PeakHours)
}

func TestAnalyzeRecommendations(t *testing.T) {
	lateNight := time.Date(2026, time.August, 31, 23, 30, 0, 0, time.UTC)
	messages := []domain.EmailMessage{
		email("urgent exam tomorrow", "", lateNight),
		email("asap: grade dispute", "", lateNight.Add(-time.Hour)),
		email("course registration", "", reference.Add(-time.Hour)),
	}

	report := NewAnalyzer().Analyze(messages, reference, 7)

	require.NotEmpty(t, report.Recommendations)
	assert.Contains(t, report.Recommendations, "High urgency emails detected - consider prioritization techniques")
	assert.Contains(t, report.Recommendations, "Late night/early morning emails - set email boundaries")
	assert.Contains(t, report.Recommendations, "High volume of academic emails - consider organizing with filters")
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	messages := []domain.EmailMessage{
		email("urgent assignment", "rush this", reference.Add(-time.Hour)),
		email("lecture recap", "", reference.Add(-26*time.Hour)),
		email("deadline reminder", "", reference.Add(-2*time.Hour)),
	}

	first := NewAnalyzer().Analyze(messages, reference, 7)
	second := NewAnalyzer().Analyze(messages, reference, 7)

	assert.Equal(t, first, second)
}
