// Package services derives wellness nudges from study plans.
package services

import (
	"sort"
	"time"

	plannerDomain "github.com/ayaanrathod/studybalance/internal/planner/domain"
	"github.com/ayaanrathod/studybalance/internal/wellness/domain"
)

const (
	// minBlockForBreakNudge is the shortest study block that earns a
	// mid-block break reminder.
	minBlockForBreakNudge = 45 * time.Minute

	// breakNudgeFraction places the reminder this far through the block.
	breakNudgeFraction = 0.75

	hydrationInterval = 2 * time.Hour
	postureInterval   = 90 * time.Minute

	eveningHour = 18
)

// NudgePlanner derives deterministic wellness nudges from a study plan.
type NudgePlanner struct{}

// NewNudgePlanner creates a nudge planner.
func NewNudgePlanner() *NudgePlanner {
	return &NudgePlanner{}
}

// NudgesForPlan returns all nudges for the plan, sorted by due time. Break
// reminders fire three quarters through each study block of at least 45
// minutes; hydration and posture nudges repeat across the span of the
// scheduled blocks.
func (p *NudgePlanner) NudgesForPlan(plan *plannerDomain.StudyPlan) ([]domain.Nudge, error) {
	blocks := plan.Blocks()
	if len(blocks) == 0 {
		return nil, nil
	}

	var nudges []domain.Nudge

	for _, block := range blocks {
		if !block.IsStudy() || block.Duration() < minBlockForBreakNudge {
			continue
		}

		offset := time.Duration(float64(block.Duration()) * breakNudgeFraction).Round(time.Minute)
		dueAt := block.Start().Add(offset)

		nudge, err := domain.NewNudge(domain.NudgeBreakReminder, dueAt, domain.TemplateData{
			StudyMinutes: int(offset.Minutes()),
			Subject:      block.Subject(),
			Evening:      dueAt.Hour() >= eveningHour,
		})
		if err != nil {
			return nil, err
		}
		nudges = append(nudges, nudge)
	}

	spanStart := blocks[0].Start()
	spanEnd := blocks[len(blocks)-1].End()

	recurring, err := recurringNudges(domain.NudgeHydration, spanStart, spanEnd, hydrationInterval)
	if err != nil {
		return nil, err
	}
	nudges = append(nudges, recurring...)

	recurring, err = recurringNudges(domain.NudgePostureCheck, spanStart, spanEnd, postureInterval)
	if err != nil {
		return nil, err
	}
	nudges = append(nudges, recurring...)

	sort.SliceStable(nudges, func(i, j int) bool {
		return nudges[i].DueAt.Before(nudges[j].DueAt)
	})
	return nudges, nil
}

func recurringNudges(nudgeType domain.NudgeType, start, end time.Time, interval time.Duration) ([]domain.Nudge, error) {
	var nudges []domain.Nudge
	for due := start.Add(interval); !due.After(end); due = due.Add(interval) {
		nudge, err := domain.NewNudge(nudgeType, due, domain.TemplateData{})
		if err != nil {
			return nil, err
		}
		nudges = append(nudges, nudge)
	}
	return nudges, nil
}

// AchievementNudge summarizes a completed plan into a congratulatory nudge
// due at the end of the last block.
func (p *NudgePlanner) AchievementNudge(plan *plannerDomain.StudyPlan) (domain.Nudge, error) {
	studyBlocks := plan.StudyBlocks()

	subjects := make([]string, 0, len(studyBlocks))
	seen := make(map[string]bool)
	for _, block := range studyBlocks {
		if !seen[block.Subject()] {
			seen[block.Subject()] = true
			subjects = append(subjects, block.Subject())
		}
	}

	dueAt := plan.Window().End()
	if blocks := plan.Blocks(); len(blocks) > 0 {
		dueAt = blocks[len(blocks)-1].End()
	}

	return domain.NewNudge(domain.NudgeAchievement, dueAt, domain.TemplateData{
		CompletedSessions: len(studyBlocks),
		TotalStudyMinutes: int(plan.TotalStudy().Minutes()),
		SubjectsStudied:   subjects,
		BreaksTaken:       len(plan.Blocks()) - len(studyBlocks),
	})
}
