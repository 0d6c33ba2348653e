package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	plannerCommands "github.com/ayaanrathod/studybalance/internal/planner/application/commands"
	plannerQueries "github.com/ayaanrathod/studybalance/internal/planner/application/queries"
	plannerDomain "github.com/ayaanrathod/studybalance/internal/planner/domain"
)

var (
	planDate     string
	planStart    string
	planEnd      string
	planSubjects []string
	planReplace  bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Create and inspect study plans",
}

var planCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an optimized study plan for a day",
	Long: `Create an optimized study plan around your existing calendar events.

Subjects are given as NAME:MINUTES or NAME:MINUTES:DIFFICULTY, where
difficulty is low, medium, or high. When omitted, difficulty is inferred
from the subject name.

Examples:
  studybalance plan create -s Math:90:high -s English:60
  studybalance plan create --date 2026-09-02 --start 10:00 --end 18:00 -s Physics:120`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := getContainer()
		if c == nil {
			return errors.New("application not initialized")
		}
		if len(planSubjects) == 0 {
			return errors.New("at least one --subject is required")
		}

		uid, err := userID()
		if err != nil {
			return err
		}
		date, err := resolveDate(planDate)
		if err != nil {
			return err
		}

		windowStart, err := timeOnDate(date, firstNonEmpty(planStart, c.Config.DayStart))
		if err != nil {
			return fmt.Errorf("invalid --start: %w", err)
		}
		windowEnd, err := timeOnDate(date, firstNonEmpty(planEnd, c.Config.DayEnd))
		if err != nil {
			return fmt.Errorf("invalid --end: %w", err)
		}

		requests, err := parseSubjects(planSubjects)
		if err != nil {
			return err
		}

		result, err := c.CreatePlanHandler.Handle(cmd.Context(), plannerCommands.CreatePlanCommand{
			UserID:      uid,
			WindowStart: windowStart,
			WindowEnd:   windowEnd,
			Requests:    requests,
			Replace:     planReplace,
		})

		var infeasible *plannerDomain.InfeasibleError
		if errors.As(err, &infeasible) {
			fmt.Println("No feasible schedule: not enough free time for " +
				strings.Join(infeasible.Unplaced, ", "))
			fmt.Println("Try a wider window, shorter sessions, or another day.")
			return nil
		}
		if errors.Is(err, plannerDomain.ErrPlanExists) {
			return errors.New("a plan already exists for that day; use --replace to regenerate it")
		}
		if err != nil {
			return err
		}

		printPlan(result.Plan)
		for _, note := range result.Notes {
			fmt.Printf("  note: %s\n", note)
		}
		return nil
	},
}

var planShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the plan for a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := getContainer()
		if c == nil {
			return errors.New("application not initialized")
		}
		uid, err := userID()
		if err != nil {
			return err
		}
		date, err := resolveDate(planDate)
		if err != nil {
			return err
		}

		plan, err := c.GetPlanHandler.Handle(cmd.Context(), plannerQueries.GetPlanQuery{
			UserID: uid,
			Date:   date,
		})
		if errors.Is(err, plannerDomain.ErrPlanNotFound) {
			fmt.Printf("No plan for %s. Create one with: studybalance plan create\n",
				date.Format("2006-01-02"))
			return nil
		}
		if err != nil {
			return err
		}

		printPlan(plan)
		return nil
	},
}

var planListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all study plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := getContainer()
		if c == nil {
			return errors.New("application not initialized")
		}
		uid, err := userID()
		if err != nil {
			return err
		}

		plans, err := c.ListPlansHandler.Handle(cmd.Context(), plannerQueries.ListPlansQuery{UserID: uid})
		if err != nil {
			return err
		}
		if len(plans) == 0 {
			fmt.Println("No plans yet.")
			return nil
		}

		fmt.Printf("%-12s %-13s %-9s %s\n", "DATE", "WINDOW", "WELLNESS", "RATING")
		for _, plan := range plans {
			fmt.Printf("%-12s %s-%s   %-9.1f %s\n",
				plan.PlanDate().Format("2006-01-02"),
				plan.Window().Start().Format("15:04"),
				plan.Window().End().Format("15:04"),
				plan.WellnessScore(),
				plan.Rating(),
			)
		}
		return nil
	},
}

var planSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push a day's study blocks to the calendar",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := getContainer()
		if c == nil {
			return errors.New("application not initialized")
		}
		if c.SyncPlanHandler == nil {
			return errors.New("calendar sync requires CALDAV_URL to be configured")
		}
		uid, err := userID()
		if err != nil {
			return err
		}
		date, err := resolveDate(planDate)
		if err != nil {
			return err
		}

		if _, err := c.SyncPlanHandler.Handle(cmd.Context(), plannerCommands.SyncPlanCommand{
			UserID: uid,
			Date:   date,
		}); err != nil {
			return err
		}
		fmt.Println("Plan synced to calendar.")
		return nil
	},
}

func printPlan(plan *plannerDomain.StudyPlan) {
	fmt.Printf("\nStudy plan for %s (%s-%s)\n\n",
		plan.PlanDate().Format("Monday, January 2"),
		plan.Window().Start().Format("15:04"),
		plan.Window().End().Format("15:04"),
	)

	for _, block := range plan.Blocks() {
		span := fmt.Sprintf("%s-%s", block.Start().Format("15:04"), block.End().Format("15:04"))
		if block.IsBreak() {
			fmt.Printf("  %s  break     %s\n", span, block.Activity())
			continue
		}
		fmt.Printf("  %s  %-9s %s\n", span, block.Difficulty(), block.Subject())
	}

	fmt.Printf("\n  study %s, breaks %s\n",
		formatDuration(plan.TotalStudy()), formatDuration(plan.TotalBreak()))
	fmt.Printf("  wellness %.1f/10 (%s), efficiency %.1f/10\n",
		plan.WellnessScore(), plan.Rating(), plan.EfficiencyScore())
}

// parseSubjects parses NAME:MINUTES[:DIFFICULTY] flags.
func parseSubjects(flags []string) ([]plannerCommands.StudyRequestInput, error) {
	requests := make([]plannerCommands.StudyRequestInput, 0, len(flags))
	for _, flag := range flags {
		parts := strings.Split(flag, ":")
		if len(parts) < 2 || len(parts) > 3 {
			return nil, fmt.Errorf("invalid subject %q, want NAME:MINUTES[:DIFFICULTY]", flag)
		}

		minutes, err := strconv.Atoi(parts[1])
		if err != nil || minutes <= 0 {
			return nil, fmt.Errorf("invalid minutes in subject %q", flag)
		}

		input := plannerCommands.StudyRequestInput{
			Subject:  strings.TrimSpace(parts[0]),
			Duration: time.Duration(minutes) * time.Minute,
		}
		if len(parts) == 3 {
			input.Difficulty = parts[2]
		}
		requests = append(requests, input)
	}
	return requests, nil
}

func resolveDate(value string) (time.Time, error) {
	if value == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()), nil
	}
	date, err := time.ParseInLocation("2006-01-02", value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", value)
	}
	return date, nil
}

func timeOnDate(date time.Time, hhmm string) (time.Time, error) {
	parsed, err := time.Parse("15:04", hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q, use HH:MM", hhmm)
	}
	return time.Date(date.Year(), date.Month(), date.Day(),
		parsed.Hour(), parsed.Minute(), 0, 0, date.Location()), nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Minute)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	if h == 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%dh%02dm", h, m)
}

func init() {
	planCmd.PersistentFlags().StringVar(&planDate, "date", "", "plan date (YYYY-MM-DD, default today)")
	planCreateCmd.Flags().StringVar(&planStart, "start", "", "window start (HH:MM)")
	planCreateCmd.Flags().StringVar(&planEnd, "end", "", "window end (HH:MM)")
	planCreateCmd.Flags().StringSliceVarP(&planSubjects, "subject", "s", nil, "subject as NAME:MINUTES[:DIFFICULTY]")
	planCreateCmd.Flags().BoolVar(&planReplace, "replace", false, "replace an existing plan for the day")

	planCmd.AddCommand(planCreateCmd, planShowCmd, planListCmd, planSyncCmd)
	rootCmd.AddCommand(planCmd)
}
