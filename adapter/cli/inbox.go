package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	inboxCommands "github.com/ayaanrathod/studybalance/internal/inbox/application/commands"
	inboxQueries "github.com/ayaanrathod/studybalance/internal/inbox/application/queries"
	inboxDomain "github.com/ayaanrathod/studybalance/internal/inbox/domain"
)

var (
	inboxDays  int
	inboxForce bool
)

var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "Analyze your inbox for workload stress",
}

var inboxAnalyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Scan recent emails and score study workload",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := getContainer()
		if c == nil {
			return errors.New("application not initialized")
		}
		if c.AnalyzeInboxHandler == nil {
			return errors.New("inbox analysis requires TOOLKIT_BASE_URL to be configured")
		}
		uid, err := userID()
		if err != nil {
			return err
		}

		days := inboxDays
		if days <= 0 {
			days = c.Config.AnalysisLookbackDays
		}

		analysis, err := c.AnalyzeInboxHandler.Handle(cmd.Context(), inboxCommands.AnalyzeInboxCommand{
			UserID:       uid,
			LookbackDays: days,
			Force:        inboxForce,
		})
		if err != nil {
			return err
		}

		printAnalysis(analysis)
		return nil
	},
}

var inboxShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the most recent inbox analysis",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := getContainer()
		if c == nil {
			return errors.New("application not initialized")
		}
		uid, err := userID()
		if err != nil {
			return err
		}

		analysis, err := c.GetLatestAnalysisHandler.Handle(cmd.Context(),
			inboxQueries.GetLatestAnalysisQuery{UserID: uid})
		if errors.Is(err, inboxDomain.ErrAnalysisNotFound) {
			fmt.Println("No analysis yet. Run: studybalance inbox analyze")
			return nil
		}
		if err != nil {
			return err
		}

		printAnalysis(analysis)
		return nil
	},
}

func printAnalysis(analysis *inboxDomain.Analysis) {
	fmt.Printf("\nInbox analysis from %s (last %d days)\n\n",
		analysis.AnalyzedAt().Local().Format("Jan 2 15:04"),
		analysis.DaysAnalyzed(),
	)
	fmt.Printf("  emails analyzed: %d (urgent %d, work %d)\n",
		analysis.TotalEmails(), analysis.UrgentEmails(), analysis.WorkEmails())
	fmt.Printf("  workload score:  %.1f/10\n", analysis.WorkloadScore())
	fmt.Printf("  burnout risk:    %s\n", analysis.BurnoutRisk())

	if keywords := analysis.StressKeywords(); len(keywords) > 0 {
		fmt.Printf("  stress signals:  %s\n", strings.Join(keywords, ", "))
	}
	if peaks := analysis.PeakHours(); len(peaks) > 0 {
		fmt.Printf("  peak hours:      %s\n", strings.Join(peaks, ", "))
	}

	fmt.Println()
	for _, rec := range analysis.Recommendations() {
		fmt.Printf("  - %s\n", rec)
	}
}

func init() {
	inboxAnalyzeCmd.Flags().IntVar(&inboxDays, "days", 0, "lookback window in days")
	inboxAnalyzeCmd.Flags().BoolVar(&inboxForce, "force", false, "skip the cache and rescan")

	inboxCmd.AddCommand(inboxAnalyzeCmd, inboxShowCmd)
	rootCmd.AddCommand(inboxCmd)
}
