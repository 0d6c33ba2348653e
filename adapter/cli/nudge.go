package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	wellnessCommands "github.com/ayaanrathod/studybalance/internal/wellness/application/commands"
	wellnessDomain "github.com/ayaanrathod/studybalance/internal/wellness/domain"
)

var (
	nudgeType    string
	nudgeTo      string
	nudgeHorizon time.Duration
)

var nudgeCmd = &cobra.Command{
	Use:   "nudge",
	Short: "Wellness nudges derived from your study plan",
}

var nudgeSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send one wellness nudge now",
	Long: `Send a wellness nudge email immediately.

Types: break_reminder, hydration, posture_check, eye_rest, stress_relief,
achievement.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := getContainer()
		if c == nil {
			return errors.New("application not initialized")
		}
		if c.SendNudgeHandler == nil {
			return errors.New("sending nudges requires TOOLKIT_BASE_URL to be configured")
		}

		to := nudgeTo
		if to == "" {
			to = c.Config.ToolkitUserEmail
		}
		if to == "" {
			return errors.New("no recipient: pass --to or set TOOLKIT_USER_EMAIL")
		}

		nudge, err := c.SendNudgeHandler.Handle(cmd.Context(), wellnessCommands.SendNudgeCommand{
			To:   to,
			Type: wellnessDomain.NudgeType(nudgeType),
		})
		if err != nil {
			return err
		}

		fmt.Printf("Sent %q to %s\n", nudge.Subject, to)
		return nil
	},
}

var nudgePublishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish nudges due soon for today's plan",
	Long: `Derive nudges from today's study plan and publish the ones that fall
due within the horizon. The worker consumes them and delivers emails.
Run this periodically, e.g. from cron every 15 minutes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := getContainer()
		if c == nil {
			return errors.New("application not initialized")
		}
		uid, err := userID()
		if err != nil {
			return err
		}

		now := time.Now()
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

		published, err := c.PublishDueNudgesHandler.Handle(cmd.Context(),
			wellnessCommands.PublishDueNudgesCommand{
				UserID:  uid,
				Date:    today,
				Now:     now,
				Horizon: nudgeHorizon,
			})
		if err != nil {
			return err
		}

		if len(published) == 0 {
			fmt.Println("No nudges due.")
			return nil
		}
		for _, nudge := range published {
			fmt.Printf("  %s  %s\n", nudge.DueAt.Local().Format("15:04"), nudge.Type)
		}
		return nil
	},
}

func init() {
	nudgeSendCmd.Flags().StringVar(&nudgeType, "type", string(wellnessDomain.NudgeBreakReminder), "nudge type")
	nudgeSendCmd.Flags().StringVar(&nudgeTo, "to", "", "recipient email")
	nudgePublishCmd.Flags().DurationVar(&nudgeHorizon, "horizon", 15*time.Minute, "publish nudges due within this window")

	nudgeCmd.AddCommand(nudgeSendCmd, nudgePublishCmd)
	rootCmd.AddCommand(nudgeCmd)
}
