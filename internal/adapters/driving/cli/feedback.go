package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var feedbackJSON bool

var feedbackCmd = &cobra.Command{
	Use:   "feedback",
	Short: "Inspect answer feedback",
	Long: `Feedback is given with /up and /down in chat, the TUI or POST /feedback.
Use the stats subcommand to see the totals.`,
}

var feedbackStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show feedback totals and the most recent ratings",
	Args:  cobra.NoArgs,
	RunE:  runFeedbackStats,
}

func init() {
	feedbackStatsCmd.Flags().BoolVar(&feedbackJSON, "json", false, "output stats as JSON")
	feedbackCmd.AddCommand(feedbackStatsCmd)
	rootCmd.AddCommand(feedbackCmd)
}

func runFeedbackStats(cmd *cobra.Command, _ []string) error {
	svc, err := services()
	if err != nil {
		return err
	}
	stats, err := svc.Feedback.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("feedback stats: %w", err)
	}

	if feedbackJSON {
		data, err := json.MarshalIndent(stats, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal stats: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Printf("Total: %d  Up: %d  Down: %d\n", stats.Total, stats.Ups, stats.Downs)
	if len(stats.Recent) == 0 {
		return nil
	}
	cmd.Println()
	cmd.Println("Recent:")
	for _, r := range stats.Recent {
		cmd.Printf("  %s  %-4s %s\n", r.Timestamp.Local().Format("2006-01-02 15:04"), r.Label, r.Question)
	}
	return nil
}
