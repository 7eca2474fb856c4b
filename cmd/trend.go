package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/andresmejia3/moodcam/internal/chart"
	"github.com/andresmejia3/moodcam/internal/pipeline"
	"github.com/andresmejia3/moodcam/internal/utils"
	"github.com/spf13/cobra"
)

var trendOut string

var trendCmd = &cobra.Command{
	Use:         "trend <session_id>",
	Short:       "Rebuild the cumulative emotion chart of a recorded session",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{requiresDB: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return runTrend(cmd.Context(), args[0], trendOut)
	},
}

func init() {
	trendCmd.Flags().StringVarP(&trendOut, "output", "o", "", "Output image (default: <session_id>_cumulative_emotions.jpg)")
	rootCmd.AddCommand(trendCmd)
}

func runTrend(ctx context.Context, sessionID, out string) error {
	if out == "" {
		out = sessionID + "_cumulative_emotions.jpg"
	}

	entries, err := DB.SessionSamples(ctx, sessionID)
	if err != nil {
		utils.ShowError("Failed to load session samples", err, nil)
		return err
	}

	reporter := &pipeline.TrendReporter{Renderer: chart.NewTrendRenderer(), Path: out}
	written, err := reporter.Report(entries)
	if err != nil {
		utils.ShowError("Failed to render trend chart", err, nil)
		return err
	}
	if !written {
		fmt.Fprintf(os.Stderr, "ℹ️  Session %s has no samples, nothing to plot.\n", sessionID)
		return nil
	}

	fmt.Fprintf(os.Stderr, "✅ Trend of %d samples saved to %s\n", len(entries), out)
	return nil
}
