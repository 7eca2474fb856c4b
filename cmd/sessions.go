package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/andresmejia3/moodcam/internal/store"
	"github.com/andresmejia3/moodcam/internal/utils"
	"github.com/spf13/cobra"
)

var sessionsCmd = &cobra.Command{
	Use:         "sessions",
	Short:       "List all recorded capture sessions",
	Annotations: map[string]string{requiresDB: "true"},
	Run: func(cmd *cobra.Command, args []string) {
		sessions, err := DB.ListSessions(cmd.Context())
		if err != nil {
			utils.Die("Failed to list sessions", err, nil)
		}
		printSessions(os.Stdout, sessions)
	},
}

func init() {
	rootCmd.AddCommand(sessionsCmd)
}

func printSessions(out io.Writer, sessions []store.Session) {
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions found in database.")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tSTARTED\tDURATION\tFRAMES\tANALYZED\tFACES\tSTATUS")
	fmt.Fprintln(w, "--\t------\t-------\t--------\t------\t--------\t-----\t------")

	for _, s := range sessions {
		status := s.StopReason
		if s.EndedAt == nil {
			status = "running"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			s.ID, s.Source, s.StartedAt.Local().Format("2006-01-02 15:04"), utils.FmtClock(s.Elapsed),
			s.Frames, s.Analyzed, s.FacesFound, status)
	}
	w.Flush()
}
