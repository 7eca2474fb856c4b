package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/andresmejia3/moodcam/internal/utils"
	"github.com/spf13/cobra"
)

var (
	resetTables bool
	resetFiles  bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset system state (Database tables, output files)",
	Long:  "Clears all data. By default, it resets everything. Use flags to clear specific components.",
	Run: func(cmd *cobra.Command, args []string) {
		// If no flags are set, default to clearing EVERYTHING
		if !resetTables && !resetFiles {
			resetTables = true
			resetFiles = true
		}

		reader := bufio.NewReader(os.Stdin)

		if resetTables {
			if DB == nil {
				fmt.Fprintln(os.Stderr, "⚠️  No database configured, skipping tables.")
			} else if confirm(reader, "⚠️  Are you sure you want to DROP all database tables?") {
				fmt.Println("🗑️  Clearing Database...")
				if err := DB.Reset(cmd.Context()); err != nil {
					utils.Die("Failed to reset database", err, nil)
				}
			}
		}

		if resetFiles {
			files := []string{Cfg.Outputs.Video, Cfg.Outputs.Chart, Cfg.Outputs.Trend}
			if confirm(reader, fmt.Sprintf("⚠️  Are you sure you want to delete %s?", strings.Join(files, ", "))) {
				fmt.Println("🗑️  Clearing Output Files...")
				for _, f := range files {
					removeFile(f)
				}
			}
		}

		fmt.Println("✨ System Reset Complete.")
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetTables, "tables", false, "Drop the PostgreSQL tables")
	resetCmd.Flags().BoolVar(&resetFiles, "files", false, "Delete the session output files")
	rootCmd.AddCommand(resetCmd)
}

func confirm(r *bufio.Reader, prompt string) bool {
	fmt.Printf("%s [y/N]: ", prompt)
	res, _ := r.ReadString('\n')
	res = strings.TrimSpace(strings.ToLower(res))
	return res == "y" || res == "yes"
}

func removeFile(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "⚠️  Failed to remove %s: %v\n", path, err)
	}
}
