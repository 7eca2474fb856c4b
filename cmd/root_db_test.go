package cmd

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/andresmejia3/moodcam/internal/store"
	"github.com/spf13/cobra"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestCloseDBWithoutConnection(t *testing.T) {
	DB = nil
	closeDB() // must not panic
	if DB != nil {
		t.Error("Expected DB to stay nil")
	}
}

// TestExecuteClosesDBWhenCommandFails runs a failing command against a real Postgres container.
// It requires Docker to be running.
func TestExecuteClosesDBWhenCommandFails(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	// We wrap this in a function to recover from panics inside testcontainers (e.g. socket not found)
	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("testcontainers panicked: %v", r)
			}
		}()
		_, err = testcontainers.NewDockerClientWithOpts(ctx)
		return
	}()
	if err != nil {
		t.Fatalf("Docker not available, cannot run integration test: %v", err)
	}

	pgContainer, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("moodcam_test"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
		testcontainers.WithLogger(noopLogger{}),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("Failed to terminate container: %v", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	var seen *store.Store
	failing := &cobra.Command{
		Use:         "explode",
		Annotations: map[string]string{requiresDB: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			seen = DB
			return errors.New("boom")
		},
	}
	rootCmd.AddCommand(failing)
	rootCmd.SetArgs([]string{"explode", "--db", connStr})
	defer func() {
		rootCmd.RemoveCommand(failing)
		rootCmd.SetArgs(nil)
		dbURL = ""
	}()

	if err := execute(ctx); err == nil {
		t.Fatal("Expected the command error to be returned")
	}
	if seen == nil {
		t.Fatal("Expected the command to run with a database connection")
	}
	if DB != nil {
		t.Error("Expected the global connection to be cleared")
	}
	if _, err := seen.ListSessions(ctx); err == nil {
		t.Error("Expected the connection to be closed after a failed command")
	}
}

type noopLogger struct{}

func (n noopLogger) Printf(format string, v ...interface{}) {}
