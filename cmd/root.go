package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresmejia3/moodcam/internal/config"
	"github.com/andresmejia3/moodcam/internal/store"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// requiresDB marks commands that cannot run without a database.
const requiresDB = "requires-db"

var (
	// DB is the global database connection shared by subcommands.
	// It stays nil for a capture session when no database is configured.
	DB *store.Store
	// Cfg is the loaded configuration, defaults when --config is empty
	Cfg *config.Config

	dbURL      string
	configPath string
	logLevel   string
)

// Version is the application version.
const Version = "0.1.0"

var rootCmd = &cobra.Command{
	Use:     "moodcam",
	Short:   "Real-time facial emotion annotation for camera streams",
	Version: Version, // This enables the --version flag
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A missing .env is fine; the variables may come from the shell
		_ = godotenv.Load()

		Cfg = config.Default()
		if configPath != "" {
			var err error
			if Cfg, err = config.Load(configPath); err != nil {
				return err
			}
		}

		if cmd.Flags().Changed("log-level") || Cfg.LogLevel == "" {
			Cfg.LogLevel = logLevel
		}
		if err := setupLogging(Cfg.LogLevel); err != nil {
			return err
		}

		url := resolveDBURL(Cfg)
		if url == "" {
			if cmd.Annotations[requiresDB] == "" {
				return nil
			}
			// Fallback to local default if nothing is configured
			url = "postgres://localhost:5432/moodcam"
		}

		var err error
		// Use the command's context (which will be cancellable) for the connection
		DB, err = store.New(cmd.Context(), url)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		return nil
	},
}

// resolveDBURL picks the --db flag, then the config file, then POSTGRES_* variables.
func resolveDBURL(cfg *config.Config) string {
	if dbURL != "" {
		return dbURL
	}
	if cfg.Database.URL != "" {
		return cfg.Database.URL
	}
	if host := os.Getenv("POSTGRES_HOST"); host != "" {
		user := os.Getenv("POSTGRES_USER")
		pass := os.Getenv("POSTGRES_PASSWORD")
		name := os.Getenv("POSTGRES_DB")
		port := os.Getenv("POSTGRES_PORT")
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, pass, host, port, name)
	}
	return ""
}

func setupLogging(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	zerolog.SetGlobalLevel(lvl)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		With().
		Timestamp().
		Logger()
	return nil
}

func Execute() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// This tells Cobra not to print the version in the help text, which is cleaner.
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	if err := execute(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// execute runs the command tree and closes the database on every outcome.
// Cobra skips post-run hooks when RunE fails, so this cannot live there.
func execute(ctx context.Context) error {
	defer closeDB()
	return rootCmd.ExecuteContext(ctx)
}

func closeDB() {
	if DB != nil {
		// Use Background here because the main context might be cancelled already (due to Ctrl+C)
		// and we still need to send the "Close" command to the DB.
		DB.Close(context.Background())
		DB = nil
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "PostgreSQL connection string (default: POSTGRES_* environment, or none)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
}
