package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/marshallshelly/cultivar/internal/config"
	"github.com/marshallshelly/cultivar/internal/logging"
	"github.com/marshallshelly/cultivar/pkg/runtime"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	dbURL      string
	envFile    string
	verbose    bool
	jsonOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "cultivar",
	Short: "Cultivar - growers, strains, batches and terpene profiles over PostgreSQL",
	Long: `Cultivar records cannabis growers, the strains they grow, harvested batches
and their terpene profiles in PostgreSQL, and serves them over a JSON API.

Configuration is read from the environment, optionally seeded from an env file:
  DATABASE_URL          connection string (required, or pass --db)
  LISTEN_ADDR           HTTP address for serve (default 127.0.0.1:8008)
  DB_MAX_CONNS          pool size (default 10)
  LOG_LEVEL, LOG_FORMAT, LOG_FILE
  CORS_ALLOWED_ORIGINS  comma separated (default *)`,
	Version:       "0.3.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "Database connection URL (overrides DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Env file to load before reading the environment")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
}

// setup loads the configuration and installs the default logger. The
// returned closer flushes the log file, if any.
func setup() (*config.Config, io.Closer, error) {
	if dbURL != "" {
		if err := os.Setenv("DATABASE_URL", dbURL); err != nil {
			return nil, nil, err
		}
	}
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	closer, err := logging.Setup(logging.Options{Level: level, Format: cfg.LogFormat, File: cfg.LogFile})
	if err != nil {
		return nil, nil, err
	}
	return cfg, closer, nil
}

func connect(ctx context.Context, cfg *config.Config) (*runtime.DB, error) {
	db, err := runtime.Connect(ctx, cfg.DB())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}
