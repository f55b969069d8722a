package main

import (
	"errors"
	"fmt"
	"os"

	"ledger-service/internal/config"
	"ledger-service/internal/database"
	"ledger-service/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootCmd = &cobra.Command{
	Use:           "ledgerctl",
	Short:         "Administrative tasks for the ledger service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// errDrift makes reconcile exit non-zero without printing usage
var errDrift = errors.New("ledger drift detected")

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errDrift) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

// openDatabase loads configuration and opens the configured database, applying migrations
func openDatabase() (*config.Config, *database.DB, *zap.Logger, error) {
	cfg := config.Load()
	level := cfg.LogLevel
	if level == "" {
		level = "warn"
	}
	log := logger.New(cfg.Environment, level)

	db, err := database.New(cfg, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("database connection failed: %w", err)
	}
	return cfg, db, log, nil
}
