package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/ErfanXH/Polaris/pkg/config"
	"github.com/ErfanXH/Polaris/pkg/database"
	"github.com/spf13/cobra"
)

type contextKey string

const (
	dbManagerKey contextKey = "dbManager"
	configKey    contextKey = "config"
)

var rootCmd = &cobra.Command{
	Use:   "polaris",
	Short: "Polaris - Mobile Network Telemetry Service",
	Long: `Polaris collects radio measurements and network test results
reported by mobile devices and serves them per device owner.`,
	SilenceUsage: true,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	opts, err := cfg.DatabaseOptions()
	if err != nil {
		fmt.Printf("Invalid database configuration: %v\n", err)
		os.Exit(1)
	}

	dbManager, err := database.NewDatabaseManager(opts)
	if err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		os.Exit(1)
	}

	log.Printf("✓ Connected to %s database", opts.Dialect)

	ctx := context.WithValue(context.Background(), dbManagerKey, dbManager)
	ctx = context.WithValue(ctx, configKey, cfg)

	err = rootCmd.ExecuteContext(ctx)
	dbManager.Close()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// dbManagerFrom returns the database manager stored by main
func dbManagerFrom(cmd *cobra.Command) *database.DatabaseManager {
	return cmd.Context().Value(dbManagerKey).(*database.DatabaseManager)
}

// configFrom returns the configuration stored by main
func configFrom(cmd *cobra.Command) *config.Config {
	return cmd.Context().Value(configKey).(*config.Config)
}
