package cmd

import (
	"context"
	"fmt"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"os"
	"storefront-service/internal/config"
	"storefront-service/internal/database"
	"time"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

var configPath string

var rootCmd = &cobra.Command{
	Use:   "storefront",
	Short: "Storefront service - catalog, cart, checkout and admin API",
	Long: `Storefront runs the shop backend: catalog browsing, session carts,
atomic order placement and the admin API for products and orders.

Configuration comes from config.yaml, a .env file and STOREFRONT_*
environment variables.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ./config.yaml)")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func dbOptions(cfg *config.Config) database.Options {
	return database.Options{
		Driver:       cfg.DB.Driver,
		DSN:          cfg.DB.DSN,
		MaxOpenConns: cfg.DB.MaxOpenConns,
		Retries:      cfg.DB.Retries,
		RetryDelay:   3 * time.Second,
	}
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
