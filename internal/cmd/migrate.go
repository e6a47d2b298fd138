package cmd

import (
	"fmt"
	"github.com/spf13/cobra"
	"storefront-service/internal/config"
	"storefront-service/internal/database"
	"storefront-service/migrations"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ctx := commandContext(cmd)
	db, err := database.OpenAndMigrate(ctx, dbOptions(cfg))
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := migrations.SchemaVersion(ctx, db)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Schema is at version %s\n", version)
	return nil
}
