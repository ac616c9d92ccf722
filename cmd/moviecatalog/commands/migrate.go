package commands

import (
	"fmt"

	"github.com/mantonx/moviecatalog/internal/config"
	"github.com/mantonx/moviecatalog/internal/database"
	"github.com/mantonx/moviecatalog/internal/logger"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Create or update the catalog tables and seed the rating stars 1..5.

Examples:
  moviecatalog migrate
  moviecatalog migrate --config /etc/moviecatalog.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Connect(config.Get().Database)
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.Migrate(db); err != nil {
			return err
		}
		logger.Info("migration complete")
		fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
		return nil
	},
}

var seedStarsCmd = &cobra.Command{
	Use:   "seed-stars",
	Short: "Make sure the rating stars 1..5 exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := database.Connect(config.Get().Database)
		if err != nil {
			return err
		}
		defer database.Close(db)

		if err := database.SeedRatingStars(db); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "rating stars seeded")
		return nil
	},
}
