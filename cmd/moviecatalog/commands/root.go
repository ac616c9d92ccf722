// Package commands implements the moviecatalog command line.
package commands

import (
	"fmt"
	"os"

	"github.com/mantonx/moviecatalog/internal/config"
	"github.com/mantonx/moviecatalog/internal/logger"
	"github.com/spf13/cobra"
)

const configEnv = "MOVIECATALOG_CONFIG_PATH"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "moviecatalog",
	Short: "Movie catalog with reviews, ratings and an admin site",
	Long: `moviecatalog serves a public movie catalog (listings, detail pages,
reviews and star ratings) together with a JSON admin site.

Configuration is read from --config, then $MOVIECATALOG_CONFIG_PATH, then
./moviecatalog.yaml when present. Environment variables override file values.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML or JSON configuration file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedStarsCmd)
}

// resolveConfigPath picks the configuration file to load, if any
func resolveConfigPath(flag string) string {
	if flag != "" {
		return flag
	}
	if p := os.Getenv(configEnv); p != "" {
		return p
	}
	for _, candidate := range []string{"./moviecatalog.yaml", "./moviecatalog.yml"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

func loadConfig() error {
	path := resolveConfigPath(configPath)
	if err := config.Load(path); err != nil {
		return err
	}
	cfg := config.Get()
	logger.Configure(cfg.Logging.Level, cfg.Logging.Format)
	return nil
}
