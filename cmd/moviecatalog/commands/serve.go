package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/mantonx/moviecatalog/internal/config"
	"github.com/mantonx/moviecatalog/internal/database"
	"github.com/mantonx/moviecatalog/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Run the HTTP server. Modules migrate the schema on startup, so a
fresh database is usable right away. SIGINT or SIGTERM drains open requests
before exiting.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()

		db, err := database.Connect(cfg.Database)
		if err != nil {
			return err
		}
		defer database.Close(db)

		srv, err := server.New(cfg, db, server.DefaultModules())
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}
