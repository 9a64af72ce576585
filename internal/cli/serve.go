package cli

import (
	"log/slog"
	"time"

	"github.com/piyush-tyagi-13/meal-planner/internal/server"
	"github.com/piyush-tyagi-13/meal-planner/internal/services"
	"github.com/piyush-tyagi-13/meal-planner/internal/session"
	"github.com/spf13/cobra"
)

const sessionPruneInterval = time.Hour

func newServeCommand(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application := current()
			if err := application.config.RequireSessionSecret(); err != nil {
				return err
			}

			sessionService := services.NewSessionService(application.config.SessionSecret, session.NewRegistry())
			go runSessionPruner(sessionService)

			return server.New(application.database, application.config, sessionService).Start()
		},
	}
}

func runSessionPruner(sessionService *services.SessionService) {
	ticker := time.NewTicker(sessionPruneInterval)
	defer ticker.Stop()

	for {
		<-ticker.C
		if removed := sessionService.PruneExpired(time.Now()); removed > 0 {
			slog.Info("pruned expired sessions", "count", removed)
		}
	}
}
