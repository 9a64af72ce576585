// Package cli implements the meal-planner command line.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/piyush-tyagi-13/meal-planner/internal/config"
	"github.com/piyush-tyagi-13/meal-planner/internal/services"
	"github.com/spf13/cobra"
)

type ConfigLoader func() (config.Config, error)

// NewRootCommand builds the command tree. Each command opens its own app
// from the configuration returned by load.
func NewRootCommand(load ConfigLoader) *cobra.Command {
	var application *app

	root := &cobra.Command{
		Use:           "meal-planner",
		Short:         "Manage the family recipe list, recipients and daily meal mail",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			configureLogging(cfg.LogLevel)

			application, err = openApp(cfg)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if application == nil {
				return nil
			}
			return application.Close()
		},
	}

	root.PersistentFlags().Bool("json", false, "Output in JSON format")

	current := func() *app { return application }
	root.AddCommand(
		newServeCommand(current),
		newTokenCommand(current),
		newRecipesCommand(current),
		newRecipientsCommand(current),
		newScheduleCommand(current),
		newPlanCommand(current),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	if err := NewRootCommand(config.Load).Execute(); err != nil {
		slog.Error("command failed", "error", err)
		if errors.Is(err, services.ErrTokenMissing) {
			fmt.Fprintln(os.Stderr, "no access token saved, run: meal-planner token set <token>")
		}
		return 1
	}
	return 0
}

func jsonOutput(cmd *cobra.Command) bool {
	enabled, _ := cmd.Flags().GetBool("json")
	return enabled
}

func configureLogging(level string) {
	var slogLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		slogLevel = slog.LevelDebug
	case "warn", "warning":
		slogLevel = slog.LevelWarn
	case "error":
		slogLevel = slog.LevelError
	default:
		slogLevel = slog.LevelInfo
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slogLevel})
	slog.SetDefault(slog.New(handler))
}
