package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/piyush-tyagi-13/meal-planner/internal/models"
	"github.com/spf13/cobra"
)

func newScheduleCommand(current func() *app) *cobra.Command {
	command := &cobra.Command{
		Use:   "schedule",
		Short: "Show, change or run the daily meal mail workflow",
	}

	var at string
	set := &cobra.Command{
		Use:   "set [cron]",
		Short: "Set the workflow's cron expression, or its local time with --at",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application := current()
			var (
				updated models.Schedule
				err     error
			)
			switch {
			case at != "":
				hour, minute, parseErr := parseClock(at)
				if parseErr != nil {
					return parseErr
				}
				updated, err = application.schedule.SetDisplayTime(cmd.Context(), hour, minute)
			case len(args) == 1:
				updated, err = application.schedule.Edit(cmd.Context(), args[0])
			default:
				return fmt.Errorf("give a cron expression or --at HH:MM")
			}
			if err != nil {
				return err
			}
			return printSchedule(cmd, updated)
		},
	}
	set.Flags().StringVar(&at, "at", "", "Local time as HH:MM (24-hour)")

	command.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the current schedule",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				shown, err := current().schedule.Read(cmd.Context())
				if err != nil {
					return err
				}
				return printSchedule(cmd, shown)
			},
		},
		set,
		&cobra.Command{
			Use:   "run",
			Short: "Trigger the workflow now",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := current().schedule.Trigger(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "workflow dispatched")
				return nil
			},
		},
	)

	return command
}

func printSchedule(cmd *cobra.Command, shown models.Schedule) error {
	if jsonOutput(cmd) {
		return writeJSONOutput(cmd.OutOrStdout(), shown)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", accentStyle.Render(shown.Display), mutedStyle.Render("("+shown.Expression+")"))
	return nil
}

func parseClock(value string) (int, int, error) {
	hourText, minuteText, ok := strings.Cut(value, ":")
	if !ok {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	hour, hourErr := strconv.Atoi(hourText)
	minute, minuteErr := strconv.Atoi(minuteText)
	if hourErr != nil || minuteErr != nil {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", value)
	}
	return hour, minute, nil
}
