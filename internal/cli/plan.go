package cli

import (
	"fmt"
	"strings"

	"github.com/piyush-tyagi-13/meal-planner/internal/models"
	"github.com/spf13/cobra"
)

func newPlanCommand(current func() *app) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Preview today's meals and tomorrow's shopping list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application := current()
			sess, err := application.loadedSession(cmd.Context())
			if err != nil {
				return err
			}
			preview, err := application.plan.Preview(cmd.Context(), sess)
			if err != nil {
				return err
			}
			if jsonOutput(cmd) {
				return writeJSONOutput(cmd.OutOrStdout(), preview)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, headerStyle.Render("Today"))
			printSelection(cmd, preview.Today)
			fmt.Fprintln(out, headerStyle.Render("Tomorrow"))
			printSelection(cmd, preview.Tomorrow)
			fmt.Fprintln(out, headerStyle.Render("Shopping list for tomorrow"))
			if len(preview.TomorrowIngredients) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("  nothing to buy"))
			} else {
				fmt.Fprintf(out, "  %s\n", strings.Join(preview.TomorrowIngredients, ", "))
			}
			return nil
		},
	}
}

func printSelection(cmd *cobra.Command, selection models.MealSelection) {
	for _, mealTime := range models.MealTimes {
		name := mutedStyle.Render("no recipe available")
		if recipe := selection[mealTime]; recipe != nil {
			name = recipe.Name
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %-10s %s\n", mealTime, name)
	}
}
