package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/piyush-tyagi-13/meal-planner/internal/models"
	"github.com/spf13/cobra"
)

func newRecipesCommand(current func() *app) *cobra.Command {
	command := &cobra.Command{
		Use:   "recipes",
		Short: "List and delete recipes",
	}

	var search string
	list := &cobra.Command{
		Use:   "list",
		Short: "List recipes, optionally filtered by name or ingredient",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application := current()
			sess, err := application.loadedSession(cmd.Context())
			if err != nil {
				return err
			}
			results := application.recipes.Search(sess, search)
			if jsonOutput(cmd) {
				return writeJSONOutput(cmd.OutOrStdout(), results)
			}
			if len(results) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("No recipes found"))
				return nil
			}

			table := newTable(cmd.OutOrStdout())
			fmt.Fprintln(table, "INDEX\tNAME\tMEALS\tINGREDIENTS")
			for _, result := range results {
				fmt.Fprintf(table, "%d\t%s\t%s\t%s\n",
					result.Index, result.Recipe.Name, mealTimesLabel(result.Recipe.MealTimeEligibility), strings.Join(result.Recipe.Ingredients, ", "))
			}
			return table.Flush()
		},
	}
	list.Flags().StringVar(&search, "search", "", "Match recipe names and ingredients")

	command.AddCommand(list, &cobra.Command{
		Use:   "delete <index>",
		Short: "Delete the recipe at index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid index %q", args[0])
			}
			application := current()
			sess, err := application.loadedSession(cmd.Context())
			if err != nil {
				return err
			}
			removed, err := application.recipes.Delete(cmd.Context(), sess, index)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", removed.Name)
			return nil
		},
	})

	return command
}

func mealTimesLabel(mealTimes []models.MealTime) string {
	labels := make([]string, len(mealTimes))
	for i, mealTime := range mealTimes {
		labels[i] = string(mealTime)
	}
	return strings.Join(labels, " • ")
}
