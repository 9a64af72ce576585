package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTokenCommand(current func() *app) *cobra.Command {
	command := &cobra.Command{
		Use:   "token",
		Short: "Manage the saved GitHub access token",
	}

	command.AddCommand(&cobra.Command{
		Use:   "set <token>",
		Short: "Save a token and check it can load the data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application := current()
			sess, err := application.loadedSessionWithToken(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			state := sess.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d recipes, %d recipients\n",
				accentStyle.Render("connected:"), len(state.Recipes), len(state.Recipients))
			return nil
		},
	})

	command.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Forget the saved token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := current().preferences.ClearToken(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "token cleared")
			return nil
		},
	})

	return command
}
