package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newRecipientsCommand(current func() *app) *cobra.Command {
	command := &cobra.Command{
		Use:   "recipients",
		Short: "Manage who receives the daily meal mail",
	}

	command.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List recipients",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				application := current()
				sess, err := application.loadedSession(cmd.Context())
				if err != nil {
					return err
				}
				recipients := application.recipients.List(sess)
				if jsonOutput(cmd) {
					return writeJSONOutput(cmd.OutOrStdout(), recipients)
				}
				if len(recipients) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("No family members added"))
					return nil
				}
				for i, email := range recipients {
					fmt.Fprintf(cmd.OutOrStdout(), "%d  %s\n", i, email)
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "add <email>",
			Short: "Add a recipient",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				application := current()
				sess, err := application.loadedSession(cmd.Context())
				if err != nil {
					return err
				}
				if err := application.recipients.Add(cmd.Context(), sess, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "added %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "remove <index>",
			Short: "Remove the recipient at index",
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
				removed, err := application.recipients.Delete(cmd.Context(), sess, index)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", removed)
				return nil
			},
		},
	)

	return command
}
