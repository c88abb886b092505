package cli

import (
	"github.com/spf13/cobra"
)

func newDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <conversation-id>",
		Short: "Remove a seeded conversation record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.store(cmd.Context())
			if err != nil {
				return err
			}
			return st.Delete(cmd.Context(), args[0])
		},
	}
}
