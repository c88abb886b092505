package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <conversation-id>",
		Short: "Print the status and cursor of a seeded conversation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := app.store(cmd.Context())
			if err != nil {
				return err
			}
			state, err := st.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(app.Out, "status=%s step=%d/%d test=%q created=%s\n",
				state.Status, state.CurrentStepIndex, len(state.Script), state.TestName, state.CreatedAt)
			return nil
		},
	}
}
