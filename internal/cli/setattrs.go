package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func newSetAttrsCommand(app *App) *cobra.Command {
	var attrs map[string]string
	cmd := &cobra.Command{
		Use:   "set-attrs <conversation-id>",
		Short: "Store pre-set attributes on a seeded conversation",
		Long: `Store attributes that the call handler surfaces into the call's
attribute bag (prefixed with pre_) when the call is answered.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(attrs) == 0 {
				return errors.New("cli: at least one --attr k=v is required")
			}
			st, err := app.store(cmd.Context())
			if err != nil {
				return err
			}
			return st.SetPreAttributes(cmd.Context(), args[0], attrs)
		},
	}
	cmd.Flags().StringToStringVar(&attrs, "attr", nil, "attribute to set (k=v, repeatable)")
	return cmd
}
