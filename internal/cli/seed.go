package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"voicetest-engine/internal/domain"
	"voicetest-engine/internal/repository"
	"voicetest-engine/internal/usecase"
)

func newSeedCommand(app *App) *cobra.Command {
	var (
		id       string
		testName string
		ttl      time.Duration
		preAttrs map[string]string
	)
	cmd := &cobra.Command{
		Use:   "seed <script.json>",
		Short: "Create a READY conversation record from a script file",
		Long: `Seed a conversation record so the call handler can drive the script.
The script file is a JSON array of steps, e.g.
  [{"type":"speak","text":"Hello"},{"type":"wait","duration_ms":2000},{"type":"dtmf","digits":"1"}]
The generated conversation id is printed on stdout; pass it to the call
placement tooling as the conversation_id argument.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			script, err := loadScript(args[0])
			if err != nil {
				return err
			}
			if err := validateScript(script); err != nil {
				return err
			}
			if id == "" {
				id = uuid.NewString()
			}

			st, err := app.store(cmd.Context())
			if err != nil {
				return err
			}
			if err := st.Seed(cmd.Context(), repository.SeedParams{
				ConversationID:   id,
				Script:           script,
				TestName:         testName,
				PreSetAttributes: preAttrs,
				TTL:              ttl,
			}); err != nil {
				return err
			}
			fmt.Fprintln(app.Out, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "conversation id (default: random UUID)")
	cmd.Flags().StringVar(&testName, "test-name", "", "test name stored with the record")
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "record expiry")
	cmd.Flags().StringToStringVar(&preAttrs, "pre-attr", nil, "pre-set attributes surfaced on answer (k=v, repeatable)")
	return cmd
}

// loadScript reads a JSON step array from path.
func loadScript(path string) (domain.Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cli: read script: %w", err)
	}
	script, err := domain.DecodeScript(string(data))
	if err != nil {
		return nil, fmt.Errorf("cli: parse script: %w", err)
	}
	return script, nil
}

// validateScript rejects scripts the handler could only play truncated.
func validateScript(script domain.Script) error {
	if len(script) == 0 {
		return errors.New("cli: script has no steps")
	}
	for i, step := range script {
		if step.Type == domain.StepWait && step.DurationMS > usecase.MaxToneDurationMS {
			return fmt.Errorf("cli: step %d: wait of %dms exceeds the %dms tone limit; split it into multiple wait steps",
				i, step.DurationMS, usecase.MaxToneDurationMS)
		}
	}
	return nil
}
