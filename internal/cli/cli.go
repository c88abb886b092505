// Package cli implements the seedctl operator commands that manage the
// per-conversation state records consumed by the call handler: seeding a
// script before a test call, inspecting progress, and cleaning up.
package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"voicetest-engine/internal/domain"
	"voicetest-engine/internal/repository"
)

// Store is the repository surface the commands need.
type Store interface {
	Get(ctx context.Context, conversationID string) (domain.ConversationState, error)
	Seed(ctx context.Context, p repository.SeedParams) error
	Delete(ctx context.Context, conversationID string) error
	SetPreAttributes(ctx context.Context, conversationID string, attrs map[string]string) error
}

// App carries the dependencies shared by all commands. NewStore is called
// once per command run with the resolved table name.
type App struct {
	NewStore func(ctx context.Context, table string) (Store, error)
	Out      io.Writer
}

func (app *App) store(ctx context.Context) (Store, error) {
	return app.NewStore(ctx, tableName())
}

// NewRootCommand builds the seedctl command tree.
func NewRootCommand(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:          "seedctl",
		Short:        "Manage seeded voice-test conversations",
		Long:         `seedctl seeds, inspects and removes the per-conversation state records consumed by the call handler.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().String("table", "", "DynamoDB state table (default VoiceTestState-<env>)")
	root.PersistentFlags().String("env", "dev", "environment namespace used in the default table name")
	_ = viper.BindPFlag("table", root.PersistentFlags().Lookup("table"))
	_ = viper.BindPFlag("env", root.PersistentFlags().Lookup("env"))
	viper.SetEnvPrefix("VOICETEST")
	viper.AutomaticEnv()

	root.AddCommand(newSeedCommand(app))
	root.AddCommand(newShowCommand(app))
	root.AddCommand(newSetAttrsCommand(app))
	root.AddCommand(newDeleteCommand(app))
	return root
}

func tableName() string {
	if t := viper.GetString("table"); t != "" {
		return t
	}
	return "VoiceTestState-" + viper.GetString("env")
}
