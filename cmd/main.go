package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"voicetest-engine/handler"
	"voicetest-engine/internal/integrations/paramstore"
	"voicetest-engine/internal/repository"
	"voicetest-engine/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	envName := envOr("ENV_NAME", "dev")
	stateTable := envOr("STATE_TABLE", "VoiceTestState-"+envName)
	paramPrefix := os.Getenv("PARAM_PREFIX")

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	stateClient, err := repository.New(awsdynamodb.NewFromConfig(cfg), stateTable)
	if err != nil {
		slog.Error("failed to create state client", "err", err)
		os.Exit(1)
	}
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		slog.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	engine, err := usecase.NewEngine(stateClient, ssmClient, paramPrefix, slog.Default())
	if err != nil {
		slog.Error("failed to create conversation engine", "err", err)
		os.Exit(1)
	}
	h, err := handler.NewHandler(engine, slog.Default())
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
