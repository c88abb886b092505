package main

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"voicetest-engine/internal/cli"
	"voicetest-engine/internal/repository"
)

func main() {
	app := &cli.App{
		Out: os.Stdout,
		NewStore: func(ctx context.Context, table string) (cli.Store, error) {
			cfg, err := config.LoadDefaultConfig(ctx)
			if err != nil {
				return nil, err
			}
			return repository.New(awsdynamodb.NewFromConfig(cfg), table)
		},
	}
	if err := cli.NewRootCommand(app).Execute(); err != nil {
		os.Exit(1)
	}
}
