package main

import (
	"context"
	"os"

	cli "github.com/urfave/cli/v3"

	"github.com/stayware/stayflow/pkg/log"
	"github.com/stayware/stayflow/pkg/store"
)

const defaultPort = 9080

func main() {
	logger := log.WithModule("api")

	cmd := &cli.Command{
		Name:                  "stayflow-api",
		Usage:                 "Serve the audit trail query API",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:     "database-url",
				Usage:    "PostgreSQL connection URL for the audit trail",
				Required: true,
				Sources:  cli.EnvVars("DATABASE_URL"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing Stayflow API")

			db, err := store.Open(ctx, logger, command.String("database-url"))
			if err != nil {
				return err
			}

			defer func() {
				if closeErr := db.Close(); closeErr != nil {
					logger.ErrorContext(ctx, "Failed to close database", "error", closeErr)
				}
			}()

			api := NewAPI(logger, db)

			return api.Start(command.Int("port"))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		logger.Error("Failed to run stayflow-api", "error", err)
		os.Exit(1)
	}
}
