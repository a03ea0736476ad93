package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/robalyx/fuzzy/cmd/db/commands"
	"github.com/robalyx/fuzzy/internal/database"
	"github.com/robalyx/fuzzy/internal/database/migrations"
	"github.com/robalyx/fuzzy/internal/setup/config"
	"github.com/uptrace/bun/migrate"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	// Setup dependencies
	deps, err := setupDependencies()
	if err != nil {
		return fmt.Errorf("failed to setup dependencies: %w", err)
	}
	defer deps.DB.Close()

	var cmds []*cli.Command
	cmds = append(cmds, commands.MigrationCommands(deps)...)
	cmds = append(cmds, commands.GuildCommands(deps)...)

	app := &cli.Command{
		Name:     "db",
		Usage:    "Database management tool",
		Commands: cmds,
	}

	return app.Run(context.Background(), os.Args)
}

// setupDependencies connects to the database and builds the migrator.
func setupDependencies() (*commands.CLIDependencies, error) {
	cfg, _, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := database.NewConnection(context.Background(), &cfg.Common.PostgreSQL, logger, false)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &commands.CLIDependencies{
		DB:       db,
		Migrator: migrate.NewMigrator(db.DB(), migrations.Migrations),
		Logger:   logger,
	}, nil
}
