package commands

import (
	"context"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// MigrationCommands returns all migration-related commands.
func MigrationCommands(deps *CLIDependencies) []*cli.Command {
	return []*cli.Command{
		{
			Name:   "init",
			Usage:  "Initialize migration tables",
			Action: handleInit(deps),
		},
		{
			Name:   "migrate",
			Usage:  "Apply pending infraction and lock schema migrations",
			Action: handleMigrate(deps),
		},
		{
			Name:   "rollback",
			Usage:  "Rollback the last migration group",
			Action: handleRollback(deps),
		},
		{
			Name:   "status",
			Usage:  "Show applied and pending migrations",
			Action: handleStatus(deps),
		},
		{
			Name:      "create",
			Usage:     "Create a new Go migration file",
			ArgsUsage: "NAME",
			Action:    handleCreate(deps),
		},
	}
}

// handleInit handles the 'init' command.
func handleInit(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, _ *cli.Command) error {
		if err := deps.Migrator.Init(ctx); err != nil {
			return err
		}
		deps.Logger.Info("Migration tables ready")
		return nil
	}
}

// handleMigrate handles the 'migrate' command. It holds the migration lock
// while applying every pending group.
func handleMigrate(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, _ *cli.Command) error {
		if err := deps.Migrator.Lock(ctx); err != nil {
			return err
		}
		defer deps.Migrator.Unlock(ctx) //nolint:errcheck // -

		group, err := deps.Migrator.Migrate(ctx)
		if err != nil {
			return err
		}

		if group.IsZero() {
			deps.Logger.Info("Database schema is up to date")
			return nil
		}

		deps.Logger.Info("Applied migrations",
			zap.String("group", group.String()),
			zap.Int("count", len(group.Migrations)))

		return nil
	}
}

// handleRollback handles the 'rollback' command, undoing the last applied group.
func handleRollback(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, _ *cli.Command) error {
		if err := deps.Migrator.Lock(ctx); err != nil {
			return err
		}
		defer deps.Migrator.Unlock(ctx) //nolint:errcheck // -

		group, err := deps.Migrator.Rollback(ctx)
		if err != nil {
			return err
		}

		if group.IsZero() {
			deps.Logger.Info("Nothing to roll back")
			return nil
		}

		deps.Logger.Info("Rolled back migrations",
			zap.String("group", group.String()),
			zap.Int("count", len(group.Migrations)))

		return nil
	}
}

// handleStatus handles the 'status' command.
func handleStatus(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, _ *cli.Command) error {
		ms, err := deps.Migrator.MigrationsWithStatus(ctx)
		if err != nil {
			return err
		}

		unapplied := ms.Unapplied()
		deps.Logger.Info("Migration status",
			zap.String("migrations", ms.String()),
			zap.String("unapplied", unapplied.String()),
			zap.Int("pending", len(unapplied)),
			zap.String("last_group", ms.LastGroup().String()))

		return nil
	}
}

// handleCreate handles the 'create' command by writing an empty Go migration.
func handleCreate(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		if c.Args().Len() != 1 {
			return ErrNameRequired
		}

		mf, err := deps.Migrator.CreateGoMigration(ctx, c.Args().First())
		if err != nil {
			return err
		}

		deps.Logger.Info("Created Go migration",
			zap.String("name", mf.Name),
			zap.String("path", mf.Path))

		return nil
	}
}
