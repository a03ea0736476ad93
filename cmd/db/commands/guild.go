package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/robalyx/fuzzy/internal/database/types"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// GuildCommands returns commands that manage per-guild log channels and inspect locks.
func GuildCommands(deps *CLIDependencies) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "guild",
			Usage: "Manage guild log channels",
			Commands: []*cli.Command{
				{
					Name:      "show",
					Usage:     "Show the configured log channels of a guild",
					ArgsUsage: "GUILD_ID",
					Action:    handleGuildShow(deps),
				},
				{
					Name:      "set",
					Usage:     "Set the audit and public log channels of a guild",
					ArgsUsage: "GUILD_ID",
					Flags: []cli.Flag{
						&cli.StringFlag{
							Name:  "mod-log",
							Usage: "Channel id for the audit log (0 disables)",
						},
						&cli.StringFlag{
							Name:  "public-log",
							Usage: "Channel id for published bans and unbans (0 disables)",
						},
					},
					Action: handleGuildSet(deps),
				},
			},
		},
		{
			Name:   "overdue",
			Usage:  "List locks that expired but were never reverted",
			Action: handleOverdue(deps),
		},
	}
}

// handleGuildShow handles the 'guild show' command.
func handleGuildShow(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		guildID, err := guildArg(c)
		if err != nil {
			return err
		}

		settings, err := deps.DB.Model().GuildSettings().Get(ctx, guildID)
		if err != nil {
			if errors.Is(err, types.ErrRecordNotFound) {
				deps.Logger.Info("Guild has no settings", zap.Uint64("guildID", guildID))
				return nil
			}
			return err
		}

		deps.Logger.Info("Guild settings",
			zap.Uint64("guildID", settings.ID),
			zap.Uint64("modLogChannelID", settings.ModLogChannelID),
			zap.Uint64("publicLogChannelID", settings.PublicLogChannelID),
			zap.Time("updatedAt", settings.UpdatedAt))

		return nil
	}
}

// handleGuildSet handles the 'guild set' command. It only overwrites the
// channels passed as flags.
func handleGuildSet(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		guildID, err := guildArg(c)
		if err != nil {
			return err
		}

		model := deps.DB.Model().GuildSettings()
		settings, err := model.Get(ctx, guildID)
		switch {
		case errors.Is(err, types.ErrRecordNotFound):
			settings = &types.GuildSettings{ID: guildID}
		case err != nil:
			return err
		}

		if c.IsSet("mod-log") {
			if settings.ModLogChannelID, err = parseID(c.String("mod-log")); err != nil {
				return err
			}
		}
		if c.IsSet("public-log") {
			if settings.PublicLogChannelID, err = parseID(c.String("public-log")); err != nil {
				return err
			}
		}

		if err := model.Save(ctx, settings); err != nil {
			return err
		}

		deps.Logger.Info("Updated guild settings",
			zap.Uint64("guildID", settings.ID),
			zap.Uint64("modLogChannelID", settings.ModLogChannelID),
			zap.Uint64("publicLogChannelID", settings.PublicLogChannelID))

		return nil
	}
}

// handleOverdue handles the 'overdue' command, listing restrictions past expiry.
func handleOverdue(deps *CLIDependencies) cli.ActionFunc {
	return func(ctx context.Context, _ *cli.Command) error {
		now := time.Now().UTC()

		locks, err := deps.DB.Model().Lock().Expired(ctx, now)
		if err != nil {
			return err
		}
		threadLocks, err := deps.DB.Model().ThreadLock().Expired(ctx, now)
		if err != nil {
			return err
		}

		for _, lock := range locks {
			deps.Logger.Info("Overdue channel lock",
				zap.Uint64("guildID", lock.GuildID),
				zap.Uint64("channelID", lock.ChannelID),
				zap.String("moderator", lock.Moderator.Name),
				zap.Duration("overdue", now.Sub(lock.ExpiresAt)))
		}
		for _, lock := range threadLocks {
			deps.Logger.Info("Overdue thread lock",
				zap.Uint64("guildID", lock.GuildID),
				zap.Uint64("threadID", lock.ChannelID),
				zap.String("moderator", lock.Moderator.Name),
				zap.Duration("overdue", now.Sub(lock.ExpiresAt)))
		}

		deps.Logger.Info("Overdue locks",
			zap.Int("channels", len(locks)),
			zap.Int("threads", len(threadLocks)))

		return nil
	}
}

func guildArg(c *cli.Command) (uint64, error) {
	if c.Args().Len() != 1 {
		return 0, ErrGuildRequired
	}
	return parseID(c.Args().First())
}

func parseID(value string) (uint64, error) {
	if value == "0" {
		return 0, nil
	}
	id, err := snowflake.Parse(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, value)
	}
	return uint64(id), nil
}
