package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewRaw(`
			-- Per-user infraction listing in issue order
			CREATE INDEX IF NOT EXISTS idx_infractions_guild_user_issued
			ON infractions (guild_id, user_id, issued_at, id);

			-- Moderator summary
			CREATE INDEX IF NOT EXISTS idx_infractions_guild_moderator
			ON infractions (guild_id, moderator_id);

			CREATE INDEX IF NOT EXISTS idx_published_messages_infraction
			ON published_messages (infraction_id, kind);

			-- Scheduler scans
			CREATE INDEX IF NOT EXISTS idx_locks_expires_at
			ON locks (expires_at);

			CREATE INDEX IF NOT EXISTS idx_thread_locks_expires_at
			ON thread_locks (expires_at);
		`).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create indexes: %w", err)
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewRaw(`
			DROP INDEX IF EXISTS idx_infractions_guild_user_issued;
			DROP INDEX IF EXISTS idx_infractions_guild_moderator;
			DROP INDEX IF EXISTS idx_published_messages_infraction;
			DROP INDEX IF EXISTS idx_locks_expires_at;
			DROP INDEX IF EXISTS idx_thread_locks_expires_at;
		`).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop indexes: %w", err)
		}

		return nil
	})
}
