package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/robalyx/fuzzy/internal/database/dbretry"
	"github.com/robalyx/fuzzy/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// GuildSettingsModel handles database operations for per-guild settings.
type GuildSettingsModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewGuildSettings creates a new GuildSettingsModel instance.
func NewGuildSettings(db *bun.DB, logger *zap.Logger) *GuildSettingsModel {
	return &GuildSettingsModel{
		db:     db,
		logger: logger.Named("db_guild_settings"),
	}
}

// Get retrieves the settings of a guild.
// Returns types.ErrRecordNotFound if the guild was never configured.
func (m *GuildSettingsModel) Get(ctx context.Context, guildID uint64) (*types.GuildSettings, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.GuildSettings, error) {
		var settings types.GuildSettings

		err := m.db.NewSelect().
			Model(&settings).
			Where("id = ?", guildID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrRecordNotFound
			}
			return nil, fmt.Errorf("failed to get guild settings: %w (guildID=%d)", err, guildID)
		}

		return &settings, nil
	})
}

// Save creates or updates the settings of a guild.
func (m *GuildSettingsModel) Save(ctx context.Context, settings *types.GuildSettings) error {
	settings.UpdatedAt = time.Now().UTC()

	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewInsert().
			Model(settings).
			On("CONFLICT (id) DO UPDATE").
			Set("mod_log_channel_id = EXCLUDED.mod_log_channel_id").
			Set("public_log_channel_id = EXCLUDED.public_log_channel_id").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to save guild settings: %w (guildID=%d)", err, settings.ID)
		}

		return nil
	})
}
