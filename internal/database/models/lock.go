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

// LockModel handles database operations for channel locks.
type LockModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewLock creates a new LockModel instance.
func NewLock(db *bun.DB, logger *zap.Logger) *LockModel {
	return &LockModel{
		db:     db,
		logger: logger.Named("db_lock"),
	}
}

// Get retrieves the lock of a channel.
// Returns types.ErrRecordNotFound if the channel is not locked.
func (m *LockModel) Get(ctx context.Context, channelID uint64) (*types.Lock, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.Lock, error) {
		var lock types.Lock

		err := m.db.NewSelect().
			Model(&lock).
			Where("channel_id = ?", channelID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrRecordNotFound
			}
			return nil, fmt.Errorf("failed to get lock: %w (channelID=%d)", err, channelID)
		}

		return &lock, nil
	})
}

// Save creates or replaces the lock of a channel.
func (m *LockModel) Save(ctx context.Context, lock *types.Lock) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewInsert().
			Model(lock).
			On("CONFLICT (channel_id) DO UPDATE").
			Set("guild_id = EXCLUDED.guild_id").
			Set("previous_value = EXCLUDED.previous_value").
			Set("moderator_id = EXCLUDED.moderator_id").
			Set("moderator_name = EXCLUDED.moderator_name").
			Set("reason = EXCLUDED.reason").
			Set("expires_at = EXCLUDED.expires_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to save lock: %w (channelID=%d)", err, lock.ChannelID)
		}

		return nil
	})
}

// Delete removes the lock of a channel.
// Returns true if this call removed it, false if it was already gone.
func (m *LockModel) Delete(ctx context.Context, channelID uint64) (bool, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (bool, error) {
		result, err := m.db.NewDelete().
			Model((*types.Lock)(nil)).
			Where("channel_id = ?", channelID).
			Exec(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to delete lock: %w (channelID=%d)", err, channelID)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return false, err
		}

		return affected > 0, nil
	})
}

// DeleteExpired removes the lock only if it is still expired at now.
// A lock extended after it was listed as expired is kept.
func (m *LockModel) DeleteExpired(ctx context.Context, channelID uint64, now time.Time) (bool, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (bool, error) {
		result, err := m.db.NewDelete().
			Model((*types.Lock)(nil)).
			Where("channel_id = ?", channelID).
			Where("expires_at <= ?", now.UTC()).
			Exec(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to delete expired lock: %w (channelID=%d)", err, channelID)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return false, err
		}

		return affected > 0, nil
	})
}

// Expired retrieves every lock whose expiry is at or before now.
func (m *LockModel) Expired(ctx context.Context, now time.Time) ([]*types.Lock, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Lock, error) {
		var locks []*types.Lock

		err := m.db.NewSelect().
			Model(&locks).
			Where("expires_at <= ?", now.UTC()).
			Order("expires_at ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get expired locks: %w", err)
		}

		return locks, nil
	})
}
