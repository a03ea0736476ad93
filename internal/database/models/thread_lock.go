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

// ThreadLockModel handles database operations for thread locks.
type ThreadLockModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewThreadLock creates a new ThreadLockModel instance.
func NewThreadLock(db *bun.DB, logger *zap.Logger) *ThreadLockModel {
	return &ThreadLockModel{
		db:     db,
		logger: logger.Named("db_thread_lock"),
	}
}

// Get retrieves the lock of a thread.
// Returns types.ErrRecordNotFound if the thread is not locked.
func (m *ThreadLockModel) Get(ctx context.Context, threadID uint64) (*types.ThreadLock, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.ThreadLock, error) {
		var lock types.ThreadLock

		err := m.db.NewSelect().
			Model(&lock).
			Where("channel_id = ?", threadID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrRecordNotFound
			}
			return nil, fmt.Errorf("failed to get thread lock: %w (threadID=%d)", err, threadID)
		}

		return &lock, nil
	})
}

// Save creates or replaces the lock of a thread.
func (m *ThreadLockModel) Save(ctx context.Context, lock *types.ThreadLock) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewInsert().
			Model(lock).
			On("CONFLICT (channel_id) DO UPDATE").
			Set("guild_id = EXCLUDED.guild_id").
			Set("moderator_id = EXCLUDED.moderator_id").
			Set("moderator_name = EXCLUDED.moderator_name").
			Set("reason = EXCLUDED.reason").
			Set("expires_at = EXCLUDED.expires_at").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to save thread lock: %w (threadID=%d)", err, lock.ChannelID)
		}

		return nil
	})
}

// Delete removes the lock of a thread.
// Returns true if this call removed it, false if it was already gone.
func (m *ThreadLockModel) Delete(ctx context.Context, threadID uint64) (bool, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (bool, error) {
		result, err := m.db.NewDelete().
			Model((*types.ThreadLock)(nil)).
			Where("channel_id = ?", threadID).
			Exec(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to delete thread lock: %w (threadID=%d)", err, threadID)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return false, err
		}

		return affected > 0, nil
	})
}

// DeleteExpired removes the thread lock only if it is still expired at now.
// A thread lock extended after it was listed as expired is kept.
func (m *ThreadLockModel) DeleteExpired(ctx context.Context, threadID uint64, now time.Time) (bool, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (bool, error) {
		result, err := m.db.NewDelete().
			Model((*types.ThreadLock)(nil)).
			Where("channel_id = ?", threadID).
			Where("expires_at <= ?", now.UTC()).
			Exec(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to delete expired thread lock: %w (threadID=%d)", err, threadID)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return false, err
		}

		return affected > 0, nil
	})
}

// Expired retrieves every thread lock whose expiry is at or before now.
func (m *ThreadLockModel) Expired(ctx context.Context, now time.Time) ([]*types.ThreadLock, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.ThreadLock, error) {
		var locks []*types.ThreadLock

		err := m.db.NewSelect().
			Model(&locks).
			Where("expires_at <= ?", now.UTC()).
			Order("expires_at ASC").
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to get expired thread locks: %w", err)
		}

		return locks, nil
	})
}
