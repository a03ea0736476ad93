package models

import (
	"context"
	"fmt"

	"github.com/robalyx/fuzzy/internal/database/dbretry"
	"github.com/robalyx/fuzzy/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// PardonModel handles database operations for pardons.
type PardonModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewPardon creates a new PardonModel instance.
func NewPardon(db *bun.DB, logger *zap.Logger) *PardonModel {
	return &PardonModel{
		db:     db,
		logger: logger.Named("db_pardon"),
	}
}

// Save creates the pardon of an infraction or updates its reason.
// The pardoning moderator and time are never overwritten.
func (m *PardonModel) Save(ctx context.Context, pardon *types.Pardon) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewInsert().
			Model(pardon).
			On("CONFLICT (infraction_id) DO UPDATE").
			Set("reason = EXCLUDED.reason").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to save pardon: %w (infractionID=%d)", err, pardon.InfractionID)
		}

		return nil
	})
}

// Delete removes the pardon of an infraction.
// Returns true if a pardon was removed.
func (m *PardonModel) Delete(ctx context.Context, infractionID int64) (bool, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (bool, error) {
		result, err := m.db.NewDelete().
			Model((*types.Pardon)(nil)).
			Where("infraction_id = ?", infractionID).
			Exec(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to delete pardon: %w (infractionID=%d)", err, infractionID)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return false, err
		}

		return affected > 0, nil
	})
}
