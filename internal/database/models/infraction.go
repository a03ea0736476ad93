package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/robalyx/fuzzy/internal/database/dbretry"
	"github.com/robalyx/fuzzy/internal/database/types"
	"github.com/robalyx/fuzzy/internal/database/types/enum"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// InfractionModel handles database operations for infractions.
type InfractionModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewInfraction creates a new InfractionModel instance.
func NewInfraction(db *bun.DB, logger *zap.Logger) *InfractionModel {
	return &InfractionModel{
		db:     db,
		logger: logger.Named("db_infraction"),
	}
}

// Create inserts a new infraction and fills in its generated ID.
func (m *InfractionModel) Create(ctx context.Context, infraction *types.Infraction) error {
	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewInsert().
			Model(infraction).
			Returning("id").
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create infraction: %w", err)
		}

		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Debug("Created infraction",
		zap.Int64("id", infraction.ID),
		zap.Uint64("guildID", infraction.GuildID),
		zap.String("type", infraction.Type.String()))

	return nil
}

// Get retrieves an infraction of a guild together with its pardon and publications.
// Returns types.ErrRecordNotFound if no infraction matches.
func (m *InfractionModel) Get(ctx context.Context, guildID uint64, id int64) (*types.Infraction, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (*types.Infraction, error) {
		var infraction types.Infraction

		err := m.db.NewSelect().
			Model(&infraction).
			Relation("Pardon").
			Relation("Publications").
			Where("i.id = ?", id).
			Where("i.guild_id = ?", guildID).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, types.ErrRecordNotFound
			}
			return nil, fmt.Errorf("failed to get infraction: %w (id=%d)", err, id)
		}

		return &infraction, nil
	})
}

// Save persists the mutable columns of an infraction.
func (m *InfractionModel) Save(ctx context.Context, infraction *types.Infraction) error {
	return dbretry.NoResult(ctx, func(ctx context.Context) error {
		result, err := m.db.NewUpdate().
			Model(infraction).
			Column("reason", "moderator_id", "moderator_name").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to save infraction: %w (id=%d)", err, infraction.ID)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return err
		}

		if affected == 0 {
			return types.ErrRecordNotFound
		}

		return nil
	})
}

// Delete removes an infraction. Pardons and publications are removed by cascade.
// Returns true if a row was deleted.
func (m *InfractionModel) Delete(ctx context.Context, id int64) (bool, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (bool, error) {
		result, err := m.db.NewDelete().
			Model((*types.Infraction)(nil)).
			Where("id = ?", id).
			Exec(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to delete infraction: %w (id=%d)", err, id)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return false, err
		}

		return affected > 0, nil
	})
}

// ListForUser retrieves a page of a user's infractions ordered by issue time.
// A nil infractionType returns every type. Pages continue after the given cursor.
func (m *InfractionModel) ListForUser(
	ctx context.Context, guildID, userID uint64, infractionType *enum.InfractionType,
	after *types.InfractionCursor, limit int,
) ([]*types.Infraction, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) ([]*types.Infraction, error) {
		var infractions []*types.Infraction

		query := m.db.NewSelect().
			Model(&infractions).
			Relation("Pardon").
			Relation("Publications").
			Where("i.guild_id = ?", guildID).
			Where("i.user_id = ?", userID)

		if infractionType != nil {
			query = query.Where("i.type = ?", *infractionType)
		}

		if after != nil {
			query = query.Where("(i.issued_at, i.id) > (?, ?)", after.IssuedAt, after.ID)
		}

		err := query.
			Order("i.issued_at ASC", "i.id ASC").
			Limit(limit).
			Scan(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list infractions: %w (userID=%d)", err, userID)
		}

		return infractions, nil
	})
}

// CountByModerator counts the infractions a moderator issued in a guild, per type.
func (m *InfractionModel) CountByModerator(
	ctx context.Context, guildID, moderatorID uint64,
) (map[enum.InfractionType]int, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (map[enum.InfractionType]int, error) {
		var rows []struct {
			Type  enum.InfractionType `bun:"type"`
			Count int                 `bun:"count"`
		}

		err := m.db.NewSelect().
			Model((*types.Infraction)(nil)).
			Column("type").
			ColumnExpr("COUNT(*) AS count").
			Where("guild_id = ?", guildID).
			Where("moderator_id = ?", moderatorID).
			Group("type").
			Scan(ctx, &rows)
		if err != nil {
			return nil, fmt.Errorf("failed to count moderator actions: %w (moderatorID=%d)", err, moderatorID)
		}

		counts := make(map[enum.InfractionType]int, len(rows))
		for _, row := range rows {
			counts[row.Type] = row.Count
		}

		return counts, nil
	})
}
