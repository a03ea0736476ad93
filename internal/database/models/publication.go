package models

import (
	"context"
	"fmt"

	"github.com/robalyx/fuzzy/internal/database/dbretry"
	"github.com/robalyx/fuzzy/internal/database/types"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// PublicationModel handles database operations for published messages.
type PublicationModel struct {
	db     *bun.DB
	logger *zap.Logger
}

// NewPublication creates a new PublicationModel instance.
func NewPublication(db *bun.DB, logger *zap.Logger) *PublicationModel {
	return &PublicationModel{
		db:     db,
		logger: logger.Named("db_publication"),
	}
}

// Create stores the link between an infraction and its public message.
func (m *PublicationModel) Create(ctx context.Context, publication *types.PublishedMessage) error {
	err := dbretry.NoResult(ctx, func(ctx context.Context) error {
		_, err := m.db.NewInsert().Model(publication).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create publication: %w (infractionID=%d)", err, publication.InfractionID)
		}

		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Debug("Stored publication",
		zap.Int64("infractionID", publication.InfractionID),
		zap.Uint64("messageID", publication.MessageID),
		zap.String("kind", publication.Kind.String()))

	return nil
}

// Delete removes the publication backed by the given message.
// Returns true if a row was removed.
func (m *PublicationModel) Delete(ctx context.Context, messageID uint64) (bool, error) {
	return dbretry.Operation(ctx, func(ctx context.Context) (bool, error) {
		result, err := m.db.NewDelete().
			Model((*types.PublishedMessage)(nil)).
			Where("message_id = ?", messageID).
			Exec(ctx)
		if err != nil {
			return false, fmt.Errorf("failed to delete publication: %w (messageID=%d)", err, messageID)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return false, err
		}

		return affected > 0, nil
	})
}
