package moderation

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/robalyx/fuzzy/internal/database/types"
	"github.com/robalyx/fuzzy/internal/database/types/enum"
	"go.uber.org/zap"
)

// Ledger owns the lifecycle of infractions and their pardons.
type Ledger struct {
	infractions InfractionStore
	pardons     PardonStore
	refresher   Refresher
	logger      *zap.Logger
	now         func() time.Time
	pageSize    int
}

// NewLedger creates a Ledger. The refresher is told about every change that
// affects a live publication.
func NewLedger(
	infractions InfractionStore, pardons PardonStore, refresher Refresher, logger *zap.Logger, opts ...Option,
) *Ledger {
	o := newOptions(opts)
	return &Ledger{
		infractions: infractions,
		pardons:     pardons,
		refresher:   refresher,
		logger:      logger.Named("ledger"),
		now:         o.now,
		pageSize:    o.pageSize,
	}
}

// Issue records a new infraction against a user.
func (l *Ledger) Issue(
	ctx context.Context, guildID uint64, infractionType enum.InfractionType,
	user, moderator types.DBUser, reason string,
) (*types.Infraction, error) {
	if !infractionType.IsAInfractionType() {
		return nil, fmt.Errorf("%w: unknown infraction type %d", ErrInvalidState, infractionType)
	}

	infraction := &types.Infraction{
		GuildID:   guildID,
		Type:      infractionType,
		User:      user,
		Moderator: moderator,
		Reason:    reason,
		IssuedAt:  l.now().UTC(),
	}
	if err := l.infractions.Create(ctx, infraction); err != nil {
		return nil, err
	}

	l.logger.Info("Issued infraction",
		zap.Int64("id", infraction.ID),
		zap.Uint64("guildID", guildID),
		zap.String("type", infractionType.String()),
		zap.Uint64("userID", user.ID),
		zap.Uint64("moderatorID", moderator.ID))

	return infraction, nil
}

// Get retrieves an infraction of a guild.
func (l *Ledger) Get(ctx context.Context, guildID uint64, infractionID int64) (*types.Infraction, error) {
	infraction, err := l.infractions.Get(ctx, guildID, infractionID)
	if err != nil {
		if errors.Is(err, types.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, infractionID)
		}
		return nil, err
	}
	return infraction, nil
}

// Pardon pardons an infraction. An existing pardon only has its reason replaced.
// If the pardon is saved but the live unban publication cannot be refreshed,
// the pardon is returned together with the refresh error.
func (l *Ledger) Pardon(
	ctx context.Context, guildID uint64, infractionID int64, actor types.DBUser, reason string,
) (*types.Pardon, error) {
	infraction, err := l.Get(ctx, guildID, infractionID)
	if err != nil {
		return nil, err
	}

	pardon := infraction.Pardon
	if pardon != nil {
		pardon.Reason = reason
	} else {
		pardon = &types.Pardon{
			InfractionID: infraction.ID,
			Moderator:    actor,
			PardonedAt:   l.now().UTC(),
			Reason:       reason,
		}
	}

	if err := l.pardons.Save(ctx, pardon); err != nil {
		return nil, err
	}
	infraction.Pardon = pardon

	l.logger.Info("Pardoned infraction",
		zap.Int64("id", infraction.ID),
		zap.Uint64("guildID", guildID),
		zap.Uint64("moderatorID", actor.ID))

	if infraction.IsBan() && infraction.PublishedUnban() != nil {
		if err := l.refresher.RefreshUnban(ctx, infraction); err != nil {
			return pardon, fmt.Errorf("pardon saved but unban publication was not refreshed: %w", err)
		}
	}

	return pardon, nil
}

// UpdateReason replaces the reason of an infraction. Infractions recorded without
// a moderator take the acting moderator.
func (l *Ledger) UpdateReason(
	ctx context.Context, guildID uint64, infractionID int64, actor types.DBUser, reason string,
) (*types.Infraction, error) {
	infraction, err := l.Get(ctx, guildID, infractionID)
	if err != nil {
		return nil, err
	}

	infraction.Reason = reason
	if infraction.Moderator.IsSystem() {
		infraction.Moderator = actor
	}

	if err := l.infractions.Save(ctx, infraction); err != nil {
		if errors.Is(err, types.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrNotFound, infractionID)
		}
		return nil, err
	}

	if infraction.IsBan() && infraction.PublishedBan() != nil {
		if err := l.refresher.RefreshBan(ctx, infraction); err != nil {
			return infraction, fmt.Errorf("reason saved but ban publication was not refreshed: %w", err)
		}
	}

	return infraction, nil
}

// Forget permanently deletes infractions and their pardons. Unknown ids are
// reported as missing without stopping the batch. Public messages are left in place.
func (l *Ledger) Forget(ctx context.Context, guildID uint64, infractionIDs []int64) ([]int64, []int64, error) {
	var forgotten, missing []int64

	seen := make(map[int64]struct{}, len(infractionIDs))
	for _, id := range infractionIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		infraction, err := l.Get(ctx, guildID, id)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				missing = append(missing, id)
				continue
			}
			return forgotten, missing, err
		}

		if infraction.Pardon != nil {
			if _, err := l.pardons.Delete(ctx, infraction.ID); err != nil {
				return forgotten, missing, err
			}
		}

		deleted, err := l.infractions.Delete(ctx, infraction.ID)
		if err != nil {
			return forgotten, missing, err
		}

		// Removed concurrently between lookup and delete
		if !deleted {
			missing = append(missing, id)
			continue
		}

		forgotten = append(forgotten, id)
	}

	if len(forgotten) > 0 {
		l.logger.Info("Forgot infractions",
			zap.Uint64("guildID", guildID),
			zap.Int64s("ids", forgotten))
	}

	return forgotten, missing, nil
}

// ListForUser lazily yields a user's infractions in issue order.
// Each range over the sequence queries the store again from the start.
func (l *Ledger) ListForUser(
	ctx context.Context, guildID, userID uint64, filter enum.InfractionFilter,
) iter.Seq2[*types.Infraction, error] {
	var infractionType *enum.InfractionType
	if t, ok := filter.Type(); ok {
		infractionType = &t
	}

	return func(yield func(*types.Infraction, error) bool) {
		var cursor *types.InfractionCursor

		for {
			page, err := l.infractions.ListForUser(ctx, guildID, userID, infractionType, cursor, l.pageSize)
			if err != nil {
				yield(nil, err)
				return
			}

			for _, infraction := range page {
				if !yield(infraction, nil) {
					return
				}
			}

			if len(page) < l.pageSize {
				return
			}

			last := page[len(page)-1]
			cursor = &types.InfractionCursor{IssuedAt: last.IssuedAt, ID: last.ID}
		}
	}
}

// ModeratorSummary counts the infractions a moderator issued in a guild, per type.
func (l *Ledger) ModeratorSummary(
	ctx context.Context, guildID, moderatorID uint64,
) (map[enum.InfractionType]int, error) {
	return l.infractions.CountByModerator(ctx, guildID, moderatorID)
}
