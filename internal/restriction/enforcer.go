package restriction

import (
	"context"
	"errors"
	"time"

	"github.com/robalyx/fuzzy/internal/database/types"
	"go.uber.org/zap"
)

// Message is the part of an incoming chat message the Enforcer looks at.
type Message struct {
	GuildID   uint64
	ChannelID uint64
	MessageID uint64
	AuthorID  uint64
}

// Enforcer removes messages posted in locked threads by members who cannot
// manage messages there.
type Enforcer struct {
	threadLocks ThreadLockStore
	platform    Platform
	logger      *zap.Logger
	now         func() time.Time
}

// NewEnforcer creates an Enforcer.
func NewEnforcer(threadLocks ThreadLockStore, platform Platform, logger *zap.Logger, opts ...Option) *Enforcer {
	o := newOptions(opts)
	return &Enforcer{
		threadLocks: threadLocks,
		platform:    platform,
		logger:      logger.Named("enforcer"),
		now:         o.now,
	}
}

// HandleMessage deletes the message if its thread is locked. It reports
// whether the message was deleted.
func (e *Enforcer) HandleMessage(ctx context.Context, msg Message) (bool, error) {
	lock, err := e.threadLocks.Get(ctx, msg.ChannelID)
	if err != nil {
		if errors.Is(err, types.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	if lock.IsExpired(e.now()) {
		return false, nil
	}

	privileged, err := e.platform.CanManageMessages(ctx, msg.GuildID, msg.ChannelID, msg.AuthorID)
	if err != nil {
		return false, err
	}
	if privileged {
		return false, nil
	}

	if err := e.platform.DeleteMessage(ctx, msg.ChannelID, msg.MessageID); err != nil {
		return false, err
	}

	e.logger.Debug("Deleted message in locked thread",
		zap.Uint64("channelID", msg.ChannelID),
		zap.Uint64("messageID", msg.MessageID),
		zap.Uint64("authorID", msg.AuthorID))

	return true, nil
}
