package restriction

import (
	"context"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/robalyx/fuzzy/internal/database/types"
	"github.com/robalyx/fuzzy/internal/database/types/enum"
)

// ChannelKind tells channels locked by permission overwrite apart from threads.
type ChannelKind int

const (
	ChannelKindText ChannelKind = iota
	ChannelKindThread
)

func (k ChannelKind) String() string {
	if k == ChannelKindThread {
		return "thread"
	}
	return "channel"
}

// Platform is the chat surface restrictions are applied to.
// Lookups return notice.ErrUnknownTarget when the guild, channel, thread or
// @everyone role no longer exists.
type Platform interface {
	// ChannelKind resolves a channel of a guild.
	// Channels that cannot be locked return ErrUnsupportedChannel.
	ChannelKind(ctx context.Context, guildID, channelID uint64) (ChannelKind, error)
	// SendPermission reads the SEND_MESSAGES state of the channel's @everyone overwrite.
	SendPermission(ctx context.Context, guildID, channelID uint64) (enum.PermissionState, error)
	// SetSendPermission sets the SEND_MESSAGES state of the channel's @everyone
	// overwrite, leaving every other permission in the overwrite untouched.
	SetSendPermission(ctx context.Context, guildID, channelID uint64, state enum.PermissionState) error
	// CanManageMessages reports whether a member holds manage-messages in a channel.
	CanManageMessages(ctx context.Context, guildID, channelID, userID uint64) (bool, error)
	// DeleteMessage removes a message from a channel.
	DeleteMessage(ctx context.Context, channelID, messageID uint64) error
	// BotName is the display name used when the bot itself lifts a restriction.
	BotName() string
	// PostLog posts an embed to the guild's moderation log channel.
	PostLog(ctx context.Context, guildID uint64, embed discord.Embed) error
}

// LockStore persists channel locks.
type LockStore interface {
	Get(ctx context.Context, channelID uint64) (*types.Lock, error)
	Save(ctx context.Context, lock *types.Lock) error
	Delete(ctx context.Context, channelID uint64) (bool, error)
	DeleteExpired(ctx context.Context, channelID uint64, now time.Time) (bool, error)
	Expired(ctx context.Context, now time.Time) ([]*types.Lock, error)
}

// ThreadLockStore persists thread locks.
type ThreadLockStore interface {
	Get(ctx context.Context, threadID uint64) (*types.ThreadLock, error)
	Save(ctx context.Context, lock *types.ThreadLock) error
	Delete(ctx context.Context, threadID uint64) (bool, error)
	DeleteExpired(ctx context.Context, threadID uint64, now time.Time) (bool, error)
	Expired(ctx context.Context, now time.Time) ([]*types.ThreadLock, error)
}
