package moderation

import (
	"context"

	"github.com/disgoorg/disgo/discord"
	"github.com/robalyx/fuzzy/internal/database/types"
	"github.com/robalyx/fuzzy/internal/database/types/enum"
)

// InfractionStore persists infractions.
type InfractionStore interface {
	Create(ctx context.Context, infraction *types.Infraction) error
	Get(ctx context.Context, guildID uint64, id int64) (*types.Infraction, error)
	Save(ctx context.Context, infraction *types.Infraction) error
	Delete(ctx context.Context, id int64) (bool, error)
	ListForUser(
		ctx context.Context, guildID, userID uint64, infractionType *enum.InfractionType,
		after *types.InfractionCursor, limit int,
	) ([]*types.Infraction, error)
	CountByModerator(ctx context.Context, guildID, moderatorID uint64) (map[enum.InfractionType]int, error)
}

// PardonStore persists pardons.
type PardonStore interface {
	Save(ctx context.Context, pardon *types.Pardon) error
	Delete(ctx context.Context, infractionID int64) (bool, error)
}

// PublicationStore persists links between infractions and public messages.
type PublicationStore interface {
	Create(ctx context.Context, publication *types.PublishedMessage) error
	Delete(ctx context.Context, messageID uint64) (bool, error)
}

// SettingsStore looks up where a guild wants its logs posted.
type SettingsStore interface {
	Get(ctx context.Context, guildID uint64) (*types.GuildSettings, error)
}

// Notifier sends, fetches and edits messages in a channel.
// Fetch and Edit return notice.ErrUnknownMessage when the message is confirmed gone,
// or notice.ErrUnknownTarget when its channel is.
type Notifier interface {
	Send(ctx context.Context, channelID uint64, embed discord.Embed) (uint64, error)
	Fetch(ctx context.Context, channelID, messageID uint64) error
	Edit(ctx context.Context, channelID, messageID uint64, embed discord.Embed) error
}

// Refresher re-synchronizes live publications after an infraction changes.
type Refresher interface {
	RefreshBan(ctx context.Context, infraction *types.Infraction) error
	RefreshUnban(ctx context.Context, infraction *types.Infraction) error
}
