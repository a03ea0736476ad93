package types

import (
	"time"

	"github.com/robalyx/fuzzy/internal/database/types/enum"
	"github.com/uptrace/bun"
)

// Lock is a time-bounded restriction preventing @everyone from sending messages in a channel.
type Lock struct {
	bun.BaseModel `bun:"table:locks,alias:l"`

	ChannelID     uint64               `bun:",pk"                json:"channelId"`
	GuildID       uint64               `bun:",notnull"           json:"guildId"`
	PreviousValue enum.PermissionState `bun:",notnull"           json:"previousValue"` // State restored on expiry
	Moderator     DBUser               `bun:"embed:moderator_"   json:"moderator"`
	Reason        string               `bun:",notnull,type:text" json:"reason"`
	ExpiresAt     time.Time            `bun:",notnull"           json:"expiresAt"`
	CreatedAt     time.Time            `bun:",notnull"           json:"createdAt"`
}

// IsExpired checks if the lock has expired at the given instant.
func (l *Lock) IsExpired(now time.Time) bool {
	return !l.ExpiresAt.After(now)
}

// ThreadLock is a time-bounded restriction on a thread.
// It carries no permission snapshot because it is enforced by deleting new messages.
type ThreadLock struct {
	bun.BaseModel `bun:"table:thread_locks,alias:tl"`

	ChannelID uint64    `bun:",pk"                json:"channelId"`
	GuildID   uint64    `bun:",notnull"           json:"guildId"`
	Moderator DBUser    `bun:"embed:moderator_"   json:"moderator"`
	Reason    string    `bun:",notnull,type:text" json:"reason"`
	ExpiresAt time.Time `bun:",notnull"           json:"expiresAt"`
	CreatedAt time.Time `bun:",notnull"           json:"createdAt"`
}

// IsExpired checks if the thread lock has expired at the given instant.
func (l *ThreadLock) IsExpired(now time.Time) bool {
	return !l.ExpiresAt.After(now)
}

// GuildSettings holds the per-guild channels used for audit and public logs.
type GuildSettings struct {
	bun.BaseModel `bun:"table:guild_settings,alias:gs"`

	ID                 uint64    `bun:",pk"                json:"id"`
	ModLogChannelID    uint64    `bun:",notnull,default:0" json:"modLogChannelId"`
	PublicLogChannelID uint64    `bun:",notnull,default:0" json:"publicLogChannelId"`
	UpdatedAt          time.Time `bun:",notnull"           json:"updatedAt"`
}
