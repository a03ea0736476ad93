package types

import (
	"errors"
	"time"

	"github.com/robalyx/fuzzy/internal/database/types/enum"
	"github.com/uptrace/bun"
)

// ErrRecordNotFound is returned by the models when a lookup matches nothing.
var ErrRecordNotFound = errors.New("record not found")

// Infraction is a recorded disciplinary action against a user.
type Infraction struct {
	bun.BaseModel `bun:"table:infractions,alias:i"`

	ID        int64               `bun:",pk,autoincrement"  json:"id"`
	GuildID   uint64              `bun:",notnull"           json:"guildId"`
	Type      enum.InfractionType `bun:",notnull"           json:"type"`
	User      DBUser              `bun:"embed:user_"        json:"user"`
	Moderator DBUser              `bun:"embed:moderator_"   json:"moderator"`
	Reason    string              `bun:",notnull,type:text" json:"reason"`
	IssuedAt  time.Time           `bun:",notnull"           json:"issuedAt"`

	Pardon       *Pardon             `bun:"rel:has-one,join:id=infraction_id"  json:"pardon,omitempty"`
	Publications []*PublishedMessage `bun:"rel:has-many,join:id=infraction_id" json:"publications,omitempty"`
}

// IsBan reports whether the infraction is a ban.
func (i *Infraction) IsBan() bool {
	return i.Type == enum.InfractionTypeBan
}

// IsPardoned reports whether a pardon exists for the infraction.
func (i *Infraction) IsPardoned() bool {
	return i.Pardon != nil
}

// Publication returns the live publication of the given kind, or nil.
// When the same infraction was published more than once the newest message wins.
func (i *Infraction) Publication(kind enum.PublishKind) *PublishedMessage {
	var live *PublishedMessage
	for _, p := range i.Publications {
		if p.Kind != kind {
			continue
		}
		if live == nil || p.MessageID > live.MessageID {
			live = p
		}
	}
	return live
}

// PublishedBan returns the live ban publication, or nil.
func (i *Infraction) PublishedBan() *PublishedMessage {
	return i.Publication(enum.PublishKindBan)
}

// PublishedUnban returns the live unban publication, or nil.
func (i *Infraction) PublishedUnban() *PublishedMessage {
	return i.Publication(enum.PublishKindUnban)
}

// AddPublication caches a newly persisted publication on the infraction.
func (i *Infraction) AddPublication(p *PublishedMessage) {
	i.Publications = append(i.Publications, p)
}

// ClearPublication drops the cached reference to the publication with the given message ID.
func (i *Infraction) ClearPublication(messageID uint64) {
	kept := i.Publications[:0]
	for _, p := range i.Publications {
		if p.MessageID != messageID {
			kept = append(kept, p)
		}
	}
	i.Publications = kept
}

// Pardon nullifies the punitive effect of an infraction without deleting its history.
type Pardon struct {
	bun.BaseModel `bun:"table:pardons,alias:p"`

	InfractionID int64     `bun:",pk"                json:"infractionId"`
	Moderator    DBUser    `bun:"embed:moderator_"   json:"moderator"`
	PardonedAt   time.Time `bun:",notnull"           json:"pardonedAt"`
	Reason       string    `bun:",notnull,type:text" json:"reason"`
}

// PublishedMessage links an infraction to the public message that summarizes it.
type PublishedMessage struct {
	bun.BaseModel `bun:"table:published_messages,alias:pm"`

	MessageID    uint64           `bun:",pk"      json:"messageId"`
	InfractionID int64            `bun:",notnull" json:"infractionId"`
	ChannelID    uint64           `bun:",notnull" json:"channelId"`
	Kind         enum.PublishKind `bun:",notnull" json:"kind"`
	CreatedAt    time.Time        `bun:",notnull" json:"createdAt"`
}

// InfractionCursor marks the last infraction of a page for keyset pagination.
type InfractionCursor struct {
	IssuedAt time.Time
	ID       int64
}
