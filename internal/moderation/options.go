package moderation

import (
	"context"
	"time"

	"github.com/disgoorg/disgo/discord"
)

const defaultPageSize = 50

// AuditLog receives moderation log entries for a guild.
type AuditLog interface {
	PostLog(ctx context.Context, guildID uint64, embed discord.Embed) error
}

type options struct {
	now      func() time.Time
	pageSize int
	audit    AuditLog
}

// Option configures a Ledger or Publisher.
type Option func(*options)

// WithClock replaces the wall clock used to timestamp pardons and publications.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithPageSize sets how many infractions a listing fetches per query.
func WithPageSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.pageSize = size
		}
	}
}

// WithAuditLog posts an entry to the guild's moderation log for every publication.
func WithAuditLog(audit AuditLog) Option {
	return func(o *options) {
		o.audit = audit
	}
}

func newOptions(opts []Option) options {
	o := options{
		now:      time.Now,
		pageSize: defaultPageSize,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
