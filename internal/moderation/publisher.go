package moderation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robalyx/fuzzy/internal/database/types"
	"github.com/robalyx/fuzzy/internal/database/types/enum"
	"github.com/robalyx/fuzzy/internal/discord/notice"
	"go.uber.org/zap"
)

// BatchReport describes the outcome of every id handed to PublishMany.
type BatchReport struct {
	Published   []*types.PublishedMessage
	Failed      map[int64]error
	NotFound    []int64
	NotBan      []int64
	NotPardoned []int64
}

// Publisher keeps public ban and unban messages consistent with the infraction
// records, and repairs links to messages that were deleted out of band.
//
// Publishing the same infraction twice posts a second message and records it;
// the newest message of each kind is the one refreshed afterwards.
type Publisher struct {
	infractions  InfractionStore
	publications PublicationStore
	settings     SettingsStore
	notifier     Notifier
	audit        AuditLog
	logger       *zap.Logger
	now          func() time.Time
}

// NewPublisher creates a Publisher.
func NewPublisher(
	infractions InfractionStore, publications PublicationStore, settings SettingsStore,
	notifier Notifier, logger *zap.Logger, opts ...Option,
) *Publisher {
	o := newOptions(opts)
	return &Publisher{
		infractions:  infractions,
		publications: publications,
		settings:     settings,
		notifier:     notifier,
		audit:        o.audit,
		logger:       logger.Named("publisher"),
		now:          o.now,
	}
}

// PublishBan posts the ban summary to the guild's public log and records it.
func (p *Publisher) PublishBan(ctx context.Context, infraction *types.Infraction) (*types.PublishedMessage, error) {
	if err := checkEligible(infraction, enum.PublishKindBan); err != nil {
		return nil, err
	}
	return p.publish(ctx, infraction, enum.PublishKindBan)
}

// PublishUnban posts the unban summary of a pardoned ban and records it.
func (p *Publisher) PublishUnban(ctx context.Context, infraction *types.Infraction) (*types.PublishedMessage, error) {
	if err := checkEligible(infraction, enum.PublishKindUnban); err != nil {
		return nil, err
	}
	return p.publish(ctx, infraction, enum.PublishKindUnban)
}

// RefreshBan re-renders the live ban publication. A publication whose message
// or channel is gone is deleted and dropped from the infraction.
func (p *Publisher) RefreshBan(ctx context.Context, infraction *types.Infraction) error {
	return p.refresh(ctx, infraction, enum.PublishKindBan)
}

// RefreshUnban re-renders the live unban publication. A publication whose message
// or channel is gone is deleted and dropped from the infraction.
func (p *Publisher) RefreshUnban(ctx context.Context, infraction *types.Infraction) error {
	return p.refresh(ctx, infraction, enum.PublishKindUnban)
}

// PublishMany publishes every eligible infraction and reports each id's outcome.
// A failure on one infraction never stops the others.
func (p *Publisher) PublishMany(
	ctx context.Context, guildID uint64, kind enum.PublishKind, infractionIDs []int64,
) (*BatchReport, error) {
	report := &BatchReport{Failed: make(map[int64]error)}

	for _, id := range infractionIDs {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		infraction, err := p.infractions.Get(ctx, guildID, id)
		if err != nil {
			if errors.Is(err, types.ErrRecordNotFound) {
				report.NotFound = append(report.NotFound, id)
			} else {
				report.Failed[id] = err
			}
			continue
		}

		switch {
		case !infraction.IsBan():
			report.NotBan = append(report.NotBan, id)
			continue
		case kind == enum.PublishKindUnban && !infraction.IsPardoned():
			report.NotPardoned = append(report.NotPardoned, id)
			continue
		}

		publication, err := p.publish(ctx, infraction, kind)
		if err != nil {
			report.Failed[id] = err
			continue
		}
		report.Published = append(report.Published, publication)
	}

	p.logger.Info("Published infractions",
		zap.Uint64("guildID", guildID),
		zap.String("kind", kind.String()),
		zap.Int("published", len(report.Published)),
		zap.Int("failed", len(report.Failed)),
		zap.Int("notFound", len(report.NotFound)),
		zap.Int("ineligible", len(report.NotBan)+len(report.NotPardoned)))

	return report, nil
}

func checkEligible(infraction *types.Infraction, kind enum.PublishKind) error {
	if !infraction.IsBan() {
		return fmt.Errorf("%w: infraction %d is a %s, only bans can be published",
			ErrInvalidState, infraction.ID, infraction.Type)
	}
	if kind == enum.PublishKindUnban && !infraction.IsPardoned() {
		return fmt.Errorf("%w: infraction %d must be pardoned before its unban can be published",
			ErrInvalidState, infraction.ID)
	}
	return nil
}

func (p *Publisher) publish(
	ctx context.Context, infraction *types.Infraction, kind enum.PublishKind,
) (*types.PublishedMessage, error) {
	channelID, err := p.publicChannel(ctx, infraction.GuildID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPublish, err)
	}

	messageID, err := p.notifier.Send(ctx, channelID, RenderPublication(kind, infraction))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPublish, err)
	}

	publication := &types.PublishedMessage{
		MessageID:    messageID,
		InfractionID: infraction.ID,
		ChannelID:    channelID,
		Kind:         kind,
		CreatedAt:    p.now().UTC(),
	}
	if err := p.publications.Create(ctx, publication); err != nil {
		p.logger.Error("Message sent but publication was not recorded",
			zap.Int64("infractionID", infraction.ID),
			zap.Uint64("messageID", messageID),
			zap.Error(err))
		return nil, err
	}
	infraction.AddPublication(publication)

	p.logger.Debug("Published infraction",
		zap.Int64("infractionID", infraction.ID),
		zap.String("kind", kind.String()),
		zap.Uint64("messageID", messageID))

	if p.audit != nil {
		entry := notice.New(notice.ColorAutomaticBlue, "Infraction Published",
			fmt.Sprintf("Published %s of %s (#%d) in <#%d>",
				strings.ToLower(kind.String()), infraction.User.Name, infraction.ID, channelID))
		if err := p.audit.PostLog(ctx, infraction.GuildID, entry); err != nil &&
			!errors.Is(err, notice.ErrChannelNotConfigured) {
			p.logger.Warn("Failed to post audit entry",
				zap.Int64("infractionID", infraction.ID),
				zap.Error(err))
		}
	}

	return publication, nil
}

func (p *Publisher) publicChannel(ctx context.Context, guildID uint64) (uint64, error) {
	settings, err := p.settings.Get(ctx, guildID)
	if err != nil {
		if errors.Is(err, types.ErrRecordNotFound) {
			return 0, notice.ErrChannelNotConfigured
		}
		return 0, err
	}

	if settings.PublicLogChannelID == 0 {
		return 0, notice.ErrChannelNotConfigured
	}

	return settings.PublicLogChannelID, nil
}

func (p *Publisher) refresh(ctx context.Context, infraction *types.Infraction, kind enum.PublishKind) error {
	live := infraction.Publication(kind)
	if live == nil {
		return nil
	}

	if err := checkEligible(infraction, kind); err != nil {
		return err
	}

	err := p.notifier.Fetch(ctx, live.ChannelID, live.MessageID)
	if err == nil {
		err = p.notifier.Edit(ctx, live.ChannelID, live.MessageID, RenderPublication(kind, infraction))
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, notice.ErrUnknownMessage), errors.Is(err, notice.ErrUnknownTarget):
		if _, err := p.publications.Delete(ctx, live.MessageID); err != nil {
			return fmt.Errorf("failed to delete stale publication: %w", err)
		}
		infraction.ClearPublication(live.MessageID)

		p.logger.Info("Removed publication of deleted message",
			zap.Int64("infractionID", infraction.ID),
			zap.String("kind", kind.String()),
			zap.Uint64("messageID", live.MessageID))

		return nil
	default:
		return fmt.Errorf("%w: %w", ErrTransient, err)
	}
}
