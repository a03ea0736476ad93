// Package platform implements the moderation and restriction collaborators on
// top of a disgo client.
package platform

import (
	"context"
	"errors"
	"fmt"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/rest"
	"github.com/disgoorg/snowflake/v2"
	"github.com/robalyx/fuzzy/internal/database/types"
	"github.com/robalyx/fuzzy/internal/database/types/enum"
	"github.com/robalyx/fuzzy/internal/discord/access"
	"github.com/robalyx/fuzzy/internal/discord/notice"
	"github.com/robalyx/fuzzy/internal/moderation"
	"github.com/robalyx/fuzzy/internal/restriction"
	"go.uber.org/zap"
)

// DefaultBotName is used in audit entries until the gateway reports the bot's own user.
const DefaultBotName = "Fuzzy"

// SettingsStore looks up per-guild log channels.
type SettingsStore interface {
	Get(ctx context.Context, guildID uint64) (*types.GuildSettings, error)
}

var (
	_ moderation.Notifier  = (*Discord)(nil)
	_ restriction.Platform = (*Discord)(nil)
)

// Discord talks to Discord through a disgo client.
type Discord struct {
	client   bot.Client
	settings SettingsStore
	ownerID  uint64
	logger   *zap.Logger
}

// New creates a Discord adapter. ownerID is the bot owner, who passes every
// permission check.
func New(client bot.Client, settings SettingsStore, ownerID uint64, logger *zap.Logger) *Discord {
	return &Discord{
		client:   client,
		settings: settings,
		ownerID:  ownerID,
		logger:   logger.Named("discord"),
	}
}

// Send posts an embed and returns the new message's id.
func (d *Discord) Send(ctx context.Context, channelID uint64, embed discord.Embed) (uint64, error) {
	message, err := d.client.Rest().CreateMessage(snowflake.ID(channelID),
		discord.NewMessageCreateBuilder().SetEmbeds(embed).Build(),
		rest.WithCtx(ctx))
	if err != nil {
		return 0, classify(err, notice.ErrUnknownTarget)
	}
	return uint64(message.ID), nil
}

// Fetch confirms a message still exists.
func (d *Discord) Fetch(ctx context.Context, channelID, messageID uint64) error {
	_, err := d.client.Rest().GetMessage(snowflake.ID(channelID), snowflake.ID(messageID), rest.WithCtx(ctx))
	return classifyMessage(err)
}

// Edit replaces the embeds of a message.
func (d *Discord) Edit(ctx context.Context, channelID, messageID uint64, embed discord.Embed) error {
	_, err := d.client.Rest().UpdateMessage(snowflake.ID(channelID), snowflake.ID(messageID),
		discord.NewMessageUpdateBuilder().SetEmbeds(embed).Build(),
		rest.WithCtx(ctx))
	return classifyMessage(err)
}

// DeleteMessage removes a message. A message that is already gone counts as deleted.
func (d *Discord) DeleteMessage(ctx context.Context, channelID, messageID uint64) error {
	err := classifyMessage(
		d.client.Rest().DeleteMessage(snowflake.ID(channelID), snowflake.ID(messageID), rest.WithCtx(ctx)),
	)
	if errors.Is(err, notice.ErrUnknownMessage) {
		return nil
	}
	return err
}

// PostLog posts an embed to the guild's moderation log channel.
func (d *Discord) PostLog(ctx context.Context, guildID uint64, embed discord.Embed) error {
	settings, err := d.settings.Get(ctx, guildID)
	if err != nil {
		if errors.Is(err, types.ErrRecordNotFound) {
			return notice.ErrChannelNotConfigured
		}
		return err
	}
	if settings.ModLogChannelID == 0 {
		return notice.ErrChannelNotConfigured
	}

	for _, chunk := range splitEmbed(embed) {
		if _, err := d.Send(ctx, settings.ModLogChannelID, chunk); err != nil {
			return fmt.Errorf("failed to post log: %w", err)
		}
	}
	return nil
}

// BotName returns the bot's own username.
func (d *Discord) BotName() string {
	if self, ok := d.client.Caches().SelfUser(); ok {
		return self.Username
	}
	return DefaultBotName
}

// ChannelKind resolves a channel of the guild.
func (d *Discord) ChannelKind(ctx context.Context, guildID, channelID uint64) (restriction.ChannelKind, error) {
	channel, err := d.guildChannel(ctx, guildID, channelID)
	if err != nil {
		return 0, err
	}

	switch channel.(type) {
	case discord.GuildTextChannel, discord.GuildNewsChannel:
		return restriction.ChannelKindText, nil
	case discord.GuildThread:
		return restriction.ChannelKindThread, nil
	default:
		return 0, fmt.Errorf("%w: channel type %d", restriction.ErrUnsupportedChannel, channel.Type())
	}
}

// SendPermission reads SEND_MESSAGES from the channel's @everyone overwrite.
func (d *Discord) SendPermission(ctx context.Context, guildID, channelID uint64) (enum.PermissionState, error) {
	channel, err := d.guildChannel(ctx, guildID, channelID)
	if err != nil {
		return 0, err
	}

	overwrite, _ := channel.PermissionOverwrites().Role(snowflake.ID(guildID))
	return sendState(overwrite), nil
}

// SetSendPermission sets SEND_MESSAGES on the channel's @everyone overwrite and
// keeps the rest of the overwrite as it is.
func (d *Discord) SetSendPermission(
	ctx context.Context, guildID, channelID uint64, state enum.PermissionState,
) error {
	channel, err := d.guildChannel(ctx, guildID, channelID)
	if err != nil {
		return err
	}

	overwrite, _ := channel.PermissionOverwrites().Role(snowflake.ID(guildID))
	allow, deny := withSendState(overwrite, state)

	err = d.client.Rest().UpdatePermissionOverwrite(snowflake.ID(channelID), snowflake.ID(guildID),
		discord.RolePermissionOverwriteUpdate{Allow: &allow, Deny: &deny},
		rest.WithCtx(ctx))
	if err != nil {
		return classify(err, notice.ErrUnknownTarget)
	}

	d.logger.Debug("Updated @everyone overwrite",
		zap.Uint64("guildID", guildID),
		zap.Uint64("channelID", channelID),
		zap.String("sendMessages", state.String()))

	return nil
}

// CanManageMessages reports whether a member holds manage-messages in a channel.
// Threads use the permissions of their parent channel.
func (d *Discord) CanManageMessages(ctx context.Context, guildID, channelID, userID uint64) (bool, error) {
	caches := d.client.Caches()

	channel, ok := caches.Channel(snowflake.ID(channelID))
	if !ok {
		fetched, err := d.guildChannel(ctx, guildID, channelID)
		if err != nil {
			return false, err
		}
		channel = fetched
	}

	if thread, ok := channel.(discord.GuildThread); ok {
		if parentID := thread.ParentID(); parentID != nil {
			parent, err := d.guildChannel(ctx, guildID, uint64(*parentID))
			if err != nil {
				return false, err
			}
			channel = parent
		}
	}

	member, ok := caches.Member(snowflake.ID(guildID), snowflake.ID(userID))
	if !ok {
		fetched, err := d.client.Rest().GetMember(snowflake.ID(guildID), snowflake.ID(userID), rest.WithCtx(ctx))
		if err != nil {
			return false, classify(err, notice.ErrUnknownTarget)
		}
		member = *fetched
	}

	actor := access.Actor{
		UserID:   userID,
		BotOwner: userID == d.ownerID,
	}
	permissions := caches.MemberPermissionsInChannel(channel, member)

	return access.CanModify(actor, access.Channel(permissions)), nil
}

func (d *Discord) guildChannel(ctx context.Context, guildID, channelID uint64) (discord.GuildChannel, error) {
	channel, err := d.client.Rest().GetChannel(snowflake.ID(channelID), rest.WithCtx(ctx))
	if err != nil {
		return nil, classify(err, notice.ErrUnknownTarget)
	}

	guildChannel, ok := channel.(discord.GuildChannel)
	if !ok || uint64(guildChannel.GuildID()) != guildID {
		return nil, fmt.Errorf("%w: channel %d is not in guild %d", notice.ErrUnknownTarget, channelID, guildID)
	}

	return guildChannel, nil
}

// sendState reads SEND_MESSAGES from an overwrite.
func sendState(overwrite discord.RolePermissionOverwrite) enum.PermissionState {
	switch {
	case overwrite.Allow.Has(discord.PermissionSendMessages):
		return enum.PermissionStateAllow
	case overwrite.Deny.Has(discord.PermissionSendMessages):
		return enum.PermissionStateDeny
	default:
		return enum.PermissionStateInherit
	}
}

// withSendState returns the overwrite's allow and deny sets with SEND_MESSAGES
// set to state and every other bit unchanged.
func withSendState(overwrite discord.RolePermissionOverwrite, state enum.PermissionState) (discord.Permissions, discord.Permissions) {
	allow := overwrite.Allow.Remove(discord.PermissionSendMessages)
	deny := overwrite.Deny.Remove(discord.PermissionSendMessages)

	switch state {
	case enum.PermissionStateAllow:
		allow = allow.Add(discord.PermissionSendMessages)
	case enum.PermissionStateDeny:
		deny = deny.Add(discord.PermissionSendMessages)
	case enum.PermissionStateInherit:
	}

	return allow, deny
}

// splitEmbed breaks an embed whose description is too long into several.
func splitEmbed(embed discord.Embed) []discord.Embed {
	chunks := notice.Chunk(embed.Description, notice.MaxDescriptionLength)
	if len(chunks) == 1 {
		return []discord.Embed{embed}
	}

	embeds := make([]discord.Embed, 0, len(chunks))
	for _, chunk := range chunks {
		part := embed
		part.Description = chunk
		embeds = append(embeds, part)
	}
	return embeds
}
