package access_test

import (
	"testing"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
	"github.com/robalyx/fuzzy/internal/discord/access"
	"github.com/stretchr/testify/assert"
)

func TestCanModify(t *testing.T) {
	t.Parallel()

	moderator := access.Actor{
		UserID:           1,
		GuildPermissions: discord.PermissionBanMembers | discord.PermissionManageRoles,
		TopRolePosition:  5,
	}
	member := access.Actor{UserID: 2}

	tests := []struct {
		name    string
		actor   access.Actor
		subject access.Subject
		want    bool
	}{
		{name: "channel with manage messages", actor: member, subject: access.Channel(discord.PermissionManageMessages), want: true},
		{name: "channel without manage messages", actor: moderator, subject: access.Channel(discord.PermissionSendMessages)},
		{name: "member with ban members", actor: moderator, subject: access.Member(), want: true},
		{name: "member without ban members", actor: member, subject: access.Member()},
		{name: "guild without manage guild", actor: moderator, subject: access.Guild()},
		{name: "lower role", actor: moderator, subject: access.Role(3), want: true},
		{name: "equal role", actor: moderator, subject: access.Role(5)},
		{
			name:    "guild owner ignores hierarchy",
			actor:   access.Actor{GuildOwner: true, GuildPermissions: discord.PermissionManageRoles},
			subject: access.Role(10),
			want:    true,
		},
		{name: "bot owner", actor: access.Actor{BotOwner: true}, subject: access.Guild(), want: true},
		{name: "zero subject", actor: moderator, subject: access.Subject{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, access.CanModify(tt.actor, tt.subject))
		})
	}
}

func TestTopRolePosition(t *testing.T) {
	t.Parallel()

	roles := []discord.Role{
		{ID: snowflake.ID(1), Position: 2},
		{ID: snowflake.ID(2), Position: 7},
		{ID: snowflake.ID(3), Position: 4},
	}

	assert.Equal(t, 4, access.TopRolePosition([]snowflake.ID{1, 3}, roles))
	assert.Equal(t, 7, access.TopRolePosition([]snowflake.ID{2, 99}, roles))
	assert.Zero(t, access.TopRolePosition(nil, roles))
}
