// Package access decides whether a member may take privileged actions on a
// channel, member, guild or role.
package access

import (
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/snowflake/v2"
)

// Kind identifies what a Subject refers to.
type Kind int

const (
	KindChannel Kind = iota
	KindMember
	KindGuild
	KindRole
)

func (k Kind) String() string {
	switch k {
	case KindChannel:
		return "channel"
	case KindMember:
		return "member"
	case KindGuild:
		return "guild"
	case KindRole:
		return "role"
	default:
		return "unknown"
	}
}

// Actor is the member attempting an action.
type Actor struct {
	UserID           uint64
	BotOwner         bool                // configured owner of the bot, allowed everything
	GuildOwner       bool                // owner of the guild the action happens in
	GuildPermissions discord.Permissions // permissions granted by the member's roles
	TopRolePosition  int                 // position of the member's highest role
}

// Subject is something an actor may want to modify. Each subject carries the
// rule that decides access to it.
type Subject struct {
	kind  Kind
	check func(Actor) bool
}

// Kind returns what the subject refers to.
func (s Subject) Kind() Kind {
	return s.kind
}

// Channel is a channel in which the actor holds the given permissions.
// Modifying it requires manage-messages there.
func Channel(actorPermissions discord.Permissions) Subject {
	return Subject{
		kind: KindChannel,
		check: func(Actor) bool {
			return actorPermissions.Has(discord.PermissionManageMessages)
		},
	}
}

// Member is another member of the guild. Modifying them requires ban-members.
func Member() Subject {
	return Subject{
		kind: KindMember,
		check: func(a Actor) bool {
			return a.GuildPermissions.Has(discord.PermissionBanMembers)
		},
	}
}

// Guild is the guild itself. Modifying it requires manage-guild.
func Guild() Subject {
	return Subject{
		kind: KindGuild,
		check: func(a Actor) bool {
			return a.GuildPermissions.Has(discord.PermissionManageGuild)
		},
	}
}

// Role is a role at the given position. Modifying it requires manage-roles and
// a higher top role, unless the actor owns the guild.
func Role(position int) Subject {
	return Subject{
		kind: KindRole,
		check: func(a Actor) bool {
			return a.GuildPermissions.Has(discord.PermissionManageRoles) &&
				(a.TopRolePosition > position || a.GuildOwner)
		},
	}
}

// CanModify reports whether the actor may take privileged actions on the subject.
// The bot owner always may. A zero Subject is never modifiable.
func CanModify(actor Actor, subject Subject) bool {
	if actor.BotOwner {
		return true
	}
	if subject.check == nil {
		return false
	}
	return subject.check(actor)
}

// TopRolePosition finds the highest position among the member's roles.
// Roles missing from the list are ignored.
func TopRolePosition(memberRoleIDs []snowflake.ID, roles []discord.Role) int {
	positions := make(map[snowflake.ID]int, len(roles))
	for _, role := range roles {
		positions[role.ID] = role.Position
	}

	top := 0
	for _, id := range memberRoleIDs {
		if position, ok := positions[id]; ok && position > top {
			top = position
		}
	}
	return top
}
