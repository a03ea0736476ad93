package moderation

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/robalyx/fuzzy/internal/database/types"
	"github.com/robalyx/fuzzy/internal/database/types/enum"
	"github.com/robalyx/fuzzy/internal/discord/notice"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const dateLayout = "2006-01-02"

var titleCaser = cases.Title(language.English) //nolint:gochecknoglobals // -

// BanEmbed renders the public summary of a ban.
func BanEmbed(infraction *types.Infraction) discord.Embed {
	return discord.NewEmbedBuilder().
		SetTitle("Ban").
		SetDescription(summary(infraction.IssuedAt.Format(dateLayout), infraction.User, infraction.Reason)).
		Build()
}

// UnbanEmbed renders the public summary of a pardoned ban.
// The infraction must carry its pardon.
func UnbanEmbed(infraction *types.Infraction) discord.Embed {
	pardon := infraction.Pardon
	return discord.NewEmbedBuilder().
		SetTitle("Unban").
		SetDescription(summary(pardon.PardonedAt.Format(dateLayout), infraction.User, pardon.Reason)).
		Build()
}

// RenderPublication renders the embed for the given publication kind.
func RenderPublication(kind enum.PublishKind, infraction *types.Infraction) discord.Embed {
	if kind == enum.PublishKindUnban {
		return UnbanEmbed(infraction)
	}
	return BanEmbed(infraction)
}

// TypeTitle returns the human readable name of an infraction type, e.g. "Ban".
func TypeTitle(t enum.InfractionType) string {
	return titleCaser.String(strings.ToLower(t.String()))
}

// DescribeInfraction renders one line of a user's infraction history.
func DescribeInfraction(infraction *types.Infraction) string {
	line := fmt.Sprintf("**%d** %s on %s by %s: %s",
		infraction.ID,
		TypeTitle(infraction.Type),
		infraction.IssuedAt.Format(dateLayout),
		infraction.Moderator.Name,
		infraction.Reason,
	)

	if infraction.IsPardoned() {
		line = "~~" + line + "~~"
	}

	return line
}

// SummaryEmbed renders the per-type counts of a moderator's actions.
func SummaryEmbed(moderator string, counts map[enum.InfractionType]int) discord.Embed {
	var b strings.Builder
	for _, t := range []enum.InfractionType{enum.InfractionTypeBan, enum.InfractionTypeMute, enum.InfractionTypeWarn} {
		fmt.Fprintf(&b, "**%ss:** %d\n", TypeTitle(t), counts[t])
	}

	return notice.New(notice.ColorAutomaticBlue, "Moderation actions of "+moderator, strings.TrimRight(b.String(), "\n"))
}

func summary(date string, user types.DBUser, reason string) string {
	return fmt.Sprintf("**Date:** %s\n**User:** %s (%d)\n**Reason:** %s", date, user.Name, user.ID, reason)
}

// HistoryEmbeds renders a user's infractions into as many embeds as needed to
// keep every description within Discord's limit.
func HistoryEmbeds(title string, infractions []*types.Infraction) []discord.Embed {
	if len(infractions) == 0 {
		return []discord.Embed{notice.New(notice.ColorIGuess, title, "No infractions found.")}
	}

	lines := make([]string, 0, len(infractions))
	for _, infraction := range infractions {
		lines = append(lines, DescribeInfraction(infraction))
	}

	chunks := notice.Chunk(strings.Join(lines, "\n"), notice.MaxDescriptionLength)
	embeds := make([]discord.Embed, 0, len(chunks))
	for i, chunk := range chunks {
		pageTitle := title
		if len(chunks) > 1 {
			pageTitle = fmt.Sprintf("%s (%d/%d)", title, i+1, len(chunks))
		}
		embeds = append(embeds, notice.New(notice.ColorAutomaticBlue, pageTitle, chunk))
	}

	return embeds
}
