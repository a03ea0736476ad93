package moderation_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/robalyx/fuzzy/internal/database/types"
	"github.com/robalyx/fuzzy/internal/database/types/enum"
	"github.com/robalyx/fuzzy/internal/discord/notice"
	"github.com/robalyx/fuzzy/internal/moderation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeTitle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Ban", moderation.TypeTitle(enum.InfractionTypeBan))
	assert.Equal(t, "Mute", moderation.TypeTitle(enum.InfractionTypeMute))
	assert.Equal(t, "Warn", moderation.TypeTitle(enum.InfractionTypeWarn))
}

func TestDescribeInfractionStrikesPardoned(t *testing.T) {
	t.Parallel()

	infraction := &types.Infraction{
		ID:        3,
		Type:      enum.InfractionTypeWarn,
		Moderator: alice,
		Reason:    "spam",
		IssuedAt:  time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, "**3** Warn on 2024-01-02 by alice: spam", moderation.DescribeInfraction(infraction))

	infraction.Pardon = &types.Pardon{InfractionID: 3}
	assert.Equal(t, "~~**3** Warn on 2024-01-02 by alice: spam~~", moderation.DescribeInfraction(infraction))
}

func TestHistoryEmbeds(t *testing.T) {
	t.Parallel()

	t.Run("empty history", func(t *testing.T) {
		t.Parallel()

		embeds := moderation.HistoryEmbeds("Infractions of mallory", nil)
		require.Len(t, embeds, 1)
		assert.Equal(t, notice.ColorIGuess, embeds[0].Color)
	})

	t.Run("long history is paged", func(t *testing.T) {
		t.Parallel()

		infractions := make([]*types.Infraction, 0, 100)
		for i := range 100 {
			infractions = append(infractions, &types.Infraction{
				ID:        int64(i + 1),
				Type:      enum.InfractionTypeWarn,
				Moderator: alice,
				Reason:    fmt.Sprintf("reason number %d with some padding to make it longer", i),
			})
		}

		embeds := moderation.HistoryEmbeds("Infractions of mallory", infractions)
		require.Greater(t, len(embeds), 1)
		assert.Equal(t, fmt.Sprintf("Infractions of mallory (1/%d)", len(embeds)), embeds[0].Title)
		for _, embed := range embeds {
			assert.LessOrEqual(t, len(embed.Description), notice.MaxDescriptionLength)
		}
	})
}

func TestSummaryEmbed(t *testing.T) {
	t.Parallel()

	embed := moderation.SummaryEmbed("alice", map[enum.InfractionType]int{enum.InfractionTypeBan: 2})
	assert.Equal(t, "**Bans:** 2\n**Mutes:** 0\n**Warns:** 0", embed.Description)
}
