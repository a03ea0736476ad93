package moderation_test

import (
	"errors"
	"testing"

	"github.com/robalyx/fuzzy/internal/database/types"
	"github.com/robalyx/fuzzy/internal/database/types/enum"
	"github.com/robalyx/fuzzy/internal/moderation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerIssue(t *testing.T) {
	t.Parallel()

	t.Run("records infraction", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		infraction := h.issue(t, enum.InfractionTypeWarn, mallory, alice, "spam")
		assert.NotZero(t, infraction.ID)

		stored := h.get(t, infraction.ID)
		assert.Equal(t, "spam", stored.Reason)
		assert.Equal(t, mallory, stored.User)
		assert.Equal(t, alice, stored.Moderator)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		_, err := h.ledger.Issue(t.Context(), testGuildID, enum.InfractionType(42), mallory, alice, "spam")
		require.ErrorIs(t, err, moderation.ErrInvalidState)
		assert.Zero(t, h.db.writeCount())
	})
}

func TestLedgerGetScopedToGuild(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	infraction := h.issue(t, enum.InfractionTypeWarn, mallory, alice, "spam")

	_, err := h.ledger.Get(t.Context(), testGuildID+1, infraction.ID)
	require.ErrorIs(t, err, moderation.ErrNotFound)
}

func TestLedgerPardon(t *testing.T) {
	t.Parallel()

	t.Run("second pardon only replaces reason", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		infraction := h.issue(t, enum.InfractionTypeMute, mallory, alice, "rude")

		first, err := h.ledger.Pardon(t.Context(), testGuildID, infraction.ID, alice, "first")
		require.NoError(t, err)

		second, err := h.ledger.Pardon(t.Context(), testGuildID, infraction.ID, bob, "second")
		require.NoError(t, err)

		assert.Len(t, h.db.pardons, 1)
		assert.Equal(t, "second", second.Reason)
		assert.Equal(t, alice, second.Moderator)
		assert.Equal(t, first.PardonedAt, second.PardonedAt)

		stored := h.get(t, infraction.ID)
		require.NotNil(t, stored.Pardon)
		assert.Equal(t, "second", stored.Pardon.Reason)
	})

	t.Run("unknown infraction", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		_, err := h.ledger.Pardon(t.Context(), testGuildID, 999, alice, "nope")
		require.ErrorIs(t, err, moderation.ErrNotFound)
		assert.Empty(t, h.db.pardons)
	})

	t.Run("refreshes live unban publication", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		ban := h.issue(t, enum.InfractionTypeBan, mallory, alice, "raid")
		_, err := h.ledger.Pardon(t.Context(), testGuildID, ban.ID, alice, "appeal accepted")
		require.NoError(t, err)

		publication, err := h.publisher.PublishUnban(t.Context(), h.get(t, ban.ID))
		require.NoError(t, err)

		_, err = h.ledger.Pardon(t.Context(), testGuildID, ban.ID, alice, "appeal accepted on review")
		require.NoError(t, err)

		embed, ok := h.notifier.message(publication.MessageID)
		require.True(t, ok)
		assert.Contains(t, embed.Description, "**Reason:** appeal accepted on review")
	})

	t.Run("refresh failure keeps pardon", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		ban := h.issue(t, enum.InfractionTypeBan, mallory, alice, "raid")
		_, err := h.ledger.Pardon(t.Context(), testGuildID, ban.ID, alice, "first")
		require.NoError(t, err)
		_, err = h.publisher.PublishUnban(t.Context(), h.get(t, ban.ID))
		require.NoError(t, err)

		h.notifier.fetchErr = errors.New("gateway timeout")

		pardon, err := h.ledger.Pardon(t.Context(), testGuildID, ban.ID, alice, "second")
		require.ErrorIs(t, err, moderation.ErrTransient)
		require.NotNil(t, pardon)
		assert.Equal(t, "second", pardon.Reason)
		assert.Equal(t, "second", h.get(t, ban.ID).Pardon.Reason)
		assert.Equal(t, 1, h.db.publicationCount(ban.ID))
	})
}

func TestLedgerUpdateReason(t *testing.T) {
	t.Parallel()

	t.Run("backfills unknown moderator", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		infraction := h.issue(t, enum.InfractionTypeBan, mallory, types.SystemUser, "automod")

		updated, err := h.ledger.UpdateReason(t.Context(), testGuildID, infraction.ID, bob, "raid")
		require.NoError(t, err)
		assert.Equal(t, bob, updated.Moderator)

		stored := h.get(t, infraction.ID)
		assert.Equal(t, "raid", stored.Reason)
		assert.Equal(t, bob, stored.Moderator)
	})

	t.Run("keeps known moderator", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		infraction := h.issue(t, enum.InfractionTypeWarn, mallory, alice, "spam")

		updated, err := h.ledger.UpdateReason(t.Context(), testGuildID, infraction.ID, bob, "spam links")
		require.NoError(t, err)
		assert.Equal(t, alice, updated.Moderator)
	})

	t.Run("refreshes live ban publication", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		ban := h.issue(t, enum.InfractionTypeBan, mallory, alice, "raid")
		publication, err := h.publisher.PublishBan(t.Context(), h.get(t, ban.ID))
		require.NoError(t, err)

		_, err = h.ledger.UpdateReason(t.Context(), testGuildID, ban.ID, alice, "raid and spam")
		require.NoError(t, err)

		embed, ok := h.notifier.message(publication.MessageID)
		require.True(t, ok)
		assert.Contains(t, embed.Description, "**Reason:** raid and spam")
	})

	t.Run("unknown infraction", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		_, err := h.ledger.UpdateReason(t.Context(), testGuildID, 12, alice, "x")
		require.ErrorIs(t, err, moderation.ErrNotFound)
	})
}

func TestLedgerForget(t *testing.T) {
	t.Parallel()

	t.Run("reports missing ids and keeps going", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		first := h.issue(t, enum.InfractionTypeWarn, mallory, alice, "one")
		second := h.issue(t, enum.InfractionTypeBan, mallory, alice, "two")
		_, err := h.ledger.Pardon(t.Context(), testGuildID, second.ID, alice, "sorry")
		require.NoError(t, err)

		forgotten, missing, err := h.ledger.Forget(t.Context(), testGuildID, []int64{first.ID, second.ID, 999})
		require.NoError(t, err)
		assert.Equal(t, []int64{first.ID, second.ID}, forgotten)
		assert.Equal(t, []int64{999}, missing)

		for _, id := range []int64{first.ID, second.ID} {
			_, err := h.ledger.Get(t.Context(), testGuildID, id)
			require.ErrorIs(t, err, moderation.ErrNotFound)
		}
		assert.Empty(t, h.db.pardons)
	})

	t.Run("leaves remote messages alone", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		ban := h.issue(t, enum.InfractionTypeBan, mallory, alice, "raid")
		publication, err := h.publisher.PublishBan(t.Context(), h.get(t, ban.ID))
		require.NoError(t, err)

		forgotten, _, err := h.ledger.Forget(t.Context(), testGuildID, []int64{ban.ID})
		require.NoError(t, err)
		assert.Equal(t, []int64{ban.ID}, forgotten)

		_, ok := h.notifier.message(publication.MessageID)
		assert.True(t, ok)
		assert.Zero(t, h.db.publicationCount(ban.ID))
	})

	t.Run("duplicate ids are forgotten once", func(t *testing.T) {
		t.Parallel()
		h := newHarness(t)

		infraction := h.issue(t, enum.InfractionTypeWarn, mallory, alice, "one")

		forgotten, missing, err := h.ledger.Forget(t.Context(), testGuildID, []int64{infraction.ID, infraction.ID})
		require.NoError(t, err)
		assert.Equal(t, []int64{infraction.ID}, forgotten)
		assert.Empty(t, missing)
	})
}

func TestLedgerListForUser(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	var want []int64
	for _, infractionType := range []enum.InfractionType{
		enum.InfractionTypeWarn, enum.InfractionTypeBan, enum.InfractionTypeMute,
		enum.InfractionTypeBan, enum.InfractionTypeWarn,
	} {
		want = append(want, h.issue(t, infractionType, mallory, alice, "x").ID)
	}
	h.issue(t, enum.InfractionTypeBan, bob, alice, "other user")

	collect := func(t *testing.T, filter enum.InfractionFilter) []int64 {
		t.Helper()

		var ids []int64
		for infraction, err := range h.ledger.ListForUser(t.Context(), testGuildID, mallory.ID, filter) {
			require.NoError(t, err)
			ids = append(ids, infraction.ID)
		}
		return ids
	}

	t.Run("all in issue order across pages", func(t *testing.T) {
		assert.Equal(t, want, collect(t, enum.InfractionFilterAll))
	})

	t.Run("filtered", func(t *testing.T) {
		assert.Equal(t, []int64{want[1], want[3]}, collect(t, enum.InfractionFilterBans))
		assert.Equal(t, []int64{want[2]}, collect(t, enum.InfractionFilterMutes))
	})

	t.Run("restartable", func(t *testing.T) {
		assert.Equal(t, collect(t, enum.InfractionFilterAll), collect(t, enum.InfractionFilterAll))
	})

	t.Run("stops early", func(t *testing.T) {
		count := 0
		for range h.ledger.ListForUser(t.Context(), testGuildID, mallory.ID, enum.InfractionFilterAll) {
			count++
			if count == 3 {
				break
			}
		}
		assert.Equal(t, 3, count)
	})
}

func TestLedgerModeratorSummary(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	h.issue(t, enum.InfractionTypeBan, mallory, alice, "a")
	h.issue(t, enum.InfractionTypeWarn, mallory, alice, "b")
	h.issue(t, enum.InfractionTypeWarn, bob, alice, "c")
	h.issue(t, enum.InfractionTypeMute, mallory, bob, "d")

	counts, err := h.ledger.ModeratorSummary(t.Context(), testGuildID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, map[enum.InfractionType]int{
		enum.InfractionTypeBan:  1,
		enum.InfractionTypeWarn: 2,
	}, counts)
}
