package moderation_test

import (
	"testing"
	"time"

	"github.com/robalyx/fuzzy/internal/database/types"
	"github.com/robalyx/fuzzy/internal/database/types/enum"
	"github.com/robalyx/fuzzy/internal/moderation"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	testGuildID     = uint64(77)
	publicChannelID = uint64(555)
)

var (
	alice   = types.DBUser{ID: 1, Name: "alice"}
	bob     = types.DBUser{ID: 2, Name: "bob"}
	mallory = types.DBUser{ID: 9, Name: "mallory"}
)

type harness struct {
	db        *memDB
	notifier  *fakeNotifier
	audit     *fakeAudit
	ledger    *moderation.Ledger
	publisher *moderation.Publisher
	now       time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		db:       newMemDB(),
		notifier: newFakeNotifier(),
		audit:    &fakeAudit{},
		now:      time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC),
	}
	h.db.settings[testGuildID] = types.GuildSettings{ID: testGuildID, PublicLogChannelID: publicChannelID}

	// Every reading advances the clock so issue order is strict
	clock := func() time.Time {
		h.now = h.now.Add(time.Minute)
		return h.now
	}

	logger := zaptest.NewLogger(t)
	h.publisher = moderation.NewPublisher(
		fakeInfractions{h.db}, fakePublications{h.db}, fakeSettings{h.db}, h.notifier, logger,
		moderation.WithClock(clock), moderation.WithAuditLog(h.audit),
	)
	h.ledger = moderation.NewLedger(
		fakeInfractions{h.db}, fakePardons{h.db}, h.publisher, logger,
		moderation.WithClock(clock), moderation.WithPageSize(2),
	)

	return h
}

func (h *harness) issue(
	t *testing.T, infractionType enum.InfractionType, user, moderator types.DBUser, reason string,
) *types.Infraction {
	t.Helper()

	infraction, err := h.ledger.Issue(t.Context(), testGuildID, infractionType, user, moderator, reason)
	require.NoError(t, err)
	return infraction
}

func (h *harness) get(t *testing.T, id int64) *types.Infraction {
	t.Helper()

	infraction, err := h.ledger.Get(t.Context(), testGuildID, id)
	require.NoError(t, err)
	return infraction
}
