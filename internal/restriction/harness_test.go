package restriction_test

import (
	"testing"
	"time"

	"github.com/robalyx/fuzzy/internal/database/types"
	"github.com/robalyx/fuzzy/internal/database/types/enum"
	"github.com/robalyx/fuzzy/internal/restriction"
	"go.uber.org/zap/zaptest"
)

const (
	testGuildID   = uint64(10)
	textChannelID = uint64(100)
	threadID      = uint64(200)
)

var (
	alice   = types.DBUser{ID: 1, Name: "alice"}
	mallory = types.DBUser{ID: 9, Name: "mallory"}
)

type harness struct {
	platform    *fakePlatform
	locks       *fakeLocks
	threadLocks *fakeThreadLocks
	service     *restriction.Locks
	scheduler   *restriction.Scheduler
	enforcer    *restriction.Enforcer
	reporter    *fakeReporter
	now         time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		platform:    newFakePlatform(),
		locks:       newFakeLocks(),
		threadLocks: newFakeThreadLocks(),
		reporter:    &fakeReporter{},
		now:         time.Date(2024, 3, 14, 12, 0, 0, 0, time.UTC),
	}
	h.platform.channels[textChannelID] = restriction.ChannelKindText
	h.platform.channels[threadID] = restriction.ChannelKindThread
	h.platform.managers[alice.ID] = true

	clock := func() time.Time { return h.now }
	logger := zaptest.NewLogger(t)

	h.service = restriction.NewLocks(h.locks, h.threadLocks, h.platform, logger,
		restriction.WithClock(clock))
	h.enforcer = restriction.NewEnforcer(h.threadLocks, h.platform, logger, restriction.WithClock(clock))

	h.scheduler = restriction.NewScheduler(0, logger,
		restriction.WithReporter(h.reporter), restriction.WithSchedulerClock(clock))
	restriction.Register(h.scheduler, h.service.ChannelKind())
	restriction.Register(h.scheduler, h.service.ThreadKind())

	return h
}

func (h *harness) advance(d time.Duration) {
	h.now = h.now.Add(d)
}

// seedLock stores an already expired channel lock.
func (h *harness) seedLock(channelID uint64, previous enum.PermissionState) {
	h.platform.perms[channelID] = enum.PermissionStateDeny
	h.locks.locks[channelID] = types.Lock{
		ChannelID:     channelID,
		GuildID:       testGuildID,
		PreviousValue: previous,
		Moderator:     alice,
		Reason:        "raid",
		ExpiresAt:     h.now.Add(-time.Second),
		CreatedAt:     h.now.Add(-time.Hour),
	}
}
