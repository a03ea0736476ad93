package restriction

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robalyx/fuzzy/internal/database/types"
	"github.com/robalyx/fuzzy/internal/database/types/enum"
	"github.com/robalyx/fuzzy/internal/discord/notice"
	"go.uber.org/zap"
)

// LockRequest asks for a channel or thread to be locked.
type LockRequest struct {
	GuildID   uint64
	ChannelID uint64
	Moderator types.DBUser
	Duration  time.Duration
	Reason    string
}

// LockResult describes a lock that was placed or extended.
type LockResult struct {
	Kind      ChannelKind
	ExpiresAt time.Time
	Extended  bool // the target was already locked and only its expiry moved
}

// Option configures Locks and Enforcer.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces the wall clock.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

func newOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Locks places and lifts channel and thread locks.
//
// A channel lock records the @everyone SEND_MESSAGES state before denying it,
// and restores exactly that state when lifted. A thread lock only records the
// restriction; the Enforcer removes messages posted while it stands.
//
// Placing, unlocking and lifting channel locks share one guard, so a lock placed
// while an expired one is being lifted snapshots the restored state.
type Locks struct {
	locks       LockStore
	threadLocks ThreadLockStore
	platform    Platform
	logger      *zap.Logger
	now         func() time.Time
	guard       sync.Mutex
}

// NewLocks creates a Locks service.
func NewLocks(
	locks LockStore, threadLocks ThreadLockStore, platform Platform, logger *zap.Logger, opts ...Option,
) *Locks {
	o := newOptions(opts)
	return &Locks{
		locks:       locks,
		threadLocks: threadLocks,
		platform:    platform,
		logger:      logger.Named("locks"),
		now:         o.now,
	}
}

// Lock restricts a channel or thread for the requested duration.
// Locking something already locked keeps the original permission snapshot.
func (l *Locks) Lock(ctx context.Context, req LockRequest) (*LockResult, error) {
	if req.Duration <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidDuration, req.Duration)
	}

	kind, err := l.platform.ChannelKind(ctx, req.GuildID, req.ChannelID)
	if err != nil {
		return nil, err
	}

	now := l.now().UTC()
	result := &LockResult{
		Kind:      kind,
		ExpiresAt: now.Add(req.Duration),
	}

	switch kind {
	case ChannelKindThread:
		result.Extended, err = l.lockThread(ctx, req, now, result.ExpiresAt)
	default:
		result.Extended, err = l.lockChannel(ctx, req, now, result.ExpiresAt)
	}
	if err != nil {
		return nil, err
	}

	l.logger.Info("Locked channel",
		zap.Uint64("guildID", req.GuildID),
		zap.Uint64("channelID", req.ChannelID),
		zap.String("kind", kind.String()),
		zap.Time("expiresAt", result.ExpiresAt),
		zap.Bool("extended", result.Extended))

	l.audit(ctx, req.GuildID, notice.ColorIGuess, "Channel Locked",
		fmt.Sprintf("%s locked <#%d> for %s for %s",
			req.Moderator.Name, req.ChannelID, FormatDuration(req.Duration), req.Reason))

	return result, nil
}

func (l *Locks) lockChannel(ctx context.Context, req LockRequest, now, expiresAt time.Time) (bool, error) {
	l.guard.Lock()
	defer l.guard.Unlock()

	lock, err := l.locks.Get(ctx, req.ChannelID)
	switch {
	case err == nil:
	case errors.Is(err, types.ErrRecordNotFound):
		lock = nil
	default:
		return false, err
	}

	extended := lock != nil
	if !extended {
		previous, err := l.platform.SendPermission(ctx, req.GuildID, req.ChannelID)
		if err != nil {
			return false, err
		}

		lock = &types.Lock{
			ChannelID:     req.ChannelID,
			GuildID:       req.GuildID,
			PreviousValue: previous,
			CreatedAt:     now,
		}
	}

	lock.Moderator = req.Moderator
	lock.Reason = req.Reason
	lock.ExpiresAt = expiresAt

	// Snapshot first, deny second.
	if err := l.locks.Save(ctx, lock); err != nil {
		return false, err
	}

	if err := l.platform.SetSendPermission(ctx, req.GuildID, req.ChannelID, enum.PermissionStateDeny); err != nil {
		if !extended {
			if _, delErr := l.locks.Delete(ctx, req.ChannelID); delErr != nil {
				l.logger.Error("Failed to roll back lock record",
					zap.Uint64("channelID", req.ChannelID),
					zap.Error(delErr))
			}
		}
		return false, err
	}

	return extended, nil
}

func (l *Locks) lockThread(ctx context.Context, req LockRequest, now, expiresAt time.Time) (bool, error) {
	extended := true
	lock, err := l.threadLocks.Get(ctx, req.ChannelID)
	switch {
	case err == nil:
	case errors.Is(err, types.ErrRecordNotFound):
		extended = false
		lock = &types.ThreadLock{
			ChannelID: req.ChannelID,
			GuildID:   req.GuildID,
			CreatedAt: now,
		}
	default:
		return false, err
	}

	lock.Moderator = req.Moderator
	lock.Reason = req.Reason
	lock.ExpiresAt = expiresAt

	if err := l.threadLocks.Save(ctx, lock); err != nil {
		return false, err
	}

	return extended, nil
}

// Unlock lifts a lock before it expires. It reports false with no error when
// the target was not locked, including when the scheduler lifted it first.
func (l *Locks) Unlock(ctx context.Context, guildID, channelID uint64, actor types.DBUser) (bool, error) {
	kind, err := l.platform.ChannelKind(ctx, guildID, channelID)
	if err != nil {
		return false, err
	}

	var unlocked bool
	switch kind {
	case ChannelKindThread:
		unlocked, err = l.threadLocks.Delete(ctx, channelID)
	default:
		unlocked, err = l.unlockChannel(ctx, channelID)
	}
	if err != nil || !unlocked {
		return false, err
	}

	l.logger.Info("Unlocked channel",
		zap.Uint64("guildID", guildID),
		zap.Uint64("channelID", channelID),
		zap.String("kind", kind.String()),
		zap.Uint64("actorID", actor.ID))

	l.audit(ctx, guildID, notice.ColorGood, "Channel Unlocked",
		fmt.Sprintf("%s unlocked <#%d>", actor.Name, channelID))

	return true, nil
}

// unlockChannel claims the lock by deleting it, then reverts the overwrite.
func (l *Locks) unlockChannel(ctx context.Context, channelID uint64) (bool, error) {
	l.guard.Lock()
	defer l.guard.Unlock()

	lock, err := l.locks.Get(ctx, channelID)
	if err != nil {
		if errors.Is(err, types.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	claimed, err := l.locks.Delete(ctx, channelID)
	if err != nil || !claimed {
		return false, err
	}

	if err := l.revertLock(ctx, lock); err != nil && !errors.Is(err, notice.ErrUnknownTarget) {
		if saveErr := l.locks.Save(ctx, lock); saveErr != nil {
			l.logger.Error("Failed to restore lock after failed unlock",
				zap.Uint64("channelID", channelID),
				zap.Error(saveErr))
		}
		return false, err
	}

	return true, nil
}

func (l *Locks) revertLock(ctx context.Context, lock *types.Lock) error {
	return l.platform.SetSendPermission(ctx, lock.GuildID, lock.ChannelID, lock.PreviousValue)
}

func (l *Locks) audit(ctx context.Context, guildID uint64, color int, title, message string) {
	if err := l.platform.PostLog(ctx, guildID, notice.New(color, title, message)); err != nil {
		if errors.Is(err, notice.ErrChannelNotConfigured) {
			return
		}
		l.logger.Warn("Failed to post audit entry",
			zap.Uint64("guildID", guildID),
			zap.Error(err))
	}
}

func (l *Locks) expiryAudit(ctx context.Context, guildID, channelID uint64) error {
	err := l.platform.PostLog(ctx, guildID, notice.New(notice.ColorGood, "Channel Unlocked",
		fmt.Sprintf("<#%d> was unlocked by %s", channelID, l.platform.BotName())))
	if errors.Is(err, notice.ErrChannelNotConfigured) {
		return nil
	}
	return err
}

// ChannelKind returns the scheduler kind lifting expired channel locks.
func (l *Locks) ChannelKind() Kind[*types.Lock] {
	return &lockKind{locks: l}
}

// ThreadKind returns the scheduler kind lifting expired thread locks.
func (l *Locks) ThreadKind() Kind[*types.ThreadLock] {
	return &threadLockKind{locks: l}
}

// lockKind holds the guard from a successful Claim until Revert succeeds or
// Restore puts the record back.
type lockKind struct {
	locks *Locks
}

func (k *lockKind) Name() string {
	return "lock"
}

func (k *lockKind) Expired(ctx context.Context, now time.Time) ([]*types.Lock, error) {
	return k.locks.locks.Expired(ctx, now)
}

func (k *lockKind) Claim(ctx context.Context, lock *types.Lock, now time.Time) (bool, error) {
	k.locks.guard.Lock()

	claimed, err := k.locks.locks.DeleteExpired(ctx, lock.ChannelID, now)
	if err != nil || !claimed {
		k.locks.guard.Unlock()
	}
	return claimed, err
}

func (k *lockKind) Revert(ctx context.Context, lock *types.Lock) error {
	err := k.locks.revertLock(ctx, lock)
	if err == nil || errors.Is(err, notice.ErrUnknownTarget) {
		k.locks.guard.Unlock()
	}
	return err
}

func (k *lockKind) Restore(ctx context.Context, lock *types.Lock) error {
	defer k.locks.guard.Unlock()
	return k.locks.locks.Save(ctx, lock)
}

func (k *lockKind) Audit(ctx context.Context, lock *types.Lock) error {
	return k.locks.expiryAudit(ctx, lock.GuildID, lock.ChannelID)
}

func (k *lockKind) Fields(lock *types.Lock) []zap.Field {
	return []zap.Field{
		zap.Uint64("guildID", lock.GuildID),
		zap.Uint64("channelID", lock.ChannelID),
		zap.String("previousValue", lock.PreviousValue.String()),
	}
}

type threadLockKind struct {
	locks *Locks
}

func (k *threadLockKind) Name() string {
	return "thread_lock"
}

func (k *threadLockKind) Expired(ctx context.Context, now time.Time) ([]*types.ThreadLock, error) {
	return k.locks.threadLocks.Expired(ctx, now)
}

func (k *threadLockKind) Claim(ctx context.Context, lock *types.ThreadLock, now time.Time) (bool, error) {
	return k.locks.threadLocks.DeleteExpired(ctx, lock.ChannelID, now)
}

// Revert only confirms the thread still exists; a thread lock changes nothing on
// the platform. A thread that cannot be resolved for any reason is reported as
// unknown so the record is dropped instead of retried.
func (k *threadLockKind) Revert(ctx context.Context, lock *types.ThreadLock) error {
	kind, err := k.locks.platform.ChannelKind(ctx, lock.GuildID, lock.ChannelID)
	switch {
	case errors.Is(err, notice.ErrUnknownTarget):
		return err
	case err != nil:
		return fmt.Errorf("%w: thread %d could not be resolved: %w", notice.ErrUnknownTarget, lock.ChannelID, err)
	case kind != ChannelKindThread:
		return fmt.Errorf("%w: %d is no longer a thread", notice.ErrUnknownTarget, lock.ChannelID)
	default:
		return nil
	}
}

func (k *threadLockKind) Restore(ctx context.Context, lock *types.ThreadLock) error {
	return k.locks.threadLocks.Save(ctx, lock)
}

func (k *threadLockKind) Audit(ctx context.Context, lock *types.ThreadLock) error {
	return k.locks.expiryAudit(ctx, lock.GuildID, lock.ChannelID)
}

func (k *threadLockKind) Fields(lock *types.ThreadLock) []zap.Field {
	return []zap.Field{
		zap.Uint64("guildID", lock.GuildID),
		zap.Uint64("channelID", lock.ChannelID),
	}
}
