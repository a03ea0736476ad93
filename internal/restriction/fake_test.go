package restriction_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/robalyx/fuzzy/internal/database/types"
	"github.com/robalyx/fuzzy/internal/database/types/enum"
	"github.com/robalyx/fuzzy/internal/discord/notice"
	"github.com/robalyx/fuzzy/internal/restriction"
)

var errPlatformDown = errors.New("platform unavailable")

type permissionSet struct {
	channelID uint64
	state     enum.PermissionState
}

// fakePlatform is an in-memory guild with channels, threads and members.
type fakePlatform struct {
	mu       sync.Mutex
	channels map[uint64]restriction.ChannelKind
	perms    map[uint64]enum.PermissionState
	managers map[uint64]bool
	sets     []permissionSet
	deleted  []uint64
	logs     []discord.Embed
	setErr   error
	logErr   error
	kindErr  error

	// beforeSet runs ahead of every overwrite change, outside the fake's lock.
	beforeSet func()
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		channels: make(map[uint64]restriction.ChannelKind),
		perms:    make(map[uint64]enum.PermissionState),
		managers: make(map[uint64]bool),
	}
}

func (p *fakePlatform) ChannelKind(_ context.Context, _, channelID uint64) (restriction.ChannelKind, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.kindErr != nil {
		return 0, p.kindErr
	}
	kind, ok := p.channels[channelID]
	if !ok {
		return 0, notice.ErrUnknownTarget
	}
	return kind, nil
}

func (p *fakePlatform) SendPermission(_ context.Context, _, channelID uint64) (enum.PermissionState, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.channels[channelID]; !ok {
		return 0, notice.ErrUnknownTarget
	}
	return p.perms[channelID], nil
}

func (p *fakePlatform) SetSendPermission(
	_ context.Context, _, channelID uint64, state enum.PermissionState,
) error {
	if p.beforeSet != nil {
		p.beforeSet()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, ok := p.channels[channelID]; !ok {
		return notice.ErrUnknownTarget
	}
	if p.setErr != nil {
		return p.setErr
	}

	p.perms[channelID] = state
	p.sets = append(p.sets, permissionSet{channelID: channelID, state: state})
	return nil
}

func (p *fakePlatform) CanManageMessages(_ context.Context, _, _, userID uint64) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.managers[userID], nil
}

func (p *fakePlatform) DeleteMessage(_ context.Context, _, messageID uint64) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.deleted = append(p.deleted, messageID)
	return nil
}

func (p *fakePlatform) BotName() string {
	return "Fuzzy"
}

func (p *fakePlatform) PostLog(_ context.Context, _ uint64, embed discord.Embed) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.logErr != nil {
		return p.logErr
	}
	p.logs = append(p.logs, embed)
	return nil
}

func (p *fakePlatform) permission(channelID uint64) enum.PermissionState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.perms[channelID]
}

// setsTo counts overwrite changes to the given state.
func (p *fakePlatform) setsTo(channelID uint64, state enum.PermissionState) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, s := range p.sets {
		if s.channelID == channelID && s.state == state {
			n++
		}
	}
	return n
}

func (p *fakePlatform) logDescriptions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	descriptions := make([]string, 0, len(p.logs))
	for _, embed := range p.logs {
		descriptions = append(descriptions, embed.Description)
	}
	return descriptions
}

type fakeLocks struct {
	mu    sync.Mutex
	locks map[uint64]types.Lock
}

func newFakeLocks() *fakeLocks {
	return &fakeLocks{locks: make(map[uint64]types.Lock)}
}

func (s *fakeLocks) Get(_ context.Context, channelID uint64) (*types.Lock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[channelID]
	if !ok {
		return nil, types.ErrRecordNotFound
	}
	return &lock, nil
}

func (s *fakeLocks) Save(_ context.Context, lock *types.Lock) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.locks[lock.ChannelID] = *lock
	return nil
}

func (s *fakeLocks) Delete(_ context.Context, channelID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.locks[channelID]
	delete(s.locks, channelID)
	return ok, nil
}

func (s *fakeLocks) DeleteExpired(_ context.Context, channelID uint64, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[channelID]
	if !ok || !lock.IsExpired(now) {
		return false, nil
	}
	delete(s.locks, channelID)
	return true, nil
}

func (s *fakeLocks) Expired(_ context.Context, now time.Time) ([]*types.Lock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []*types.Lock
	for _, lock := range s.locks {
		if lock.IsExpired(now) {
			expired = append(expired, &lock)
		}
	}
	return expired, nil
}

func (s *fakeLocks) has(channelID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.locks[channelID]
	return ok
}

type fakeThreadLocks struct {
	mu    sync.Mutex
	locks map[uint64]types.ThreadLock
}

func newFakeThreadLocks() *fakeThreadLocks {
	return &fakeThreadLocks{locks: make(map[uint64]types.ThreadLock)}
}

func (s *fakeThreadLocks) Get(_ context.Context, threadID uint64) (*types.ThreadLock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[threadID]
	if !ok {
		return nil, types.ErrRecordNotFound
	}
	return &lock, nil
}

func (s *fakeThreadLocks) Save(_ context.Context, lock *types.ThreadLock) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.locks[lock.ChannelID] = *lock
	return nil
}

func (s *fakeThreadLocks) Delete(_ context.Context, threadID uint64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.locks[threadID]
	delete(s.locks, threadID)
	return ok, nil
}

func (s *fakeThreadLocks) DeleteExpired(_ context.Context, threadID uint64, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[threadID]
	if !ok || !lock.IsExpired(now) {
		return false, nil
	}
	delete(s.locks, threadID)
	return true, nil
}

func (s *fakeThreadLocks) Expired(_ context.Context, now time.Time) ([]*types.ThreadLock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []*types.ThreadLock
	for _, lock := range s.locks {
		if lock.IsExpired(now) {
			expired = append(expired, &lock)
		}
	}
	return expired, nil
}

func (s *fakeThreadLocks) has(threadID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.locks[threadID]
	return ok
}

type fakeReporter struct {
	mu      sync.Mutex
	healthy []bool
	tasks   []string
}

func (r *fakeReporter) UpdateStatus(task string, _ int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, task)
}

func (r *fakeReporter) SetHealthy(healthy bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.healthy = append(r.healthy, healthy)
}
