package restriction

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robalyx/fuzzy/internal/discord/notice"
	"go.uber.org/zap"
)

const (
	// DefaultInterval is the poll interval used when none is configured.
	DefaultInterval = 500 * time.Millisecond
	// MaxInterval bounds how late an expired restriction can be lifted.
	MaxInterval = time.Second
)

// Kind is one family of expiring restrictions driven by the Scheduler.
//
// Each expired item is claimed before it is reverted, so whoever deletes the
// record first is the only one to revert it. Claim reports false when the record
// is gone or no longer expired. Revert returns notice.ErrUnknownTarget when
// there is nothing left to restore, and the item is dropped without an audit
// entry. Any other revert error restores the record for the next tick.
type Kind[T any] interface {
	Name() string
	Expired(ctx context.Context, now time.Time) ([]T, error)
	Claim(ctx context.Context, item T, now time.Time) (bool, error)
	Revert(ctx context.Context, item T) error
	Restore(ctx context.Context, item T) error
	Audit(ctx context.Context, item T) error
	Fields(item T) []zap.Field
}

// Reporter receives the scheduler's progress after every tick.
type Reporter interface {
	UpdateStatus(task string, progress int)
	SetHealthy(healthy bool)
}

// TickResult counts what happened to the expired restrictions of one tick.
type TickResult struct {
	Reverted int // reverted and deleted
	Dropped  int // target gone, deleted without revert
	Failed   int // left for the next tick
}

func (r *TickResult) add(other TickResult) {
	r.Reverted += other.Reverted
	r.Dropped += other.Dropped
	r.Failed += other.Failed
}

// sweeper erases the item type of a registered Kind.
type sweeper interface {
	name() string
	sweep(ctx context.Context, now time.Time, logger *zap.Logger) TickResult
}

// Scheduler periodically lifts expired restrictions of every registered kind.
// Ticks never overlap.
type Scheduler struct {
	interval time.Duration
	sweepers []sweeper
	reporter Reporter
	logger   *zap.Logger
	now      func() time.Time
	mu       sync.Mutex
}

// SchedulerOption configures a Scheduler.
type SchedulerOption func(*Scheduler)

// WithReporter publishes tick results through the reporter.
func WithReporter(reporter Reporter) SchedulerOption {
	return func(s *Scheduler) {
		s.reporter = reporter
	}
}

// WithSchedulerClock replaces the wall clock used to decide expiry.
func WithSchedulerClock(now func() time.Time) SchedulerOption {
	return func(s *Scheduler) {
		s.now = now
	}
}

// NewScheduler creates a Scheduler. Intervals outside (0, MaxInterval] are
// replaced by DefaultInterval or capped at MaxInterval.
func NewScheduler(interval time.Duration, logger *zap.Logger, opts ...SchedulerOption) *Scheduler {
	switch {
	case interval <= 0:
		interval = DefaultInterval
	case interval > MaxInterval:
		interval = MaxInterval
	}

	s := &Scheduler{
		interval: interval,
		logger:   logger.Named("restriction_scheduler"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Register adds a kind of restriction to the scheduler.
// It must be called before Run.
func Register[T any](s *Scheduler, kind Kind[T]) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweepers = append(s.sweepers, &kindSweeper[T]{kind: kind})
}

// Interval returns the effective poll interval.
func (s *Scheduler) Interval() time.Duration {
	return s.interval
}

// Run ticks until the context is cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("Restriction scheduler started", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Restriction scheduler stopped")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick lifts every restriction that has expired by now.
// A failure on one restriction never stops the others.
func (s *Scheduler) Tick(ctx context.Context) TickResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()

	var result TickResult
	for _, sw := range s.sweepers {
		result.add(sw.sweep(ctx, now, s.logger.With(zap.String("kind", sw.name()))))
	}

	if s.reporter != nil {
		s.reporter.SetHealthy(result.Failed == 0)
		if result.Reverted+result.Dropped+result.Failed > 0 {
			s.reporter.UpdateStatus(fmt.Sprintf("Lifted %d restrictions (%d dropped, %d failed)",
				result.Reverted+result.Dropped, result.Dropped, result.Failed), 100)
		}
	}

	return result
}

type kindSweeper[T any] struct {
	kind Kind[T]
}

func (k *kindSweeper[T]) name() string {
	return k.kind.Name()
}

func (k *kindSweeper[T]) sweep(ctx context.Context, now time.Time, logger *zap.Logger) TickResult {
	var result TickResult

	items, err := k.kind.Expired(ctx, now)
	if err != nil {
		logger.Error("Failed to query expired restrictions", zap.Error(err))
		result.Failed++
		return result
	}

	for _, item := range items {
		fields := k.kind.Fields(item)

		claimed, err := k.kind.Claim(ctx, item, now)
		if err != nil {
			logger.Error("Failed to claim expired restriction", append(fields, zap.Error(err))...)
			result.Failed++
			continue
		}
		if !claimed {
			logger.Debug("Restriction was already lifted or extended", fields...)
			continue
		}

		if err := k.kind.Revert(ctx, item); err != nil {
			if errors.Is(err, notice.ErrUnknownTarget) {
				logger.Info("Restriction target no longer exists, dropped record",
					append(fields, zap.Error(err))...)
				result.Dropped++
				continue
			}

			logger.Error("Failed to revert restriction, will retry", append(fields, zap.Error(err))...)
			if err := k.kind.Restore(ctx, item); err != nil {
				logger.Error("Failed to restore restriction record", append(fields, zap.Error(err))...)
			}
			result.Failed++
			continue
		}

		if err := k.kind.Audit(ctx, item); err != nil {
			logger.Warn("Failed to post audit entry", append(fields, zap.Error(err))...)
		}

		result.Reverted++
		logger.Info("Lifted expired restriction", fields...)
	}

	return result
}
