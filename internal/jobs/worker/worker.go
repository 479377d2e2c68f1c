package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/sunft-backend/internal/platform/dbctx"
	"github.com/yungbote/sunft-backend/internal/platform/logger"
)

const defaultPageSize = 100

// ActiveBundles pages through bundles that may still have items to release.
type ActiveBundles interface {
	ListActiveIDs(dbc dbctx.Context, afterID uint64, limit int) ([]uint64, error)
}

type Unlocker interface {
	TryUnlock(ctx context.Context, bundleID uint64) (int, error)
}

// Sweeper periodically calls TryUnlock on every active bundle so items are
// released without anyone having to ask.
type Sweeper struct {
	log         *logger.Logger
	bundles     ActiveBundles
	unlocker    Unlocker
	interval    time.Duration
	concurrency int
	pageSize    int
}

func NewSweeper(baseLog *logger.Logger, bundles ActiveBundles, unlocker Unlocker, interval time.Duration, concurrency int) *Sweeper {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Sweeper{
		log:         baseLog.With("component", "UnlockSweeper"),
		bundles:     bundles,
		unlocker:    unlocker,
		interval:    interval,
		concurrency: concurrency,
		pageSize:    defaultPageSize,
	}
}

// Run sweeps every interval until ctx is cancelled. A non-positive interval
// disables the sweeper.
func (s *Sweeper) Run(ctx context.Context) error {
	if s.interval <= 0 {
		return nil
	}
	s.log.Info("Starting unlock sweeper", "interval", s.interval.String(), "concurrency", s.concurrency)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("Unlock sweeper stopped")
			return nil
		case <-ticker.C:
			n, err := s.SweepOnce(ctx)
			if err != nil && ctx.Err() == nil {
				s.log.Warn("sweep failed", "error", err)
				continue
			}
			if n > 0 {
				s.log.Info("sweep released items", "items", n)
			}
		}
	}
}

// SweepOnce visits every active bundle once and returns how many items were
// released. Failures on single bundles are logged and skipped.
func (s *Sweeper) SweepOnce(ctx context.Context) (int, error) {
	var (
		released int64
		after    uint64
	)
	for {
		ids, err := s.bundles.ListActiveIDs(dbctx.Context{Ctx: ctx}, after, s.pageSize)
		if err != nil {
			return int(released), fmt.Errorf("list active bundles: %w", err)
		}
		if len(ids) == 0 {
			return int(released), nil
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.concurrency)
		for _, id := range ids {
			id := id
			g.Go(func() error {
				n, err := s.unlockOne(gctx, id)
				if err != nil {
					s.log.Warn("sweep unlock failed", "bundle_id", id, "error", err)
					return nil
				}
				atomic.AddInt64(&released, int64(n))
				return nil
			})
		}
		_ = g.Wait()
		if err := ctx.Err(); err != nil {
			return int(released), err
		}
		after = ids[len(ids)-1]
	}
}

func (s *Sweeper) unlockOne(ctx context.Context, id uint64) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("unlock panic", "bundle_id", id, "panic", r)
			err = &panicError{Val: r}
		}
	}()
	return s.unlocker.TryUnlock(ctx, id)
}

type panicError struct{ Val any }

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.Val) }
