package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Seeom6/Daraa-Hub-sub000/pkg/logger"
)

// SweepResult summarises one batch run.
type SweepResult struct {
	Scanned   int `json:"scanned"`
	Processed int `json:"processed"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

type itemOutcome int

const (
	itemProcessed itemOutcome = iota
	itemSkipped
)

// forEach runs fn for every item with at most workers in flight. A failing
// item is logged and counted and never stops the batch.
func forEach[T any](ctx context.Context, log *slog.Logger, component string, items []T, workers int,
	fn func(context.Context, T) (itemOutcome, error),
) SweepResult {
	res := SweepResult{Scanned: len(items)}
	var mu sync.Mutex

	var g errgroup.Group
	g.SetLimit(max(workers, 1))
	for _, item := range items {
		g.Go(func() error {
			outcome, err := fn(ctx, item)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				res.Failed++
			case outcome == itemSkipped:
				res.Skipped++
			default:
				res.Processed++
			}
			if err != nil {
				log.ErrorContext(ctx, "sweep item failed", logger.Component(component), logger.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
	return res
}

type expirationSweep struct {
	plans   PlanRepository
	subs    SubscriptionRepository
	stores  StoreRepository
	locker  Locker
	lockTTL time.Duration
	clock   clock
	events  *emitter
	log     *slog.Logger
	workers int
}

// run expires every ACTIVE subscription whose end date has passed. Running
// it twice is harmless: the status change is conditional on ACTIVE.
func (s *expirationSweep) run(ctx context.Context, settings SystemSettings) (SweepResult, error) {
	if !settings.Enabled {
		s.log.DebugContext(ctx, "subscriptions disabled, skipping expiration sweep")
		return SweepResult{}, nil
	}

	now := s.clock.Now()
	due, err := s.subs.FindActiveEndingBefore(ctx, now)
	if err != nil {
		return SweepResult{}, err
	}

	res := forEach(ctx, s.log, "expiration_sweep", due, s.workers, func(ctx context.Context, sub Subscription) (itemOutcome, error) {
		return s.expire(ctx, sub, now)
	})

	s.log.InfoContext(ctx, "expiration sweep finished",
		logger.Count("scanned", res.Scanned),
		logger.Count("expired", res.Processed),
		logger.Count("skipped", res.Skipped),
		logger.Count("failed", res.Failed))
	return res, nil
}

func (s *expirationSweep) expire(ctx context.Context, sub Subscription, now time.Time) (itemOutcome, error) {
	from := sub.Status
	if err := transition(ctx, &sub, eventExpire); err != nil {
		return itemSkipped, nil
	}

	// held until the snapshot reset, so a renewal activation lands after it
	release, err := s.locker.Acquire(ctx, storeLockKey(sub.StoreID), s.lockTTL)
	if err != nil {
		return 0, errors.Join(ErrLockUnavailable, err)
	}
	defer release()

	moved, err := s.subs.TransitionStatus(ctx, sub.ID, from, sub.Status, now)
	if err != nil {
		return 0, fmt.Errorf("expire subscription %s: %w", sub.ID, err)
	}
	if !moved {
		return itemSkipped, nil
	}

	if err := s.stores.SaveSnapshot(ctx, EmptySnapshot(sub.StoreID)); err != nil {
		if !errors.Is(err, ErrStoreNotFound) {
			return 0, fmt.Errorf("reset snapshot of store %s: %w", sub.StoreID, err)
		}
		s.log.WarnContext(ctx, "store missing while expiring subscription",
			logger.StoreID(sub.StoreID),
			logger.SubscriptionID(sub.ID))
	}

	s.log.InfoContext(ctx, "subscription expired",
		logger.StoreID(sub.StoreID),
		logger.SubscriptionID(sub.ID))
	s.events.emit(ctx, Event{
		Name:           EventExpired,
		StoreID:        sub.StoreID,
		SubscriptionID: sub.ID,
		PlanName:       planNameOrUnknown(ctx, s.plans, sub.PlanID),
	})
	return itemProcessed, nil
}

type warningSweep struct {
	plans       PlanRepository
	subs        SubscriptionRepository
	clock       clock
	events      *emitter
	log         *slog.Logger
	workers     int
	defaultDays int
}

// run warns every ACTIVE subscription ending within the horizon. It does
// not change state and sends a warning on every run.
func (s *warningSweep) run(ctx context.Context, settings SystemSettings) (SweepResult, error) {
	if !settings.Enabled {
		s.log.DebugContext(ctx, "subscriptions disabled, skipping expiry warnings")
		return SweepResult{}, nil
	}

	days := settings.ExpiryWarningDays
	if days <= 0 {
		days = s.defaultDays
	}

	now := s.clock.Now()
	due, err := s.subs.FindActiveEndingBetween(ctx, now, now.Add(time.Duration(days)*24*time.Hour))
	if err != nil {
		return SweepResult{}, err
	}

	res := forEach(ctx, s.log, "expiry_warning_sweep", due, s.workers, func(ctx context.Context, sub Subscription) (itemOutcome, error) {
		s.events.emit(ctx, Event{
			Name:           EventExpiryWarning,
			StoreID:        sub.StoreID,
			SubscriptionID: sub.ID,
			PlanName:       planNameOrUnknown(ctx, s.plans, sub.PlanID),
			DaysLeft:       sub.DaysLeftAt(now),
			ExpiresOn:      s.clock.Day(sub.EndDate),
		})
		return itemProcessed, nil
	})

	s.log.InfoContext(ctx, "expiry warning sweep finished",
		slog.Int("horizon_days", days),
		logger.Count("warned", res.Processed))
	return res, nil
}
