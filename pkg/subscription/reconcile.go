package subscription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Seeom6/Daraa-Hub-sub000/pkg/logger"
)

// reconciler rebuilds store snapshots from the subscription records, which
// are the source of truth.
type reconciler struct {
	plans   PlanRepository
	subs    SubscriptionRepository
	stores  StoreRepository
	locker  Locker
	lockTTL time.Duration
	clock   clock
	log     *slog.Logger
	workers int
}

func (r *reconciler) rebuild(ctx context.Context, storeID uuid.UUID) (StoreSnapshot, error) {
	release, err := r.locker.Acquire(ctx, storeLockKey(storeID), r.lockTTL)
	if err != nil {
		return StoreSnapshot{}, errors.Join(ErrLockUnavailable, err)
	}
	defer release()

	snap, err := r.expected(ctx, storeID)
	if err != nil {
		return StoreSnapshot{}, err
	}
	if err := r.stores.SaveSnapshot(ctx, snap); err != nil {
		return StoreSnapshot{}, err
	}
	return snap, nil
}

func (r *reconciler) expected(ctx context.Context, storeID uuid.UUID) (StoreSnapshot, error) {
	sub, err := r.subs.FindActiveByStore(ctx, storeID)
	if errors.Is(err, ErrSubscriptionNotFound) {
		return EmptySnapshot(storeID), nil
	}
	if err != nil {
		return StoreSnapshot{}, err
	}
	if sub.ExpiredAt(r.clock.Now()) {
		return EmptySnapshot(storeID), nil
	}

	plan, err := r.plans.GetPlan(ctx, sub.PlanID)
	if errors.Is(err, ErrPlanNotFound) {
		r.log.WarnContext(ctx, "active subscription references a missing plan",
			logger.StoreID(storeID),
			logger.SubscriptionID(sub.ID),
			logger.PlanID(sub.PlanID))
		return EmptySnapshot(storeID), nil
	}
	if err != nil {
		return StoreSnapshot{}, err
	}
	return SnapshotFor(storeID, plan, sub), nil
}

// rebuildAll covers every store that either has an ACTIVE subscription or
// whose snapshot claims one.
func (r *reconciler) rebuildAll(ctx context.Context) (SweepResult, error) {
	seen := make(map[uuid.UUID]struct{})
	var storeIDs []uuid.UUID
	add := func(id uuid.UUID) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			storeIDs = append(storeIDs, id)
		}
	}

	claimed, err := r.stores.StoresWithActiveSnapshot(ctx)
	if err != nil {
		return SweepResult{}, err
	}
	for _, id := range claimed {
		add(id)
	}

	for page := 1; ; page++ {
		items, _, err := r.subs.ListSubscriptions(ctx, ListFilter{Status: StatusActive, Page: page, Limit: maxPageSize})
		if err != nil {
			return SweepResult{}, err
		}
		for _, s := range items {
			add(s.StoreID)
		}
		if len(items) < maxPageSize {
			break
		}
	}

	res := forEach(ctx, r.log, "snapshot_reconciler", storeIDs, r.workers, func(ctx context.Context, id uuid.UUID) (itemOutcome, error) {
		if _, err := r.rebuild(ctx, id); err != nil {
			if errors.Is(err, ErrStoreNotFound) {
				return itemSkipped, nil
			}
			return 0, fmt.Errorf("rebuild snapshot of store %s: %w", id, err)
		}
		return itemProcessed, nil
	})

	r.log.InfoContext(ctx, "snapshot reconciliation finished",
		logger.Count("stores", res.Scanned),
		logger.Count("rebuilt", res.Processed),
		logger.Count("failed", res.Failed))
	return res, nil
}
