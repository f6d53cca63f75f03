package subscription

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Grant is the result of an allowed quota check.
type Grant struct {
	Subscription *Subscription
	Snapshot     StoreSnapshot
	// TodayUsage is the count for the current day at the time of the check,
	// or after the increment for ConsumePublish.
	TodayUsage int
}

type enforcer struct {
	stores StoreRepository
	subs   SubscriptionRepository
	clock  clock
	events *emitter
}

// check decides whether the store may publish one product with imageCount
// images. A nil grant with a nil error means enforcement is switched off.
func (e *enforcer) check(ctx context.Context, settings SystemSettings, storeID uuid.UUID, imageCount int) (*Grant, error) {
	if !settings.Enabled {
		return nil, nil
	}
	if imageCount < 0 {
		return nil, ErrInvalidImageCount
	}

	snap, err := e.stores.GetSnapshot(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if !snap.HasActiveSubscription {
		return nil, deny(ErrSubscriptionInactive)
	}

	sub, err := e.subs.FindActiveByStore(ctx, storeID)
	if errors.Is(err, ErrSubscriptionNotFound) {
		return nil, deny(ErrNoActiveSubscription)
	}
	if err != nil {
		return nil, err
	}

	now := e.clock.Now()
	if sub.ExpiredAt(now) {
		// the expiration sweep moves it to EXPIRED on its next run
		return nil, deny(ErrSubscriptionExpired)
	}

	used := sub.UsageOn(e.clock.Day(now))
	if used >= snap.DailyProductLimit {
		e.events.emit(ctx, Event{
			Name:           EventDailyLimitReached,
			StoreID:        storeID,
			SubscriptionID: sub.ID,
			Limit:          snap.DailyProductLimit,
		})
		return nil, deny(ErrDailyLimitReached)
	}
	if imageCount > snap.MaxImagesPerProduct {
		return nil, deny(ErrImageLimitExceeded)
	}

	return &Grant{Subscription: sub, Snapshot: *snap, TodayUsage: used}, nil
}
