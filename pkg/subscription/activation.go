package subscription

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Seeom6/Daraa-Hub-sub000/pkg/logger"
)

// ActivateRequest is an administrator's request to start a subscription.
type ActivateRequest struct {
	StoreID          uuid.UUID     `json:"storeId"`
	PlanID           uuid.UUID     `json:"planId"`
	PaymentMethod    PaymentMethod `json:"paymentMethod"`
	AmountPaid       *Money        `json:"amountPaid,omitempty"`
	PaymentReference string        `json:"paymentReference,omitempty"`
	ActivatedBy      uuid.UUID     `json:"activatedBy"`
}

func (r ActivateRequest) Validate() error {
	if r.StoreID == uuid.Nil || r.PlanID == uuid.Nil {
		return errors.Join(ErrInvalidID, errors.New("store id and plan id are required"))
	}
	if !r.PaymentMethod.Valid() {
		return ErrInvalidPaymentMethod
	}
	return nil
}

type activator struct {
	plans   PlanRepository
	subs    SubscriptionRepository
	stores  StoreRepository
	tx      TxRunner
	locker  Locker
	lockTTL time.Duration
	clock   clock
	events  *emitter
	log     *slog.Logger
}

func (a *activator) activate(ctx context.Context, req ActivateRequest) (*Subscription, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	plan, err := a.plans.GetPlan(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}
	if !plan.Active {
		return nil, ErrPlanInactive
	}
	if _, err := a.stores.GetSnapshot(ctx, req.StoreID); err != nil {
		return nil, err
	}

	release, err := a.locker.Acquire(ctx, storeLockKey(req.StoreID), a.lockTTL)
	if err != nil {
		return nil, errors.Join(ErrLockUnavailable, err)
	}
	defer release()

	switch _, err := a.subs.FindActiveByStore(ctx, req.StoreID); {
	case err == nil:
		return nil, ErrActiveSubscriptionExists
	case !errors.Is(err, ErrSubscriptionNotFound):
		return nil, err
	}

	now := a.clock.Now()
	sub := &Subscription{
		ID:               uuid.New(),
		StoreID:          req.StoreID,
		PlanID:           plan.ID,
		Status:           StatusPendingPayment,
		StartDate:        now,
		EndDate:          plan.EndDateFrom(now),
		PaymentMethod:    req.PaymentMethod,
		AmountPaid:       req.AmountPaid,
		PaymentReference: req.PaymentReference,
		ActivatedBy:      idPtr(req.ActivatedBy),
		ActivatedAt:      &now,
		DailyUsage:       []UsageEntry{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := transition(ctx, sub, eventActivate); err != nil {
		return nil, err
	}

	err = a.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := a.subs.CreateSubscription(ctx, sub); err != nil {
			return err
		}
		return a.stores.SaveSnapshot(ctx, SnapshotFor(req.StoreID, plan, sub))
	})
	if err != nil {
		return nil, err
	}

	a.log.InfoContext(ctx, "subscription activated",
		logger.StoreID(sub.StoreID),
		logger.SubscriptionID(sub.ID),
		logger.PlanID(plan.ID),
		logger.ActorID(req.ActivatedBy),
		slog.Time("end_date", sub.EndDate))

	endDate := sub.EndDate
	a.events.emit(ctx, Event{
		Name:           EventActivated,
		StoreID:        sub.StoreID,
		SubscriptionID: sub.ID,
		PlanName:       plan.Name,
		EndDate:        &endDate,
	})
	return sub, nil
}
