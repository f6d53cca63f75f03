package subscription

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Seeom6/Daraa-Hub-sub000/pkg/logger"
)

// UpdateRequest carries an administrator's changes. Nil fields are left
// unchanged. The only accepted Status is StatusCancelled.
type UpdateRequest struct {
	Status             *Status    `json:"status,omitempty"`
	EndDate            *time.Time `json:"endDate,omitempty"`
	AutoRenew          *bool      `json:"autoRenew,omitempty"`
	Notes              *string    `json:"notes,omitempty"`
	CancellationReason string     `json:"cancellationReason,omitempty"`
}

type manager struct {
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

func (m *manager) update(ctx context.Context, id uuid.UUID, req UpdateRequest, actorID uuid.UUID) (*Subscription, error) {
	if req.Status != nil && *req.Status != StatusCancelled {
		if !req.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		return nil, ErrUnsupportedStatusChange
	}

	sub, err := m.subs.GetSubscription(ctx, id)
	if err != nil {
		return nil, err
	}

	// the snapshot written below must not race an activation for the same store
	release, err := m.locker.Acquire(ctx, storeLockKey(sub.StoreID), m.lockTTL)
	if err != nil {
		return nil, errors.Join(ErrLockUnavailable, err)
	}
	defer release()

	if sub, err = m.subs.GetSubscription(ctx, id); err != nil {
		return nil, err
	}
	prev := sub.Status
	now := m.clock.Now()

	var fields Fields
	var cancelled, extended bool
	if req.Status != nil {
		if err := transition(ctx, sub, eventCancel); err != nil {
			return nil, err
		}
		sub.CancelledBy = idPtr(actorID)
		sub.CancelledAt = &now
		sub.CancellationReason = req.CancellationReason
		cancelled = true
		fields |= FieldStatus
	}
	if req.EndDate != nil {
		if req.EndDate.Before(sub.StartDate) {
			return nil, ErrInvalidEndDate
		}
		sub.EndDate = *req.EndDate
		// a cancelled subscription keeps the new date for the record only
		extended = sub.Status == StatusActive
		fields |= FieldEndDate
	}
	if req.AutoRenew != nil {
		sub.AutoRenew = *req.AutoRenew
		fields |= FieldAutoRenew
	}
	if req.Notes != nil {
		sub.Notes = *req.Notes
		fields |= FieldNotes
	}
	sub.UpdatedAt = now

	err = m.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := m.subs.UpdateSubscription(ctx, sub, prev, fields); err != nil {
			return err
		}
		switch {
		case cancelled && prev == StatusActive:
			return m.saveSnapshot(ctx, EmptySnapshot(sub.StoreID))
		case extended:
			snap, err := m.stores.GetSnapshot(ctx, sub.StoreID)
			if errors.Is(err, ErrStoreNotFound) {
				m.log.WarnContext(ctx, "store missing while updating subscription snapshot", logger.StoreID(sub.StoreID))
				return nil
			}
			if err != nil {
				return err
			}
			end := sub.EndDate
			snap.SubscriptionExpiresAt = &end
			return m.saveSnapshot(ctx, *snap)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	planName := m.planName(ctx, sub.PlanID)
	switch {
	case cancelled:
		m.log.InfoContext(ctx, "subscription cancelled",
			logger.StoreID(sub.StoreID),
			logger.SubscriptionID(sub.ID),
			logger.ActorID(actorID))
		m.events.emit(ctx, Event{
			Name:           EventCancelled,
			StoreID:        sub.StoreID,
			SubscriptionID: sub.ID,
			PlanName:       planName,
		})
	case extended:
		m.log.InfoContext(ctx, "subscription end date changed",
			logger.StoreID(sub.StoreID),
			logger.SubscriptionID(sub.ID),
			slog.Time("end_date", sub.EndDate))
		end := sub.EndDate
		m.events.emit(ctx, Event{
			Name:           EventExtended,
			StoreID:        sub.StoreID,
			SubscriptionID: sub.ID,
			PlanName:       planName,
			EndDate:        &end,
		})
	}
	return sub, nil
}

// saveSnapshot tolerates stores that were removed after subscribing.
func (m *manager) saveSnapshot(ctx context.Context, snap StoreSnapshot) error {
	err := m.stores.SaveSnapshot(ctx, snap)
	if errors.Is(err, ErrStoreNotFound) {
		m.log.WarnContext(ctx, "store missing while updating subscription snapshot", logger.StoreID(snap.StoreID))
		return nil
	}
	return err
}

func (m *manager) planName(ctx context.Context, planID uuid.UUID) string {
	return planNameOrUnknown(ctx, m.plans, planID)
}

// planNameOrUnknown is used for notifications, where a deleted or
// unreadable plan must not block delivery.
func planNameOrUnknown(ctx context.Context, plans PlanRepository, planID uuid.UUID) string {
	plan, err := plans.GetPlan(ctx, planID)
	if err != nil {
		return "Unknown"
	}
	return plan.Name
}
