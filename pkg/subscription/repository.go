package subscription

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// PlanRepository persists the plan catalog.
type PlanRepository interface {
	// GetPlan returns ErrPlanNotFound when no plan has the id.
	GetPlan(ctx context.Context, id uuid.UUID) (*Plan, error)
	// FindActivePlanByTier returns ErrPlanNotFound when no active plan has the tier.
	FindActivePlanByTier(ctx context.Context, tier Tier) (*Plan, error)
	ListPlans(ctx context.Context, activeOnly bool) ([]Plan, error)
	CreatePlan(ctx context.Context, p *Plan) error
	UpdatePlan(ctx context.Context, p *Plan) error
	DeletePlan(ctx context.Context, id uuid.UUID) error
}

// ListFilter selects subscriptions for paginated listing. Zero values mean
// "any status", "any store", page 1 and the default page size.
type ListFilter struct {
	Status  Status
	StoreID uuid.UUID
	Page    int
	Limit   int
}

// SubscriptionRepository persists store subscriptions.
type SubscriptionRepository interface {
	CreateSubscription(ctx context.Context, s *Subscription) error
	// GetSubscription returns ErrSubscriptionNotFound when no subscription has the id.
	GetSubscription(ctx context.Context, id uuid.UUID) (*Subscription, error)
	// FindActiveByStore returns ErrSubscriptionNotFound when the store has no ACTIVE subscription.
	FindActiveByStore(ctx context.Context, storeID uuid.UUID) (*Subscription, error)
	// ListByStore returns every subscription of the store, newest first.
	ListByStore(ctx context.Context, storeID uuid.UUID) ([]Subscription, error)
	// ListSubscriptions returns one page, newest first, and the total match count.
	ListSubscriptions(ctx context.Context, f ListFilter) ([]Subscription, int64, error)

	// UpdateSubscription writes the fields selected by fields, plus
	// UpdatedAt, only if the stored status still equals expected; otherwise
	// ErrConcurrentModification. Unselected fields keep their stored values.
	// Usage fields are owned by RecordUsage and are never written here.
	UpdateSubscription(ctx context.Context, s *Subscription, expected Status, fields Fields) error
	// TransitionStatus moves the subscription from one status to another
	// and reports false when it was no longer in from.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to Status, at time.Time) (bool, error)
	// RecordUsage atomically increments the ledger entry for day and the
	// running total, and returns the updated subscription.
	RecordUsage(ctx context.Context, id uuid.UUID, day string, at time.Time) (*Subscription, error)

	// FindActiveEndingBefore returns ACTIVE subscriptions with EndDate <= t.
	FindActiveEndingBefore(ctx context.Context, t time.Time) ([]Subscription, error)
	// FindActiveEndingBetween returns ACTIVE subscriptions with from <= EndDate <= to.
	FindActiveEndingBetween(ctx context.Context, from, to time.Time) ([]Subscription, error)
	CountByPlan(ctx context.Context, planID uuid.UUID) (int64, error)
}

// Fields selects the management fields an UpdateSubscription call writes.
type Fields uint8

const (
	// FieldStatus covers the status and the cancellation record.
	FieldStatus Fields = 1 << iota
	FieldEndDate
	FieldAutoRenew
	FieldNotes
)

func (f Fields) Has(field Fields) bool {
	return f&field != 0
}

// StoreRepository reads and writes the subscription snapshot of store
// profiles. The store entity itself is owned elsewhere.
type StoreRepository interface {
	// GetSnapshot returns ErrStoreNotFound for unknown stores.
	GetSnapshot(ctx context.Context, storeID uuid.UUID) (*StoreSnapshot, error)
	// SaveSnapshot returns ErrStoreNotFound for unknown stores.
	SaveSnapshot(ctx context.Context, snap StoreSnapshot) error
	// StoresWithActiveSnapshot lists stores whose snapshot claims an active subscription.
	StoresWithActiveSnapshot(ctx context.Context) ([]uuid.UUID, error)
}

// TxRunner runs fn so that its writes commit or fail together.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Locker provides mutual exclusion per key.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

type noTx struct{}

func (noTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
