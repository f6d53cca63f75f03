package subscription

import (
	"context"

	"github.com/google/uuid"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
)

// Page is one page of a listing.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
}

// Pages returns the number of pages needed for Total items.
func (p Page[T]) Pages() int {
	if p.Limit <= 0 {
		return 0
	}
	return int((p.Total + int64(p.Limit) - 1) / int64(p.Limit))
}

// normalize applies default paging and validates the status filter.
func (f ListFilter) normalize() (ListFilter, error) {
	if f.Status != "" && !f.Status.Valid() {
		return f, ErrInvalidStatus
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultPageSize
	}
	f.Limit = min(f.Limit, maxPageSize)
	return f, nil
}

type query struct {
	subs   SubscriptionRepository
	stores StoreRepository
	usage  *usageCounter
}

func (q *query) byID(ctx context.Context, id uuid.UUID) (*Subscription, error) {
	return q.subs.GetSubscription(ctx, id)
}

func (q *query) activeForStore(ctx context.Context, storeID uuid.UUID) (*Subscription, error) {
	return q.subs.FindActiveByStore(ctx, storeID)
}

func (q *query) forStore(ctx context.Context, storeID uuid.UUID) ([]Subscription, error) {
	return q.subs.ListByStore(ctx, storeID)
}

func (q *query) list(ctx context.Context, f ListFilter) (*Page[Subscription], error) {
	f, err := f.normalize()
	if err != nil {
		return nil, err
	}
	items, total, err := q.subs.ListSubscriptions(ctx, f)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Subscription{}
	}
	return &Page[Subscription]{Items: items, Total: total, Page: f.Page, Limit: f.Limit}, nil
}

func (q *query) usageSummary(ctx context.Context, storeID uuid.UUID) (*UsageSummary, error) {
	snap, err := q.stores.GetSnapshot(ctx, storeID)
	if err != nil {
		return nil, err
	}
	sub, err := q.subs.FindActiveByStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	return q.usage.summary(sub, snap), nil
}
