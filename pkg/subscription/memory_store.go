package subscription

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps plans, subscriptions and store snapshots in memory. It
// implements PlanRepository, SubscriptionRepository and StoreRepository and
// is intended for tests and single-process deployments.
type MemoryStore struct {
	mu     sync.RWMutex
	plans  map[uuid.UUID]Plan
	subs   map[uuid.UUID]*Subscription
	stores map[uuid.UUID]StoreSnapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		plans:  make(map[uuid.UUID]Plan),
		subs:   make(map[uuid.UUID]*Subscription),
		stores: make(map[uuid.UUID]StoreSnapshot),
	}
}

// AddStore registers a store with an empty snapshot.
func (m *MemoryStore) AddStore(storeID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stores[storeID]; !ok {
		m.stores[storeID] = EmptySnapshot(storeID)
	}
}

// RemoveStore forgets a store and its snapshot.
func (m *MemoryStore) RemoveStore(storeID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, storeID)
}

func (m *MemoryStore) GetPlan(_ context.Context, id uuid.UUID) (*Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.plans[id]
	if !ok {
		return nil, ErrPlanNotFound
	}
	return &p, nil
}

func (m *MemoryStore) FindActivePlanByTier(_ context.Context, tier Tier) (*Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.plans {
		if p.Active && p.Tier == tier {
			return &p, nil
		}
	}
	return nil, ErrPlanNotFound
}

func (m *MemoryStore) ListPlans(_ context.Context, activeOnly bool) ([]Plan, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Plan, 0, len(m.plans))
	for _, p := range m.plans {
		if activeOnly && !p.Active {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *MemoryStore) CreatePlan(_ context.Context, p *Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plans[p.ID] = *p
	return nil
}

func (m *MemoryStore) UpdatePlan(_ context.Context, p *Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[p.ID]; !ok {
		return ErrPlanNotFound
	}
	m.plans[p.ID] = *p
	return nil
}

func (m *MemoryStore) DeletePlan(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.plans[id]; !ok {
		return ErrPlanNotFound
	}
	delete(m.plans, id)
	return nil
}

func (m *MemoryStore) CreateSubscription(_ context.Context, s *Subscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.Status == StatusActive {
		for _, other := range m.subs {
			if other.StoreID == s.StoreID && other.Status == StatusActive {
				return ErrActiveSubscriptionExists
			}
		}
	}
	m.subs[s.ID] = s.Clone()
	return nil
}

func (m *MemoryStore) GetSubscription(_ context.Context, id uuid.UUID) (*Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.subs[id]
	if !ok {
		return nil, ErrSubscriptionNotFound
	}
	return s.Clone(), nil
}

func (m *MemoryStore) FindActiveByStore(_ context.Context, storeID uuid.UUID) (*Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.subs {
		if s.StoreID == storeID && s.Status == StatusActive {
			return s.Clone(), nil
		}
	}
	return nil, ErrSubscriptionNotFound
}

func (m *MemoryStore) ListByStore(_ context.Context, storeID uuid.UUID) ([]Subscription, error) {
	return m.filter(func(s *Subscription) bool { return s.StoreID == storeID }), nil
}

func (m *MemoryStore) ListSubscriptions(_ context.Context, f ListFilter) ([]Subscription, int64, error) {
	all := m.filter(func(s *Subscription) bool {
		return (f.Status == "" || s.Status == f.Status) && (f.StoreID == uuid.Nil || s.StoreID == f.StoreID)
	})
	total := int64(len(all))
	if f.Limit <= 0 {
		return all, total, nil
	}
	start := min(max(f.Page-1, 0)*f.Limit, len(all))
	end := min(start+f.Limit, len(all))
	return all[start:end], total, nil
}

// filter returns matching copies, newest first.
func (m *MemoryStore) filter(match func(*Subscription) bool) []Subscription {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []Subscription{}
	for _, s := range m.subs {
		if match(s) {
			out = append(out, *s.Clone())
		}
	}
	slices.SortFunc(out, func(a, b Subscription) int {
		return cmp.Or(b.CreatedAt.Compare(a.CreatedAt), cmp.Compare(a.ID.String(), b.ID.String()))
	})
	return out
}

func (m *MemoryStore) UpdateSubscription(_ context.Context, s *Subscription, expected Status, fields Fields) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.subs[s.ID]
	if !ok {
		return ErrSubscriptionNotFound
	}
	if cur.Status != expected {
		return ErrConcurrentModification
	}
	src := s.Clone()
	if fields.Has(FieldStatus) {
		cur.Status = src.Status
		cur.CancelledBy = src.CancelledBy
		cur.CancelledAt = src.CancelledAt
		cur.CancellationReason = src.CancellationReason
	}
	if fields.Has(FieldEndDate) {
		cur.EndDate = src.EndDate
	}
	if fields.Has(FieldAutoRenew) {
		cur.AutoRenew = src.AutoRenew
	}
	if fields.Has(FieldNotes) {
		cur.Notes = src.Notes
	}
	cur.UpdatedAt = src.UpdatedAt
	return nil
}

func (m *MemoryStore) TransitionStatus(_ context.Context, id uuid.UUID, from, to Status, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.subs[id]
	if !ok {
		return false, ErrSubscriptionNotFound
	}
	if cur.Status != from {
		return false, nil
	}
	cur.Status = to
	cur.UpdatedAt = at
	return true, nil
}

func (m *MemoryStore) RecordUsage(_ context.Context, id uuid.UUID, day string, at time.Time) (*Subscription, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.subs[id]
	if !ok {
		return nil, ErrSubscriptionNotFound
	}
	cur.AddUsage(day)
	cur.UpdatedAt = at
	return cur.Clone(), nil
}

func (m *MemoryStore) FindActiveEndingBefore(_ context.Context, t time.Time) ([]Subscription, error) {
	return m.filter(func(s *Subscription) bool {
		return s.Status == StatusActive && !s.EndDate.After(t)
	}), nil
}

func (m *MemoryStore) FindActiveEndingBetween(_ context.Context, from, to time.Time) ([]Subscription, error) {
	return m.filter(func(s *Subscription) bool {
		return s.Status == StatusActive && !s.EndDate.Before(from) && !s.EndDate.After(to)
	}), nil
}

func (m *MemoryStore) CountByPlan(_ context.Context, planID uuid.UUID) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var n int64
	for _, s := range m.subs {
		if s.PlanID == planID {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) GetSnapshot(_ context.Context, storeID uuid.UUID) (*StoreSnapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	snap, ok := m.stores[storeID]
	if !ok {
		return nil, ErrStoreNotFound
	}
	return &snap, nil
}

func (m *MemoryStore) SaveSnapshot(_ context.Context, snap StoreSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.stores[snap.StoreID]; !ok {
		return ErrStoreNotFound
	}
	m.stores[snap.StoreID] = snap
	return nil
}

func (m *MemoryStore) StoresWithActiveSnapshot(_ context.Context) ([]uuid.UUID, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var ids []uuid.UUID
	for id, snap := range m.stores {
		if snap.HasActiveSubscription {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

var (
	_ PlanRepository         = (*MemoryStore)(nil)
	_ SubscriptionRepository = (*MemoryStore)(nil)
	_ StoreRepository        = (*MemoryStore)(nil)
)
