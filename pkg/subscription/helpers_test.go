package subscription_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Seeom6/Daraa-Hub-sub000/pkg/subscription"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock(t time.Time) *fakeClock {
	return &fakeClock{t: t}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type eventRecorder struct {
	mu     sync.Mutex
	events []subscription.Event
}

func (r *eventRecorder) Publish(_ context.Context, ev subscription.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *eventRecorder) Named(name subscription.EventName) []subscription.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []subscription.Event
	for _, ev := range r.events {
		if ev.Name == name {
			out = append(out, ev)
		}
	}
	return out
}

func (r *eventRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.events)
}

var t0 = time.Date(2025, time.March, 1, 10, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixture struct {
	repo    *subscription.MemoryStore
	catalog *subscription.Catalog
	svc     subscription.Service
	clock   *fakeClock
	events  *eventRecorder
	plan    *subscription.Plan
	storeID uuid.UUID
	adminID uuid.UUID
}

type fixtureConfig struct {
	limit     int
	maxImages int
	days      int
	settings  subscription.SettingsProvider
	opts      []subscription.Option
}

func newFixture(t *testing.T, mods ...func(*fixtureConfig)) *fixture {
	t.Helper()
	cfg := fixtureConfig{
		limit:     2,
		maxImages: 3,
		days:      30,
		settings:  subscription.StaticSettings{Enabled: true, ExpiryWarningDays: 3},
	}
	for _, mod := range mods {
		mod(&cfg)
	}

	f := &fixture{
		repo:    subscription.NewMemoryStore(),
		clock:   newFakeClock(t0),
		events:  &eventRecorder{},
		storeID: uuid.New(),
		adminID: uuid.New(),
	}
	opts := append([]subscription.Option{
		subscription.WithLogger(discardLogger()),
		subscription.WithClock(f.clock.Now),
		subscription.WithPublisher(f.events),
	}, cfg.opts...)

	f.catalog = subscription.NewCatalog(f.repo, f.repo, opts...)
	plan, err := f.catalog.Create(context.Background(), subscription.Plan{
		Name:         "Basic",
		Tier:         subscription.TierBasic,
		DurationDays: cfg.days,
		Active:       true,
		Price: subscription.Price{
			Primary:   subscription.Money{Amount: 5_000_000, Currency: "SYP"},
			Secondary: subscription.Money{Amount: 500, Currency: "USD"},
		},
		Features: subscription.Features{
			DailyProductLimit:     cfg.limit,
			MaxImagesPerProduct:   cfg.maxImages,
			MaxVariantsPerProduct: 5,
		},
	})
	require.NoError(t, err)
	f.plan = plan

	f.repo.AddStore(f.storeID)
	f.svc = subscription.NewService(f.repo, f.repo, f.repo, cfg.settings, opts...)
	return f
}

func withLimit(n int) func(*fixtureConfig) {
	return func(c *fixtureConfig) { c.limit = n }
}

func withSettings(s subscription.SettingsProvider) func(*fixtureConfig) {
	return func(c *fixtureConfig) { c.settings = s }
}

func withOptions(opts ...subscription.Option) func(*fixtureConfig) {
	return func(c *fixtureConfig) { c.opts = append(c.opts, opts...) }
}

func (f *fixture) activate(t *testing.T) *subscription.Subscription {
	t.Helper()
	return f.activateStore(t, f.storeID)
}

func (f *fixture) activateStore(t *testing.T, storeID uuid.UUID) *subscription.Subscription {
	t.Helper()
	sub, err := f.svc.Activate(context.Background(), subscription.ActivateRequest{
		StoreID:       storeID,
		PlanID:        f.plan.ID,
		PaymentMethod: subscription.PaymentManual,
		ActivatedBy:   f.adminID,
	})
	require.NoError(t, err)
	return sub
}

func (f *fixture) snapshot(t *testing.T) *subscription.StoreSnapshot {
	t.Helper()
	snap, err := f.repo.GetSnapshot(context.Background(), f.storeID)
	require.NoError(t, err)
	return snap
}
