package subscription

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/Seeom6/Daraa-Hub-sub000/pkg/logger"
)

// Service is the store subscription engine: activation, administration,
// queries, quota enforcement, usage counting and the scheduled sweeps.
type Service interface {
	// Activate starts a subscription for a store that has no active one.
	Activate(ctx context.Context, req ActivateRequest) (*Subscription, error)
	// Update applies administrative changes: cancellation, end date, auto-renew, notes.
	Update(ctx context.Context, id uuid.UUID, req UpdateRequest, actorID uuid.UUID) (*Subscription, error)
	// Cancel is Update with Status set to CANCELLED.
	Cancel(ctx context.Context, id, actorID uuid.UUID, reason string) (*Subscription, error)

	GetByID(ctx context.Context, id uuid.UUID) (*Subscription, error)
	GetActiveForStore(ctx context.Context, storeID uuid.UUID) (*Subscription, error)
	ListForStore(ctx context.Context, storeID uuid.UUID) ([]Subscription, error)
	List(ctx context.Context, f ListFilter) (*Page[Subscription], error)
	UsageSummary(ctx context.Context, storeID uuid.UUID) (*UsageSummary, error)

	// Check decides whether the store may publish one product with
	// imageCount images. On success the grant is attached to the returned
	// context. A nil grant with a nil error means enforcement is disabled.
	Check(ctx context.Context, storeID uuid.UUID, imageCount int) (context.Context, *Grant, error)
	// RecordPublish counts one published product for the subscription.
	RecordPublish(ctx context.Context, subscriptionID uuid.UUID) (*Subscription, error)
	// ConsumePublish runs Check and RecordPublish under a per-store lock, so
	// concurrent publishes never exceed the daily limit.
	ConsumePublish(ctx context.Context, storeID uuid.UUID, imageCount int) (context.Context, *Grant, error)

	// CheckExpiredSubscriptions expires every ACTIVE subscription past its end date.
	CheckExpiredSubscriptions(ctx context.Context) (SweepResult, error)
	// SendExpiryWarnings notifies stores whose subscription ends within the warning horizon.
	SendExpiryWarnings(ctx context.Context) (SweepResult, error)
	// ReconcileStore rebuilds one store snapshot from its subscription record.
	ReconcileStore(ctx context.Context, storeID uuid.UUID) (StoreSnapshot, error)
	// ReconcileAll rebuilds the snapshot of every store with an active subscription or snapshot.
	ReconcileAll(ctx context.Context) (SweepResult, error)
}

type service struct {
	settings SettingsProvider
	locker   Locker
	opts     *options
	log      *slog.Logger

	enforcer   *enforcer
	usage      *usageCounter
	activator  *activator
	manager    *manager
	query      *query
	expiration *expirationSweep
	warnings   *warningSweep
	reconciler *reconciler
}

// NewService wires the engine. It panics when a repository or the settings
// provider is nil.
func NewService(plans PlanRepository, subs SubscriptionRepository, stores StoreRepository, settings SettingsProvider, opts ...Option) Service {
	if plans == nil || subs == nil || stores == nil {
		panic("subscription: plan, subscription and store repositories are required")
	}
	if settings == nil {
		panic("subscription: settings provider is required")
	}

	o := newOptions(opts)
	log := o.log.With(logger.Component("subscription"))
	clk := clock{now: o.now, loc: o.loc}
	events := &emitter{publisher: o.publisher, log: log, now: o.now}
	usage := &usageCounter{subs: subs, clock: clk}

	return &service{
		settings: settings,
		locker:   o.locker,
		opts:     o,
		log:      log,
		enforcer: &enforcer{stores: stores, subs: subs, clock: clk, events: events},
		usage:    usage,
		activator: &activator{
			plans: plans, subs: subs, stores: stores, tx: o.tx,
			locker: o.locker, lockTTL: o.cfg.LockTTL,
			clock: clk, events: events, log: log,
		},
		manager: &manager{
			plans: plans, subs: subs, stores: stores, tx: o.tx,
			locker: o.locker, lockTTL: o.cfg.LockTTL,
			clock: clk, events: events, log: log,
		},
		query: &query{subs: subs, stores: stores, usage: usage},
		expiration: &expirationSweep{
			plans: plans, subs: subs, stores: stores,
			locker: o.locker, lockTTL: o.cfg.LockTTL,
			clock: clk, events: events, log: log, workers: o.cfg.SweepConcurrency,
		},
		warnings: &warningSweep{
			plans: plans, subs: subs, clock: clk, events: events, log: log,
			workers: o.cfg.SweepConcurrency, defaultDays: o.cfg.ExpiryWarningDays,
		},
		reconciler: &reconciler{
			plans: plans, subs: subs, stores: stores,
			locker: o.locker, lockTTL: o.cfg.LockTTL,
			clock: clk, log: log, workers: o.cfg.SweepConcurrency,
		},
	}
}

func (s *service) Activate(ctx context.Context, req ActivateRequest) (*Subscription, error) {
	return s.activator.activate(ctx, req)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest, actorID uuid.UUID) (*Subscription, error) {
	return s.manager.update(ctx, id, req, actorID)
}

func (s *service) Cancel(ctx context.Context, id, actorID uuid.UUID, reason string) (*Subscription, error) {
	status := StatusCancelled
	return s.manager.update(ctx, id, UpdateRequest{Status: &status, CancellationReason: reason}, actorID)
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Subscription, error) {
	return s.query.byID(ctx, id)
}

func (s *service) GetActiveForStore(ctx context.Context, storeID uuid.UUID) (*Subscription, error) {
	return s.query.activeForStore(ctx, storeID)
}

func (s *service) ListForStore(ctx context.Context, storeID uuid.UUID) ([]Subscription, error) {
	return s.query.forStore(ctx, storeID)
}

func (s *service) List(ctx context.Context, f ListFilter) (*Page[Subscription], error) {
	return s.query.list(ctx, f)
}

func (s *service) UsageSummary(ctx context.Context, storeID uuid.UUID) (*UsageSummary, error) {
	return s.query.usageSummary(ctx, storeID)
}

func (s *service) Check(ctx context.Context, storeID uuid.UUID, imageCount int) (context.Context, *Grant, error) {
	settings, err := loadSettings(ctx, s.settings)
	if err != nil {
		return ctx, nil, err
	}
	grant, err := s.enforcer.check(ctx, settings, storeID, imageCount)
	if err != nil || grant == nil {
		return ctx, nil, err
	}
	return WithGrant(ctx, grant), grant, nil
}

func (s *service) RecordPublish(ctx context.Context, subscriptionID uuid.UUID) (*Subscription, error) {
	return s.usage.record(ctx, subscriptionID)
}

func (s *service) ConsumePublish(ctx context.Context, storeID uuid.UUID, imageCount int) (context.Context, *Grant, error) {
	settings, err := loadSettings(ctx, s.settings)
	if err != nil {
		return ctx, nil, err
	}
	if !settings.Enabled {
		return ctx, nil, nil
	}

	release, err := s.locker.Acquire(ctx, storeLockKey(storeID), s.opts.cfg.LockTTL)
	if err != nil {
		return ctx, nil, errors.Join(ErrLockUnavailable, err)
	}
	defer release()

	grant, err := s.enforcer.check(ctx, settings, storeID, imageCount)
	if err != nil {
		return ctx, nil, err
	}
	sub, err := s.usage.record(ctx, grant.Subscription.ID)
	if err != nil {
		return ctx, nil, err
	}
	grant.Subscription = sub
	grant.TodayUsage = sub.UsageOn(s.enforcer.clock.Day(s.enforcer.clock.Now()))
	return WithGrant(ctx, grant), grant, nil
}

func (s *service) CheckExpiredSubscriptions(ctx context.Context) (SweepResult, error) {
	settings, err := loadSettings(ctx, s.settings)
	if err != nil {
		return SweepResult{}, err
	}
	return s.expiration.run(ctx, settings)
}

func (s *service) SendExpiryWarnings(ctx context.Context) (SweepResult, error) {
	settings, err := loadSettings(ctx, s.settings)
	if err != nil {
		return SweepResult{}, err
	}
	return s.warnings.run(ctx, settings)
}

func (s *service) ReconcileStore(ctx context.Context, storeID uuid.UUID) (StoreSnapshot, error) {
	return s.reconciler.rebuild(ctx, storeID)
}

func (s *service) ReconcileAll(ctx context.Context) (SweepResult, error) {
	return s.reconciler.rebuildAll(ctx)
}
