package subscription_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seeom6/Daraa-Hub-sub000/pkg/feature"
	"github.com/Seeom6/Daraa-Hub-sub000/pkg/subscription"
)

func TestCheckExpiredSubscriptions(t *testing.T) {
	t.Parallel()

	t.Run("second run is a no-op", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		f.activate(t)
		other := uuid.New()
		f.repo.AddStore(other)
		f.clock.Advance(24 * time.Hour)
		f.activateStore(t, other)

		f.clock.Advance(29*24*time.Hour + time.Hour)
		res, err := f.svc.CheckExpiredSubscriptions(ctx)
		require.NoError(t, err)
		assert.Equal(t, subscription.SweepResult{Scanned: 1, Processed: 1}, res)
		assert.Len(t, f.events.Named(subscription.EventExpired), 1)

		res, err = f.svc.CheckExpiredSubscriptions(ctx)
		require.NoError(t, err)
		assert.Equal(t, subscription.SweepResult{}, res)
		assert.Len(t, f.events.Named(subscription.EventExpired), 1)

		active, err := f.svc.GetActiveForStore(ctx, other)
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusActive, active.Status)
	})

	t.Run("end date equal to now expires", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		sub := f.activate(t)
		f.clock.Advance(sub.EndDate.Sub(t0))

		res, err := f.svc.CheckExpiredSubscriptions(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, res.Processed)
	})

	t.Run("disabled touches nothing", func(t *testing.T) {
		t.Parallel()
		flags, err := feature.NewMemoryProvider(feature.Flag{Name: subscription.FlagSubscriptions, Enabled: true})
		require.NoError(t, err)
		f := newFixture(t, withSettings(subscription.NewFlagSettings(flags)))
		ctx := context.Background()
		sub := f.activate(t)

		require.NoError(t, flags.SetFlag(ctx, &feature.Flag{Name: subscription.FlagSubscriptions, Enabled: false}))
		f.clock.Advance(31 * 24 * time.Hour)

		res, err := f.svc.CheckExpiredSubscriptions(ctx)
		require.NoError(t, err)
		assert.Zero(t, res.Scanned)

		stored, err := f.svc.GetByID(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusActive, stored.Status)
		assert.True(t, f.snapshot(t).HasActiveSubscription)
	})

	t.Run("missing store does not abort", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		gone := f.activate(t)
		other := uuid.New()
		f.repo.AddStore(other)
		kept := f.activateStore(t, other)
		f.repo.RemoveStore(f.storeID)

		f.clock.Advance(31 * 24 * time.Hour)
		res, err := f.svc.CheckExpiredSubscriptions(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Processed)
		assert.Zero(t, res.Failed)

		for _, id := range []uuid.UUID{gone.ID, kept.ID} {
			stored, err := f.svc.GetByID(ctx, id)
			require.NoError(t, err)
			assert.Equal(t, subscription.StatusExpired, stored.Status)
		}
	})

	t.Run("dangling plan is reported as unknown", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		f.activate(t)
		require.NoError(t, f.repo.DeletePlan(ctx, f.plan.ID))

		f.clock.Advance(31 * 24 * time.Hour)
		_, err := f.svc.CheckExpiredSubscriptions(ctx)
		require.NoError(t, err)

		events := f.events.Named(subscription.EventExpired)
		require.Len(t, events, 1)
		assert.Equal(t, "Unknown", events[0].PlanName)
		assert.Equal(t, f.storeID, events[0].StoreID)
	})
}

func TestSendExpiryWarnings(t *testing.T) {
	t.Parallel()

	t.Run("days left rounds up", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		sub := f.activate(t)

		f.clock.Advance(27*24*time.Hour + 12*time.Hour)
		res, err := f.svc.SendExpiryWarnings(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Processed)

		events := f.events.Named(subscription.EventExpiryWarning)
		require.Len(t, events, 1)
		assert.Equal(t, 3, events[0].DaysLeft)
		assert.Equal(t, "2025-03-31", events[0].ExpiresOn)
		assert.Equal(t, sub.ID, events[0].SubscriptionID)
		assert.Equal(t, "Basic", events[0].PlanName)

		// no dedup between runs
		_, err = f.svc.SendExpiryWarnings(ctx)
		require.NoError(t, err)
		assert.Len(t, f.events.Named(subscription.EventExpiryWarning), 2)

		stored, err := f.svc.GetByID(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, subscription.StatusActive, stored.Status)
	})

	t.Run("outside horizon", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.activate(t)
		f.clock.Advance(26 * 24 * time.Hour)

		res, err := f.svc.SendExpiryWarnings(context.Background())
		require.NoError(t, err)
		assert.Zero(t, res.Scanned)
		assert.Empty(t, f.events.Named(subscription.EventExpiryWarning))
	})

	t.Run("horizon from flag value", func(t *testing.T) {
		t.Parallel()
		flags, err := feature.NewMemoryProvider(feature.Flag{Name: subscription.FlagSubscriptions, Enabled: true, Value: 1})
		require.NoError(t, err)
		f := newFixture(t, withSettings(subscription.NewFlagSettings(flags)))
		f.activate(t)
		f.clock.Advance(28 * 24 * time.Hour)

		res, err := f.svc.SendExpiryWarnings(context.Background())
		require.NoError(t, err)
		assert.Zero(t, res.Scanned)

		f.clock.Advance(36 * time.Hour)
		res, err = f.svc.SendExpiryWarnings(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, res.Processed)
	})

	t.Run("expiry day in reference timezone", func(t *testing.T) {
		t.Parallel()
		loc := time.FixedZone("UTC+15", 15*60*60)
		f := newFixture(t, withOptions(subscription.WithLocation(loc)))
		f.activate(t)
		f.clock.Advance(29 * 24 * time.Hour)

		_, err := f.svc.SendExpiryWarnings(context.Background())
		require.NoError(t, err)
		events := f.events.Named(subscription.EventExpiryWarning)
		require.Len(t, events, 1)
		assert.Equal(t, 1, events[0].DaysLeft)
		assert.Equal(t, "2025-04-01", events[0].ExpiresOn)
	})

	t.Run("disabled", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t, withSettings(subscription.StaticSettings{Enabled: false}))
		f.activate(t)
		f.clock.Advance(29 * 24 * time.Hour)

		res, err := f.svc.SendExpiryWarnings(context.Background())
		require.NoError(t, err)
		assert.Zero(t, res.Scanned)
		assert.Empty(t, f.events.Named(subscription.EventExpiryWarning))
	})
}

func TestReconcile(t *testing.T) {
	t.Parallel()

	t.Run("restores drifted snapshot", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		sub := f.activate(t)
		require.NoError(t, f.repo.SaveSnapshot(ctx, subscription.EmptySnapshot(f.storeID)))

		snap, err := f.svc.ReconcileStore(ctx, f.storeID)
		require.NoError(t, err)
		assert.Equal(t, subscription.SnapshotFor(f.storeID, f.plan, sub), snap)
		assert.Equal(t, snap, *f.snapshot(t))
	})

	t.Run("clears snapshot without subscription", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		stale := subscription.SnapshotFor(f.storeID, f.plan, &subscription.Subscription{EndDate: t0.Add(time.Hour)})
		require.NoError(t, f.repo.SaveSnapshot(ctx, stale))

		snap, err := f.svc.ReconcileStore(ctx, f.storeID)
		require.NoError(t, err)
		assert.Equal(t, subscription.EmptySnapshot(f.storeID), snap)
	})

	t.Run("clears snapshot of lapsed subscription", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		f.activate(t)
		f.clock.Advance(31 * 24 * time.Hour)

		snap, err := f.svc.ReconcileStore(context.Background(), f.storeID)
		require.NoError(t, err)
		assert.False(t, snap.HasActiveSubscription)
	})

	t.Run("unknown store", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		_, err := f.svc.ReconcileStore(context.Background(), uuid.New())
		require.ErrorIs(t, err, subscription.ErrStoreNotFound)
	})

	t.Run("all stores", func(t *testing.T) {
		t.Parallel()
		f := newFixture(t)
		ctx := context.Background()
		sub := f.activate(t)
		require.NoError(t, f.repo.SaveSnapshot(ctx, subscription.EmptySnapshot(f.storeID)))

		drifted := uuid.New()
		f.repo.AddStore(drifted)
		stale := subscription.SnapshotFor(drifted, f.plan, &subscription.Subscription{EndDate: t0.Add(time.Hour)})
		require.NoError(t, f.repo.SaveSnapshot(ctx, stale))

		orphan := uuid.New()
		f.repo.AddStore(orphan)
		f.activateStore(t, orphan)
		f.repo.RemoveStore(orphan)

		res, err := f.svc.ReconcileAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, subscription.SweepResult{Scanned: 3, Processed: 2, Skipped: 1}, res)

		assert.Equal(t, subscription.SnapshotFor(f.storeID, f.plan, sub), *f.snapshot(t))
		snap, err := f.repo.GetSnapshot(ctx, drifted)
		require.NoError(t, err)
		assert.False(t, snap.HasActiveSubscription)
	})
}
