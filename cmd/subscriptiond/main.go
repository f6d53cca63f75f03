// Command subscriptiond runs the store subscription engine: it seeds the
// plan catalog, runs the expiration, expiry-warning and reconciliation
// jobs, and serves health probes.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/Seeom6/Daraa-Hub-sub000/pkg/broadcast"
	"github.com/Seeom6/Daraa-Hub-sub000/pkg/config"
	"github.com/Seeom6/Daraa-Hub-sub000/pkg/correlation"
	"github.com/Seeom6/Daraa-Hub-sub000/pkg/httpserver"
	"github.com/Seeom6/Daraa-Hub-sub000/pkg/logger"
	"github.com/Seeom6/Daraa-Hub-sub000/pkg/mongo"
	"github.com/Seeom6/Daraa-Hub-sub000/pkg/redis"
	"github.com/Seeom6/Daraa-Hub-sub000/pkg/scheduler"
	core "github.com/Seeom6/Daraa-Hub-sub000/pkg/subscription"
	"github.com/Seeom6/Daraa-Hub-sub000/svc/subscription"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		slog.Error("subscriptiond stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	if files := os.Getenv("APP_ENV_FILES"); files != "" {
		if err := config.LoadEnv(strings.Split(files, ",")...); err != nil {
			return err
		}
	}

	var cfg settings
	if err := config.Load(&cfg); err != nil {
		return err
	}

	logOpts := []logger.Option{
		logger.WithEnvironment(cfg.App.Env, cfg.App.Service),
		logger.WithContextExtractors(correlation.LoggerExtractor()),
	}
	if cfg.App.LogLevel != "" {
		logOpts = append(logOpts, logger.WithLevel(logger.ParseLevel(cfg.App.LogLevel)))
	}
	log := logger.New(logOpts...)
	logger.SetAsDefault(log)

	loc, err := cfg.Subscription.Location()
	if err != nil {
		return err
	}

	mongoClient, err := mongo.New(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() { _ = mongoClient.Disconnect(context.WithoutCancel(ctx)) }()
	db := mongoClient.Database(cfg.Mongo.Database)
	if err := subscription.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := redis.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()
	locker := redis.NewLocker(rdb, cfg.Redis)

	plans := subscription.NewPlanRepository(db)
	subs := subscription.NewSubscriptionRepository(db)
	stores := subscription.NewStoreRepository(db)

	events := broadcast.NewMemoryBroadcaster[core.Event](256)
	defer func() { _ = events.Close() }()

	opts := []core.Option{
		core.WithLogger(log),
		core.WithConfig(cfg.Subscription),
		core.WithLocation(loc),
		core.WithLocker(locker),
		core.WithTxRunner(mongo.NewTransactor(mongoClient, cfg.Mongo.Transactions)),
		core.WithPublisher(core.MultiPublisher(
			subscription.NewRedisPublisher(rdb, cfg.App.EventChannel),
			core.NewBroadcastPublisher(events),
		)),
	}

	catalog := core.NewCatalog(plans, subs, opts...)
	if cfg.Subscription.PlansFile != "" {
		if err := seedPlans(ctx, log, catalog, cfg.Subscription.PlansFile); err != nil {
			return err
		}
	}

	svc := core.NewService(plans, subs, stores, core.NewFlagSettings(subscription.NewFlagStore(db)), opts...)

	sched := scheduler.New(
		scheduler.WithLogger(log),
		scheduler.WithLocation(loc),
		scheduler.WithLocker(locker),
	)
	if err := registerJobs(sched, svc, cfg.Subscription); err != nil {
		return err
	}

	router := httpserver.NewOpsRouter(log, cfg.HTTP.CheckTimeout,
		httpserver.Check{Name: "mongo", Fn: mongo.Healthcheck(mongoClient)},
		httpserver.Check{Name: "redis", Fn: redis.Healthcheck(rdb)},
	)
	router.Get("/jobs", func(w http.ResponseWriter, _ *http.Request) {
		httpserver.WriteJSON(w, http.StatusOK, sched.Jobs())
	})
	srv := httpserver.NewFromConfig(cfg.HTTP, httpserver.WithLogger(log))

	g, ctx := errgroup.WithContext(ctx)
	g.Go(sched.Run(ctx))
	g.Go(func() error { return srv.Run(ctx, router) })
	g.Go(func() error { return logEvents(ctx, log, events) })

	log.InfoContext(ctx, "subscriptiond started", slog.String("timezone", loc.String()))
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func seedPlans(ctx context.Context, log *slog.Logger, catalog *core.Catalog, path string) error {
	plans, err := core.LoadPlansFile(path)
	if err != nil {
		return err
	}
	created, updated, err := catalog.Seed(ctx, plans)
	if err != nil {
		return fmt.Errorf("seed plans from %s: %w", path, err)
	}
	log.InfoContext(ctx, "plan catalog seeded",
		slog.String("file", path),
		logger.Count("created", created),
		logger.Count("updated", updated))
	return nil
}

func registerJobs(s *scheduler.Scheduler, svc core.Service, cfg core.Config) error {
	sweep := func(fn func(context.Context) (core.SweepResult, error)) scheduler.JobFunc {
		return func(ctx context.Context) error {
			_, err := fn(ctx)
			return err
		}
	}
	return errors.Join(
		s.AddJob("subscription.expire", scheduler.EveryInterval(cfg.ExpirationInterval),
			sweep(svc.CheckExpiredSubscriptions), scheduler.WithRunOnStart()),
		s.AddJob("subscription.expiry_warning", scheduler.DailyAt(cfg.WarningHour, 0),
			sweep(svc.SendExpiryWarnings)),
		s.AddJob("subscription.reconcile", scheduler.DailyAt(cfg.ReconcileHour, 0),
			sweep(svc.ReconcileAll)),
	)
}

// logEvents records every published event at debug level, the in-process
// counterpart of the Redis channel.
func logEvents(ctx context.Context, log *slog.Logger, b broadcast.Broadcaster[core.Event]) error {
	sub := b.Subscribe(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-sub.Receive():
			if !ok {
				return nil
			}
			log.DebugContext(ctx, "subscription event",
				logger.Event(msg.Topic),
				logger.StoreID(msg.Data.StoreID),
				logger.SubscriptionID(msg.Data.SubscriptionID))
		}
	}
}
