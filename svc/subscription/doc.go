// Package subscription provides the MongoDB and Redis adapters of the
// store subscription engine in pkg/subscription.
//
// The repositories map the engine's types onto four collections:
// subscription_plans, store_subscriptions, store_profiles (subscription
// fields only) and system_settings. Call EnsureIndexes at start-up; the
// partial unique index on ACTIVE subscriptions per store is the storage
// side of the single-active-subscription rule.
//
//	db := client.Database(cfg.Database)
//	svc := core.NewService(
//		subscription.NewPlanRepository(db),
//		subscription.NewSubscriptionRepository(db),
//		subscription.NewStoreRepository(db),
//		core.NewFlagSettings(subscription.NewFlagStore(db)),
//		core.WithTxRunner(mongo.NewTransactor(client, cfg.Transactions)),
//		core.WithPublisher(subscription.NewRedisPublisher(rdb, "")),
//	)
//
// Usage counting uses conditional $inc / $push updates on the subscription
// document, so concurrent publishes never overwrite each other.
package subscription
