// Package logger builds *slog.Logger instances for the subscription engine
// and its worker process.
//
// New creates a logger configured by Option functions: output format (text
// or json), minimum level, static attributes and ContextExtractor callbacks
// that copy request-scoped values from context.Context into every record.
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "subscriptiond"),
//	    logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
//	)
//	logger.SetAsDefault(log)
//
//	log.InfoContext(ctx, "subscription activated",
//	    logger.StoreID(storeID),
//	    logger.SubscriptionID(sub.ID),
//	)
//
// Attribute helpers (Error, StoreID, SubscriptionID, PlanID, ActorID and so
// on) keep key names consistent across packages. The id helpers and Error
// return an empty attribute for nil input, so callers can pass optional
// values without a nil check.
package logger
