// Package httpserver runs the operational HTTP endpoint of a process:
// liveness and readiness probes plus whatever the caller mounts next to
// them.
//
//	r := httpserver.NewOpsRouter(log, 2*time.Second,
//		httpserver.Check{Name: "mongo", Fn: mongo.Healthcheck(client)},
//		httpserver.Check{Name: "redis", Fn: redis.Healthcheck(rdb)},
//	)
//	srv := httpserver.NewFromConfig(cfg, httpserver.WithLogger(log))
//	err := srv.Run(ctx, r)
//
// Run returns when ctx is cancelled, after a graceful shutdown bounded by
// the shutdown timeout. Signal handling belongs to the caller. Listen
// failures are wrapped with ErrStart and shutdown failures with ErrShutdown.
package httpserver
