// Package scheduler runs periodic jobs inside the service process.
//
//	s := scheduler.New(
//		scheduler.WithLogger(log),
//		scheduler.WithLocation(loc),
//		scheduler.WithLocker(locker),
//	)
//	_ = s.AddJob("subscription.expire", scheduler.Hourly(), func(ctx context.Context) error {
//		_, err := svc.CheckExpiredSubscriptions(ctx)
//		return err
//	}, scheduler.WithRunOnStart())
//
//	g.Go(s.Run(ctx))
//
// A job never overlaps with itself in one process. WithLocker extends that
// to every process sharing the lock backend. Job errors and panics are
// logged; they never stop the scheduler.
package scheduler
