// Package subscription implements the store subscription engine of the
// marketplace: the plan catalog, activation, administrative changes, quota
// enforcement for product publishing, the daily usage ledger and the
// scheduled expiration, warning and reconciliation sweeps.
//
// Enforcement never reads plans. Activation copies the plan limits onto the
// store profile as a StoreSnapshot and every check reads that snapshot plus
// the ACTIVE subscription's ledger:
//
//	svc := subscription.NewService(repo, repo, repo, subscription.NewFlagSettings(flags),
//		subscription.WithLogger(log),
//		subscription.WithPublisher(publisher),
//		subscription.WithLocker(locker),
//	)
//
//	ctx, grant, err := svc.ConsumePublish(ctx, storeID, len(images))
//	if reason, ok := subscription.DenyReasonOf(err); ok {
//		// respond 403 with reason
//	}
//
// ConsumePublish checks and counts under a per-store lock. Check followed
// by RecordPublish is also available; concurrent callers on that path may
// overshoot the daily limit by the number of requests in flight.
//
// Missing system settings mean the engine is disabled: checks allow
// everything and the sweeps do nothing.
//
// Events are published after the change they describe is persisted. A
// failing publisher is logged and never fails the operation.
package subscription
