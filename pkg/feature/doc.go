// Package feature provides named on/off flags backed by pluggable stores.
//
// Provider is the storage contract; MemoryProvider is the in-process
// implementation. A missing flag is reported with ErrFlagNotFound so callers
// can choose their own default:
//
//	on, err := provider.IsEnabled(ctx, "subscriptions")
//	if errors.Is(err, feature.ErrFlagNotFound) {
//		on = false
//	}
package feature
