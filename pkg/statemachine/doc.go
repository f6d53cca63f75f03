// Package statemachine provides a generic, stateless transition table for
// entities whose state is persisted elsewhere.
//
//	type status string
//	type event string
//
//	table := statemachine.NewTable[status, event, *Order]().
//		Add("pending", "pay", "paid", markPaid).
//		Add("pending", "cancel", "cancelled")
//
//	next, err := table.Fire(ctx, order.Status, "pay", order)
//	if statemachine.IsNoTransitionAvailableError(err) {
//		// reject the request
//	}
//
// Actions run in registration order before the new state is returned; an
// action error aborts the transition.
package statemachine
