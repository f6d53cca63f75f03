package subscription

import (
	"context"
	"errors"

	"github.com/Seeom6/Daraa-Hub-sub000/pkg/statemachine"
)

type lifecycleEvent string

const (
	eventActivate lifecycleEvent = "activate"
	eventExpire   lifecycleEvent = "expire"
	eventCancel   lifecycleEvent = "cancel"
)

// lifecycle lists every allowed status change. EXPIRED and CANCELLED are terminal.
var lifecycle = statemachine.NewTable[Status, lifecycleEvent, *Subscription]().
	Add(StatusPendingPayment, eventActivate, StatusActive).
	Add(StatusPendingPayment, eventCancel, StatusCancelled).
	Add(StatusActive, eventExpire, StatusExpired).
	Add(StatusActive, eventCancel, StatusCancelled)

// transition moves sub to the status reached by ev.
func transition(ctx context.Context, sub *Subscription, ev lifecycleEvent) error {
	next, err := lifecycle.Fire(ctx, sub.Status, ev, sub)
	if err != nil {
		return errors.Join(ErrInvalidTransition, err)
	}
	sub.Status = next
	return nil
}

// Terminal reports whether no further status change is possible.
func (s Status) Terminal() bool {
	return lifecycle.Terminal(s)
}
