package statemachine

import (
	"errors"
	"fmt"
)

// ErrTransitionNotAllowed is matched by every ErrNoTransitionAvailable.
var ErrTransitionNotAllowed = errors.New("transition not allowed")

// ErrNoTransitionAvailable indicates no transition exists for the given state/event combination.
type ErrNoTransitionAvailable struct {
	StateName string
	EventName string
}

func (e *ErrNoTransitionAvailable) Error() string {
	return fmt.Sprintf("no transition available from state '%s' for event '%s'", e.StateName, e.EventName)
}

func (e *ErrNoTransitionAvailable) Unwrap() error {
	return ErrTransitionNotAllowed
}

func IsNoTransitionAvailableError(err error) bool {
	var e *ErrNoTransitionAvailable
	return errors.As(err, &e)
}
