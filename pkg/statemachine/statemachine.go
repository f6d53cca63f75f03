package statemachine

import (
	"context"
	"slices"
	"sync"
)

// Action executes side effects of a transition on the entity being moved.
// Returning an error prevents the transition.
type Action[S ~string, D any] func(ctx context.Context, from, to S, data D) error

type transition[S ~string, D any] struct {
	to      S
	actions []Action[S, D]
}

// Table is a stateless transition table. It holds no current state: the
// caller passes the entity's state to Fire and persists the result, which
// lets one table serve every record of a collection.
type Table[S ~string, E ~string, D any] struct {
	mu          sync.RWMutex
	transitions map[S]map[E]transition[S, D]
}

func NewTable[S ~string, E ~string, D any]() *Table[S, E, D] {
	return &Table[S, E, D]{transitions: make(map[S]map[E]transition[S, D])}
}

// Add registers from --event--> to. A second registration of the same
// from/event pair replaces the first.
func (t *Table[S, E, D]) Add(from S, event E, to S, actions ...Action[S, D]) *Table[S, E, D] {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.transitions[from]; !ok {
		t.transitions[from] = make(map[E]transition[S, D])
	}
	t.transitions[from][event] = transition[S, D]{to: to, actions: actions}
	return t
}

// Fire resolves the transition for event from state from, runs its actions
// in order and returns the target state.
func (t *Table[S, E, D]) Fire(ctx context.Context, from S, event E, data D) (S, error) {
	t.mu.RLock()
	tr, ok := t.transitions[from][event]
	t.mu.RUnlock()
	if !ok {
		return from, &ErrNoTransitionAvailable{StateName: string(from), EventName: string(event)}
	}

	for _, action := range tr.actions {
		if err := action(ctx, from, tr.to, data); err != nil {
			return from, err
		}
	}
	return tr.to, nil
}

// Can reports whether event is accepted in state from.
func (t *Table[S, E, D]) Can(from S, event E) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.transitions[from][event]
	return ok
}

// Events lists the events accepted in state from, sorted.
func (t *Table[S, E, D]) Events(from S) []E {
	t.mu.RLock()
	defer t.mu.RUnlock()

	events := make([]E, 0, len(t.transitions[from]))
	for e := range t.transitions[from] {
		events = append(events, e)
	}
	slices.Sort(events)
	return events
}

// Terminal reports whether no event leaves state s.
func (t *Table[S, E, D]) Terminal(s S) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.transitions[s]) == 0
}
