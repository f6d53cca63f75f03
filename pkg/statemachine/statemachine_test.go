package statemachine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seeom6/Daraa-Hub-sub000/pkg/statemachine"
)

type state string
type event string

type doc struct {
	log []string
}

func newTable() *statemachine.Table[state, event, *doc] {
	record := func(_ context.Context, from, to state, d *doc) error {
		d.log = append(d.log, string(from)+"->"+string(to))
		return nil
	}
	return statemachine.NewTable[state, event, *doc]().
		Add("draft", "publish", "published", record).
		Add("draft", "discard", "discarded").
		Add("published", "archive", "archived", record)
}

func TestTable_Fire(t *testing.T) {
	t.Parallel()
	table := newTable()

	t.Run("valid transition runs actions", func(t *testing.T) {
		d := &doc{}
		next, err := table.Fire(context.Background(), "draft", "publish", d)
		require.NoError(t, err)
		assert.Equal(t, state("published"), next)
		assert.Equal(t, []string{"draft->published"}, d.log)
	})

	t.Run("unknown event", func(t *testing.T) {
		next, err := table.Fire(context.Background(), "published", "publish", &doc{})
		require.Error(t, err)
		assert.Equal(t, state("published"), next)
		assert.True(t, statemachine.IsNoTransitionAvailableError(err))
		assert.ErrorIs(t, err, statemachine.ErrTransitionNotAllowed)
	})

	t.Run("action error aborts", func(t *testing.T) {
		boom := errors.New("boom")
		tbl := statemachine.NewTable[state, event, *doc]().
			Add("a", "go", "b", func(context.Context, state, state, *doc) error { return boom })
		next, err := tbl.Fire(context.Background(), "a", "go", &doc{})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, state("a"), next)
	})
}

func TestTable_Introspection(t *testing.T) {
	t.Parallel()
	table := newTable()

	assert.True(t, table.Can("draft", "discard"))
	assert.False(t, table.Can("archived", "publish"))
	assert.Equal(t, []event{"discard", "publish"}, table.Events("draft"))
	assert.True(t, table.Terminal("archived"))
	assert.False(t, table.Terminal("draft"))
}
