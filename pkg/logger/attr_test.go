package logger_test

import (
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seeom6/Daraa-Hub-sub000/pkg/logger"
)

func TestError(t *testing.T) {
	t.Parallel()

	err := errors.New("boom")
	attr := logger.Error(err)
	require.Equal(t, "error", attr.Key)
	assert.Equal(t, err, attr.Value.Any())

	empty := logger.Error(nil)
	assert.True(t, empty.Equal(slog.Attr{}))
}

func TestIdentifierAttrs(t *testing.T) {
	t.Parallel()

	id := uuid.New()
	tests := []struct {
		name string
		attr slog.Attr
		key  string
	}{
		{"store", logger.StoreID(id), "store_id"},
		{"subscription", logger.SubscriptionID(id), "subscription_id"},
		{"plan", logger.PlanID(id), "plan_id"},
		{"actor", logger.ActorID(id), "actor_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.key, tt.attr.Key)
			assert.Equal(t, id, tt.attr.Value.Any())
		})
	}

	assert.True(t, logger.StoreID(nil).Equal(slog.Attr{}))
}

func TestScalarAttrs(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "component", logger.Component("sweep").Key)
	assert.Equal(t, "event", logger.Event("subscription.expired").Key)
	assert.Equal(t, "job", logger.Job("expire").Key)

	c := logger.Count("failed", 3)
	assert.Equal(t, "failed", c.Key)
	assert.Equal(t, int64(3), c.Value.Int64())

	d := logger.Duration(2 * time.Second)
	assert.Equal(t, "duration", d.Key)
	assert.Equal(t, 2*time.Second, d.Value.Duration())
}
