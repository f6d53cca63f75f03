package feature_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Seeom6/Daraa-Hub-sub000/pkg/feature"
)

func TestMemoryProvider(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	p, err := feature.NewMemoryProvider(feature.Flag{Name: "subscriptions", Enabled: true, Value: 3})
	require.NoError(t, err)

	t.Run("enabled flag", func(t *testing.T) {
		on, err := p.IsEnabled(ctx, "subscriptions")
		require.NoError(t, err)
		assert.True(t, on)

		f, err := p.GetFlag(ctx, "subscriptions")
		require.NoError(t, err)
		assert.Equal(t, 3, f.Value)
		assert.False(t, f.UpdatedAt.IsZero())
	})

	t.Run("missing flag", func(t *testing.T) {
		on, err := p.IsEnabled(ctx, "missing")
		assert.ErrorIs(t, err, feature.ErrFlagNotFound)
		assert.False(t, on)
	})

	t.Run("set replaces and returned copy is detached", func(t *testing.T) {
		require.NoError(t, p.SetFlag(ctx, &feature.Flag{Name: "beta"}))
		f, err := p.GetFlag(ctx, "beta")
		require.NoError(t, err)
		f.Enabled = true

		on, err := p.IsEnabled(ctx, "beta")
		require.NoError(t, err)
		assert.False(t, on)
	})

	t.Run("invalid flags", func(t *testing.T) {
		assert.ErrorIs(t, p.SetFlag(ctx, nil), feature.ErrInvalidFlag)
		assert.ErrorIs(t, p.SetFlag(ctx, &feature.Flag{}), feature.ErrInvalidFlag)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, p.SetFlag(ctx, &feature.Flag{Name: "tmp"}))
		require.NoError(t, p.DeleteFlag(ctx, "tmp"))
		assert.ErrorIs(t, p.DeleteFlag(ctx, "tmp"), feature.ErrFlagNotFound)
	})
}
