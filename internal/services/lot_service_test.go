package services

import (
	"context"
	"testing"
	"time"

	"github.com/saske7779/Web-app-granja/internal/models"
	"github.com/saske7779/Web-app-granja/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrant(t *testing.T) {
	ctx := context.Background()

	t.Run("adds active quantity", func(t *testing.T) {
		env := newTestEnv()
		acc := createAccount(t, env, 100, 0)

		require.NoError(t, env.lots.Grant(ctx, acc.Id.Int64, models.AssetHen, 3))

		quantities, err := env.lots.ActiveQuantities(ctx, acc.Id.Int64)
		require.NoError(t, err)
		assert.Equal(t, 3, quantities[models.AssetHen])
	})

	t.Run("respects the per-type cap", func(t *testing.T) {
		env := newTestEnv()
		acc := createAccount(t, env, 100, 0)

		require.NoError(t, env.lots.Grant(ctx, acc.Id.Int64, models.AssetEgg, 50))
		err := env.lots.Grant(ctx, acc.Id.Int64, models.AssetEgg, 1)
		assert.ErrorIs(t, err, models.ErrCapacityExceeded)
	})

	t.Run("invalid inputs", func(t *testing.T) {
		env := newTestEnv()
		acc := createAccount(t, env, 100, 0)

		assert.ErrorIs(t, env.lots.Grant(ctx, acc.Id.Int64, "cow", 1), models.ErrInvalidAssetType)
		assert.ErrorIs(t, env.lots.Grant(ctx, acc.Id.Int64, models.AssetEgg, 0), models.ErrInvalidQuantity)
	})

	t.Run("banned account refused", func(t *testing.T) {
		env := newTestEnv()
		acc := createAccount(t, env, 100, 0)
		require.NoError(t, env.accounts.Ban(ctx, acc.Id.Int64))

		err := env.lots.Grant(ctx, acc.Id.Int64, models.AssetEgg, 1)
		assert.ErrorIs(t, err, models.ErrAccountBanned)
	})
}

func TestRevoke(t *testing.T) {
	ctx := context.Background()

	t.Run("consumes across lots", func(t *testing.T) {
		env := newTestEnv()
		acc := createAccount(t, env, 100, 0)
		require.NoError(t, env.lots.Grant(ctx, acc.Id.Int64, models.AssetEgg, 2))
		require.NoError(t, env.lots.Grant(ctx, acc.Id.Int64, models.AssetEgg, 3))

		require.NoError(t, env.lots.Revoke(ctx, acc.Id.Int64, models.AssetEgg, 4))

		quantities, err := env.lots.ActiveQuantities(ctx, acc.Id.Int64)
		require.NoError(t, err)
		assert.Equal(t, 1, quantities[models.AssetEgg])
	})

	t.Run("never overdraws", func(t *testing.T) {
		env := newTestEnv()
		acc := createAccount(t, env, 100, 0)
		require.NoError(t, env.lots.Grant(ctx, acc.Id.Int64, models.AssetEgg, 2))

		err := env.lots.Revoke(ctx, acc.Id.Int64, models.AssetEgg, 3)
		assert.ErrorIs(t, err, models.ErrInsufficientQuantity)

		quantities, err := env.lots.ActiveQuantities(ctx, acc.Id.Int64)
		require.NoError(t, err)
		assert.Equal(t, 2, quantities[models.AssetEgg])
	})
}

func TestPurgeExpired(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	acc := createAccount(t, env, 100, 0)

	require.NoError(t, env.lots.Grant(ctx, acc.Id.Int64, models.AssetEgg, 2))
	require.NoError(t, env.store.Atomic(ctx, func(tx storage.Tx) error {
		return tx.InsertLot(ctx, &models.AssetLot{
			AccountId:   acc.Id.Int64,
			Type:        models.AssetTurkey,
			Quantity:    1,
			PurchasedAt: time.Now().AddDate(0, 0, -20),
			ExpiresAt:   time.Now().AddDate(0, 0, -10),
		})
	}))

	purged, err := env.lots.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	// running again finds nothing
	purged, err = env.lots.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, purged)

	quantities, err := env.lots.ActiveQuantities(ctx, acc.Id.Int64)
	require.NoError(t, err)
	assert.Equal(t, 2, quantities[models.AssetEgg])
}
