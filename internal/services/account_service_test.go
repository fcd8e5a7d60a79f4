package services

import (
	"context"
	"testing"

	"github.com/saske7779/Web-app-granja/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("first contact creates the account with a starter egg", func(t *testing.T) {
		env := newTestEnv()

		acc, created, err := env.accounts.Register(ctx, 500, "newbie", "New", "Bie", "")
		require.NoError(t, err)
		assert.True(t, created)
		assert.Len(t, acc.ReferralCode, 8)
		assert.Zero(t, acc.Balance)

		quantities, err := env.lots.ActiveQuantities(ctx, acc.Id.Int64)
		require.NoError(t, err)
		assert.Equal(t, 1, quantities[models.AssetEgg])
	})

	t.Run("repeat contact returns the existing account", func(t *testing.T) {
		env := newTestEnv()

		first, created, err := env.accounts.Register(ctx, 500, "newbie", "New", "Bie", "")
		require.NoError(t, err)
		require.True(t, created)

		second, created, err := env.accounts.Register(ctx, 500, "newbie", "New", "Bie", "")
		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, first.Id.Int64, second.Id.Int64)

		// no second starter egg
		quantities, err := env.lots.ActiveQuantities(ctx, second.Id.Int64)
		require.NoError(t, err)
		assert.Equal(t, 1, quantities[models.AssetEgg])
	})

	t.Run("referral code attributes the referral", func(t *testing.T) {
		env := newTestEnv()
		referrer := createAccount(t, env, 100, 0)

		acc, created, err := env.accounts.Register(ctx, 500, "newbie", "New", "Bie", referrer.ReferralCode)
		require.NoError(t, err)
		require.True(t, created)

		got, err := env.store.AccountById(ctx, acc.Id.Int64)
		require.NoError(t, err)
		require.True(t, got.ReferredBy.Valid)
		assert.Equal(t, referrer.Id.Int64, got.ReferredBy.Int64)

		count, err := env.referrals.Count(ctx, referrer.Id.Int64)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("unknown referral code is ignored", func(t *testing.T) {
		env := newTestEnv()

		acc, _, err := env.accounts.Register(ctx, 500, "newbie", "New", "Bie", "NO-SUCH1")
		require.NoError(t, err)

		got, err := env.store.AccountById(ctx, acc.Id.Int64)
		require.NoError(t, err)
		assert.False(t, got.ReferredBy.Valid)
	})
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	acc := createAccount(t, env, 100, 50)

	_, err := env.ledger.Purchase(ctx, acc.Id.Int64, "egg", 2)
	require.NoError(t, err)
	_, err = env.ledger.Purchase(ctx, acc.Id.Int64, "chicken", 1)
	require.NoError(t, err)

	snap, err := env.accounts.Snapshot(ctx, acc.Id.Int64)
	require.NoError(t, err)
	assert.Equal(t, acc.Id.Int64, snap.AccountId)
	assert.Equal(t, 15.0, snap.Balance)
	assert.Equal(t, 2, snap.Quantities[models.AssetEgg])
	assert.Equal(t, 1, snap.Quantities[models.AssetChicken])
	assert.InDelta(t, 1.73, snap.DailyIncome, 1e-9)
}

func TestBan(t *testing.T) {
	ctx := context.Background()

	t.Run("wipes balance, lots and edges", func(t *testing.T) {
		env := newTestEnv()
		referrer := createAccount(t, env, 100, 0)
		acc := createAccount(t, env, 200, 100)
		require.NoError(t, env.referrals.RecordReferral(ctx, referrer.Id.Int64, acc.Id.Int64))
		_, err := env.ledger.Purchase(ctx, acc.Id.Int64, "egg", 2)
		require.NoError(t, err)

		require.NoError(t, env.accounts.Ban(ctx, acc.Id.Int64))

		got, err := env.store.AccountById(ctx, acc.Id.Int64)
		require.NoError(t, err)
		assert.True(t, got.Banned)
		assert.Zero(t, got.Balance)
		assert.Zero(t, got.DailyReferralIncome)

		quantities, err := env.lots.ActiveQuantities(ctx, acc.Id.Int64)
		require.NoError(t, err)
		assert.Zero(t, quantities[models.AssetEgg])

		// the referrer's edge is gone and its cached income repaired
		count, err := env.referrals.Count(ctx, referrer.Id.Int64)
		require.NoError(t, err)
		assert.Zero(t, count)

		ref, err := env.store.AccountById(ctx, referrer.Id.Int64)
		require.NoError(t, err)
		assert.Zero(t, ref.DailyReferralIncome)
	})

	t.Run("double ban refused", func(t *testing.T) {
		env := newTestEnv()
		acc := createAccount(t, env, 100, 0)

		require.NoError(t, env.accounts.Ban(ctx, acc.Id.Int64))
		err := env.accounts.Ban(ctx, acc.Id.Int64)
		assert.ErrorIs(t, err, models.ErrAlreadyBanned)
	})

	t.Run("banned account has no snapshot", func(t *testing.T) {
		env := newTestEnv()
		acc := createAccount(t, env, 100, 0)
		require.NoError(t, env.accounts.Ban(ctx, acc.Id.Int64))

		_, err := env.accounts.Snapshot(ctx, acc.Id.Int64)
		assert.ErrorIs(t, err, models.ErrAccountBanned)
	})
}

func TestUnban(t *testing.T) {
	ctx := context.Background()

	t.Run("fresh start with a new code and one egg", func(t *testing.T) {
		env := newTestEnv()
		referrer := createAccount(t, env, 100, 0)
		acc := createAccount(t, env, 200, 100)
		require.NoError(t, env.referrals.RecordReferral(ctx, referrer.Id.Int64, acc.Id.Int64))
		oldCode := acc.ReferralCode

		require.NoError(t, env.accounts.Ban(ctx, acc.Id.Int64))
		require.NoError(t, env.accounts.Unban(ctx, acc.Id.Int64))

		got, err := env.store.AccountById(ctx, acc.Id.Int64)
		require.NoError(t, err)
		assert.False(t, got.Banned)
		assert.Zero(t, got.Balance)
		assert.False(t, got.ReferredBy.Valid)
		assert.NotEqual(t, oldCode, got.ReferralCode)
		assert.Len(t, got.ReferralCode, 8)

		quantities, err := env.lots.ActiveQuantities(ctx, acc.Id.Int64)
		require.NoError(t, err)
		assert.Equal(t, 1, quantities[models.AssetEgg])
	})

	t.Run("active account refused", func(t *testing.T) {
		env := newTestEnv()
		acc := createAccount(t, env, 100, 0)

		err := env.accounts.Unban(ctx, acc.Id.Int64)
		assert.ErrorIs(t, err, models.ErrNotBanned)
	})
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv()
	a := createAccount(t, env, 100, 0)
	createAccount(t, env, 200, 0)

	txId, err := env.ledger.RequestDeposit(ctx, a.Id.Int64, 40, "TRC20")
	require.NoError(t, err)
	require.NoError(t, env.ledger.ApproveDeposit(ctx, txId))
	require.NoError(t, env.accounts.Ban(ctx, a.Id.Int64))

	stats, err := env.accounts.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Accounts)
	assert.Equal(t, 1, stats.Active)
	assert.Equal(t, 1, stats.Banned)
	assert.Equal(t, 40.0, stats.ApprovedDeposits)
}
