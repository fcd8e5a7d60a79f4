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

func TestPeriodKey(t *testing.T) {
	at := time.Date(2025, 3, 7, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*3600))
	assert.Equal(t, "2025-03-08", PeriodKey(at))
}

func TestDistribute(t *testing.T) {
	ctx := context.Background()

	t.Run("credits yield plus referral income", func(t *testing.T) {
		env := newTestEnv()
		acc := createAccount(t, env, 100, 50)

		_, err := env.ledger.Purchase(ctx, acc.Id.Int64, "egg", 2)
		require.NoError(t, err)
		_, err = env.ledger.Purchase(ctx, acc.Id.Int64, "chicken", 1)
		require.NoError(t, err)

		for i := int64(0); i < 20; i++ {
			referred := createAccount(t, env, 200+i, 0)
			require.NoError(t, env.referrals.RecordReferral(ctx, acc.Id.Int64, referred.Id.Int64))
		}

		credited, err := env.earnings.Distribute(ctx, "2025-03-08")
		require.NoError(t, err)
		assert.Equal(t, 1, credited)

		// 2 eggs + 1 chicken + 20 referrals: 0.43 + 1.30 + 0.02
		assert.InDelta(t, 15+1.75, accountBalance(t, env, acc.Id.Int64), 1e-9)

		history, err := env.ledger.ListTransactions(ctx, acc.Id.Int64, 1)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, models.TxEarning, history[0].Kind)
		assert.Equal(t, models.StatusApproved, history[0].Status)
	})

	t.Run("a period runs once", func(t *testing.T) {
		env := newTestEnv()
		acc := createAccount(t, env, 100, 50)
		_, err := env.ledger.Purchase(ctx, acc.Id.Int64, "egg", 1)
		require.NoError(t, err)

		credited, err := env.earnings.Distribute(ctx, "2025-03-08")
		require.NoError(t, err)
		assert.Equal(t, 1, credited)
		after := accountBalance(t, env, acc.Id.Int64)

		credited, err = env.earnings.Distribute(ctx, "2025-03-08")
		require.NoError(t, err)
		assert.Zero(t, credited)
		assert.Equal(t, after, accountBalance(t, env, acc.Id.Int64))

		// the next period credits again
		credited, err = env.earnings.Distribute(ctx, "2025-03-09")
		require.NoError(t, err)
		assert.Equal(t, 1, credited)
	})

	t.Run("banned accounts are skipped", func(t *testing.T) {
		env := newTestEnv()
		acc := createAccount(t, env, 100, 50)
		_, err := env.ledger.Purchase(ctx, acc.Id.Int64, "egg", 1)
		require.NoError(t, err)
		require.NoError(t, env.accounts.Ban(ctx, acc.Id.Int64))

		credited, err := env.earnings.Distribute(ctx, "2025-03-08")
		require.NoError(t, err)
		assert.Zero(t, credited)
	})

	t.Run("expired lots produce nothing", func(t *testing.T) {
		env := newTestEnv()
		acc := createAccount(t, env, 100, 0)

		require.NoError(t, env.store.Atomic(ctx, func(tx storage.Tx) error {
			return tx.InsertLot(ctx, &models.AssetLot{
				AccountId:   acc.Id.Int64,
				Type:        models.AssetEgg,
				Quantity:    5,
				PurchasedAt: time.Now().AddDate(0, 0, -30),
				ExpiresAt:   time.Now().AddDate(0, 0, -2),
			})
		}))

		credited, err := env.earnings.Distribute(ctx, "2025-03-08")
		require.NoError(t, err)
		assert.Zero(t, credited)
		assert.Zero(t, accountBalance(t, env, acc.Id.Int64))
	})

	t.Run("accounts without income are left alone", func(t *testing.T) {
		env := newTestEnv()
		acc := createAccount(t, env, 100, 0)

		credited, err := env.earnings.Distribute(ctx, "2025-03-08")
		require.NoError(t, err)
		assert.Zero(t, credited)

		history, err := env.ledger.ListTransactions(ctx, acc.Id.Int64, 0)
		require.NoError(t, err)
		assert.Empty(t, history)
	})
}
