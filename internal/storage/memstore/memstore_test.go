package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/saske7779/Web-app-granja/internal/models"
	"github.com/saske7779/Web-app-granja/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicRollback(t *testing.T) {
	ctx := context.Background()
	s := New()

	acc := &models.Account{TelegramId: 1, ReferralCode: "AAAAAAAA", Balance: 10}
	require.NoError(t, s.CreateAccount(ctx, acc))

	boom := errors.New("boom")
	err := s.Atomic(ctx, func(tx storage.Tx) error {
		locked, err := tx.LockAccount(ctx, acc.Id.Int64)
		require.NoError(t, err)
		locked.Balance = 999
		require.NoError(t, tx.UpdateAccount(ctx, locked))
		require.NoError(t, tx.InsertLot(ctx, &models.AssetLot{
			AccountId: acc.Id.Int64,
			Type:      models.AssetEgg,
			Quantity:  1,
			ExpiresAt: time.Now().AddDate(0, 0, 28),
		}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.AccountById(ctx, acc.Id.Int64)
	require.NoError(t, err)
	assert.Equal(t, 10.0, got.Balance)

	quantities, err := s.ActiveQuantities(ctx, acc.Id.Int64, time.Now())
	require.NoError(t, err)
	assert.Zero(t, quantities[models.AssetEgg])
}

func TestCreateAccountUniqueTelegramId(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.CreateAccount(ctx, &models.Account{TelegramId: 1, ReferralCode: "AAAAAAAA"}))
	err := s.CreateAccount(ctx, &models.Account{TelegramId: 1, ReferralCode: "BBBBBBBB"})
	assert.ErrorIs(t, err, models.ErrAccountExists)
}

func TestDecrementLotQuantityOldestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()

	acc := &models.Account{TelegramId: 1, ReferralCode: "AAAAAAAA"}
	require.NoError(t, s.CreateAccount(ctx, acc))

	now := time.Now()
	require.NoError(t, s.Atomic(ctx, func(tx storage.Tx) error {
		if err := tx.InsertLot(ctx, &models.AssetLot{
			AccountId:   acc.Id.Int64,
			Type:        models.AssetEgg,
			Quantity:    2,
			PurchasedAt: now.AddDate(0, 0, -2),
			ExpiresAt:   now.AddDate(0, 0, 26),
		}); err != nil {
			return err
		}
		return tx.InsertLot(ctx, &models.AssetLot{
			AccountId:   acc.Id.Int64,
			Type:        models.AssetEgg,
			Quantity:    3,
			PurchasedAt: now,
			ExpiresAt:   now.AddDate(0, 0, 28),
		})
	}))

	require.NoError(t, s.Atomic(ctx, func(tx storage.Tx) error {
		return tx.DecrementLotQuantity(ctx, acc.Id.Int64, models.AssetEgg, 3, now)
	}))

	quantities, err := s.ActiveQuantities(ctx, acc.Id.Int64, now)
	require.NoError(t, err)
	assert.Equal(t, 2, quantities[models.AssetEgg])

	err = s.Atomic(ctx, func(tx storage.Tx) error {
		return tx.DecrementLotQuantity(ctx, acc.Id.Int64, models.AssetEgg, 5, now)
	})
	assert.ErrorIs(t, err, models.ErrInsufficientQuantity)
}
