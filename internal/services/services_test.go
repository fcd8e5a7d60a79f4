package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/saske7779/Web-app-granja/internal/models"
	"github.com/saske7779/Web-app-granja/internal/storage/memstore"
	"github.com/stretchr/testify/require"
)

// testEnv wires all services against the in-memory store, no notifier and a
// disabled snapshot cache.
type testEnv struct {
	store     *memstore.Store
	referrals *ReferralService
	accounts  *AccountService
	ledger    *LedgerService
	lots      *LotService
	earnings  *EarningsService
}

func newTestEnv() *testEnv {
	store := memstore.New()
	cache := NewSnapshotCache(nil)
	referrals := NewReferralService(store, cache)
	return &testEnv{
		store:     store,
		referrals: referrals,
		accounts:  NewAccountService(store, referrals, nil, cache),
		ledger:    NewLedgerService(store, nil, cache),
		lots:      NewLotService(store, cache),
		earnings:  NewEarningsService(store, cache),
	}
}

func createAccount(t *testing.T, env *testEnv, telegramId int64, balance float64) *models.Account {
	t.Helper()
	acc := &models.Account{
		TelegramId:   telegramId,
		Username:     fmt.Sprintf("user%d", telegramId),
		FirstName:    "Test",
		Balance:      balance,
		ReferralCode: fmt.Sprintf("CODE%04d", telegramId),
	}
	require.NoError(t, env.store.CreateAccount(context.Background(), acc))
	return acc
}

func accountBalance(t *testing.T, env *testEnv, accountId int64) float64 {
	t.Helper()
	acc, err := env.store.AccountById(context.Background(), accountId)
	require.NoError(t, err)
	return acc.Balance
}
