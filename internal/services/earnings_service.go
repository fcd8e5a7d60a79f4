package services

import (
	"context"
	"time"

	"github.com/saske7779/Web-app-granja/internal/models"
	"github.com/saske7779/Web-app-granja/internal/storage"
)

// EarningsService runs the periodic distribution: for every non-banned
// account, asset yield plus cached referral income is credited as one atomic
// credit+record unit.
type EarningsService struct {
	store storage.Store
	cache *SnapshotCache
}

func NewEarningsService(store storage.Store, cache *SnapshotCache) *EarningsService {
	return &EarningsService{
		store: store,
		cache: cache,
	}
}

// PeriodKey names the distribution period a moment belongs to.
func PeriodKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Distribute sweeps all non-banned accounts for the given period. The period
// is claimed in the run ledger first, so a duplicate trigger within the same
// period is a no-op. A failure on one account is logged and the sweep
// continues.
func (s *EarningsService) Distribute(ctx context.Context, period string) (int, error) {
	claimed, err := s.store.BeginDistribution(ctx, period)
	if err != nil {
		return 0, err
	}
	if !claimed {
		log.Warn("Earnings already distributed for period ", period)
		return 0, nil
	}

	ids, err := s.store.AccountIds(ctx, false)
	if err != nil {
		return 0, err
	}

	credited := 0
	for _, id := range ids {
		amount, err := s.distributeOne(ctx, id)
		if err != nil {
			log.Error("Failed to distribute earnings for account ", id, ": ", err)
			continue
		}
		if amount > 0 {
			credited++
			s.cache.Invalidate(ctx, id)
		}
	}
	return credited, nil
}

func (s *EarningsService) distributeOne(ctx context.Context, accountId int64) (float64, error) {
	var amount float64
	err := s.store.Atomic(ctx, func(tx storage.Tx) error {
		acc, err := tx.LockAccount(ctx, accountId)
		if err != nil {
			return err
		}
		if acc.Banned {
			return nil
		}

		quantities, err := tx.ActiveQuantities(ctx, accountId, time.Now())
		if err != nil {
			return err
		}
		amount = YieldFor(quantities) + acc.DailyReferralIncome
		if amount <= 0 {
			return nil
		}

		acc.Balance += amount
		if err := tx.UpdateAccount(ctx, acc); err != nil {
			return err
		}
		return tx.InsertTransaction(ctx, &models.Transaction{
			AccountId: accountId,
			Amount:    amount,
			Kind:      models.TxEarning,
			Status:    models.StatusApproved,
		})
	})
	if err != nil {
		return 0, err
	}
	return amount, nil
}
