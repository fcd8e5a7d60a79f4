package services

import (
	"context"

	"github.com/saske7779/Web-app-granja/internal/models"
	"github.com/saske7779/Web-app-granja/internal/storage"
)

// ReferralService owns referrer/referred edges and the cached daily referral
// income on each account.
type ReferralService struct {
	store storage.Store
	cache *SnapshotCache
}

func NewReferralService(store storage.Store, cache *SnapshotCache) *ReferralService {
	return &ReferralService{
		store: store,
		cache: cache,
	}
}

// RecordReferral links the referred account to its referrer, creates the
// edge and recomputes the referrer's cached daily income. An account can be
// referred at most once.
func (s *ReferralService) RecordReferral(ctx context.Context, referrerId, referredId int64) error {
	if referrerId == referredId {
		return models.ErrDuplicateReferral
	}

	err := s.store.Atomic(ctx, func(tx storage.Tx) error {
		referred, err := tx.LockAccount(ctx, referredId)
		if err != nil {
			return err
		}
		if referred.ReferredBy.Valid {
			return models.ErrDuplicateReferral
		}
		exists, err := tx.HasReferralEdgeFor(ctx, referredId)
		if err != nil {
			return err
		}
		if exists {
			return models.ErrDuplicateReferral
		}

		if err := tx.InsertReferralEdge(ctx, &models.ReferralEdge{
			ReferrerId: referrerId,
			ReferredId: referredId,
		}); err != nil {
			return err
		}

		referred.ReferredBy.Int64 = referrerId
		referred.ReferredBy.Valid = true
		if err := tx.UpdateAccount(ctx, referred); err != nil {
			return err
		}

		referrer, err := tx.LockAccount(ctx, referrerId)
		if err != nil {
			return err
		}
		count, err := tx.ReferralCount(ctx, referrerId)
		if err != nil {
			return err
		}
		referrer.DailyReferralIncome = DailyReferralIncome(count)
		return tx.UpdateAccount(ctx, referrer)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, referrerId, referredId)
	return nil
}

// Count returns how many accounts the given account has referred.
func (s *ReferralService) Count(ctx context.Context, referrerId int64) (int, error) {
	return s.store.ReferralCount(ctx, referrerId)
}

// Earnings returns the cumulative bonus credited from all referred accounts.
func (s *ReferralService) Earnings(ctx context.Context, referrerId int64) (float64, error) {
	return s.store.ReferralEarnings(ctx, referrerId)
}

// RefreshAll recomputes the cached daily referral income of every non-banned
// account from the live edge counts. A failure on one account is logged and
// the sweep continues.
func (s *ReferralService) RefreshAll(ctx context.Context) (int, error) {
	ids, err := s.store.AccountIds(ctx, false)
	if err != nil {
		return 0, err
	}

	updated := 0
	for _, id := range ids {
		changed, err := s.refreshOne(ctx, id)
		if err != nil {
			log.Error("Failed to refresh referral income for account ", id, ": ", err)
			continue
		}
		if changed {
			updated++
			s.cache.Invalidate(ctx, id)
		}
	}
	return updated, nil
}

func (s *ReferralService) refreshOne(ctx context.Context, accountId int64) (bool, error) {
	changed := false
	err := s.store.Atomic(ctx, func(tx storage.Tx) error {
		acc, err := tx.LockAccount(ctx, accountId)
		if err != nil {
			return err
		}
		if acc.Banned {
			return nil
		}
		count, err := tx.ReferralCount(ctx, accountId)
		if err != nil {
			return err
		}
		income := DailyReferralIncome(count)
		if income == acc.DailyReferralIncome {
			return nil
		}
		acc.DailyReferralIncome = income
		changed = true
		return tx.UpdateAccount(ctx, acc)
	})
	return changed, err
}
