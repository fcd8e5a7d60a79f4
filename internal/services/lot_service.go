package services

import (
	"context"
	"time"

	"github.com/saske7779/Web-app-granja/internal/config"
	"github.com/saske7779/Web-app-granja/internal/models"
	"github.com/saske7779/Web-app-granja/internal/storage"
)

var log = config.InitLogger()

// LotService owns the asset lot lifecycle: operator grants and revocations,
// active quantity reads and the expiry reaper.
type LotService struct {
	store storage.Store
	cache *SnapshotCache
}

func NewLotService(store storage.Store, cache *SnapshotCache) *LotService {
	return &LotService{
		store: store,
		cache: cache,
	}
}

// addLot creates a lot after re-checking the per-type capacity against the
// current active sum, inside the caller's atomic unit.
func addLot(ctx context.Context, tx storage.Tx, accountId int64, t models.AssetType, quantity, durationDays int, now time.Time) error {
	quantities, err := tx.ActiveQuantities(ctx, accountId, now)
	if err != nil {
		return err
	}
	if quantities[t]+quantity > models.MaxActivePerType {
		return models.ErrCapacityExceeded
	}
	return tx.InsertLot(ctx, &models.AssetLot{
		AccountId:   accountId,
		Type:        t,
		Quantity:    quantity,
		PurchasedAt: now,
		ExpiresAt:   now.AddDate(0, 0, durationDays),
	})
}

// Grant adds quantity of an asset type to an account (operator action).
func (s *LotService) Grant(ctx context.Context, accountId int64, t models.AssetType, quantity int) error {
	if !models.ValidAssetType(t) {
		return models.ErrInvalidAssetType
	}
	if quantity < 1 {
		return models.ErrInvalidQuantity
	}
	spec, _ := models.SpecFor(t)

	err := s.store.Atomic(ctx, func(tx storage.Tx) error {
		acc, err := tx.LockAccount(ctx, accountId)
		if err != nil {
			return err
		}
		if acc.Banned {
			return models.ErrAccountBanned
		}
		return addLot(ctx, tx, accountId, t, quantity, spec.DurationDays, time.Now())
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, accountId)
	return nil
}

// Revoke removes quantity of an asset type from an account (operator action).
// The active sum is consumed oldest-first and never drops below zero.
func (s *LotService) Revoke(ctx context.Context, accountId int64, t models.AssetType, quantity int) error {
	if !models.ValidAssetType(t) {
		return models.ErrInvalidAssetType
	}
	if quantity < 1 {
		return models.ErrInvalidQuantity
	}

	err := s.store.Atomic(ctx, func(tx storage.Tx) error {
		acc, err := tx.LockAccount(ctx, accountId)
		if err != nil {
			return err
		}
		if acc.Banned {
			return models.ErrAccountBanned
		}
		now := time.Now()
		quantities, err := tx.ActiveQuantities(ctx, accountId, now)
		if err != nil {
			return err
		}
		if quantities[t] < quantity {
			return models.ErrInsufficientQuantity
		}
		return tx.DecrementLotQuantity(ctx, accountId, t, quantity, now)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, accountId)
	return nil
}

// ActiveQuantities returns the active quantity per asset type, zero for
// types without active lots.
func (s *LotService) ActiveQuantities(ctx context.Context, accountId int64) (map[models.AssetType]int, error) {
	return s.store.ActiveQuantities(ctx, accountId, time.Now())
}

// PurgeExpired removes lots whose expiry has passed. Idempotent.
func (s *LotService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.store.PurgeExpiredLots(ctx, time.Now())
}
