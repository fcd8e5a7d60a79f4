package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/saske7779/Web-app-granja/internal/models"
	"github.com/saske7779/Web-app-granja/internal/storage"
	"github.com/saske7779/Web-app-granja/internal/util"
)

const (
	referralCodeLength   = 8
	referralCodeAttempts = 5
	starterEggQuantity   = 1
)

// AccountService owns registration, the account snapshot read model and the
// ban/unban lifecycle.
type AccountService struct {
	store     storage.Store
	referrals *ReferralService
	notifier  Notifier
	cache     *SnapshotCache
}

func NewAccountService(store storage.Store, referrals *ReferralService, notifier Notifier, cache *SnapshotCache) *AccountService {
	return &AccountService{
		store:     store,
		referrals: referrals,
		notifier:  notifier,
		cache:     cache,
	}
}

// Register creates the account on first contact, grants the starter egg lot
// and attributes the referral when a valid foreign code was supplied. The
// second return value reports whether the account was created by this call.
func (s *AccountService) Register(ctx context.Context, telegramId int64, username, firstName, lastName, referralCode string) (*models.Account, bool, error) {
	existing, err := s.store.AccountByTelegramId(ctx, telegramId)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, models.ErrAccountNotFound) {
		return nil, false, err
	}

	code, err := s.newReferralCode(ctx)
	if err != nil {
		return nil, false, err
	}

	acc := &models.Account{
		TelegramId:   telegramId,
		Username:     username,
		FirstName:    firstName,
		LastName:     lastName,
		ReferralCode: code,
	}
	if err := s.store.CreateAccount(ctx, acc); err != nil {
		if errors.Is(err, models.ErrAccountExists) {
			existing, er := s.store.AccountByTelegramId(ctx, telegramId)
			if er != nil {
				return nil, false, er
			}
			return existing, false, nil
		}
		return nil, false, err
	}

	err = s.store.Atomic(ctx, func(tx storage.Tx) error {
		spec, _ := models.SpecFor(models.AssetEgg)
		return addLot(ctx, tx, acc.Id.Int64, models.AssetEgg, starterEggQuantity, spec.DurationDays, time.Now())
	})
	if err != nil {
		log.Error("Failed to grant starter egg to account ", acc.Id.Int64, ": ", err)
	}

	if referralCode != "" {
		s.attributeReferral(ctx, acc, referralCode)
	}

	return acc, true, nil
}

func (s *AccountService) attributeReferral(ctx context.Context, acc *models.Account, referralCode string) {
	referrer, err := s.store.AccountByReferralCode(ctx, referralCode)
	if err != nil {
		if !errors.Is(err, models.ErrAccountNotFound) {
			log.Error("Failed to resolve referral code ", referralCode, ": ", err)
		}
		return
	}
	if referrer.Banned || referrer.Id.Int64 == acc.Id.Int64 {
		return
	}
	if err := s.referrals.RecordReferral(ctx, referrer.Id.Int64, acc.Id.Int64); err != nil {
		log.Error("Failed to record referral: ", err)
	}
}

func (s *AccountService) newReferralCode(ctx context.Context) (string, error) {
	for i := 0; i < referralCodeAttempts; i++ {
		code, err := util.GenerateReferralCode(referralCodeLength)
		if err != nil {
			return "", err
		}
		_, err = s.store.AccountByReferralCode(ctx, code)
		if errors.Is(err, models.ErrAccountNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", errors.New("failed to generate a unique referral code")
}

// GetById loads one account.
func (s *AccountService) GetById(ctx context.Context, accountId int64) (*models.Account, error) {
	return s.store.AccountById(ctx, accountId)
}

// GetByTelegramId loads the account behind a chat identity.
func (s *AccountService) GetByTelegramId(ctx context.Context, telegramId int64) (*models.Account, error) {
	return s.store.AccountByTelegramId(ctx, telegramId)
}

// Snapshot builds the read model for one account: balance, active
// quantities, projected daily income and referral standing.
func (s *AccountService) Snapshot(ctx context.Context, accountId int64) (*models.AccountSnapshot, error) {
	if snap := s.cache.Get(ctx, accountId); snap != nil {
		return snap, nil
	}

	acc, err := s.store.AccountById(ctx, accountId)
	if err != nil {
		return nil, err
	}
	if acc.Banned {
		return nil, models.ErrAccountBanned
	}

	quantities, err := s.store.ActiveQuantities(ctx, accountId, time.Now())
	if err != nil {
		return nil, err
	}
	count, err := s.store.ReferralCount(ctx, accountId)
	if err != nil {
		return nil, err
	}
	earnings, err := s.store.ReferralEarnings(ctx, accountId)
	if err != nil {
		return nil, err
	}

	snap := &models.AccountSnapshot{
		AccountId:        acc.Id.Int64,
		TelegramId:       acc.TelegramId,
		Balance:          acc.Balance,
		Quantities:       quantities,
		DailyIncome:      YieldFor(quantities) + acc.DailyReferralIncome,
		ReferralCode:     acc.ReferralCode,
		ReferralCount:    count,
		ReferralEarnings: earnings,
	}
	s.cache.Put(ctx, snap)
	return snap, nil
}

// Ban zeroes the account's standing and wipes its lots and referral edges.
// Destructive: history is not recoverable by unban.
func (s *AccountService) Ban(ctx context.Context, accountId int64) error {
	var acc *models.Account
	var referrerId int64

	err := s.store.Atomic(ctx, func(tx storage.Tx) error {
		var err error
		acc, err = tx.LockAccount(ctx, accountId)
		if err != nil {
			return err
		}
		if acc.Banned {
			return models.ErrAlreadyBanned
		}

		acc.Banned = true
		acc.Balance = 0
		acc.DailyReferralIncome = 0
		if err := tx.UpdateAccount(ctx, acc); err != nil {
			return err
		}
		if err := tx.DeleteLots(ctx, accountId); err != nil {
			return err
		}
		if err := tx.DeleteEdgesFor(ctx, accountId); err != nil {
			return err
		}

		// The referrer just lost an edge, refresh its cached income.
		if acc.ReferredBy.Valid {
			referrer, err := tx.LockAccount(ctx, acc.ReferredBy.Int64)
			if errors.Is(err, models.ErrAccountNotFound) {
				return nil
			}
			if err != nil {
				return err
			}
			if referrer.Banned {
				return nil
			}
			count, err := tx.ReferralCount(ctx, referrer.Id.Int64)
			if err != nil {
				return err
			}
			referrer.DailyReferralIncome = DailyReferralIncome(count)
			if err := tx.UpdateAccount(ctx, referrer); err != nil {
				return err
			}
			referrerId = referrer.Id.Int64
		}
		return nil
	})
	if err != nil {
		return err
	}

	if referrerId != 0 {
		s.cache.Invalidate(ctx, accountId, referrerId)
	} else {
		s.cache.Invalidate(ctx, accountId)
	}
	dispatch(s.notifier, accountEvent(models.EventAccountBanned, acc))
	return nil
}

// Unban reactivates the account as a fresh start: zeroed standing, a new
// referral code and one starter egg lot.
func (s *AccountService) Unban(ctx context.Context, accountId int64) error {
	code, err := s.newReferralCode(ctx)
	if err != nil {
		return err
	}

	var acc *models.Account
	err = s.store.Atomic(ctx, func(tx storage.Tx) error {
		acc, err = tx.LockAccount(ctx, accountId)
		if err != nil {
			return err
		}
		if !acc.Banned {
			return models.ErrNotBanned
		}

		acc.Banned = false
		acc.Balance = 0
		acc.DailyReferralIncome = 0
		acc.ReferredBy = sql.NullInt64{}
		acc.ReferralCode = code
		if err := tx.UpdateAccount(ctx, acc); err != nil {
			return err
		}
		if err := tx.DeleteLots(ctx, accountId); err != nil {
			return err
		}
		if err := tx.DeleteEdgesFor(ctx, accountId); err != nil {
			return err
		}

		spec, _ := models.SpecFor(models.AssetEgg)
		return addLot(ctx, tx, accountId, models.AssetEgg, starterEggQuantity, spec.DurationDays, time.Now())
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, accountId)
	dispatch(s.notifier, accountEvent(models.EventAccountUnbanned, acc))
	return nil
}

// Stats returns the operator overview.
func (s *AccountService) Stats(ctx context.Context) (*models.TotalStats, error) {
	total, banned, err := s.store.CountAccounts(ctx)
	if err != nil {
		return nil, err
	}
	deposits, err := s.store.TotalApprovedDeposits(ctx)
	if err != nil {
		return nil, err
	}
	return &models.TotalStats{
		Accounts:         total,
		Active:           total - banned,
		Banned:           banned,
		ApprovedDeposits: deposits,
	}, nil
}
