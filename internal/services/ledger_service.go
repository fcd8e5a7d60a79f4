package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/saske7779/Web-app-granja/internal/models"
	"github.com/saske7779/Web-app-granja/internal/storage"
)

const (
	// MinDeposit is the smallest accepted deposit amount.
	MinDeposit float64 = 5
	// MinWithdrawal is the smallest accepted withdrawal amount.
	MinWithdrawal float64 = 1
	// WithdrawalDepositThreshold is the lifetime sum of approved deposits an
	// account needs before it may withdraw.
	WithdrawalDepositThreshold float64 = 5
	// ReferralBonusRate is the share of an approved deposit credited to the
	// depositor's referrer.
	ReferralBonusRate float64 = 0.15
	// DefaultHistoryLimit bounds transaction listings when no limit is given.
	DefaultHistoryLimit = 50
)

// LedgerService owns deposit/withdrawal/purchase/earning records, their
// status transitions and every balance mutation they imply.
type LedgerService struct {
	store    storage.Store
	notifier Notifier
	cache    *SnapshotCache
}

func NewLedgerService(store storage.Store, notifier Notifier, cache *SnapshotCache) *LedgerService {
	return &LedgerService{
		store:    store,
		notifier: notifier,
		cache:    cache,
	}
}

// RequestDeposit records a pending deposit. No balance change happens until
// an operator approves it.
func (s *LedgerService) RequestDeposit(ctx context.Context, accountId int64, amount float64, network string) (int64, error) {
	if amount < MinDeposit {
		return 0, models.ErrBelowMinimum
	}

	var acc *models.Account
	tr := &models.Transaction{
		AccountId: accountId,
		Amount:    amount,
		Kind:      models.TxDeposit,
		Status:    models.StatusPending,
		Network:   sql.NullString{String: network, Valid: network != ""},
	}
	err := s.store.Atomic(ctx, func(tx storage.Tx) error {
		var err error
		acc, err = tx.LockAccount(ctx, accountId)
		if err != nil {
			return err
		}
		if acc.Banned {
			return models.ErrAccountBanned
		}
		return tx.InsertTransaction(ctx, tr)
	})
	if err != nil {
		return 0, err
	}

	ev := accountEvent(models.EventDepositRequested, acc)
	ev.TransactionId = tr.Id.Int64
	ev.Amount = amount
	ev.Network = network
	dispatch(s.notifier, ev)

	return tr.Id.Int64, nil
}

// ApproveDeposit flips the deposit to approved, credits the balance and
// pays the referral bonus. A lost race against another resolution returns
// ErrAlreadyProcessed with no side effects.
func (s *LedgerService) ApproveDeposit(ctx context.Context, txId int64) error {
	var events []models.Event
	var touched []int64

	err := s.store.Atomic(ctx, func(tx storage.Tx) error {
		tr, err := tx.TransactionById(ctx, txId)
		if err != nil {
			return err
		}
		if tr.Kind != models.TxDeposit {
			return models.ErrTransactionNotFound
		}

		acc, err := tx.LockAccount(ctx, tr.AccountId)
		if err != nil {
			return err
		}
		if acc.Banned {
			return models.ErrAccountBanned
		}

		won, err := tx.TransitionStatus(ctx, txId, models.StatusPending, models.StatusApproved)
		if err != nil {
			return err
		}
		if !won {
			return models.ErrAlreadyProcessed
		}

		acc.Balance += tr.Amount
		if err := tx.UpdateAccount(ctx, acc); err != nil {
			return err
		}
		touched = append(touched, acc.Id.Int64)

		ev := accountEvent(models.EventDepositResolved, acc)
		ev.TransactionId = txId
		ev.Amount = tr.Amount
		ev.Status = models.StatusApproved
		events = append(events, ev)

		if acc.ReferredBy.Valid {
			bonus, bonusEvents, err := creditReferralBonus(ctx, tx, acc, tr.Amount)
			if err != nil {
				return err
			}
			if bonus > 0 {
				events = append(events, bonusEvents...)
				touched = append(touched, acc.ReferredBy.Int64)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, touched...)
	dispatch(s.notifier, events...)
	return nil
}

// creditReferralBonus pays the referrer its share of an approved deposit and
// accumulates it on the matching edge. One-time per approved deposit, never
// reversed. A referrer that vanished or was banned forfeits the bonus.
func creditReferralBonus(ctx context.Context, tx storage.Tx, referred *models.Account, depositAmount float64) (float64, []models.Event, error) {
	referrer, err := tx.LockAccount(ctx, referred.ReferredBy.Int64)
	if errors.Is(err, models.ErrAccountNotFound) {
		return 0, nil, nil
	}
	if err != nil {
		return 0, nil, err
	}
	if referrer.Banned {
		return 0, nil, nil
	}

	bonus := depositAmount * ReferralBonusRate
	referrer.Balance += bonus
	if err := tx.UpdateAccount(ctx, referrer); err != nil {
		return 0, nil, err
	}
	if err := tx.AddEdgeEarned(ctx, referrer.Id.Int64, referred.Id.Int64, bonus); err != nil {
		return 0, nil, err
	}

	ev := accountEvent(models.EventReferralBonusCredited, referrer)
	ev.Amount = bonus
	return bonus, []models.Event{ev}, nil
}

// RejectDeposit flips the deposit to rejected. No balance was ever applied,
// so nothing is refunded.
func (s *LedgerService) RejectDeposit(ctx context.Context, txId int64) error {
	var ev models.Event

	err := s.store.Atomic(ctx, func(tx storage.Tx) error {
		tr, err := tx.TransactionById(ctx, txId)
		if err != nil {
			return err
		}
		if tr.Kind != models.TxDeposit {
			return models.ErrTransactionNotFound
		}

		acc, err := tx.LockAccount(ctx, tr.AccountId)
		if err != nil {
			return err
		}
		if acc.Banned {
			return models.ErrAccountBanned
		}

		won, err := tx.TransitionStatus(ctx, txId, models.StatusPending, models.StatusRejected)
		if err != nil {
			return err
		}
		if !won {
			return models.ErrAlreadyProcessed
		}

		ev = accountEvent(models.EventDepositResolved, acc)
		ev.TransactionId = txId
		ev.Amount = tr.Amount
		ev.Status = models.StatusRejected
		return nil
	})
	if err != nil {
		return err
	}

	dispatch(s.notifier, ev)
	return nil
}

// RequestWithdrawal reserves the funds immediately: the balance is debited
// here and refunded only if the withdrawal is rejected. At most one pending
// withdrawal per account.
func (s *LedgerService) RequestWithdrawal(ctx context.Context, accountId int64, amount float64, walletAddress, network string) (int64, error) {
	if amount < MinWithdrawal {
		return 0, models.ErrBelowMinimum
	}

	var acc *models.Account
	tr := &models.Transaction{
		AccountId:     accountId,
		Amount:        amount,
		Kind:          models.TxWithdrawal,
		Status:        models.StatusPending,
		WalletAddress: sql.NullString{String: walletAddress, Valid: walletAddress != ""},
		Network:       sql.NullString{String: network, Valid: network != ""},
	}
	err := s.store.Atomic(ctx, func(tx storage.Tx) error {
		var err error
		acc, err = tx.LockAccount(ctx, accountId)
		if err != nil {
			return err
		}
		if acc.Banned {
			return models.ErrAccountBanned
		}
		if acc.Balance < amount {
			return models.ErrInsufficientBalance
		}

		deposited, err := tx.SumApprovedDeposits(ctx, accountId)
		if err != nil {
			return err
		}
		if deposited < WithdrawalDepositThreshold {
			return models.ErrDepositThresholdNotMet
		}

		pending, err := tx.HasPendingWithdrawal(ctx, accountId)
		if err != nil {
			return err
		}
		if pending {
			return models.ErrWithdrawalAlreadyPending
		}

		acc.Balance -= amount
		if err := tx.UpdateAccount(ctx, acc); err != nil {
			return err
		}
		return tx.InsertTransaction(ctx, tr)
	})
	if err != nil {
		return 0, err
	}

	s.cache.Invalidate(ctx, accountId)

	ev := accountEvent(models.EventWithdrawalRequested, acc)
	ev.TransactionId = tr.Id.Int64
	ev.Amount = amount
	ev.WalletAddress = walletAddress
	ev.Network = network
	dispatch(s.notifier, ev)

	return tr.Id.Int64, nil
}

// ApproveWithdrawal confirms the payout. The balance was debited at request
// time, so nothing changes here beyond the status; the emitted event signals
// the operator to send the funds.
func (s *LedgerService) ApproveWithdrawal(ctx context.Context, txId int64) error {
	var ev models.Event

	err := s.store.Atomic(ctx, func(tx storage.Tx) error {
		tr, err := tx.TransactionById(ctx, txId)
		if err != nil {
			return err
		}
		if tr.Kind != models.TxWithdrawal {
			return models.ErrTransactionNotFound
		}

		acc, err := tx.LockAccount(ctx, tr.AccountId)
		if err != nil {
			return err
		}
		if acc.Banned {
			return models.ErrAccountBanned
		}

		won, err := tx.TransitionStatus(ctx, txId, models.StatusPending, models.StatusApproved)
		if err != nil {
			return err
		}
		if !won {
			return models.ErrAlreadyProcessed
		}

		ev = accountEvent(models.EventWithdrawalResolved, acc)
		ev.TransactionId = txId
		ev.Amount = tr.Amount
		ev.Status = models.StatusApproved
		ev.WalletAddress = tr.WalletAddress.String
		ev.Network = tr.Network.String
		return nil
	})
	if err != nil {
		return err
	}

	dispatch(s.notifier, ev)
	return nil
}

// RejectWithdrawal refunds the reserved amount and flips the status.
func (s *LedgerService) RejectWithdrawal(ctx context.Context, txId int64) error {
	var ev models.Event
	var accountId int64

	err := s.store.Atomic(ctx, func(tx storage.Tx) error {
		tr, err := tx.TransactionById(ctx, txId)
		if err != nil {
			return err
		}
		if tr.Kind != models.TxWithdrawal {
			return models.ErrTransactionNotFound
		}

		acc, err := tx.LockAccount(ctx, tr.AccountId)
		if err != nil {
			return err
		}
		if acc.Banned {
			return models.ErrAccountBanned
		}

		won, err := tx.TransitionStatus(ctx, txId, models.StatusPending, models.StatusRejected)
		if err != nil {
			return err
		}
		if !won {
			return models.ErrAlreadyProcessed
		}

		acc.Balance += tr.Amount
		if err := tx.UpdateAccount(ctx, acc); err != nil {
			return err
		}
		accountId = acc.Id.Int64

		ev = accountEvent(models.EventWithdrawalResolved, acc)
		ev.TransactionId = txId
		ev.Amount = tr.Amount
		ev.Status = models.StatusRejected
		return nil
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, accountId)
	dispatch(s.notifier, ev)
	return nil
}

// Purchase buys quantity of an asset type, or the combo bundle when item is
// models.ComboItem. Debit, lot creation and the purchase record commit as one
// unit or not at all.
func (s *LedgerService) Purchase(ctx context.Context, accountId int64, item string, quantity int) (float64, error) {
	isCombo := item == models.ComboItem
	assetType := models.AssetType(item)
	if !isCombo && !models.ValidAssetType(assetType) {
		return 0, models.ErrInvalidAssetType
	}
	if quantity < 1 {
		return 0, models.ErrInvalidQuantity
	}

	var cost float64
	if isCombo {
		cost = models.ComboCost
	} else {
		spec, _ := models.SpecFor(assetType)
		cost = spec.UnitCost * float64(quantity)
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
		if isCombo {
			if quantities[models.AssetEgg]+models.ComboEggs > models.MaxActivePerType ||
				quantities[models.AssetChicken]+models.ComboChickens > models.MaxActivePerType {
				return models.ErrCapacityExceeded
			}
		} else if quantities[assetType]+quantity > models.MaxActivePerType {
			return models.ErrCapacityExceeded
		}

		if acc.Balance < cost {
			return models.ErrInsufficientBalance
		}
		acc.Balance -= cost
		if err := tx.UpdateAccount(ctx, acc); err != nil {
			return err
		}

		if isCombo {
			eggSpec, _ := models.SpecFor(models.AssetEgg)
			chickenSpec, _ := models.SpecFor(models.AssetChicken)
			if err := addLot(ctx, tx, accountId, models.AssetEgg, models.ComboEggs, eggSpec.DurationDays, now); err != nil {
				return err
			}
			if err := addLot(ctx, tx, accountId, models.AssetChicken, models.ComboChickens, chickenSpec.DurationDays, now); err != nil {
				return err
			}
		} else {
			spec, _ := models.SpecFor(assetType)
			if err := addLot(ctx, tx, accountId, assetType, quantity, spec.DurationDays, now); err != nil {
				return err
			}
		}

		return tx.InsertTransaction(ctx, &models.Transaction{
			AccountId: accountId,
			Amount:    cost,
			Kind:      models.TxPurchase,
			Status:    models.StatusApproved,
		})
	})
	if err != nil {
		return 0, err
	}

	s.cache.Invalidate(ctx, accountId)
	return cost, nil
}

// RecordEarning credits the balance and writes the matching approved earning
// record as one unit.
func (s *LedgerService) RecordEarning(ctx context.Context, accountId int64, amount float64) error {
	if amount <= 0 {
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
		return err
	}

	s.cache.Invalidate(ctx, accountId)
	return nil
}

// AdjustBalance applies a signed operator correction. A debit larger than
// the balance is refused, the balance never goes negative.
func (s *LedgerService) AdjustBalance(ctx context.Context, accountId int64, delta float64) error {
	var acc *models.Account

	err := s.store.Atomic(ctx, func(tx storage.Tx) error {
		var err error
		acc, err = tx.LockAccount(ctx, accountId)
		if err != nil {
			return err
		}
		if acc.Banned {
			return models.ErrAccountBanned
		}
		if delta < 0 && acc.Balance < -delta {
			return models.ErrInsufficientBalance
		}
		acc.Balance += delta
		return tx.UpdateAccount(ctx, acc)
	})
	if err != nil {
		return err
	}

	s.cache.Invalidate(ctx, accountId)

	ev := accountEvent(models.EventBalanceAdjusted, acc)
	ev.Amount = delta
	dispatch(s.notifier, ev)
	return nil
}

// ListTransactions returns the account's records ordered by recency.
func (s *LedgerService) ListTransactions(ctx context.Context, accountId int64, limit int) ([]models.Transaction, error) {
	acc, err := s.store.AccountById(ctx, accountId)
	if err != nil {
		return nil, err
	}
	if acc.Banned {
		return nil, models.ErrAccountBanned
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return s.store.ListTransactions(ctx, accountId, limit)
}
