// Package storage defines the persistence port of the ledger engine.
// internal/repositories implements it on Postgres, internal/storage/memstore
// in memory for tests and local runs.
package storage

import (
	"context"
	"time"

	"github.com/saske7779/Web-app-granja/internal/models"
)

// Store is the engine's view of persistence. Reads outside Atomic may be
// slightly stale; every balance-mutating sequence runs inside Atomic where
// LockAccount serializes it against all other mutations of the same account.
type Store interface {
	CreateAccount(ctx context.Context, acc *models.Account) error
	AccountById(ctx context.Context, id int64) (*models.Account, error)
	AccountByTelegramId(ctx context.Context, telegramId int64) (*models.Account, error)
	AccountByReferralCode(ctx context.Context, code string) (*models.Account, error)
	AccountIds(ctx context.Context, includeBanned bool) ([]int64, error)
	CountAccounts(ctx context.Context) (total int, banned int, err error)

	ActiveQuantities(ctx context.Context, accountId int64, now time.Time) (map[models.AssetType]int, error)
	PurgeExpiredLots(ctx context.Context, now time.Time) (int64, error)

	TransactionById(ctx context.Context, id int64) (*models.Transaction, error)
	ListTransactions(ctx context.Context, accountId int64, limit int) ([]models.Transaction, error)
	TotalApprovedDeposits(ctx context.Context) (float64, error)

	ReferralCount(ctx context.Context, referrerId int64) (int, error)
	ReferralEarnings(ctx context.Context, referrerId int64) (float64, error)

	// BeginDistribution claims the distribution run for the given period key.
	// It returns false if the period was already claimed.
	BeginDistribution(ctx context.Context, period string) (bool, error)

	// Atomic runs fn inside one all-or-nothing unit. Any error rolls the
	// whole unit back.
	Atomic(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the handle available inside Atomic.
type Tx interface {
	// LockAccount loads the account row and holds an exclusive lock on it
	// until the unit commits or rolls back. When two accounts take part in
	// one unit, callers lock the referred account before its referrer.
	LockAccount(ctx context.Context, id int64) (*models.Account, error)
	UpdateAccount(ctx context.Context, acc *models.Account) error

	ActiveQuantities(ctx context.Context, accountId int64, now time.Time) (map[models.AssetType]int, error)
	InsertLot(ctx context.Context, lot *models.AssetLot) error
	// DecrementLotQuantity consumes quantity oldest-first across the
	// account's active lots of the given type. The caller has already
	// verified the active sum covers the amount.
	DecrementLotQuantity(ctx context.Context, accountId int64, t models.AssetType, quantity int, now time.Time) error
	DeleteLots(ctx context.Context, accountId int64) error

	InsertTransaction(ctx context.Context, t *models.Transaction) error
	TransactionById(ctx context.Context, id int64) (*models.Transaction, error)
	// TransitionStatus applies the compare-and-swap status change and
	// reports whether this call won the transition.
	TransitionStatus(ctx context.Context, txId int64, from, to models.TxStatus) (bool, error)
	SumApprovedDeposits(ctx context.Context, accountId int64) (float64, error)
	HasPendingWithdrawal(ctx context.Context, accountId int64) (bool, error)

	InsertReferralEdge(ctx context.Context, edge *models.ReferralEdge) error
	HasReferralEdgeFor(ctx context.Context, referredId int64) (bool, error)
	ReferralCount(ctx context.Context, referrerId int64) (int, error)
	AddEdgeEarned(ctx context.Context, referrerId, referredId int64, amount float64) error
	DeleteEdgesFor(ctx context.Context, accountId int64) error
}
