package models

import (
	"database/sql"
	"time"
)

type Account struct {
	Id                  sql.NullInt64 `db:"id" json:"id"`
	TelegramId          int64         `db:"telegram_id" json:"telegram_id"`
	Username            string        `db:"username" json:"username"`
	FirstName           string        `db:"first_name" json:"first_name"`
	LastName            string        `db:"last_name" json:"last_name"`
	Balance             float64       `db:"balance" json:"balance"`
	ReferralCode        string        `db:"referral_code" json:"referral_code"`
	ReferredBy          sql.NullInt64 `db:"referred_by" json:"referred_by"`
	Banned              bool          `db:"banned" json:"banned"`
	DailyReferralIncome float64       `db:"daily_referral_income" json:"daily_referral_income"`
	CreatedAt           time.Time     `db:"created_at" json:"created_at"`
}

type AssetLot struct {
	Id          sql.NullInt64 `db:"id" json:"id"`
	AccountId   int64         `db:"account_id" json:"account_id"`
	Type        AssetType     `db:"type" json:"type"`
	Quantity    int           `db:"quantity" json:"quantity"`
	PurchasedAt time.Time     `db:"purchased_at" json:"purchased_at"`
	ExpiresAt   time.Time     `db:"expires_at" json:"expires_at"`
}

// Active reports whether the lot still produces yield at the given moment.
func (l *AssetLot) Active(now time.Time) bool {
	return l.Quantity > 0 && now.Before(l.ExpiresAt)
}

type TxKind string

const (
	TxDeposit    TxKind = "deposit"
	TxWithdrawal TxKind = "withdrawal"
	TxPurchase   TxKind = "purchase"
	TxEarning    TxKind = "earning"
)

type TxStatus string

const (
	StatusPending  TxStatus = "pending"
	StatusApproved TxStatus = "approved"
	StatusRejected TxStatus = "rejected"
)

type Transaction struct {
	Id            sql.NullInt64  `db:"id" json:"id"`
	AccountId     int64          `db:"account_id" json:"account_id"`
	Amount        float64        `db:"amount" json:"amount"`
	Kind          TxKind         `db:"kind" json:"kind"`
	Status        TxStatus       `db:"status" json:"status"`
	WalletAddress sql.NullString `db:"wallet_address" json:"wallet_address"`
	Network       sql.NullString `db:"network" json:"network"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
}

type ReferralEdge struct {
	Id         sql.NullInt64 `db:"id" json:"id"`
	ReferrerId int64         `db:"referrer_id" json:"referrer_id"`
	ReferredId int64         `db:"referred_id" json:"referred_id"`
	Earned     float64       `db:"earned" json:"earned"`
}

// AccountSnapshot is the read model served to the web app.
type AccountSnapshot struct {
	AccountId        int64             `json:"account_id"`
	TelegramId       int64             `json:"telegram_id"`
	Balance          float64           `json:"balance"`
	Quantities       map[AssetType]int `json:"quantities"`
	DailyIncome      float64           `json:"daily_income"`
	ReferralCode     string            `json:"referral_code"`
	ReferralCount    int               `json:"referral_count"`
	ReferralEarnings float64           `json:"referral_earnings"`
}

// TotalStats is the operator overview.
type TotalStats struct {
	Accounts         int     `json:"accounts"`
	Active           int     `json:"active"`
	Banned           int     `json:"banned"`
	ApprovedDeposits float64 `json:"approved_deposits"`
}
