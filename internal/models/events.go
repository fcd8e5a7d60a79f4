package models

// EventKind names the ledger events the notification layer renders.
type EventKind string

const (
	EventDepositRequested      EventKind = "deposit_requested"
	EventWithdrawalRequested   EventKind = "withdrawal_requested"
	EventDepositResolved       EventKind = "deposit_resolved"
	EventWithdrawalResolved    EventKind = "withdrawal_resolved"
	EventReferralBonusCredited EventKind = "referral_bonus_credited"
	EventBalanceAdjusted       EventKind = "balance_adjusted"
	EventAccountBanned         EventKind = "account_banned"
	EventAccountUnbanned       EventKind = "account_unbanned"
)

// Event carries identities and amounts only. Rendering human-readable text
// belongs to the bot layer.
type Event struct {
	Kind          EventKind
	AccountId     int64
	TelegramId    int64
	Username      string
	FirstName     string
	LastName      string
	TransactionId int64
	Amount        float64
	Status        TxStatus
	Network       string
	WalletAddress string
}
