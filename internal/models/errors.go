package models

import "errors"

// Validation errors: rejected before any mutation.
var (
	ErrBelowMinimum     = errors.New("amount below minimum")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidAssetType = errors.New("invalid asset type")
)

// State-conflict errors: lost races, safe to retry with a fresh read.
var (
	ErrAlreadyProcessed         = errors.New("transaction already processed")
	ErrAlreadyBanned            = errors.New("account already banned")
	ErrNotBanned                = errors.New("account is not banned")
	ErrWithdrawalAlreadyPending = errors.New("a withdrawal is already pending")
	ErrDuplicateReferral        = errors.New("account already referred")
	ErrAccountExists            = errors.New("account already exists")
)

// Policy errors: business-rule rejections, no partial mutation.
var (
	ErrInsufficientBalance    = errors.New("insufficient balance")
	ErrInsufficientQuantity   = errors.New("insufficient asset quantity")
	ErrCapacityExceeded       = errors.New("asset capacity exceeded")
	ErrDepositThresholdNotMet = errors.New("approved deposits below withdrawal threshold")
	ErrAccountBanned          = errors.New("account is banned")
)

// Not-found errors.
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrTransactionNotFound = errors.New("transaction not found")
)
