package buttons

const (
	//transaction review keyboard
	ApproveDepositId    = "APPROVE_DEPOSIT"
	RejectDepositId     = "REJECT_DEPOSIT"
	ApproveWithdrawalId = "APPROVE_WITHDRAWAL"
	RejectWithdrawalId  = "REJECT_WITHDRAWAL"

	ApproveText = "✅ Aprobar"
	RejectText  = "❌ Rechazar"
)
