package events

import (
	"time"

	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// WithdrawalRequested is published when an owner proposes taking funds out.
type WithdrawalRequested struct {
	AccountID  uint64           `json:"account_id"`
	RequestID  uint64           `json:"request_id"`
	Requester  models.Principal `json:"requester"`
	Amount     decimal.Decimal  `json:"amount"`
	OccurredAt time.Time        `json:"occurred_at"`
}

// WithdrawalApproved is published for each co-owner approval.
type WithdrawalApproved struct {
	AccountID  uint64           `json:"account_id"`
	RequestID  uint64           `json:"request_id"`
	Approver   models.Principal `json:"approver"`
	Approvals  int              `json:"approvals"` // count after this approval
	OccurredAt time.Time        `json:"occurred_at"`
}

// WithdrawalExecuted is published after a request has been paid out and the
// account debited.
type WithdrawalExecuted struct {
	AccountID  uint64           `json:"account_id"`
	RequestID  uint64           `json:"request_id"`
	Requester  models.Principal `json:"requester"`
	Amount     decimal.Decimal  `json:"amount"`
	OccurredAt time.Time        `json:"occurred_at"`
}
