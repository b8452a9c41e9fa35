package events

import (
	"time"

	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// DepositRecorded is published after a deposit has been credited to an account.
type DepositRecorded struct {
	AccountID  uint64           `json:"account_id"`
	Depositor  models.Principal `json:"depositor"`
	Amount     decimal.Decimal  `json:"amount"`
	Balance    decimal.Decimal  `json:"balance"` // balance after the credit
	OccurredAt time.Time        `json:"occurred_at"`
}
