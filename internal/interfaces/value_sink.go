package interfaces

import (
	"context"

	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// ValueSink is the external system that actually moves value. The ledger only
// does bookkeeping: Credit must have accepted the funds before a deposit is
// recorded, and PayOut runs after all withdrawal invariants pass - if it
// fails, the ledger leaves the balance untouched.
type ValueSink interface {
	Credit(ctx context.Context, accountID uint64, amount decimal.Decimal) error
	PayOut(ctx context.Context, to models.Principal, amount decimal.Decimal) error
}
