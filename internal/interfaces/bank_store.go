package interfaces

import (
	"context"

	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// BankStore persists accounts and their withdrawal requests. Implementations
// do not enforce business rules beyond id assignment and referential lookups;
// authorization and the approval protocol live in the bank package, which
// serializes all calls touching one account. Lookups against missing ids
// return bank.ErrUnknownAccount / bank.ErrUnknownRequest.
type BankStore interface {
	// CreateAccount stores a new account with the given owner set, a zero
	// balance and the next account id in creation order.
	CreateAccount(ctx context.Context, owners []models.Principal) (models.Account, error)

	GetAccount(ctx context.Context, accountID uint64) (models.Account, error)

	// AccountIDsByOwner returns the ids of every account owned by owner, in
	// creation order. A principal with no accounts gets an empty slice.
	AccountIDsByOwner(ctx context.Context, owner models.Principal) ([]uint64, error)

	// CreditAccount adds amount to the account balance and returns the new
	// balance.
	CreditAccount(ctx context.Context, accountID uint64, amount decimal.Decimal) (decimal.Decimal, error)

	// CreateRequest appends a withdrawal request with no approvals, not
	// executed, and the next request id within the account (starting at 0).
	CreateRequest(ctx context.Context, accountID uint64, requester models.Principal, amount decimal.Decimal) (models.WithdrawalRequest, error)

	GetRequest(ctx context.Context, accountID, requestID uint64) (models.WithdrawalRequest, error)

	// AddApproval records approver on the request's approval set.
	AddApproval(ctx context.Context, accountID, requestID uint64, approver models.Principal) error

	// ExecuteRequest marks the request executed and debits its amount from
	// the account balance as one atomic step.
	ExecuteRequest(ctx context.Context, accountID, requestID uint64) error
}
