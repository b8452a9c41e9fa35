package bank

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/interfaces"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/models"
	evt "github.com/sheikh-saqib/multiowner-bank-ledger/internal/models/events"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Event topics for committed withdrawal-ledger transitions.
const (
	TopicDepositRecorded     = "deposit_recorded"
	TopicWithdrawalRequested = "withdrawal_requested"
	TopicWithdrawalApproved  = "withdrawal_approved"
	TopicWithdrawalExecuted  = "withdrawal_executed"
)

// WithdrawalLedger runs the request/approve/execute protocol on top of the
// account registry. Every mutation of one account happens under that
// account's lock, so each operation observes and applies a consistent state:
// all checks run before any mutation, and a failed operation changes nothing.
type WithdrawalLedger struct {
	store    interfaces.BankStore
	registry *AccountRegistry
	sink     interfaces.ValueSink
	pub      interfaces.EventPublisher
	log      *zap.Logger

	muMap map[uint64]*sync.Mutex // per-account locks
	mapMu sync.Mutex             // protects muMap itself
}

// NewWithdrawalLedger wires a ledger over the store, registry and value sink.
func NewWithdrawalLedger(store interfaces.BankStore, registry *AccountRegistry, sink interfaces.ValueSink, pub interfaces.EventPublisher, log *zap.Logger) *WithdrawalLedger {
	if log == nil {
		log = zap.NewNop()
	}
	return &WithdrawalLedger{
		store:    store,
		registry: registry,
		sink:     sink,
		pub:      pub,
		log:      log,
		muMap:    make(map[uint64]*sync.Mutex),
	}
}

func (l *WithdrawalLedger) accountLock(accountID uint64) *sync.Mutex {
	l.mapMu.Lock()
	defer l.mapMu.Unlock()

	if _, exists := l.muMap[accountID]; !exists {
		l.muMap[accountID] = &sync.Mutex{}
	}
	return l.muMap[accountID]
}

// requireOwner resolves the caller's standing on the account.
// ErrUnknownAccount takes precedence over ErrUnauthorized.
func (l *WithdrawalLedger) requireOwner(ctx context.Context, accountID uint64, caller models.Principal) error {
	owner, err := l.registry.IsOwner(ctx, accountID, caller)
	if err != nil {
		return err
	}
	if !owner {
		return fmt.Errorf("%w: %q is not an owner of account %d", ErrUnauthorized, caller, accountID)
	}
	return nil
}

// Deposit credits amount to the account. The value sink must accept the
// incoming transfer first; only then is the balance recorded.
func (l *WithdrawalLedger) Deposit(ctx context.Context, caller models.Principal, accountID uint64, amount decimal.Decimal) error {
	mu := l.accountLock(accountID)
	mu.Lock()
	defer mu.Unlock()

	if err := l.requireOwner(ctx, accountID, caller); err != nil {
		return err
	}
	if amount.Sign() <= 0 {
		return fmt.Errorf("%w: deposit must be positive, got %s", ErrInvalidAmount, amount)
	}

	if l.sink != nil {
		if err := l.sink.Credit(ctx, accountID, amount); err != nil {
			return fmt.Errorf("value sink rejected credit: %w", err)
		}
	}

	balance, err := l.store.CreditAccount(ctx, accountID, amount)
	if err != nil {
		return err
	}

	l.publish(TopicDepositRecorded, evt.DepositRecorded{
		AccountID:  accountID,
		Depositor:  caller,
		Amount:     amount,
		Balance:    balance,
		OccurredAt: time.Now().UTC(),
	})
	l.log.Info("deposit recorded",
		zap.Uint64("account_id", accountID),
		zap.String("amount", amount.String()))
	return nil
}

// RequestWithdrawal proposes taking amount out of the account and returns the
// new request id. The amount is checked against the current balance but not
// reserved: outstanding requests may jointly exceed the balance, and
// sufficiency is re-checked at execution time.
func (l *WithdrawalLedger) RequestWithdrawal(ctx context.Context, caller models.Principal, accountID uint64, amount decimal.Decimal) (uint64, error) {
	mu := l.accountLock(accountID)
	mu.Lock()
	defer mu.Unlock()

	if err := l.requireOwner(ctx, accountID, caller); err != nil {
		return 0, err
	}
	if amount.Sign() <= 0 {
		return 0, fmt.Errorf("%w: withdrawal must be positive, got %s", ErrInvalidAmount, amount)
	}

	acct, err := l.store.GetAccount(ctx, accountID)
	if err != nil {
		return 0, err
	}
	if amount.Cmp(acct.Balance) > 0 {
		return 0, fmt.Errorf("%w: requested %s exceeds balance %s", ErrInvalidAmount, amount, acct.Balance)
	}

	req, err := l.store.CreateRequest(ctx, accountID, caller, amount)
	if err != nil {
		return 0, err
	}

	l.publish(TopicWithdrawalRequested, evt.WithdrawalRequested{
		AccountID:  accountID,
		RequestID:  req.ID,
		Requester:  caller,
		Amount:     amount,
		OccurredAt: time.Now().UTC(),
	})
	l.log.Info("withdrawal requested",
		zap.Uint64("account_id", accountID),
		zap.Uint64("request_id", req.ID),
		zap.String("amount", amount.String()))
	return req.ID, nil
}

// ApproveWithdrawal records the caller's approval on a pending request.
// The requester cannot approve their own request, and each co-owner approves
// at most once. Executed requests accept no further approvals.
func (l *WithdrawalLedger) ApproveWithdrawal(ctx context.Context, caller models.Principal, accountID, requestID uint64) error {
	mu := l.accountLock(accountID)
	mu.Lock()
	defer mu.Unlock()

	if err := l.requireOwner(ctx, accountID, caller); err != nil {
		return err
	}

	req, err := l.store.GetRequest(ctx, accountID, requestID)
	if err != nil {
		return err
	}
	if req.Executed {
		return fmt.Errorf("%w: request %d on account %d", ErrAlreadyExecuted, requestID, accountID)
	}
	if caller == req.Requester {
		return fmt.Errorf("%w: requester cannot approve their own request", ErrUnauthorized)
	}
	if req.ApprovedBy(caller) {
		return fmt.Errorf("%w: %q already approved request %d", ErrAlreadyApproved, caller, requestID)
	}

	if err := l.store.AddApproval(ctx, accountID, requestID, caller); err != nil {
		return err
	}

	l.publish(TopicWithdrawalApproved, evt.WithdrawalApproved{
		AccountID:  accountID,
		RequestID:  requestID,
		Approver:   caller,
		Approvals:  req.ApprovalCount() + 1,
		OccurredAt: time.Now().UTC(),
	})
	l.log.Info("withdrawal approved",
		zap.Uint64("account_id", accountID),
		zap.Uint64("request_id", requestID),
		zap.Int("approvals", req.ApprovalCount()+1))
	return nil
}

// Withdraw executes an approved request: only the original requester may call
// it, every co-owner must have approved, and the balance must still cover the
// amount. The value-sink payout runs after all invariants pass and before the
// debit commits, so a failed payout leaves the balance untouched.
func (l *WithdrawalLedger) Withdraw(ctx context.Context, caller models.Principal, accountID, requestID uint64) error {
	mu := l.accountLock(accountID)
	mu.Lock()
	defer mu.Unlock()

	acct, err := l.store.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	req, err := l.store.GetRequest(ctx, accountID, requestID)
	if err != nil {
		return err
	}
	if req.Executed {
		return fmt.Errorf("%w: request %d on account %d", ErrAlreadyExecuted, requestID, accountID)
	}
	if caller != req.Requester {
		return fmt.Errorf("%w: only the requester may withdraw", ErrUnauthorized)
	}
	// Quorum: every owner except the requester must have approved.
	if req.ApprovalCount() < len(acct.Owners)-1 {
		return fmt.Errorf("%w: %d of %d required approvals", ErrNotApproved, req.ApprovalCount(), len(acct.Owners)-1)
	}
	// Re-checked here: earlier executed requests may have drained the
	// balance since this request was made.
	if acct.Balance.Cmp(req.Amount) < 0 {
		return fmt.Errorf("%w: balance %s, requested %s", ErrInsufficientBalance, acct.Balance, req.Amount)
	}

	if l.sink != nil {
		if err := l.sink.PayOut(ctx, caller, req.Amount); err != nil {
			return fmt.Errorf("value sink rejected payout: %w", err)
		}
	}

	if err := l.store.ExecuteRequest(ctx, accountID, requestID); err != nil {
		return err
	}

	l.publish(TopicWithdrawalExecuted, evt.WithdrawalExecuted{
		AccountID:  accountID,
		RequestID:  requestID,
		Requester:  caller,
		Amount:     req.Amount,
		OccurredAt: time.Now().UTC(),
	})
	l.log.Info("withdrawal executed",
		zap.Uint64("account_id", accountID),
		zap.Uint64("request_id", requestID),
		zap.String("amount", req.Amount.String()))
	return nil
}

// Approvals returns how many distinct co-owners approved the request.
func (l *WithdrawalLedger) Approvals(ctx context.Context, accountID, requestID uint64) (int, error) {
	req, err := l.store.GetRequest(ctx, accountID, requestID)
	if err != nil {
		return 0, err
	}
	return req.ApprovalCount(), nil
}

// Balance returns the account's current balance.
func (l *WithdrawalLedger) Balance(ctx context.Context, accountID uint64) (decimal.Decimal, error) {
	acct, err := l.store.GetAccount(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return acct.Balance, nil
}

// Request returns the audit record of a withdrawal request.
func (l *WithdrawalLedger) Request(ctx context.Context, accountID, requestID uint64) (models.WithdrawalRequest, error) {
	return l.store.GetRequest(ctx, accountID, requestID)
}

func (l *WithdrawalLedger) publish(topic string, event any) {
	if l.pub == nil {
		return
	}
	// Events trail committed transitions; a broker failure must not
	// un-commit them.
	if err := l.pub.Publish(topic, event); err != nil {
		l.log.Warn("event publish failed", zap.String("topic", topic), zap.Error(err))
	}
}
