package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/bank"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/interfaces"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// Store is an in-memory implementation of interfaces.BankStore. It is the
// authoritative state for dev and test runs and is safe for concurrent use.
// Account ids and per-account request ids are both assigned from 0 in
// creation order.
type Store struct {
	mu       sync.Mutex
	accounts []*accountState // index == account id
}

type accountState struct {
	acct     models.Account
	requests []*models.WithdrawalRequest // index == request id
}

// NewStore returns an empty in-memory bank store.
func NewStore() *Store {
	return &Store{}
}

func (s *Store) CreateAccount(ctx context.Context, owners []models.Principal) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	acct := models.Account{
		ID:        uint64(len(s.accounts)),
		Owners:    owners,
		Balance:   decimal.Zero,
		CreatedAt: time.Now().UTC(),
	}
	// Clone so later caller mutations of the owners slice cannot reach in.
	s.accounts = append(s.accounts, &accountState{acct: acct.Clone()})
	return acct, nil
}

func (s *Store) GetAccount(ctx context.Context, accountID uint64) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.account(accountID)
	if err != nil {
		return models.Account{}, err
	}
	return state.acct.Clone(), nil
}

func (s *Store) AccountIDsByOwner(ctx context.Context, owner models.Principal) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]uint64, 0)
	for _, state := range s.accounts {
		if state.acct.HasOwner(owner) {
			ids = append(ids, state.acct.ID)
		}
	}
	return ids, nil
}

func (s *Store) CreditAccount(ctx context.Context, accountID uint64, amount decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.account(accountID)
	if err != nil {
		return decimal.Zero, err
	}
	state.acct.Balance = state.acct.Balance.Add(amount)
	return state.acct.Balance, nil
}

func (s *Store) CreateRequest(ctx context.Context, accountID uint64, requester models.Principal, amount decimal.Decimal) (models.WithdrawalRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.account(accountID)
	if err != nil {
		return models.WithdrawalRequest{}, err
	}
	req := models.WithdrawalRequest{
		ID:        uint64(len(state.requests)),
		AccountID: accountID,
		Requester: requester,
		Amount:    amount,
		Approvals: make(map[models.Principal]bool),
		Executed:  false,
		CreatedAt: time.Now().UTC(),
	}
	clone := req.Clone()
	state.requests = append(state.requests, &clone)
	return req, nil
}

func (s *Store) GetRequest(ctx context.Context, accountID, requestID uint64) (models.WithdrawalRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := s.request(accountID, requestID)
	if err != nil {
		return models.WithdrawalRequest{}, err
	}
	return req.Clone(), nil
}

func (s *Store) AddApproval(ctx context.Context, accountID, requestID uint64, approver models.Principal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req, err := s.request(accountID, requestID)
	if err != nil {
		return err
	}
	req.Approvals[approver] = true
	return nil
}

func (s *Store) ExecuteRequest(ctx context.Context, accountID, requestID uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.account(accountID)
	if err != nil {
		return err
	}
	req, err := s.request(accountID, requestID)
	if err != nil {
		return err
	}
	req.Executed = true
	state.acct.Balance = state.acct.Balance.Sub(req.Amount)
	return nil
}

// account and request assume s.mu is held.

func (s *Store) account(accountID uint64) (*accountState, error) {
	if accountID >= uint64(len(s.accounts)) {
		return nil, fmt.Errorf("%w: id %d", bank.ErrUnknownAccount, accountID)
	}
	return s.accounts[accountID], nil
}

func (s *Store) request(accountID, requestID uint64) (*models.WithdrawalRequest, error) {
	state, err := s.account(accountID)
	if err != nil {
		return nil, err
	}
	if requestID >= uint64(len(state.requests)) {
		return nil, fmt.Errorf("%w: id %d on account %d", bank.ErrUnknownRequest, requestID, accountID)
	}
	return state.requests[requestID], nil
}

// Compile-time check: Store implements the BankStore interface.
var _ interfaces.BankStore = (*Store)(nil)
