package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/bank"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/interfaces"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/models"
	"github.com/shopspring/decimal"
)

// Store is a postgres-backed implementation of interfaces.BankStore.
// Multi-row operations (account + owners, execute + debit) run inside a
// single database transaction. The bank package serializes operations per
// account, so the store itself needs no row locking beyond that.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open postgres connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the schema when it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS accounts (
		id         BIGSERIAL PRIMARY KEY,
		balance    NUMERIC NOT NULL DEFAULT 0 CHECK (balance >= 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE TABLE IF NOT EXISTS account_owners (
		account_id BIGINT NOT NULL REFERENCES accounts(id),
		owner      TEXT   NOT NULL,
		position   INT    NOT NULL,
		PRIMARY KEY (account_id, owner)
	);
	CREATE TABLE IF NOT EXISTS withdrawal_requests (
		account_id BIGINT  NOT NULL REFERENCES accounts(id),
		id         BIGINT  NOT NULL,
		requester  TEXT    NOT NULL,
		amount     NUMERIC NOT NULL CHECK (amount > 0),
		executed   BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (account_id, id)
	);
	CREATE TABLE IF NOT EXISTS request_approvals (
		account_id BIGINT NOT NULL,
		request_id BIGINT NOT NULL,
		approver   TEXT   NOT NULL,
		PRIMARY KEY (account_id, request_id, approver),
		FOREIGN KEY (account_id, request_id) REFERENCES withdrawal_requests(account_id, id)
	);`

	_, err := s.db.ExecContext(ctx, ddl)
	return err
}

func (s *Store) CreateAccount(ctx context.Context, owners []models.Principal) (models.Account, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Account{}, err
	}
	defer tx.Rollback()

	var acct models.Account
	err = tx.QueryRowContext(ctx,
		`INSERT INTO accounts (balance) VALUES (0) RETURNING id, balance, created_at`,
	).Scan(&acct.ID, &acct.Balance, &acct.CreatedAt)
	if err != nil {
		return models.Account{}, err
	}

	for i, owner := range owners {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO account_owners (account_id, owner, position) VALUES ($1, $2, $3)`,
			acct.ID, string(owner), i)
		if err != nil {
			return models.Account{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return models.Account{}, err
	}

	acct.Owners = append([]models.Principal(nil), owners...)
	return acct, nil
}

func (s *Store) GetAccount(ctx context.Context, accountID uint64) (models.Account, error) {
	var acct models.Account
	err := s.db.QueryRowContext(ctx,
		`SELECT id, balance, created_at FROM accounts WHERE id = $1`,
		accountID,
	).Scan(&acct.ID, &acct.Balance, &acct.CreatedAt)
	if err == sql.ErrNoRows {
		return models.Account{}, fmt.Errorf("%w: id %d", bank.ErrUnknownAccount, accountID)
	}
	if err != nil {
		return models.Account{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT owner FROM account_owners WHERE account_id = $1 ORDER BY position`,
		accountID)
	if err != nil {
		return models.Account{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var owner string
		if err := rows.Scan(&owner); err != nil {
			return models.Account{}, err
		}
		acct.Owners = append(acct.Owners, models.Principal(owner))
	}
	if err := rows.Err(); err != nil {
		return models.Account{}, err
	}
	return acct, nil
}

func (s *Store) AccountIDsByOwner(ctx context.Context, owner models.Principal) ([]uint64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT account_id FROM account_owners WHERE owner = $1 ORDER BY account_id`,
		string(owner))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uint64, 0)
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) CreditAccount(ctx context.Context, accountID uint64, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.db.QueryRowContext(ctx,
		`UPDATE accounts SET balance = balance + $2 WHERE id = $1 RETURNING balance`,
		accountID, amount,
	).Scan(&balance)
	if err == sql.ErrNoRows {
		return decimal.Zero, fmt.Errorf("%w: id %d", bank.ErrUnknownAccount, accountID)
	}
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

func (s *Store) CreateRequest(ctx context.Context, accountID uint64, requester models.Principal, amount decimal.Decimal) (models.WithdrawalRequest, error) {
	var req models.WithdrawalRequest
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO withdrawal_requests (account_id, id, requester, amount)
		 SELECT $1, COALESCE(MAX(id) + 1, 0), $2, $3 FROM withdrawal_requests WHERE account_id = $1
		 RETURNING id, created_at`,
		accountID, string(requester), amount,
	).Scan(&req.ID, &req.CreatedAt)
	if err != nil {
		return models.WithdrawalRequest{}, err
	}

	req.AccountID = accountID
	req.Requester = requester
	req.Amount = amount
	req.Approvals = make(map[models.Principal]bool)
	return req, nil
}

func (s *Store) GetRequest(ctx context.Context, accountID, requestID uint64) (models.WithdrawalRequest, error) {
	// Distinguish a missing request from a missing account.
	if _, err := s.GetAccount(ctx, accountID); err != nil {
		return models.WithdrawalRequest{}, err
	}

	req := models.WithdrawalRequest{Approvals: make(map[models.Principal]bool)}
	var requester string
	err := s.db.QueryRowContext(ctx,
		`SELECT account_id, id, requester, amount, executed, created_at
		 FROM withdrawal_requests WHERE account_id = $1 AND id = $2`,
		accountID, requestID,
	).Scan(&req.AccountID, &req.ID, &requester, &req.Amount, &req.Executed, &req.CreatedAt)
	if err == sql.ErrNoRows {
		return models.WithdrawalRequest{}, fmt.Errorf("%w: id %d on account %d", bank.ErrUnknownRequest, requestID, accountID)
	}
	if err != nil {
		return models.WithdrawalRequest{}, err
	}
	req.Requester = models.Principal(requester)

	rows, err := s.db.QueryContext(ctx,
		`SELECT approver FROM request_approvals WHERE account_id = $1 AND request_id = $2`,
		accountID, requestID)
	if err != nil {
		return models.WithdrawalRequest{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var approver string
		if err := rows.Scan(&approver); err != nil {
			return models.WithdrawalRequest{}, err
		}
		req.Approvals[models.Principal(approver)] = true
	}
	return req, rows.Err()
}

func (s *Store) AddApproval(ctx context.Context, accountID, requestID uint64, approver models.Principal) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO request_approvals (account_id, request_id, approver) VALUES ($1, $2, $3)`,
		accountID, requestID, string(approver))
	return err
}

func (s *Store) ExecuteRequest(ctx context.Context, accountID, requestID uint64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var amount decimal.Decimal
	err = tx.QueryRowContext(ctx,
		`UPDATE withdrawal_requests SET executed = TRUE
		 WHERE account_id = $1 AND id = $2 AND executed = FALSE
		 RETURNING amount`,
		accountID, requestID,
	).Scan(&amount)
	if err == sql.ErrNoRows {
		return fmt.Errorf("%w: id %d on account %d", bank.ErrUnknownRequest, requestID, accountID)
	}
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE accounts SET balance = balance - $2 WHERE id = $1`,
		accountID, amount)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// Compile-time check: Store implements the BankStore interface.
var _ interfaces.BankStore = (*Store)(nil)
