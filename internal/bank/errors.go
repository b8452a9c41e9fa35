package bank

import "errors"

// Validation failures surfaced by the registry and the withdrawal ledger.
// All of them are synchronous and non-retryable; a rejected operation leaves
// state unchanged. Callers match with errors.Is.
var (
	// ErrUnauthorized means the caller lacks the required relationship to the
	// account or request (not an owner, not the requester, or the requester
	// trying to approve their own request).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidOwnerSet means the owner list at creation is malformed:
	// duplicates, the creator listed again, or more than four owners total.
	ErrInvalidOwnerSet = errors.New("invalid owner set")

	// ErrOwnerLimitExceeded means creating the account would push some
	// participant past the per-principal account cap.
	ErrOwnerLimitExceeded = errors.New("owner account limit exceeded")

	ErrUnknownAccount = errors.New("unknown account")
	ErrUnknownRequest = errors.New("unknown withdrawal request")

	// ErrInvalidAmount means a non-positive amount, or a requested amount
	// above the current balance.
	ErrInvalidAmount = errors.New("invalid amount")

	ErrAlreadyApproved = errors.New("already approved")
	ErrAlreadyExecuted = errors.New("request already executed")

	// ErrNotApproved means the quorum is unmet: at least one co-owner has not
	// approved the request yet.
	ErrNotApproved = errors.New("request not approved")

	ErrInsufficientBalance = errors.New("insufficient balance")
)
