package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WithdrawalRequest is one owner's proposal to take funds out of an account.
// It stays on the account forever as an audit record; Executed flips to true
// at most once, and only after every co-owner has approved.
type WithdrawalRequest struct {
	ID        uint64 // unique within the owning account, not globally
	AccountID uint64
	Requester Principal
	Amount    decimal.Decimal
	Approvals map[Principal]bool // co-owners that approved; never contains Requester
	Executed  bool
	CreatedAt time.Time
}

// ApprovedBy reports whether p already approved this request.
func (r WithdrawalRequest) ApprovedBy(p Principal) bool {
	return r.Approvals[p]
}

// ApprovalCount returns the number of distinct co-owner approvals.
func (r WithdrawalRequest) ApprovalCount() int {
	return len(r.Approvals)
}

// Clone returns a deep copy so stores can hand out requests without aliasing
// their internal state.
func (r WithdrawalRequest) Clone() WithdrawalRequest {
	approvals := make(map[Principal]bool, len(r.Approvals))
	for p := range r.Approvals {
		approvals[p] = true
	}
	r.Approvals = approvals
	return r
}
