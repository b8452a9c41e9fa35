package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Principal identifies an authenticated caller. It is opaque to the ledger:
// the transport layer resolves it (JWT subject, header, ...) and the core only
// ever compares principals for equality.
type Principal string

// Account is a custodial account jointly controlled by up to four owners.
// The owner set is fixed at creation time; funds leave the account only
// through an executed WithdrawalRequest.
type Account struct {
	ID        uint64
	Owners    []Principal // creation order, creator first; 1-4 entries, pairwise distinct
	Balance   decimal.Decimal
	CreatedAt time.Time
}

// HasOwner reports whether p is one of the account's owners.
func (a Account) HasOwner(p Principal) bool {
	for _, o := range a.Owners {
		if o == p {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so stores can hand out accounts without aliasing
// their internal state.
func (a Account) Clone() Account {
	owners := make([]Principal, len(a.Owners))
	copy(owners, a.Owners)
	a.Owners = owners
	return a
}
