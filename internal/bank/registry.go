package bank

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/interfaces"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/models"
	evt "github.com/sheikh-saqib/multiowner-bank-ledger/internal/models/events"
	"go.uber.org/zap"
)

const (
	// MaxOwners is the largest owner set an account may have (creator plus
	// three co-owners).
	MaxOwners = 4

	// MaxAccountsPerOwner caps how many accounts any single principal may
	// co-own.
	MaxAccountsPerOwner = 3
)

// TopicAccountOpened is the event topic for committed account creations.
const TopicAccountOpened = "account_opened"

// AccountRegistry owns the set of accounts: it enforces the creation
// constraints and answers ownership queries for the withdrawal ledger.
type AccountRegistry struct {
	store interfaces.BankStore
	pub   interfaces.EventPublisher
	log   *zap.Logger

	// mu serializes account creation. The per-principal account cap spans
	// accounts, so creation cannot rely on a per-account lock.
	mu sync.Mutex
}

// NewAccountRegistry wires a registry over the given store and publisher.
func NewAccountRegistry(store interfaces.BankStore, pub interfaces.EventPublisher, log *zap.Logger) *AccountRegistry {
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountRegistry{store: store, pub: pub, log: log}
}

// CreateAccount creates an account owned by creator plus up to three
// co-owners and returns the new account id. The balance starts at zero and
// the owner set is immutable afterwards.
//
// Fails with ErrInvalidOwnerSet when the owner list has duplicates, repeats
// the creator, or exceeds four owners total; with ErrOwnerLimitExceeded when
// any participant already owns MaxAccountsPerOwner accounts.
func (r *AccountRegistry) CreateAccount(ctx context.Context, creator models.Principal, coOwners []models.Principal) (uint64, error) {
	if creator == "" {
		return 0, fmt.Errorf("%w: empty creator", ErrInvalidOwnerSet)
	}
	if len(coOwners) > MaxOwners-1 {
		return 0, fmt.Errorf("%w: %d owners, at most %d allowed", ErrInvalidOwnerSet, len(coOwners)+1, MaxOwners)
	}

	owners := make([]models.Principal, 0, len(coOwners)+1)
	owners = append(owners, creator)
	seen := map[models.Principal]bool{creator: true}
	for _, o := range coOwners {
		if seen[o] {
			return 0, fmt.Errorf("%w: duplicate owner %q", ErrInvalidOwnerSet, o)
		}
		seen[o] = true
		owners = append(owners, o)
	}

	// The cap check and the insert must be one atomic step, otherwise two
	// concurrent creations could both pass the check and overshoot the cap.
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, o := range owners {
		ids, err := r.store.AccountIDsByOwner(ctx, o)
		if err != nil {
			return 0, err
		}
		if len(ids) >= MaxAccountsPerOwner {
			return 0, fmt.Errorf("%w: %q already owns %d accounts", ErrOwnerLimitExceeded, o, len(ids))
		}
	}

	acct, err := r.store.CreateAccount(ctx, owners)
	if err != nil {
		return 0, err
	}

	r.publish(TopicAccountOpened, evt.AccountOpened{
		AccountID:  acct.ID,
		Owners:     owners,
		OccurredAt: time.Now().UTC(),
	})
	r.log.Info("account opened",
		zap.Uint64("account_id", acct.ID),
		zap.Int("owners", len(owners)))
	return acct.ID, nil
}

// Accounts returns the ids of every account the caller owns, in creation
// order. An empty result is not an error.
func (r *AccountRegistry) Accounts(ctx context.Context, caller models.Principal) ([]uint64, error) {
	return r.store.AccountIDsByOwner(ctx, caller)
}

// IsOwner reports whether p owns the given account. Fails with
// ErrUnknownAccount when the account does not exist.
func (r *AccountRegistry) IsOwner(ctx context.Context, accountID uint64, p models.Principal) (bool, error) {
	acct, err := r.store.GetAccount(ctx, accountID)
	if err != nil {
		return false, err
	}
	return acct.HasOwner(p), nil
}

func (r *AccountRegistry) publish(topic string, event any) {
	if r.pub == nil {
		return
	}
	// Events are emitted after the transition committed; a broker failure
	// must not un-commit it.
	if err := r.pub.Publish(topic, event); err != nil {
		r.log.Warn("event publish failed", zap.String("topic", topic), zap.Error(err))
	}
}
