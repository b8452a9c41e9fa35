package events

import (
	"time"

	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/models"
)

// AccountOpened is published once a new account has been committed.
type AccountOpened struct {
	AccountID  uint64             `json:"account_id"`
	Owners     []models.Principal `json:"owners"`
	OccurredAt time.Time          `json:"occurred_at"`
}
