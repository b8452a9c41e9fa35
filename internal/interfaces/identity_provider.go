package interfaces

import (
	"net/http"

	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/models"
)

// IdentityProvider resolves an incoming request to an already-authenticated
// principal. The core never authenticates callers itself; it only authorizes
// principals the transport layer has resolved.
type IdentityProvider interface {
	Resolve(r *http.Request) (models.Principal, error)
}
