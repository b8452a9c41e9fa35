package api

import (
	"context"
	"net/http"

	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/interfaces"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/models"
	"go.uber.org/zap"
)

type ctxKey int

const principalKey ctxKey = iota

// Identity resolves the caller on every request and stores the principal in
// the request context. Requests without a resolvable identity get a 401.
func Identity(idp interfaces.IdentityProvider, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := idp.Resolve(r)
			if err != nil {
				log.Debug("identity resolution failed", zap.Error(err))
				writeJSONError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			ctx := context.WithValue(r.Context(), principalKey, p)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func principalFrom(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey).(models.Principal)
	return p, ok
}
