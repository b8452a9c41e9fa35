// Package api is the HTTP binding for the bank core: routing, identity
// middleware and error-to-status mapping. No business rule lives here.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/interfaces"
	"go.uber.org/zap"
)

// NewRouter builds the full route table. Everything under /v1 requires a
// resolved caller identity; /health does not.
func NewRouter(h *Handlers, idp interfaces.IdentityProvider, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Use(Identity(idp, log))

		r.Post("/accounts", h.CreateAccount)
		r.Get("/accounts", h.ListAccounts)
		r.Route("/accounts/{accountID}", func(r chi.Router) {
			r.Get("/balance", h.GetBalance)
			r.Post("/deposits", h.Deposit)
			r.Post("/requests", h.RequestWithdrawal)
			r.Route("/requests/{requestID}", func(r chi.Router) {
				r.Get("/", h.GetRequest)
				r.Get("/approvals", h.GetApprovals)
				r.Post("/approvals", h.ApproveWithdrawal)
				r.Post("/withdraw", h.Withdraw)
			})
		})
	})

	return r
}
