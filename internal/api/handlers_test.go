package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/api"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/bank"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/events"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/identity"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/sink"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	store := memory.NewStore()
	reg := bank.NewAccountRegistry(store, events.NoopPublisher{}, nil)
	ledger := bank.NewWithdrawalLedger(store, reg, sink.NewRecordingSink(), events.NoopPublisher{}, nil)
	handlers := api.NewHandlers(reg, ledger, nil)

	srv := httptest.NewServer(api.NewRouter(handlers, identity.HeaderProvider{}, nil))
	t.Cleanup(srv.Close)
	return srv
}

// do sends a request as the given principal and decodes the JSON response
// into out when out is non-nil.
func do(t *testing.T, srv *httptest.Server, principal, method, path string, body any, out any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	if principal != "" {
		req.Header.Set("X-Principal", principal)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestCreateAccountEndpoint(t *testing.T) {
	srv := newServer(t)

	var created struct {
		AccountID uint64 `json:"account_id"`
	}
	resp := do(t, srv, "alice", http.MethodPost, "/v1/accounts",
		map[string]any{"co_owners": []string{"bob"}}, &created)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, uint64(0), created.AccountID)

	var listed struct {
		AccountIDs []uint64 `json:"account_ids"`
	}
	resp = do(t, srv, "bob", http.MethodGet, "/v1/accounts", nil, &listed)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []uint64{0}, listed.AccountIDs)
}

func TestMissingIdentityIsUnauthorized(t *testing.T) {
	srv := newServer(t)

	resp := do(t, srv, "", http.MethodGet, "/v1/accounts", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHealthNeedsNoIdentity(t *testing.T) {
	srv := newServer(t)

	resp := do(t, srv, "", http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateAccountValidationErrors(t *testing.T) {
	srv := newServer(t)

	resp := do(t, srv, "alice", http.MethodPost, "/v1/accounts",
		map[string]any{"co_owners": []string{"bob", "carol", "dan", "eve"}}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "five owners")

	resp = do(t, srv, "alice", http.MethodPost, "/v1/accounts",
		map[string]any{"co_owners": []string{"alice"}}, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "duplicate creator")
}

func TestDepositAuthorization(t *testing.T) {
	srv := newServer(t)

	do(t, srv, "alice", http.MethodPost, "/v1/accounts", map[string]any{}, nil)

	resp := do(t, srv, "mallory", http.MethodPost, "/v1/accounts/0/deposits",
		map[string]any{"amount": "100"}, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = do(t, srv, "alice", http.MethodPost, "/v1/accounts/42/deposits",
		map[string]any{"amount": "100"}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWithdrawalLifecycleOverHTTP(t *testing.T) {
	srv := newServer(t)

	do(t, srv, "alice", http.MethodPost, "/v1/accounts",
		map[string]any{"co_owners": []string{"bob"}}, nil)

	resp := do(t, srv, "alice", http.MethodPost, "/v1/accounts/0/deposits",
		map[string]any{"amount": "100"}, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var created struct {
		RequestID uint64 `json:"request_id"`
	}
	resp = do(t, srv, "alice", http.MethodPost, "/v1/accounts/0/requests",
		map[string]any{"amount": "100"}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, uint64(0), created.RequestID)

	// Unapproved execution conflicts.
	resp = do(t, srv, "alice", http.MethodPost, "/v1/accounts/0/requests/0/withdraw", nil, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// The requester cannot approve their own request.
	resp = do(t, srv, "alice", http.MethodPost, "/v1/accounts/0/requests/0/approvals", nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = do(t, srv, "bob", http.MethodPost, "/v1/accounts/0/requests/0/approvals", nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var approvals struct {
		Approvals int `json:"approvals"`
	}
	resp = do(t, srv, "bob", http.MethodGet, "/v1/accounts/0/requests/0/approvals", nil, &approvals)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, approvals.Approvals)

	resp = do(t, srv, "alice", http.MethodPost, "/v1/accounts/0/requests/0/withdraw", nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	// decimal.Decimal marshals as a quoted string.
	var balance struct {
		Balance string `json:"balance"`
	}
	resp = do(t, srv, "alice", http.MethodGet, "/v1/accounts/0/balance", nil, &balance)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "0", balance.Balance)

	// Executed requests are terminal.
	resp = do(t, srv, "alice", http.MethodPost, "/v1/accounts/0/requests/0/withdraw", nil, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestGetRequestIsOwnerOnly(t *testing.T) {
	srv := newServer(t)

	do(t, srv, "alice", http.MethodPost, "/v1/accounts", map[string]any{}, nil)
	do(t, srv, "alice", http.MethodPost, "/v1/accounts/0/deposits", map[string]any{"amount": "50"}, nil)
	do(t, srv, "alice", http.MethodPost, "/v1/accounts/0/requests", map[string]any{"amount": "50"}, nil)

	var req struct {
		Requester string `json:"requester"`
		Executed  bool   `json:"executed"`
	}
	resp := do(t, srv, "alice", http.MethodGet, "/v1/accounts/0/requests/0", nil, &req)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice", req.Requester)
	assert.False(t, req.Executed)

	resp = do(t, srv, "mallory", http.MethodGet, "/v1/accounts/0/requests/0", nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestOwnerCapOverHTTP(t *testing.T) {
	srv := newServer(t)

	for i := 0; i < 3; i++ {
		resp := do(t, srv, "alice", http.MethodPost, "/v1/accounts", map[string]any{}, nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode, fmt.Sprintf("account %d", i))
	}

	resp := do(t, srv, "alice", http.MethodPost, "/v1/accounts", map[string]any{}, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}
