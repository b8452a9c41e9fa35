package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/bank"
	"github.com/sheikh-saqib/multiowner-bank-ledger/internal/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Handlers exposes the registry and withdrawal ledger over HTTP. It is thin
// glue: identity comes from middleware, every rule lives in the bank package,
// and errors map onto statuses in writeBankError.
type Handlers struct {
	registry *bank.AccountRegistry
	ledger   *bank.WithdrawalLedger
	log      *zap.Logger
}

func NewHandlers(registry *bank.AccountRegistry, ledger *bank.WithdrawalLedger, log *zap.Logger) *Handlers {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handlers{registry: registry, ledger: ledger, log: log}
}

type createAccountRequest struct {
	CoOwners []models.Principal `json:"co_owners"`
}

func (h *Handlers) CreateAccount(w http.ResponseWriter, r *http.Request) {
	caller, ok := principalFrom(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.registry.CreateAccount(r.Context(), caller, req.CoOwners)
	if err != nil {
		h.writeBankError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uint64{"account_id": id})
}

func (h *Handlers) ListAccounts(w http.ResponseWriter, r *http.Request) {
	caller, ok := principalFrom(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ids, err := h.registry.Accounts(r.Context(), caller)
	if err != nil {
		h.writeBankError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]uint64{"account_ids": ids})
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *Handlers) Deposit(w http.ResponseWriter, r *http.Request) {
	caller, accountID, ok := h.callerAndAccount(w, r)
	if !ok {
		return
	}
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.ledger.Deposit(r.Context(), caller, accountID, req.Amount); err != nil {
		h.writeBankError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	caller, accountID, ok := h.callerAndAccount(w, r)
	if !ok {
		return
	}
	var req amountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.ledger.RequestWithdrawal(r.Context(), caller, accountID, req.Amount)
	if err != nil {
		h.writeBankError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uint64{"request_id": id})
}

func (h *Handlers) ApproveWithdrawal(w http.ResponseWriter, r *http.Request) {
	caller, accountID, ok := h.callerAndAccount(w, r)
	if !ok {
		return
	}
	requestID, ok := h.pathID(w, r, "requestID")
	if !ok {
		return
	}

	if err := h.ledger.ApproveWithdrawal(r.Context(), caller, accountID, requestID); err != nil {
		h.writeBankError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) Withdraw(w http.ResponseWriter, r *http.Request) {
	caller, accountID, ok := h.callerAndAccount(w, r)
	if !ok {
		return
	}
	requestID, ok := h.pathID(w, r, "requestID")
	if !ok {
		return
	}

	if err := h.ledger.Withdraw(r.Context(), caller, accountID, requestID); err != nil {
		h.writeBankError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) GetApprovals(w http.ResponseWriter, r *http.Request) {
	accountID, ok := h.pathID(w, r, "accountID")
	if !ok {
		return
	}
	requestID, ok := h.pathID(w, r, "requestID")
	if !ok {
		return
	}

	count, err := h.ledger.Approvals(r.Context(), accountID, requestID)
	if err != nil {
		h.writeBankError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"approvals": count})
}

func (h *Handlers) GetBalance(w http.ResponseWriter, r *http.Request) {
	caller, accountID, ok := h.callerAndAccount(w, r)
	if !ok {
		return
	}
	// Balance reads are owner-only.
	owner, err := h.registry.IsOwner(r.Context(), accountID, caller)
	if err != nil {
		h.writeBankError(w, err)
		return
	}
	if !owner {
		h.writeBankError(w, bank.ErrUnauthorized)
		return
	}

	balance, err := h.ledger.Balance(r.Context(), accountID)
	if err != nil {
		h.writeBankError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"balance": balance})
}

type requestResponse struct {
	RequestID uint64             `json:"request_id"`
	AccountID uint64             `json:"account_id"`
	Requester models.Principal   `json:"requester"`
	Amount    decimal.Decimal    `json:"amount"`
	Approvals []models.Principal `json:"approvals"`
	Executed  bool               `json:"executed"`
}

func (h *Handlers) GetRequest(w http.ResponseWriter, r *http.Request) {
	caller, accountID, ok := h.callerAndAccount(w, r)
	if !ok {
		return
	}
	requestID, ok := h.pathID(w, r, "requestID")
	if !ok {
		return
	}
	owner, err := h.registry.IsOwner(r.Context(), accountID, caller)
	if err != nil {
		h.writeBankError(w, err)
		return
	}
	if !owner {
		h.writeBankError(w, bank.ErrUnauthorized)
		return
	}

	req, err := h.ledger.Request(r.Context(), accountID, requestID)
	if err != nil {
		h.writeBankError(w, err)
		return
	}

	approvals := make([]models.Principal, 0, len(req.Approvals))
	for p := range req.Approvals {
		approvals = append(approvals, p)
	}
	writeJSON(w, http.StatusOK, requestResponse{
		RequestID: req.ID,
		AccountID: req.AccountID,
		Requester: req.Requester,
		Amount:    req.Amount,
		Approvals: approvals,
		Executed:  req.Executed,
	})
}

func (h *Handlers) callerAndAccount(w http.ResponseWriter, r *http.Request) (models.Principal, uint64, bool) {
	caller, ok := principalFrom(r.Context())
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "authentication required")
		return "", 0, false
	}
	accountID, ok := h.pathID(w, r, "accountID")
	if !ok {
		return "", 0, false
	}
	return caller, accountID, true
}

func (h *Handlers) pathID(w http.ResponseWriter, r *http.Request, param string) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, param), 10, 64)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid "+param)
		return 0, false
	}
	return id, true
}

// writeBankError maps the ledger's error taxonomy onto HTTP statuses.
func (h *Handlers) writeBankError(w http.ResponseWriter, err error) {
	var status int
	switch {
	case errors.Is(err, bank.ErrUnknownAccount), errors.Is(err, bank.ErrUnknownRequest):
		status = http.StatusNotFound
	case errors.Is(err, bank.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, bank.ErrInvalidOwnerSet), errors.Is(err, bank.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, bank.ErrOwnerLimitExceeded),
		errors.Is(err, bank.ErrAlreadyApproved),
		errors.Is(err, bank.ErrAlreadyExecuted),
		errors.Is(err, bank.ErrNotApproved),
		errors.Is(err, bank.ErrInsufficientBalance):
		status = http.StatusConflict
	default:
		h.log.Error("internal error", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSONError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
