package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"financas/internal/core"
)

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTransactions(w, r)
	case http.MethodPost:
		s.handleCreateTransaction(w, r)
	case http.MethodDelete:
		s.handleDeleteTransaction(w, r)
	default:
		methodNotAllowed(w, "GET", "POST", "DELETE")
	}
}

// handleListTransactions returns the selected month's transactions, newest
// first.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	month := parseMonthParam(r)
	snapshot := s.store.Snapshot()

	respondJSON(w, http.StatusOK, map[string]any{
		"month":        month.MonthKey(),
		"transactions": core.MonthTransactions(snapshot.Transactions, month),
	})
}

type createTransactionRequest struct {
	Type        string      `json:"type"`
	Date        string      `json:"date"`
	Amount      amountField `json:"amount"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := core.ParseDate(strings.TrimSpace(req.Date))
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, core.ErrInvalidDate.Error())
		return
	}

	draft := core.TransactionDraft{
		Type:        core.TransactionType(strings.TrimSpace(req.Type)),
		Date:        date,
		Amount:      req.Amount.Money,
		Description: sanitizeInput(req.Description),
		Category:    sanitizeInput(req.Category),
	}
	if err := draft.Validate(); err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	t := s.store.AddTransaction(r.Context(), draft)
	respondJSON(w, http.StatusCreated, t)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		respondError(w, http.StatusBadRequest, "missing id parameter")
		return
	}

	if !s.store.DeleteTransaction(r.Context(), id) {
		respondError(w, http.StatusNotFound, "transaction not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
