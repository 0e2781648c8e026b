package handler

import (
	"net/http"
	"strconv"

	"github.com/ifti136/android-demo/internal/ledger"
	"github.com/ifti136/android-demo/internal/models"
)

type transactionRequest struct {
	Amount int    `json:"amount"`
	Source string `json:"source"`
	Date   string `json:"date"`
}

// HandleTransactions serves the transaction history (GET) and adds (POST),
// edits (PUT ?id=) or removes (DELETE ?id=) transactions.
func (d *Dependencies) HandleTransactions(w http.ResponseWriter, r *http.Request, session models.UserSession) {
	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		q := ledger.HistoryQuery{
			Source: r.URL.Query().Get("source"),
			Search: r.URL.Query().Get("q"),
		}
		if raw := r.URL.Query().Get("page"); raw != "" {
			page, err := strconv.Atoi(raw)
			if err != nil || page < 0 {
				WriteError(w, http.StatusBadRequest, "Invalid page")
				return
			}
			q.Page = page
		}
		if raw := r.URL.Query().Get("per_page"); raw != "" {
			perPage, err := strconv.Atoi(raw)
			if err != nil || perPage <= 0 {
				WriteError(w, http.StatusBadRequest, "Invalid per_page")
				return
			}
			q.PerPage = perPage
		}
		page, err := d.Profiles.History(ctx, session, q)
		if err != nil {
			writeServiceError(w, r, "load history", err)
			return
		}
		WriteJSON(w, http.StatusOK, page)

	case http.MethodPost:
		var req transactionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		env, err := d.Profiles.AddTransaction(ctx, session, req.Amount, req.Source, req.Date)
		if err != nil {
			writeServiceError(w, r, "add transaction", err)
			return
		}
		WriteJSON(w, http.StatusCreated, env)

	case http.MethodPut:
		id := r.URL.Query().Get("id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "Missing id")
			return
		}
		var req transactionRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		env, err := d.Profiles.UpdateTransaction(ctx, session, id, req.Amount, req.Source, req.Date)
		if err != nil {
			writeServiceError(w, r, "update transaction", err)
			return
		}
		WriteJSON(w, http.StatusOK, env)

	case http.MethodDelete:
		id := r.URL.Query().Get("id")
		if id == "" {
			WriteError(w, http.StatusBadRequest, "Missing id")
			return
		}
		env, err := d.Profiles.DeleteTransaction(ctx, session, id)
		if err != nil {
			writeServiceError(w, r, "delete transaction", err)
			return
		}
		WriteJSON(w, http.StatusOK, env)

	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
