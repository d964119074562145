package web

import (
	"net/http"

	"jewellery-backoffice/internal/core"
)

func (h *Handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var account core.Account
	if !decodeJSON(w, r, &account) {
		return
	}
	id, err := h.accounts.Create(r.Context(), account)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, map[string]any{"account_id": id})
}

func (h *Handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, accounts)
}

func (h *Handler) getAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid account id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	account, err := h.accounts.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, account)
}

func (h *Handler) updateAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid account id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var account core.Account
	if !decodeJSON(w, r, &account) {
		return
	}
	if err := h.accounts.Update(r.Context(), id, account); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "account updated"})
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid account id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.accounts.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "account deleted"})
}
