package web

import (
	"net/http"

	"jewellery-backoffice/internal/core"
)

// postRates handles POST /post/rates: appends to the rate history and
// rewrites the current_rates singleton.
func (h *Handler) postRates(w http.ResponseWriter, r *http.Request) {
	var rates core.MetalRates
	if !decodeJSON(w, r, &rates) {
		return
	}
	id, err := h.rates.Post(r.Context(), rates)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, map[string]any{"id": id})
}

func (h *Handler) currentRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.rates.Current(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, rates)
}

func (h *Handler) ratesHistory(w http.ResponseWriter, r *http.Request) {
	history, err := h.rates.History(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, history)
}
