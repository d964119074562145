package web

import (
	"net/http"

	"jewellery-backoffice/internal/core"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) saveURDPurchase(w http.ResponseWriter, r *http.Request) {
	var req core.URDSaveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	urdNumber, err := h.urd.Save(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, map[string]string{
		"message":            "urd purchase saved",
		"urdpurchase_number": urdNumber,
	})
}

func (h *Handler) listURDPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.urd.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, purchases)
}

func (h *Handler) lastURDNumber(w http.ResponseWriter, r *http.Request) {
	number, err := h.docNums.NextURDNumber(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"lastURDPurchaseNumber": number})
}

func (h *Handler) getURDPurchase(w http.ResponseWriter, r *http.Request) {
	urdNumber := chi.URLParam(r, "urdPurchaseNumber")
	items, err := h.urd.GetByNumber(r.Context(), urdNumber)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, items)
}

func (h *Handler) updateURDPurchase(w http.ResponseWriter, r *http.Request) {
	urdNumber := chi.URLParam(r, "urdPurchaseNumber")
	var req core.URDSaveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.urd.UpdateByNumber(r.Context(), urdNumber, req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "urd purchase updated"})
}

func (h *Handler) deleteURDPurchase(w http.ResponseWriter, r *http.Request) {
	urdNumber := chi.URLParam(r, "urdpurchase_number")
	if err := h.urd.DeleteByNumber(r.Context(), urdNumber); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "urd purchase deleted"})
}
