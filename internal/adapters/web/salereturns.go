package web

import (
	"net/http"

	"jewellery-backoffice/internal/core"
)

// Sale-return handlers. A return arrives from the frontend as a sequence of
// batch calls: sale-line status flips, tag status corrections, re-issued tags,
// and the product return counters. The legacy paths are kept.

// updateReturnLineStatuses handles POST /updateRepairDetails.
func (h *Handler) updateReturnLineStatuses(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Updates []core.SaleLineStatusUpdate `json:"updates" validate:"required,min=1"`
	}
	if !h.decodeValid(w, r, &req) {
		return
	}
	if err := h.saleReturns.UpdateLineStatuses(r.Context(), req.Updates); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "sale statuses updated"})
}

// updateReturnedTagStatuses handles POST /updateOpenTags.
func (h *Handler) updateReturnedTagStatuses(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Updates []core.TagStatusUpdate `json:"updates" validate:"required,min=1"`
	}
	if !h.decodeValid(w, r, &req) {
		return
	}
	if err := h.saleReturns.UpdateTagStatuses(r.Context(), req.Updates); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "tag statuses updated"})
}

// reissueReturnedTags handles POST /addAvailableEntry: each returned barcode
// comes back into stock as a fresh Available tag under the next code of its
// prefix.
func (h *Handler) reissueReturnedTags(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Codes []string `json:"codes" validate:"required,min=1"`
	}
	if !h.decodeValid(w, r, &req) {
		return
	}
	issued, err := h.saleReturns.ReissueTags(r.Context(), req.Codes)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, map[string]any{
		"message": "tags reissued",
		"codes":   issued,
	})
}

// recordProductReturns handles POST /updateProduct, the sale-return counter
// bump.
func (h *Handler) recordProductReturns(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Updates []core.ProductReturn `json:"updates" validate:"required,min=1"`
	}
	if !h.decodeValid(w, r, &req) {
		return
	}
	if err := h.saleReturns.RecordProductReturns(r.Context(), req.Updates); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "product return counters updated"})
}
