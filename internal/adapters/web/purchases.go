package web

import (
	"net/http"

	"jewellery-backoffice/internal/core"

	"github.com/go-chi/chi/v5"
)

// savePurchases handles POST /post/purchase: an array of purchase lines for
// one invoice, each inserted or updated by (id, invoice).
func (h *Handler) savePurchases(w http.ResponseWriter, r *http.Request) {
	var lines []core.Purchase
	if !decodeJSON(w, r, &lines) {
		return
	}
	aggregates, err := h.purchases.Save(r.Context(), lines)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, map[string]any{
		"message":    "purchase saved",
		"aggregates": aggregates,
	})
}

func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.purchases.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, purchases)
}

func (h *Handler) getPurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid purchase id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	p, err := h.purchases.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, p)
}

func (h *Handler) updatePurchaseDetails(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid purchase id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var p core.Purchase
	if !decodeJSON(w, r, &p) {
		return
	}
	if err := h.purchases.UpdateDetails(r.Context(), id, p); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "purchase updated"})
}

func (h *Handler) deletePurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid purchase id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.purchases.Delete(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "purchase deleted"})
}

func (h *Handler) deletePurchaseInvoice(w http.ResponseWriter, r *http.Request) {
	invoice := chi.URLParam(r, "invoice")
	if err := h.purchases.DeleteByInvoice(r.Context(), invoice); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "invoice purchases deleted"})
}

func (h *Handler) listLatestPurchasePerInvoice(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.purchases.ListLatestPerInvoice(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, purchases)
}

func (h *Handler) getPurchasesByInvoice(w http.ResponseWriter, r *http.Request) {
	invoice := chi.URLParam(r, "invoice")
	purchases, err := h.purchases.GetByInvoice(r.Context(), invoice)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, purchases)
}

func (h *Handler) updateClaimRemark(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID          int    `json:"id" validate:"required"`
		ClaimRemark string `json:"claim_remark"`
	}
	if !h.decodeValid(w, r, &req) {
		return
	}
	if err := h.purchases.UpdateClaimRemark(r.Context(), req.ID, req.ClaimRemark); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "remark updated"})
}

// Rate-cuts

func (h *Handler) listRateCuts(w http.ResponseWriter, r *http.Request) {
	rateCuts, err := h.rateCuts.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, rateCuts)
}

func (h *Handler) getRateCut(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid rate cut id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	rc, err := h.rateCuts.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, rc)
}

func (h *Handler) createRateCut(w http.ResponseWriter, r *http.Request) {
	var rc core.RateCut
	if !decodeJSON(w, r, &rc) {
		return
	}
	id, err := h.rateCuts.Create(r.Context(), rc)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, map[string]any{"rate_cut_id": id})
}

// applyPurchasePayment handles POST /purchasePayments: records the payment
// and settles the targeted rate-cut.
func (h *Handler) applyPurchasePayment(w http.ResponseWriter, r *http.Request) {
	var payment core.PurchasePayment
	if !decodeJSON(w, r, &payment) {
		return
	}
	id, err := h.rateCuts.ApplyPayment(r.Context(), payment)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, map[string]any{"id": id})
}

func (h *Handler) listPurchasePayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.rateCuts.ListPayments(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, payments)
}

func (h *Handler) lastPaymentNumber(w http.ResponseWriter, r *http.Request) {
	number, err := h.docNums.NextPaymentNumber(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"lastPaymentNumber": number})
}

func (h *Handler) paymentAccountNames(w http.ResponseWriter, r *http.Request) {
	names, err := h.accounts.ListNamesForPayments(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, names)
}
