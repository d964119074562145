package web

import (
	"net/http"

	"jewellery-backoffice/internal/core"

	"github.com/go-chi/chi/v5"
)

// saveSale handles POST /save-repair-details, the sale/invoice save. The
// legacy path name is kept for the frontend contract.
func (h *Handler) saveSale(w http.ResponseWriter, r *http.Request) {
	var req core.SaleSaveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	invoice, err := h.sales.Save(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, map[string]string{
		"message":        "sale saved",
		"invoice_number": invoice,
	})
}

func (h *Handler) listLatestSalePerInvoice(w http.ResponseWriter, r *http.Request) {
	lines, err := h.sales.ListLatestPerInvoice(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, lines)
}

func (h *Handler) getSaleByInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceNumber := chi.URLParam(r, "invoice_number")
	lines, err := h.sales.GetByInvoice(r.Context(), invoiceNumber)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, lines)
}

func (h *Handler) getSaleByOrder(w http.ResponseWriter, r *http.Request) {
	orderNumber := chi.URLParam(r, "order_number")
	lines, err := h.sales.GetByOrder(r.Context(), orderNumber)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, lines)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	lines, err := h.sales.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, lines)
}

// deleteSaleInvoice handles DELETE /repair-details/{invoiceNumber}. Blocked
// with 409 while any line of the invoice sits in a non-deletable status.
func (h *Handler) deleteSaleInvoice(w http.ResponseWriter, r *http.Request) {
	invoiceNumber := chi.URLParam(r, "invoiceNumber")
	deleted, err := h.sales.DeleteByInvoice(r.Context(), invoiceNumber)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if r.URL.Query().Get("skipMessage") == "true" {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, map[string]any{
		"message":      "invoice deleted",
		"deleted_rows": deleted,
	})
}

// convertOrder handles POST /convert-order: mints an invoice number for an
// order's lines and clones them as ConvertedInvoice rows.
func (h *Handler) convertOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		OrderNumber string `json:"order_number" validate:"required"`
	}
	if !h.decodeValid(w, r, &req) {
		return
	}
	invoice, err := h.sales.ConvertOrder(r.Context(), req.OrderNumber)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{
		"message":        "order converted",
		"invoice_number": invoice,
	})
}

func (h *Handler) updateSaleStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid sale id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var req struct {
		SaleStatus string `json:"sale_status" validate:"required"`
	}
	if !h.decodeValid(w, r, &req) {
		return
	}
	if err := h.sales.UpdateSaleStatus(r.Context(), id, req.SaleStatus); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "status updated"})
}

func (h *Handler) lastInvoiceNumber(w http.ResponseWriter, r *http.Request) {
	number, err := h.docNums.NextInvoiceNumber(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"lastInvoiceNumber": number})
}

func (h *Handler) lastOrderNumber(w http.ResponseWriter, r *http.Request) {
	number, err := h.docNums.NextOrderNumber(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"lastOrderNumber": number})
}
