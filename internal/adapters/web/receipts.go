package web

import (
	"context"
	"net/http"

	"jewellery-backoffice/internal/core"
)

func (h *Handler) recordReceipt(w http.ResponseWriter, r *http.Request) {
	var receipt core.Receipt
	if !decodeJSON(w, r, &receipt) {
		return
	}
	id, err := h.receipts.Record(r.Context(), receipt)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, map[string]any{"id": id})
}

// recordOrderReceipt is the advance-payment variant: the amount lands on
// sale lines keyed by order_number.
func (h *Handler) recordOrderReceipt(w http.ResponseWriter, r *http.Request) {
	var receipt core.Receipt
	if !decodeJSON(w, r, &receipt) {
		return
	}
	id, err := h.receipts.RecordForOrder(r.Context(), receipt)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, map[string]any{"id": id})
}

func (h *Handler) listReceipts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := core.ReceiptFilter{
		Date:        q.Get("date"),
		Mode:        q.Get("mode"),
		AccountName: q.Get("account_name"),
	}
	receipts, err := h.receipts.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, receipts)
}

func (h *Handler) getReceipt(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid receipt id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	receipt, err := h.receipts.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, receipt)
}

func (h *Handler) updateReceipt(w http.ResponseWriter, r *http.Request) {
	h.editReceipt(w, r, h.receipts.Update)
}

func (h *Handler) updateOrderReceipt(w http.ResponseWriter, r *http.Request) {
	h.editReceipt(w, r, h.receipts.UpdateForOrder)
}

func (h *Handler) editReceipt(w http.ResponseWriter, r *http.Request,
	update func(ctx context.Context, id int, receipt core.Receipt) error) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid receipt id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var receipt core.Receipt
	if !decodeJSON(w, r, &receipt) {
		return
	}
	if err := update(r.Context(), id, receipt); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "receipt updated"})
}

func (h *Handler) deleteReceipt(w http.ResponseWriter, r *http.Request) {
	h.removeReceipt(w, r, h.receipts.Delete)
}

func (h *Handler) deleteOrderReceipt(w http.ResponseWriter, r *http.Request) {
	h.removeReceipt(w, r, h.receipts.DeleteForOrder)
}

func (h *Handler) removeReceipt(w http.ResponseWriter, r *http.Request,
	remove func(ctx context.Context, id int) error) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid receipt id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := remove(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "receipt deleted"})
}

func (h *Handler) lastReceiptNumber(w http.ResponseWriter, r *http.Request) {
	number, err := h.docNums.NextReceiptNumber(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"lastReceiptNumber": number})
}

func (h *Handler) receiptAccountNames(w http.ResponseWriter, r *http.Request) {
	names, err := h.accounts.ListNamesForReceipts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, names)
}
