package web

import (
	"net/http"

	"jewellery-backoffice/internal/core"
)

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var p core.Product
	if !decodeJSON(w, r, &p) {
		return
	}
	id, err := h.products.Create(r.Context(), p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, map[string]any{
		"message":    "product added",
		"product_id": id,
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid product id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	p, err := h.products.Get(r.Context(), productID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, p)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := urlParamInt(r, "product_id")
	if !ok {
		writeError(w, r, "invalid product id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var p core.Product
	if !decodeJSON(w, r, &p) {
		return
	}
	if err := h.products.Update(r.Context(), productID, p); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "product updated"})
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	productID, ok := urlParamInt(r, "product_id")
	if !ok {
		writeError(w, r, "invalid product id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.products.Delete(r.Context(), productID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "product deleted"})
}

// checkAndInsertProduct handles POST /api/check-and-insert: the tag-entry
// screen's find-or-create by (name, category, purity).
func (h *Handler) checkAndInsertProduct(w http.ResponseWriter, r *http.Request) {
	var p core.Product
	if !decodeJSON(w, r, &p) {
		return
	}
	id, exists, err := h.products.CheckAndInsert(r.Context(), p)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if exists {
		writeJSON(w, map[string]any{
			"exists":     true,
			"message":    "product already exists",
			"product_id": id,
		})
		return
	}
	writeCreated(w, map[string]any{
		"exists":     false,
		"product_id": id,
	})
}

func (h *Handler) lastRbarcode(w http.ResponseWriter, r *http.Request) {
	code, err := h.products.NextRbarcode(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"lastrbNumbers": code})
}
