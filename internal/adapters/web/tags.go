package web

import (
	"net/http"

	"jewellery-backoffice/internal/core"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// createTagBatch handles POST /post/opening-tags-entry: one submission of N
// pieces becomes N tag rows with consecutive barcodes.
func (h *Handler) createTagBatch(w http.ResponseWriter, r *http.Request) {
	var tag core.OpeningTag
	if !decodeJSON(w, r, &tag) {
		return
	}
	created, err := h.tags.CreateBatch(r.Context(), tag)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, created)
}

func (h *Handler) listTags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.tags.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, tags)
}

func (h *Handler) updateTag(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid tag id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var tag core.OpeningTag
	if !decodeJSON(w, r, &tag) {
		return
	}
	if err := h.tags.Update(r.Context(), id, tag); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "tag updated"})
}

// deleteTag removes a tag, restores its piece and weight to the balance
// table, and cleans up its stored image.
func (h *Handler) deleteTag(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "opentag_id")
	if !ok {
		writeError(w, r, "invalid tag id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	deleted, err := h.tags.Delete(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if deleted.ProductImage != nil {
		h.removeUpload(*deleted.ProductImage)
	}
	writeJSON(w, map[string]string{"message": "tag deleted"})
}

func (h *Handler) nextBarcode(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		writeError(w, r, "prefix is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	code, err := h.docNums.NextBarcode(r.Context(), prefix)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"nextPCodeBarCode": code})
}

// upsertTagBalance handles POST /add-entry against updated_values_table.
func (h *Handler) upsertTagBalance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID   int             `json:"product_id" validate:"required"`
		TagID       string          `json:"tag_id" validate:"required"`
		Pcs         decimal.Decimal `json:"pcs"`
		GrossWeight decimal.Decimal `json:"gross_weight"`
	}
	if !h.decodeValid(w, r, &req) {
		return
	}
	bal, err := h.tags.UpsertBalance(r.Context(), req.ProductID, req.TagID, req.Pcs, req.GrossWeight)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, bal)
}

func (h *Handler) getTagBalance(w http.ResponseWriter, r *http.Request) {
	productID, ok := urlParamInt(r, "productId")
	if !ok {
		productID, ok = urlParamInt(r, "product_id")
	}
	if !ok {
		writeError(w, r, "invalid product id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	tagID := chi.URLParam(r, "tagId")
	if tagID == "" {
		tagID = chi.URLParam(r, "tag_id")
	}
	bal, err := h.tags.GetBalance(r.Context(), productID, tagID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, bal)
}

func (h *Handler) maxTagID(w http.ResponseWriter, r *http.Request) {
	maxID, err := h.tags.MaxTagID(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"maxTagId": maxID})
}
