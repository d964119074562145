package web

import (
	"net/http"

	"jewellery-backoffice/internal/core"
)

// createRepair handles POST /add/repairs, the counter intake of a repair job.
func (h *Handler) createRepair(w http.ResponseWriter, r *http.Request) {
	var rep core.Repair
	if !decodeJSON(w, r, &rep) {
		return
	}
	id, err := h.repairs.Create(r.Context(), rep)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, map[string]any{
		"message":  "repair added",
		"repairId": id,
	})
}

func (h *Handler) listRepairs(w http.ResponseWriter, r *http.Request) {
	repairs, err := h.repairs.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, repairs)
}

func (h *Handler) getRepair(w http.ResponseWriter, r *http.Request) {
	repairID, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid repair id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	rep, err := h.repairs.Get(r.Context(), repairID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, rep)
}

func (h *Handler) updateRepair(w http.ResponseWriter, r *http.Request) {
	repairID, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid repair id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var rep core.Repair
	if !decodeJSON(w, r, &rep) {
		return
	}
	if err := h.repairs.Update(r.Context(), repairID, rep); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "repair updated"})
}

func (h *Handler) deleteRepair(w http.ResponseWriter, r *http.Request) {
	repairID, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid repair id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.repairs.Delete(r.Context(), repairID); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "repair deleted"})
}

func (h *Handler) lastRepairNumber(w http.ResponseWriter, r *http.Request) {
	number, err := h.docNums.NextRepairNumber(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"lastRPNNumber": number})
}

// convertRepair handles POST /convert-repair: bills a finished repair under a
// freshly minted invoice number and hands it back to the customer.
func (h *Handler) convertRepair(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RepairID int `json:"repair_id" validate:"required"`
	}
	if !h.decodeValid(w, r, &req) {
		return
	}
	invoice, err := h.sales.ConvertRepair(r.Context(), req.RepairID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{
		"success":       true,
		"invoiceNumber": invoice,
	})
}

// assignRepairToWorkshop handles POST /assign/repairdetails: work items plus
// the parent repair's status flip, one transaction.
func (h *Handler) assignRepairToWorkshop(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RepairID int                         `json:"repair_id" validate:"required"`
		Details  []core.AssignedRepairDetail `json:"repair_details" validate:"required,min=1"`
	}
	if !h.decodeValid(w, r, &req) {
		return
	}
	if err := h.repairs.AssignToWorkshop(r.Context(), req.RepairID, req.Details); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeCreated(w, map[string]string{"message": "repair assigned to workshop"})
}

func (h *Handler) listAssignedRepairs(w http.ResponseWriter, r *http.Request) {
	details, err := h.repairs.ListAssigned(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, details)
}

func (h *Handler) getAssignedByRepair(w http.ResponseWriter, r *http.Request) {
	repairID, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid repair id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	details, err := h.repairs.GetAssignedByRepair(r.Context(), repairID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, details)
}

func (h *Handler) updateAssignedRepair(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid detail id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var detail core.AssignedRepairDetail
	if !decodeJSON(w, r, &detail) {
		return
	}
	if err := h.repairs.UpdateAssigned(r.Context(), id, detail); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "repair detail updated"})
}

func (h *Handler) deleteAssignedRepair(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamInt(r, "id")
	if !ok {
		writeError(w, r, "invalid detail id", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	if err := h.repairs.DeleteAssigned(r.Context(), id); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "repair detail deleted"})
}

func (h *Handler) updateRepairStatus(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RepairID int    `json:"repair_id" validate:"required"`
		Status   string `json:"status" validate:"required"`
	}
	if !h.decodeValid(w, r, &req) {
		return
	}
	if err := h.repairs.UpdateStatus(r.Context(), req.RepairID, req.Status); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"message": "repair status updated"})
}
