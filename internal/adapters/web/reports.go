package web

import "net/http"

func (h *Handler) stockRegister(w http.ResponseWriter, r *http.Request) {
	register, err := h.reports.StockRegister(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, register)
}

// stockRegisterXLSX streams the register as a workbook download.
func (h *Handler) stockRegisterXLSX(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=stock-register.xlsx")
	if err := h.reports.ExportStockRegister(r.Context(), w); err != nil {
		http.Error(w, "failed to write workbook", http.StatusInternalServerError)
	}
}
