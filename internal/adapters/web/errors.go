package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"jewellery-backoffice/internal/core"

	"github.com/sirupsen/logrus"
)

type errorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError writes a structured JSON error response.
func writeError(w http.ResponseWriter, r *http.Request, message, code string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	resp := errorResponse{
		Error:     message,
		Code:      code,
		RequestID: requestIDFromContext(r.Context()),
	}
	_ = json.NewEncoder(w).Encode(resp)
}

// writeJSON writes a JSON response with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// writeCreated writes a JSON response with status 201.
func writeCreated(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(v)
}

// writeServiceError maps the domain error taxonomy onto HTTP statuses:
// NotFoundError 404, ValidationError 400, ConflictError 409, anything else
// 500 with the message logged, not exposed.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var nf *core.NotFoundError
	if errors.As(err, &nf) {
		writeError(w, r, nf.Error(), "NOT_FOUND", http.StatusNotFound)
		return
	}
	var ve *core.ValidationError
	if errors.As(err, &ve) {
		writeError(w, r, ve.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	var ce *core.ConflictError
	if errors.As(err, &ce) {
		writeError(w, r, ce.Error(), "CONFLICT", http.StatusConflict)
		return
	}
	logrus.WithFields(logrus.Fields{
		"request_id": requestIDFromContext(r.Context()),
		"path":       r.URL.Path,
	}).WithError(err).Error("request failed")
	writeError(w, r, "internal server error", "INTERNAL_ERROR", http.StatusInternalServerError)
}
