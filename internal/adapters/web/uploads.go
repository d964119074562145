package web

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var allowedUploadExts = map[string]bool{
	".jpeg": true, ".jpg": true, ".png": true, ".pdf": true,
}

// serveUpload streams a stored file from UPLOAD_DIR. The filename is
// sanitized to its base to keep requests inside the directory.
func (h *Handler) serveUpload(w http.ResponseWriter, r *http.Request) {
	name := filepath.Base(chi.URLParam(r, "*"))
	if name == "." || name == "/" {
		writeError(w, r, "file not found", "NOT_FOUND", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, filepath.Join(h.uploadDir, name))
}

// uploadInvoice handles POST /upload-invoice: stores the multipart "invoice"
// file and returns its stored filename.
func (h *Handler) uploadInvoice(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		writeError(w, r, "invalid multipart body", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("invoice")
	if err != nil {
		writeError(w, r, "invoice file is required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}
	defer file.Close()

	name, err := h.storeUpload(file, header.Filename, "invoice")
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, map[string]string{"filename": name, "url": "/uploads/" + name})
}

// storeUpload writes an uploaded file under UPLOAD_DIR with a unique name,
// keeping the original extension. Only image and PDF extensions are accepted.
func (h *Handler) storeUpload(src io.Reader, originalName, prefix string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	if !allowedUploadExts[ext] {
		return "", fmt.Errorf("unsupported file type %s", ext)
	}
	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%s-%d-%s%s", prefix, time.Now().UnixMilli(), uuid.NewString()[:8], ext)
	dst, err := os.Create(filepath.Join(h.uploadDir, name))
	if err != nil {
		return "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("write upload file: %w", err)
	}
	return name, nil
}

// removeUpload deletes a stored file, best effort. Row deletion must not fail
// because the image is already gone.
func (h *Handler) removeUpload(name string) {
	if name == "" {
		return
	}
	path := filepath.Join(h.uploadDir, filepath.Base(name))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).WithField("file", name).Warn("upload cleanup failed")
	}
}
