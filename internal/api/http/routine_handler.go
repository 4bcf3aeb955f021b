package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"gymcrew-backend/internal/logger"
	"gymcrew-backend/internal/storage"
)

// MaxRoutineBytes caps a single routine document upload.
const MaxRoutineBytes = 20 << 20

// RoutineHandler moves routine document bytes for presigned URLs issued by a
// local blob store.
type RoutineHandler struct {
	files   storage.FileServer
	allowed func(contentType string) bool
}

// NewRoutineHandler creates a new routine document handler
func NewRoutineHandler(files storage.FileServer, allowed func(contentType string) bool) *RoutineHandler {
	return &RoutineHandler{
		files:   files,
		allowed: allowed,
	}
}

// verify checks the signed query parameters and returns the key.
func (h *RoutineHandler) verify(r *http.Request, op string) (string, bool) {
	q := r.URL.Query()
	key := q.Get("key")
	expires, err := strconv.ParseInt(q.Get("expires"), 10, 64)
	if key == "" || err != nil {
		return "", false
	}
	return key, h.files.Verify(key, op, expires, q.Get("sig"))
}

// HandleUpload handles HTTP PUT requests to presigned upload URLs
func (h *RoutineHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	key, ok := h.verify(r, storage.OpUpload)
	if !ok {
		http.Error(w, "Invalid or expired upload URL", http.StatusForbidden)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if !h.allowed(contentType) {
		http.Error(w, "Invalid content type", http.StatusUnsupportedMediaType)
		return
	}

	body := http.MaxBytesReader(w, r.Body, MaxRoutineBytes)
	if err := h.files.Save(key, contentType, body); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		logger.Error("Failed to save routine document", "key", key, "error", err)
		http.Error(w, "Failed to save file", http.StatusInternalServerError)
		return
	}

	logger.Info("Routine document uploaded", "key", key, "content_type", contentType)
	w.WriteHeader(http.StatusOK)
}

// HandleDownload handles HTTP GET requests to presigned download URLs
func (h *RoutineHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	key, ok := h.verify(r, storage.OpDownload)
	if !ok {
		http.Error(w, "Invalid or expired download URL", http.StatusForbidden)
		return
	}

	file, contentType, err := h.files.Open(key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Error("Failed to open routine document", "key", key, "error", err)
		}
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	if _, err := io.Copy(w, file); err != nil {
		logger.Warn("Routine download interrupted", "key", key, "error", err)
	}
}

// NewRouter registers the routine document and health endpoints
func NewRouter(files storage.FileServer, allowed func(contentType string) bool) *mux.Router {
	router := mux.NewRouter()
	handler := NewRoutineHandler(files, allowed)
	router.HandleFunc("/api/v1/routines/upload", handler.HandleUpload).Methods(http.MethodPut)
	router.HandleFunc("/api/v1/routines/download", handler.HandleDownload).Methods(http.MethodGet)
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, "ok")
	}).Methods(http.MethodGet)
	return router
}
