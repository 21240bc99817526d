package handler

import (
	"context"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"time"

	"github.com/GoArmGo/contactbook/internal/core/ports"
	"github.com/go-chi/chi/v5"
)

// SystemHandler обслуживает корень, /health и раздачу аватаров.
type SystemHandler struct {
	pingers []ports.Pinger
	files   ports.FileStorage
	logger  *slog.Logger
}

func NewSystemHandler(pingers []ports.Pinger, files ports.FileStorage, logger *slog.Logger) *SystemHandler {
	return &SystemHandler{pingers: pingers, files: files, logger: logger}
}

// Root: GET /
func (h *SystemHandler) Root(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "Contact book API is running")
}

// Health: GET /health. 503, если хотя бы одно хранилище не отвечает.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	for _, p := range h.pingers {
		if err := p.Ping(ctx); err != nil {
			h.logger.Warn("health check failed", "error", err)
			respondWithJSON(w, http.StatusServiceUnavailable, map[string]any{"success": false, "status": "unavailable"}, h.logger)
			return
		}
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"success": true, "status": "ok"}, h.logger)
}

// Upload обрабатывает GET /uploads/{file} и отдаёт файл аватара только на чтение.
func (h *SystemHandler) Upload(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "file")

	rc, err := h.files.GetFile(r.Context(), key)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(filepath.Ext(key))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "public, max-age=86400")

	if _, err := io.Copy(w, rc); err != nil {
		h.logger.Warn("failed to stream avatar", "file", key, "error", err)
	}
}

// NotFound: ответ для неизвестных маршрутов.
func (h *SystemHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusNotFound, "route not found", h.logger)
}

func (h *SystemHandler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusMethodNotAllowed, "method not allowed", h.logger)
}
