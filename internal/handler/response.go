package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/GoArmGo/contactbook/internal/domain"
)

// envelope: общий формат всех JSON-ответов API.
type envelope struct {
	Success bool     `json:"success"`
	Data    any      `json:"data,omitempty"`
	Count   *int     `json:"count,omitempty"`
	Token   string   `json:"token,omitempty"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
}

// respondWithJSON: отправляет JSON-ответ клиенту.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

func respondWithData(w http.ResponseWriter, code int, data any, logger *slog.Logger) {
	respondWithJSON(w, code, envelope{Success: true, Data: data}, logger)
}

func respondWithList[T any](w http.ResponseWriter, items []T, logger *slog.Logger) {
	if items == nil {
		items = []T{}
	}
	count := len(items)
	respondWithJSON(w, http.StatusOK, envelope{Success: true, Count: &count, Data: items}, logger)
}

// respondWithError: отправляет JSON-ответ с ошибкой.
func respondWithError(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, envelope{Success: false, Message: message}, logger)
}

// respondWithAppError: единственное место, где ошибки приложения превращаются в HTTP-статусы.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		respondWithJSON(w, http.StatusBadRequest, envelope{Success: false, Message: verr.Error(), Errors: verr.Messages}, logger)
		return
	}

	code, message := http.StatusInternalServerError, "server error"
	switch {
	case errors.Is(err, domain.ErrValidation):
		code, message = http.StatusBadRequest, "invalid request"
	case errors.Is(err, domain.ErrUnauthenticated):
		code, message = http.StatusUnauthorized, "not authorized"
	case errors.Is(err, domain.ErrForbidden):
		code, message = http.StatusForbidden, "forbidden"
	case errors.Is(err, domain.ErrNotFound):
		code, message = http.StatusNotFound, "resource not found"
	case errors.Is(err, domain.ErrConflict):
		code, message = http.StatusBadRequest, "resource already exists"
	case errors.Is(err, domain.ErrUnavailable):
		code, message = http.StatusServiceUnavailable, "service temporarily unavailable"
	}

	var appErr *domain.Error
	if code != http.StatusInternalServerError && errors.As(err, &appErr) {
		message = appErr.Message
	}

	attrs := []any{"method", r.Method, "path", r.URL.Path, "status", code, "error", err}
	switch {
	case code >= http.StatusInternalServerError:
		logger.Error("request failed", attrs...)
	default:
		logger.Info("request rejected", attrs...)
	}

	respondWithError(w, code, message, logger)
}
