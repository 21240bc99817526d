package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/contactbook/internal/usecase"
)

// AuthHandler: регистрация, вход и текущий пользователь.
type AuthHandler struct {
	auth   usecase.AuthUseCase
	logger *slog.Logger
}

func NewAuthHandler(auth usecase.AuthUseCase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

// Register: POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var in usecase.RegisterInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	user, token, err := h.auth.Register(r.Context(), in)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusCreated, envelope{Success: true, Token: token, Data: user}, h.logger)
}

// Login: POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in usecase.LoginInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	user, token, err := h.auth.Login(r.Context(), in)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{Success: true, Token: token, Data: user}, h.logger)
}

// Me: GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())
	user, err := h.auth.Me(r.Context(), caller)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithData(w, http.StatusOK, user, h.logger)
}
