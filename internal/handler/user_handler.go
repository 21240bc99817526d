package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/contactbook/internal/usecase"
	"github.com/GoArmGo/contactbook/internal/validation"
	"github.com/go-chi/chi/v5"
)

// UserHandler: администрирование пользователей и собственный профиль.
type UserHandler struct {
	users     usecase.UserUseCase
	validator *validation.Validator
	maxAvatar int64
	logger    *slog.Logger
}

func NewUserHandler(users usecase.UserUseCase, validator *validation.Validator, maxAvatar int64, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, validator: validator, maxAvatar: maxAvatar, logger: logger}
}

// List: GET /api/users (admin)
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())
	users, err := h.users.ListUsers(r.Context(), caller)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithList(w, users, h.logger)
}

// Get: GET /api/users/{id} (admin)
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.validator.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	caller, _ := CallerFrom(r.Context())
	user, err := h.users.GetUser(r.Context(), caller, id)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithData(w, http.StatusOK, user, h.logger)
}

// Update: PUT /api/users/{id} (admin)
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.validator.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	var patch usecase.UserPatch
	avatar, release, err := decodeRequest(w, r, &patch, h.maxAvatar)
	defer release()
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	caller, _ := CallerFrom(r.Context())
	user, err := h.users.UpdateUser(r.Context(), caller, id, patch, avatar)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithData(w, http.StatusOK, user, h.logger)
}

// Delete: DELETE /api/users/{id} (admin)
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.validator.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	caller, _ := CallerFrom(r.Context())
	if err := h.users.DeleteUser(r.Context(), caller, id); err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithData(w, http.StatusOK, struct{}{}, h.logger)
}

// UpdateProfile: PUT /api/users/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var patch usecase.ProfilePatch
	avatar, release, err := decodeRequest(w, r, &patch, h.maxAvatar)
	defer release()
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	caller, _ := CallerFrom(r.Context())
	user, err := h.users.UpdateProfile(r.Context(), caller, patch, avatar)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithData(w, http.StatusOK, user, h.logger)
}

// UpdatePassword: PUT /api/users/password
func (h *UserHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	var in usecase.PasswordInput
	if err := decodeJSON(w, r, &in); err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	caller, _ := CallerFrom(r.Context())
	if err := h.users.UpdatePassword(r.Context(), caller, in); err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, envelope{Success: true, Message: "password updated"}, h.logger)
}
