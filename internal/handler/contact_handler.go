package handler

import (
	"log/slog"
	"net/http"

	"github.com/GoArmGo/contactbook/internal/usecase"
	"github.com/GoArmGo/contactbook/internal/validation"
	"github.com/go-chi/chi/v5"
)

// ContactHandler: CRUD контактов вызывающего.
type ContactHandler struct {
	contacts  usecase.ContactUseCase
	validator *validation.Validator
	maxAvatar int64
	logger    *slog.Logger
}

func NewContactHandler(contacts usecase.ContactUseCase, validator *validation.Validator, maxAvatar int64, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{contacts: contacts, validator: validator, maxAvatar: maxAvatar, logger: logger}
}

// List: GET /api/contacts
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, _ := CallerFrom(r.Context())
	contacts, err := h.contacts.ListContacts(r.Context(), caller)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithList(w, contacts, h.logger)
}

// Get: GET /api/contacts/{id}
func (h *ContactHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := h.validator.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	caller, _ := CallerFrom(r.Context())
	contact, err := h.contacts.GetContact(r.Context(), caller, id)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithData(w, http.StatusOK, contact, h.logger)
}

// Create: POST /api/contacts (JSON или multipart с файлом avatar)
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in usecase.ContactInput
	avatar, release, err := decodeRequest(w, r, &in, h.maxAvatar)
	defer release()
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	caller, _ := CallerFrom(r.Context())
	contact, err := h.contacts.CreateContact(r.Context(), caller, in, avatar)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithData(w, http.StatusCreated, contact, h.logger)
}

// Update: PUT /api/contacts/{id}
func (h *ContactHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := h.validator.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	var patch usecase.ContactPatch
	avatar, release, err := decodeRequest(w, r, &patch, h.maxAvatar)
	defer release()
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	caller, _ := CallerFrom(r.Context())
	contact, err := h.contacts.UpdateContact(r.Context(), caller, id, patch, avatar)
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithData(w, http.StatusOK, contact, h.logger)
}

// Delete: DELETE /api/contacts/{id}
func (h *ContactHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := h.validator.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}

	caller, _ := CallerFrom(r.Context())
	if err := h.contacts.DeleteContact(r.Context(), caller, id); err != nil {
		respondWithAppError(w, r, err, h.logger)
		return
	}
	respondWithData(w, http.StatusOK, struct{}{}, h.logger)
}
