package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-menu-platform/internal/models"
	"github.com/pribylovaa/go-menu-platform/internal/service"
	"github.com/pribylovaa/go-menu-platform/internal/transport/http/httperr"
)

type createUserRequest struct {
	Email           string     `json:"email"`
	Password        string     `json:"password"`
	ConfirmPassword string     `json:"confirm_password"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Access          string     `json:"access"`
	RoleID          *uuid.UUID `json:"role_id"`
}

type updateUserRequest struct {
	FirstName       *string    `json:"first_name"`
	LastName        *string    `json:"last_name"`
	Access          *string    `json:"access"`
	RoleID          *uuid.UUID `json:"role_id"`
	ClearRole       bool       `json:"clear_role"`
	Email           *string    `json:"email"`
	Password        *string    `json:"password"`
	ConfirmPassword *string    `json:"confirm_password"`
}

type updateUserResponse struct {
	User                models.Profile `json:"user"`
	VerificationPending bool           `json:"verification_pending"`
}

func (h *Handlers) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers(r.Context())
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	profiles := make([]models.Profile, 0, len(users))
	for i := range users {
		profiles = append(profiles, models.ProfileOf(&users[i]))
	}

	writeJSON(w, http.StatusOK, profiles)
}

func (h *Handlers) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	user, err := h.Service.GetUser(r.Context(), id)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ProfileOf(user))
}

func (h *Handlers) CreateUser(w http.ResponseWriter, r *http.Request) {
	var in createUserRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	user, err := h.Service.CreateUser(r.Context(), service.RegisterInput{
		Email:           in.Email,
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
	}, models.AccessLevel(in.Access), in.RoleID)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.ProfileOf(user))
}

func (h *Handlers) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	var in updateUserRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	input := service.UpdateUserInput{
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		RoleID:          in.RoleID,
		ClearRole:       in.ClearRole,
		Email:           in.Email,
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
	}
	if in.Access != nil {
		level := models.AccessLevel(*in.Access)
		input.Access = &level
	}

	result, err := h.Service.UpdateUser(r.Context(), id, input)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, updateUserResponse{
		User:                models.ProfileOf(result.User),
		VerificationPending: result.VerificationPending,
	})
}

func (h *Handlers) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	if err := h.Service.DeleteUser(r.Context(), id); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
