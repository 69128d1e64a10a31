package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-menu-platform/internal/transport/http/httperr"
)

type roleRequest struct {
	Name          string      `json:"name"`
	PermissionIDs []uuid.UUID `json:"permission_ids"`
}

type permissionRequest struct {
	Name string `json:"name"`
}

func (h *Handlers) ListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := h.Service.ListRoles(r.Context())
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, roles)
}

func (h *Handlers) GetRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	role, err := h.Service.GetRole(r.Context(), id)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, role)
}

func (h *Handlers) CreateRole(w http.ResponseWriter, r *http.Request) {
	var in roleRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	role, err := h.Service.CreateRole(r.Context(), in.Name, in.PermissionIDs)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, role)
}

func (h *Handlers) UpdateRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	var in roleRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	role, err := h.Service.UpdateRole(r.Context(), id, in.Name, in.PermissionIDs)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, role)
}

func (h *Handlers) DeleteRole(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	if err := h.Service.DeleteRole(r.Context(), id); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handlers) ListPermissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.Service.ListPermissions(r.Context())
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, perms)
}

func (h *Handlers) CreatePermission(w http.ResponseWriter, r *http.Request) {
	var in permissionRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	perm, err := h.Service.CreatePermission(r.Context(), in.Name)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, perm)
}
