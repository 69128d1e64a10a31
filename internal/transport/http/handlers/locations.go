package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pribylovaa/go-menu-platform/internal/models"
	"github.com/pribylovaa/go-menu-platform/internal/service"
	"github.com/pribylovaa/go-menu-platform/internal/transport/http/httperr"
	"github.com/pribylovaa/go-menu-platform/internal/transport/http/middleware"
)

type locationRequest struct {
	Name string `json:"name"`
}

type updateMenuRequest struct {
	Logo           *string `json:"logo"`
	PrimaryColor   *string `json:"primary_color"`
	SecondaryColor *string `json:"secondary_color"`
	FacebookLink   *string `json:"facebook_link"`
	InstagramLink  *string `json:"instagram_link"`
}

// canManageLocation отвечает, вправе ли пользователь менять точку:
// владелец либо admin/superuser.
func canManageLocation(user *models.User, loc *models.Location) bool {
	if user.Access == models.AccessAdmin || user.Access == models.AccessSuperuser {
		return true
	}

	return loc.UserID == user.ID
}

func (h *Handlers) ListLocations(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	locs, err := h.Service.ListLocations(r.Context(), user.ID)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, locs)
}

func (h *Handlers) CreateLocation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	var in locationRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	loc, err := h.Service.CreateLocation(r.Context(), user.ID, in.Name)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, loc)
}

func (h *Handlers) GetLocation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	loc, err := h.Service.GetLocation(r.Context(), id)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	if !canManageLocation(user, loc) {
		httperr.WriteError(w, r, service.ErrPermissionDenied)
		return
	}

	writeJSON(w, http.StatusOK, loc)
}

// GetLocationBySlug — публичная выдача меню точки по slug: точка, оформление
// и только видимые позиции.
func (h *Handlers) GetLocationBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	loc, err := h.Service.GetLocationBySlug(r.Context(), slug)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	var articles []models.Article
	if loc.Menu != nil {
		articles, err = h.Service.ListArticles(r.Context(), loc.Menu.ID, true)
		if err != nil {
			httperr.WriteError(w, r, err)
			return
		}
	}

	writeJSON(w, http.StatusOK, struct {
		Location *models.Location `json:"location"`
		Articles []models.Article `json:"articles"`
	}{Location: loc, Articles: articles})
}

func (h *Handlers) RenameLocation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	loc, err := h.Service.GetLocation(r.Context(), id)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}
	if !canManageLocation(user, loc) {
		httperr.WriteError(w, r, service.ErrPermissionDenied)
		return
	}

	var in locationRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	loc, err = h.Service.RenameLocation(r.Context(), id, in.Name)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, loc)
}

func (h *Handlers) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	loc, err := h.Service.GetLocation(r.Context(), id)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}
	if !canManageLocation(user, loc) {
		httperr.WriteError(w, r, service.ErrPermissionDenied)
		return
	}

	if err := h.Service.DeleteLocation(r.Context(), id); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// UpdateMenu меняет оформление меню точки.
func (h *Handlers) UpdateMenu(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	menu, err := h.Service.GetMenu(r.Context(), id)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	loc, err := h.Service.GetLocation(r.Context(), menu.LocationID)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}
	if !canManageLocation(user, loc) {
		httperr.WriteError(w, r, service.ErrPermissionDenied)
		return
	}

	var in updateMenuRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	menu, err = h.Service.UpdateMenu(r.Context(), id, service.UpdateMenuInput{
		Logo:           in.Logo,
		PrimaryColor:   in.PrimaryColor,
		SecondaryColor: in.SecondaryColor,
		FacebookLink:   in.FacebookLink,
		InstagramLink:  in.InstagramLink,
	})
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, menu)
}
