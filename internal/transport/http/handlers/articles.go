package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-menu-platform/internal/models"
	"github.com/pribylovaa/go-menu-platform/internal/service"
	"github.com/pribylovaa/go-menu-platform/internal/storage"
	"github.com/pribylovaa/go-menu-platform/internal/transport/http/httperr"
	"github.com/pribylovaa/go-menu-platform/internal/transport/http/middleware"
)

type articleRequest struct {
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	PriceCents      int64      `json:"price_cents"`
	Quantity        int        `json:"quantity"`
	Logo            string     `json:"logo"`
	CategoryID      *uuid.UUID `json:"category_id"`
	ShowDescription bool       `json:"show_description"`
	ShowOnMenu      bool       `json:"show_on_menu"`
	TrackStock      bool       `json:"track_stock"`
	NotifyLowStock  bool       `json:"notify_low_stock"`
}

type updateArticleRequest struct {
	Name            *string    `json:"name"`
	Description     *string    `json:"description"`
	PriceCents      *int64     `json:"price_cents"`
	Quantity        *int       `json:"quantity"`
	Logo            *string    `json:"logo"`
	CategoryID      *uuid.UUID `json:"category_id"`
	ClearCategory   bool       `json:"clear_category"`
	ShowDescription *bool      `json:"show_description"`
	ShowOnMenu      *bool      `json:"show_on_menu"`
	TrackStock      *bool      `json:"track_stock"`
	NotifyLowStock  *bool      `json:"notify_low_stock"`
}

type categoryRequest struct {
	Name string `json:"name"`
}

// menuOwnedBy проверяет, что меню принадлежит точке вызывающего.
func (h *Handlers) menuOwnedBy(ctx context.Context, user *models.User, menuID uuid.UUID) error {
	menu, err := h.Service.GetMenu(ctx, menuID)
	if err != nil {
		return err
	}

	loc, err := h.Service.GetLocation(ctx, menu.LocationID)
	if err != nil {
		return err
	}

	if !canManageLocation(user, loc) {
		return service.ErrPermissionDenied
	}

	return nil
}

func (h *Handlers) ListArticles(w http.ResponseWriter, r *http.Request) {
	menuID, err := pathID(r, "id")
	if err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	// Владелец видит все позиции; гость — только видимые.
	publicOnly := true
	if user, ok := middleware.UserFrom(r.Context()); ok {
		if err := h.menuOwnedBy(r.Context(), user, menuID); err == nil {
			publicOnly = false
		}
	}

	articles, err := h.Service.ListArticles(r.Context(), menuID, publicOnly)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, articles)
}

func (h *Handlers) CreateArticle(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	menuID, err := pathID(r, "id")
	if err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	if err := h.menuOwnedBy(r.Context(), user, menuID); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	var in articleRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	article, err := h.Service.CreateArticle(r.Context(), menuID, service.CreateArticleInput{
		Name:            in.Name,
		Description:     in.Description,
		PriceCents:      in.PriceCents,
		Quantity:        in.Quantity,
		Logo:            in.Logo,
		CategoryID:      in.CategoryID,
		ShowDescription: in.ShowDescription,
		ShowOnMenu:      in.ShowOnMenu,
		TrackStock:      in.TrackStock,
		NotifyLowStock:  in.NotifyLowStock,
	})
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, article)
}

func (h *Handlers) UpdateArticle(w http.ResponseWriter, r *http.Request) {
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

	article, err := h.Service.GetArticle(r.Context(), id)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}
	if err := h.menuOwnedBy(r.Context(), user, article.MenuID); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	var in updateArticleRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	article, err = h.Service.UpdateArticle(r.Context(), id, service.UpdateArticleInput{
		Name:            in.Name,
		Description:     in.Description,
		PriceCents:      in.PriceCents,
		Quantity:        in.Quantity,
		Logo:            in.Logo,
		CategoryID:      in.CategoryID,
		ClearCategory:   in.ClearCategory,
		ShowDescription: in.ShowDescription,
		ShowOnMenu:      in.ShowOnMenu,
		TrackStock:      in.TrackStock,
		NotifyLowStock:  in.NotifyLowStock,
	})
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, article)
}

func (h *Handlers) DeleteArticle(w http.ResponseWriter, r *http.Request) {
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

	article, err := h.Service.GetArticle(r.Context(), id)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}
	if err := h.menuOwnedBy(r.Context(), user, article.MenuID); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	if err := h.Service.DeleteArticle(r.Context(), id); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	menuID, err := pathID(r, "id")
	if err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	categories, err := h.Service.ListCategories(r.Context(), menuID)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, categories)
}

func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	menuID, err := pathID(r, "id")
	if err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	if err := h.menuOwnedBy(r.Context(), user, menuID); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	var in categoryRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	category, err := h.Service.CreateCategory(r.Context(), menuID, in.Name)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, category)
}

func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	menuID, err := pathID(r, "id")
	if err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	categoryID, err := pathID(r, "categoryID")
	if err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	if err := h.menuOwnedBy(r.Context(), user, menuID); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	// Категория должна принадлежать именно этому меню.
	categories, err := h.Service.ListCategories(r.Context(), menuID)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	owned := false
	for _, c := range categories {
		if c.ID == categoryID {
			owned = true
			break
		}
	}
	if !owned {
		httperr.WriteError(w, r, storage.ErrNotFound)
		return
	}

	if err := h.Service.DeleteCategory(r.Context(), categoryID); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
