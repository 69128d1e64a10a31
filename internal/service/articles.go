package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-menu-platform/internal/models"
	"github.com/pribylovaa/go-menu-platform/internal/storage"
)

// CreateArticleInput — данные новой позиции меню.
type CreateArticleInput struct {
	Name            string
	Description     string
	PriceCents      int64
	Quantity        int
	Logo            string
	CategoryID      *uuid.UUID
	ShowDescription bool
	ShowOnMenu      bool
	TrackStock      bool
	NotifyLowStock  bool
}

// UpdateArticleInput — изменяемые поля позиции; nil означает "не трогать".
type UpdateArticleInput struct {
	Name            *string
	Description     *string
	PriceCents      *int64
	Quantity        *int
	Logo            *string
	CategoryID      *uuid.UUID
	ClearCategory   bool
	ShowDescription *bool
	ShowOnMenu      *bool
	TrackStock      *bool
	NotifyLowStock  *bool
}

// CreateArticle добавляет позицию в меню.
func (s *Service) CreateArticle(ctx context.Context, menuID uuid.UUID, in CreateArticleInput) (*models.Article, error) {
	const op = "service.articles.CreateArticle"

	if strings.TrimSpace(in.Name) == "" || in.PriceCents < 0 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidOrder)
	}

	now := time.Now().UTC()
	article := &models.Article{
		ID:              uuid.New(),
		MenuID:          menuID,
		CategoryID:      in.CategoryID,
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		PriceCents:      in.PriceCents,
		Quantity:        in.Quantity,
		Logo:            in.Logo,
		ShowDescription: in.ShowDescription,
		ShowOnMenu:      in.ShowOnMenu,
		TrackStock:      in.TrackStock,
		NotifyLowStock:  in.NotifyLowStock,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.storage.SaveArticle(ctx, article); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return article, nil
}

// GetArticle возвращает позицию по идентификатору.
func (s *Service) GetArticle(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	const op = "service.articles.GetArticle"

	article, err := s.storage.ArticleByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return article, nil
}

// ListArticles возвращает позиции меню. При publicOnly скрытые позиции
// (show_on_menu=false) отфильтровываются — для гостевой выдачи.
func (s *Service) ListArticles(ctx context.Context, menuID uuid.UUID, publicOnly bool) ([]models.Article, error) {
	const op = "service.articles.ListArticles"

	articles, err := s.storage.ArticlesByMenu(ctx, menuID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !publicOnly {
		return articles, nil
	}

	visible := articles[:0]
	for _, a := range articles {
		if a.ShowOnMenu {
			visible = append(visible, a)
		}
	}

	return visible, nil
}

// UpdateArticle применяет частичное обновление позиции.
func (s *Service) UpdateArticle(ctx context.Context, id uuid.UUID, in UpdateArticleInput) (*models.Article, error) {
	const op = "service.articles.UpdateArticle"

	article, err := s.storage.ArticleByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if in.Name != nil {
		article.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		article.Description = *in.Description
	}
	if in.PriceCents != nil {
		article.PriceCents = *in.PriceCents
	}
	if in.Quantity != nil {
		article.Quantity = *in.Quantity
	}
	if in.Logo != nil {
		article.Logo = *in.Logo
	}
	if in.ClearCategory {
		article.CategoryID = nil
	} else if in.CategoryID != nil {
		article.CategoryID = in.CategoryID
	}
	if in.ShowDescription != nil {
		article.ShowDescription = *in.ShowDescription
	}
	if in.ShowOnMenu != nil {
		article.ShowOnMenu = *in.ShowOnMenu
	}
	if in.TrackStock != nil {
		article.TrackStock = *in.TrackStock
	}
	if in.NotifyLowStock != nil {
		article.NotifyLowStock = *in.NotifyLowStock
	}
	article.UpdatedAt = time.Now().UTC()

	if err := s.storage.UpdateArticle(ctx, article); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return article, nil
}

// DeleteArticle удаляет позицию меню.
func (s *Service) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	const op = "service.articles.DeleteArticle"

	if err := s.storage.DeleteArticle(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// CreateCategory добавляет категорию позиций в меню. Имя уникально
// в пределах меню.
func (s *Service) CreateCategory(ctx context.Context, menuID uuid.UUID, name string) (*models.ArticleCategory, error) {
	const op = "service.articles.CreateCategory"

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNameTaken)
	}

	category := &models.ArticleCategory{
		ID:        uuid.New(),
		MenuID:    menuID,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.storage.SaveCategory(ctx, category); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrNameTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return category, nil
}

// ListCategories возвращает категории меню.
func (s *Service) ListCategories(ctx context.Context, menuID uuid.UUID) ([]models.ArticleCategory, error) {
	const op = "service.articles.ListCategories"

	categories, err := s.storage.CategoriesByMenu(ctx, menuID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return categories, nil
}

// DeleteCategory удаляет категорию; позиции категории остаются без категории
// (внешний ключ ON DELETE SET NULL).
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	const op = "service.articles.DeleteCategory"

	if err := s.storage.DeleteCategory(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
