package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-menu-platform/internal/models"
)

// UpdateMenuInput — изменяемые поля оформления меню; nil означает "не трогать".
type UpdateMenuInput struct {
	Logo           *string
	PrimaryColor   *string
	SecondaryColor *string
	FacebookLink   *string
	InstagramLink  *string
}

// GetMenu возвращает меню по идентификатору.
func (s *Service) GetMenu(ctx context.Context, id uuid.UUID) (*models.Menu, error) {
	const op = "service.menus.GetMenu"

	menu, err := s.storage.MenuByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return menu, nil
}

// UpdateMenu применяет частичное обновление оформления меню.
func (s *Service) UpdateMenu(ctx context.Context, id uuid.UUID, in UpdateMenuInput) (*models.Menu, error) {
	const op = "service.menus.UpdateMenu"

	menu, err := s.storage.MenuByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if in.Logo != nil {
		menu.Logo = *in.Logo
	}
	if in.PrimaryColor != nil {
		menu.PrimaryColor = *in.PrimaryColor
	}
	if in.SecondaryColor != nil {
		menu.SecondaryColor = *in.SecondaryColor
	}
	if in.FacebookLink != nil {
		menu.FacebookLink = *in.FacebookLink
	}
	if in.InstagramLink != nil {
		menu.InstagramLink = *in.InstagramLink
	}
	menu.UpdatedAt = time.Now().UTC()

	if err := s.storage.UpdateMenu(ctx, menu); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return menu, nil
}
