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

// CreateRole создаёт роль с набором permissions по их идентификаторам.
// Неизвестные идентификаторы отбрасываются на уровне БД (внешний ключ).
func (s *Service) CreateRole(ctx context.Context, name string, permissionIDs []uuid.UUID) (*models.Role, error) {
	const op = "service.roles.CreateRole"

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNameTaken)
	}

	now := time.Now().UTC()
	role := &models.Role{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, id := range permissionIDs {
		role.Permissions = append(role.Permissions, models.Permission{ID: id})
	}

	if err := s.storage.SaveRole(ctx, role); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrNameTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetRole(ctx, role.ID)
}

// GetRole возвращает роль вместе с permissions.
func (s *Service) GetRole(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	const op = "service.roles.GetRole"

	role, err := s.storage.RoleByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return role, nil
}

// ListRoles возвращает все роли.
func (s *Service) ListRoles(ctx context.Context) ([]models.Role, error) {
	const op = "service.roles.ListRoles"

	roles, err := s.storage.ListRoles(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return roles, nil
}

// UpdateRole меняет имя роли и полностью заменяет её набор permissions.
func (s *Service) UpdateRole(ctx context.Context, id uuid.UUID, name string, permissionIDs []uuid.UUID) (*models.Role, error) {
	const op = "service.roles.UpdateRole"

	role, err := s.storage.RoleByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if name = strings.TrimSpace(name); name != "" {
		role.Name = name
	}
	role.Permissions = role.Permissions[:0]
	for _, pid := range permissionIDs {
		role.Permissions = append(role.Permissions, models.Permission{ID: pid})
	}
	role.UpdatedAt = time.Now().UTC()

	if err := s.storage.UpdateRole(ctx, role); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrNameTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.GetRole(ctx, id)
}

// DeleteRole удаляет роль; назначение роли у пользователей сбрасывается
// внешним ключом (ON DELETE SET NULL).
func (s *Service) DeleteRole(ctx context.Context, id uuid.UUID) error {
	const op = "service.roles.DeleteRole"

	if err := s.storage.DeleteRole(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// CreatePermission регистрирует новую permission.
func (s *Service) CreatePermission(ctx context.Context, name string) (*models.Permission, error) {
	const op = "service.roles.CreatePermission"

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNameTaken)
	}

	perm := &models.Permission{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.storage.SavePermission(ctx, perm); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrNameTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return perm, nil
}

// ListPermissions возвращает все permissions.
func (s *Service) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	const op = "service.roles.ListPermissions"

	perms, err := s.storage.ListPermissions(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return perms, nil
}
