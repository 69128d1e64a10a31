package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pribylovaa/go-menu-platform/internal/models"
	"github.com/pribylovaa/go-menu-platform/internal/storage"
)

// SaveRole создаёт роль и привязывает её permissions.
func (s *Storage) SaveRole(ctx context.Context, role *models.Role) error {
	const op = "storage.postgres.SaveRole"

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO roles(id, name, created_at, updated_at) VALUES ($1, $2, $3, $4)`,
		role.ID, role.Name, role.CreatedAt, role.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	for _, p := range role.Permissions {
		if _, err := tx.Exec(ctx,
			`INSERT INTO role_permissions(role_id, permission_id) VALUES ($1, $2)`,
			role.ID, p.ID,
		); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// RoleByID находит роль вместе с её permissions.
func (s *Storage) RoleByID(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	const op = "storage.postgres.RoleByID"

	var role models.Role
	err := s.db.QueryRow(ctx,
		`SELECT id, name, created_at, updated_at FROM roles WHERE id = $1`, id,
	).Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	perms, err := s.permissionsOfRole(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	role.Permissions = perms

	return &role, nil
}

// ListRoles возвращает все роли с их permissions.
func (s *Storage) ListRoles(ctx context.Context) ([]models.Role, error) {
	const op = "storage.postgres.ListRoles"

	rows, err := s.db.Query(ctx,
		`SELECT id, name, created_at, updated_at FROM roles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var roles []models.Role
	for rows.Next() {
		var role models.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i := range roles {
		perms, err := s.permissionsOfRole(ctx, roles[i].ID)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		roles[i].Permissions = perms
	}

	return roles, nil
}

// UpdateRole обновляет имя роли и заменяет её набор permissions целиком.
func (s *Storage) UpdateRole(ctx context.Context, role *models.Role) error {
	const op = "storage.postgres.UpdateRole"

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback(ctx)

	cmdTag, err := tx.Exec(ctx,
		`UPDATE roles SET name = $2, updated_at = now() WHERE id = $1`,
		role.ID, role.Name,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM role_permissions WHERE role_id = $1`, role.ID,
	); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, p := range role.Permissions {
		if _, err := tx.Exec(ctx,
			`INSERT INTO role_permissions(role_id, permission_id) VALUES ($1, $2)`,
			role.ID, p.ID,
		); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// DeleteRole удаляет роль.
func (s *Storage) DeleteRole(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeleteRole"

	cmdTag, err := s.db.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// SavePermission создаёт permission.
func (s *Storage) SavePermission(ctx context.Context, perm *models.Permission) error {
	const op = "storage.postgres.SavePermission"

	_, err := s.db.Exec(ctx,
		`INSERT INTO permissions(id, name, created_at) VALUES ($1, $2, $3)`,
		perm.ID, perm.Name, perm.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ListPermissions возвращает все permissions.
func (s *Storage) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	const op = "storage.postgres.ListPermissions"

	rows, err := s.db.Query(ctx,
		`SELECT id, name, created_at FROM permissions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var perms []models.Permission
	for rows.Next() {
		var p models.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		perms = append(perms, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return perms, nil
}

// RolePermissions возвращает имена permissions роли.
func (s *Storage) RolePermissions(ctx context.Context, roleID uuid.UUID) ([]string, error) {
	const op = "storage.postgres.RolePermissions"

	rows, err := s.db.Query(ctx, `
		SELECT p.name
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1
	`, roleID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return names, nil
}

func (s *Storage) permissionsOfRole(ctx context.Context, roleID uuid.UUID) ([]models.Permission, error) {
	rows, err := s.db.Query(ctx, `
		SELECT p.id, p.name, p.created_at
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		WHERE rp.role_id = $1
		ORDER BY p.name
	`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var perms []models.Permission
	for rows.Next() {
		var p models.Permission
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		perms = append(perms, p)
	}

	return perms, rows.Err()
}
