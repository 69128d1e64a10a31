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

// SaveLocation создаёт локацию.
func (s *Storage) SaveLocation(ctx context.Context, loc *models.Location) error {
	const op = "storage.postgres.SaveLocation"

	_, err := s.db.Exec(ctx, `
		INSERT INTO locations(id, name, slug, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, loc.ID, loc.Name, loc.Slug, loc.UserID, loc.CreatedAt, loc.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// LocationByID находит локацию вместе с её меню.
func (s *Storage) LocationByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	const op = "storage.postgres.LocationByID"

	loc, err := s.locationBy(ctx, `WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return loc, nil
}

// LocationBySlug находит локацию по публичному slug.
func (s *Storage) LocationBySlug(ctx context.Context, slug string) (*models.Location, error) {
	const op = "storage.postgres.LocationBySlug"

	loc, err := s.locationBy(ctx, `WHERE slug = $1`, slug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return loc, nil
}

func (s *Storage) locationBy(ctx context.Context, where string, arg any) (*models.Location, error) {
	query := `SELECT id, name, slug, user_id, created_at, updated_at FROM locations ` + where

	var loc models.Location
	err := s.db.QueryRow(ctx, query, arg).Scan(
		&loc.ID, &loc.Name, &loc.Slug, &loc.UserID, &loc.CreatedAt, &loc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}

		return nil, err
	}

	menu, err := s.MenuByLocation(ctx, loc.ID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	loc.Menu = menu

	return &loc, nil
}

// LocationsByUser возвращает локации владельца.
func (s *Storage) LocationsByUser(ctx context.Context, userID uuid.UUID) ([]models.Location, error) {
	const op = "storage.postgres.LocationsByUser"

	rows, err := s.db.Query(ctx, `
		SELECT id, name, slug, user_id, created_at, updated_at
		FROM locations
		WHERE user_id = $1
		ORDER BY created_at
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var locs []models.Location
	for rows.Next() {
		var loc models.Location
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Slug, &loc.UserID, &loc.CreatedAt, &loc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		locs = append(locs, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return locs, nil
}

// UpdateLocation обновляет имя и slug локации.
func (s *Storage) UpdateLocation(ctx context.Context, loc *models.Location) error {
	const op = "storage.postgres.UpdateLocation"

	cmdTag, err := s.db.Exec(ctx, `
		UPDATE locations
		SET name = $2, slug = $3, updated_at = now()
		WHERE id = $1
	`, loc.ID, loc.Name, loc.Slug)

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

	return nil
}

// DeleteLocation удаляет локацию (меню и заказы уходят каскадом).
func (s *Storage) DeleteLocation(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeleteLocation"

	cmdTag, err := s.db.Exec(ctx, `DELETE FROM locations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
