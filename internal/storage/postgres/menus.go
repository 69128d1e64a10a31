package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pribylovaa/go-menu-platform/internal/models"
	"github.com/pribylovaa/go-menu-platform/internal/storage"
)

const menuColumns = `id, location_id, logo, primary_color, secondary_color,
	facebook_link, instagram_link, created_at, updated_at`

func scanMenu(row pgx.Row) (*models.Menu, error) {
	var m models.Menu
	err := row.Scan(
		&m.ID,
		&m.LocationID,
		&m.Logo,
		&m.PrimaryColor,
		&m.SecondaryColor,
		&m.FacebookLink,
		&m.InstagramLink,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &m, nil
}

// SaveMenu создаёт меню локации.
func (s *Storage) SaveMenu(ctx context.Context, menu *models.Menu) error {
	const op = "storage.postgres.SaveMenu"

	_, err := s.db.Exec(ctx, `
		INSERT INTO menus(id, location_id, logo, primary_color, secondary_color,
			facebook_link, instagram_link, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, menu.ID, menu.LocationID, menu.Logo, menu.PrimaryColor, menu.SecondaryColor,
		menu.FacebookLink, menu.InstagramLink, menu.CreatedAt, menu.UpdatedAt)

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// MenuByID находит меню по ID.
func (s *Storage) MenuByID(ctx context.Context, id uuid.UUID) (*models.Menu, error) {
	const op = "storage.postgres.MenuByID"

	menu, err := scanMenu(s.db.QueryRow(ctx,
		`SELECT `+menuColumns+` FROM menus WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return menu, nil
}

// MenuByLocation находит меню локации.
func (s *Storage) MenuByLocation(ctx context.Context, locationID uuid.UUID) (*models.Menu, error) {
	const op = "storage.postgres.MenuByLocation"

	menu, err := scanMenu(s.db.QueryRow(ctx,
		`SELECT `+menuColumns+` FROM menus WHERE location_id = $1`, locationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return menu, nil
}

// UpdateMenu обновляет оформление меню.
func (s *Storage) UpdateMenu(ctx context.Context, menu *models.Menu) error {
	const op = "storage.postgres.UpdateMenu"

	cmdTag, err := s.db.Exec(ctx, `
		UPDATE menus
		SET logo = $2, primary_color = $3, secondary_color = $4,
			facebook_link = $5, instagram_link = $6, updated_at = now()
		WHERE id = $1
	`, menu.ID, menu.Logo, menu.PrimaryColor, menu.SecondaryColor,
		menu.FacebookLink, menu.InstagramLink)

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
