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

const articleColumns = `id, menu_id, category_id, name, description, price_cents,
	quantity, logo, show_description, show_on_menu, track_stock, notify_low_stock,
	created_at, updated_at`

func scanArticle(row pgx.Row) (*models.Article, error) {
	var a models.Article
	err := row.Scan(
		&a.ID,
		&a.MenuID,
		&a.CategoryID,
		&a.Name,
		&a.Description,
		&a.PriceCents,
		&a.Quantity,
		&a.Logo,
		&a.ShowDescription,
		&a.ShowOnMenu,
		&a.TrackStock,
		&a.NotifyLowStock,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	return &a, nil
}

// SaveArticle создаёт позицию меню.
func (s *Storage) SaveArticle(ctx context.Context, a *models.Article) error {
	const op = "storage.postgres.SaveArticle"

	_, err := s.db.Exec(ctx, `
		INSERT INTO articles(id, menu_id, category_id, name, description, price_cents,
			quantity, logo, show_description, show_on_menu, track_stock, notify_low_stock,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, a.ID, a.MenuID, a.CategoryID, a.Name, a.Description, a.PriceCents,
		a.Quantity, a.Logo, a.ShowDescription, a.ShowOnMenu, a.TrackStock, a.NotifyLowStock,
		a.CreatedAt, a.UpdatedAt)

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ArticleByID находит позицию меню.
func (s *Storage) ArticleByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	const op = "storage.postgres.ArticleByID"

	a, err := scanArticle(s.db.QueryRow(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return a, nil
}

// ArticlesByMenu возвращает позиции меню.
func (s *Storage) ArticlesByMenu(ctx context.Context, menuID uuid.UUID) ([]models.Article, error) {
	const op = "storage.postgres.ArticlesByMenu"

	rows, err := s.db.Query(ctx,
		`SELECT `+articleColumns+` FROM articles WHERE menu_id = $1 ORDER BY created_at`, menuID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var articles []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		articles = append(articles, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return articles, nil
}

// UpdateArticle обновляет позицию меню.
func (s *Storage) UpdateArticle(ctx context.Context, a *models.Article) error {
	const op = "storage.postgres.UpdateArticle"

	cmdTag, err := s.db.Exec(ctx, `
		UPDATE articles
		SET category_id = $2, name = $3, description = $4, price_cents = $5,
			quantity = $6, logo = $7, show_description = $8, show_on_menu = $9,
			track_stock = $10, notify_low_stock = $11, updated_at = now()
		WHERE id = $1
	`, a.ID, a.CategoryID, a.Name, a.Description, a.PriceCents,
		a.Quantity, a.Logo, a.ShowDescription, a.ShowOnMenu,
		a.TrackStock, a.NotifyLowStock)

	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// DeleteArticle удаляет позицию меню.
func (s *Storage) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeleteArticle"

	cmdTag, err := s.db.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

// SaveCategory создаёт категорию меню.
func (s *Storage) SaveCategory(ctx context.Context, c *models.ArticleCategory) error {
	const op = "storage.postgres.SaveCategory"

	_, err := s.db.Exec(ctx, `
		INSERT INTO article_categories(id, menu_id, name, created_at)
		VALUES ($1, $2, $3, $4)
	`, c.ID, c.MenuID, c.Name, c.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return fmt.Errorf("%s: %w", op, storage.ErrAlreadyExists)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// CategoriesByMenu возвращает категории меню.
func (s *Storage) CategoriesByMenu(ctx context.Context, menuID uuid.UUID) ([]models.ArticleCategory, error) {
	const op = "storage.postgres.CategoriesByMenu"

	rows, err := s.db.Query(ctx, `
		SELECT id, menu_id, name, created_at
		FROM article_categories
		WHERE menu_id = $1
		ORDER BY name
	`, menuID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var cats []models.ArticleCategory
	for rows.Next() {
		var c models.ArticleCategory
		if err := rows.Scan(&c.ID, &c.MenuID, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		cats = append(cats, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return cats, nil
}

// DeleteCategory удаляет категорию; позиции остаются без категории.
func (s *Storage) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	const op = "storage.postgres.DeleteCategory"

	cmdTag, err := s.db.Exec(ctx, `DELETE FROM article_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}
