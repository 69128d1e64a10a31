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

// SaveOrder сохраняет заказ вместе с позициями в одной транзакции.
func (s *Storage) SaveOrder(ctx context.Context, o *models.Order) error {
	const op = "storage.postgres.SaveOrder"

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, location_id, customer_name, status, total_cents, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, o.ID, o.LocationID, o.CustomerName, o.Status, o.TotalCents, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	for _, item := range o.Items {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_items(id, order_id, article_id, name, price_cents, quantity)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, item.ID, o.ID, item.ArticleID, item.Name, item.PriceCents, item.Quantity); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// OrderByID находит заказ вместе с позициями.
func (s *Storage) OrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	const op = "storage.postgres.OrderByID"

	var o models.Order
	err := s.db.QueryRow(ctx, `
		SELECT id, location_id, customer_name, status, total_cents, created_at, updated_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&o.ID, &o.LocationID, &o.CustomerName, &o.Status, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	items, err := s.orderItems(ctx, o.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	o.Items = items

	return &o, nil
}

// OrdersByLocation возвращает заказы локации (новые первыми), без позиций.
func (s *Storage) OrdersByLocation(ctx context.Context, locationID uuid.UUID) ([]models.Order, error) {
	const op = "storage.postgres.OrdersByLocation"

	rows, err := s.db.Query(ctx, `
		SELECT id, location_id, customer_name, status, total_cents, created_at, updated_at
		FROM orders
		WHERE location_id = $1
		ORDER BY created_at DESC
	`, locationID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := rows.Scan(&o.ID, &o.LocationID, &o.CustomerName, &o.Status, &o.TotalCents, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return orders, nil
}

// UpdateOrderStatus меняет состояние заказа.
func (s *Storage) UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	const op = "storage.postgres.UpdateOrderStatus"

	cmdTag, err := s.db.Exec(ctx, `
		UPDATE orders
		SET status = $2, updated_at = now()
		WHERE id = $1
	`, id, status)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if cmdTag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}

	return nil
}

func (s *Storage) orderItems(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, order_id, article_id, name, price_cents, quantity
		FROM order_items
		WHERE order_id = $1
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ArticleID, &it.Name, &it.PriceCents, &it.Quantity); err != nil {
			return nil, err
		}
		items = append(items, it)
	}

	return items, rows.Err()
}
