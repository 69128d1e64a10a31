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

// OrderItemInput — позиция гостевого заказа.
type OrderItemInput struct {
	ArticleID uuid.UUID
	Quantity  int
}

// PlaceOrderInput — данные нового заказа против меню точки.
type PlaceOrderInput struct {
	LocationID   uuid.UUID
	CustomerName string
	Items        []OrderItemInput
}

// PlaceOrder принимает гостевой заказ. Имя и цена каждой позиции копируются
// из текущего состояния Article, итоговая сумма считается сервером; цены
// из запроса игнорируются. Заказ создаётся в состоянии pending.
func (s *Service) PlaceOrder(ctx context.Context, in PlaceOrderInput) (*models.Order, error) {
	const op = "service.orders.PlaceOrder"

	if len(in.Items) == 0 || strings.TrimSpace(in.CustomerName) == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidOrder)
	}

	loc, err := s.storage.LocationByID(ctx, in.LocationID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidOrder)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if loc.Menu == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidOrder)
	}

	now := time.Now().UTC()
	order := &models.Order{
		ID:           uuid.New(),
		LocationID:   loc.ID,
		CustomerName: strings.TrimSpace(in.CustomerName),
		Status:       models.OrderPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	for _, item := range in.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidOrder)
		}

		article, err := s.storage.ArticleByID(ctx, item.ArticleID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidOrder)
			}

			return nil, fmt.Errorf("%s: %w", op, err)
		}

		// Позиция должна принадлежать меню этой точки.
		if article.MenuID != loc.Menu.ID {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidOrder)
		}

		order.Items = append(order.Items, models.OrderItem{
			ID:         uuid.New(),
			OrderID:    order.ID,
			ArticleID:  article.ID,
			Name:       article.Name,
			PriceCents: article.PriceCents,
			Quantity:   item.Quantity,
		})
		order.TotalCents += article.PriceCents * int64(item.Quantity)
	}

	if err := s.storage.SaveOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.incOrderCreated()

	return order, nil
}

// GetOrder возвращает заказ вместе с позициями.
func (s *Service) GetOrder(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	const op = "service.orders.GetOrder"

	order, err := s.storage.OrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return order, nil
}

// ListOrders возвращает заказы точки, новые первыми.
func (s *Service) ListOrders(ctx context.Context, locationID uuid.UUID) ([]models.Order, error) {
	const op = "service.orders.ListOrders"

	orders, err := s.storage.OrdersByLocation(ctx, locationID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return orders, nil
}

// SetOrderStatus переводит заказ в новое состояние. Допустимы только переходы
// pending -> confirmed и pending -> rejected; терминальные состояния
// не меняются.
func (s *Service) SetOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	const op = "service.orders.SetOrderStatus"

	if status != models.OrderConfirmed && status != models.OrderRejected {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidStatusChange)
	}

	order, err := s.storage.OrderByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if order.Status != models.OrderPending {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidStatusChange)
	}

	if err := s.storage.UpdateOrderStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	order.Status = status
	order.UpdatedAt = time.Now().UTC()

	return order, nil
}
