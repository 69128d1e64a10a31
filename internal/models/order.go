package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatus — состояние заказа.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderConfirmed OrderStatus = "confirmed"
	OrderRejected  OrderStatus = "rejected"
)

// OrderItem — снэпшот позиции на момент заказа: имя и цена копируются
// из Article, чтобы последующие правки меню не меняли историю.
type OrderItem struct {
	ID         uuid.UUID `json:"id"`
	OrderID    uuid.UUID `json:"order_id"`
	ArticleID  uuid.UUID `json:"article_id"`
	Name       string    `json:"name"`
	PriceCents int64     `json:"price_cents"`
	Quantity   int       `json:"quantity"`
}

// Order — гостевой заказ против меню точки. TotalCents всегда вычисляется
// сервером из снэпшотов позиций.
type Order struct {
	ID           uuid.UUID   `json:"id"`
	LocationID   uuid.UUID   `json:"location_id"`
	CustomerName string      `json:"customer_name"`
	Status       OrderStatus `json:"status"`
	TotalCents   int64       `json:"total_cents"`
	Items        []OrderItem `json:"items,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}
