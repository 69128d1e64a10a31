package models

import (
	"time"

	"github.com/google/uuid"
)

// ArticleCategory — категория позиций внутри меню.
type ArticleCategory struct {
	ID        uuid.UUID `json:"id"`
	MenuID    uuid.UUID `json:"menu_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Article — позиция меню. Цена хранится в центах, чтобы не терять
// точность при вычислении суммы заказа.
type Article struct {
	ID              uuid.UUID  `json:"id"`
	MenuID          uuid.UUID  `json:"menu_id"`
	CategoryID      *uuid.UUID `json:"category_id,omitempty"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	PriceCents      int64      `json:"price_cents"`
	Quantity        int        `json:"quantity"`
	Logo            string     `json:"logo"`
	ShowDescription bool       `json:"show_description"`
	ShowOnMenu      bool       `json:"show_on_menu"`
	TrackStock      bool       `json:"track_stock"`
	NotifyLowStock  bool       `json:"notify_low_stock"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
