package models

import (
	"time"

	"github.com/google/uuid"
)

// Location — точка (заведение) пользователя. Имя уникально в пределах
// владельца; Slug уникален глобально и используется в публичной ссылке меню.
type Location struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	UserID    uuid.UUID `json:"user_id"`
	Menu      *Menu     `json:"menu,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Menu — меню точки: оформление и ссылки. Ровно одно меню на Location.
type Menu struct {
	ID             uuid.UUID `json:"id"`
	LocationID     uuid.UUID `json:"location_id"`
	Logo           string    `json:"logo"`
	PrimaryColor   string    `json:"primary_color"`
	SecondaryColor string    `json:"secondary_color"`
	FacebookLink   string    `json:"facebook_link"`
	InstagramLink  string    `json:"instagram_link"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
