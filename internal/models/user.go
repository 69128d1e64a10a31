package models

import (
	"time"

	"github.com/google/uuid"
)

// AccessLevel — уровень доступа пользователя.
type AccessLevel string

const (
	AccessUser       AccessLevel = "user"
	AccessPrivileged AccessLevel = "privileged"
	AccessAdmin      AccessLevel = "admin"
	AccessSuperuser  AccessLevel = "superuser"
)

// User — модель пользователя в системе.
//
// Инварианты:
//   - Email уникален среди всех пользователей;
//   - PasswordHash хранит только bcrypt-хэш, исходный пароль нигде не сохраняется;
//   - RefreshHash, если не nil, соответствует ровно одному действующему
//     refresh-токену (sha256/base64url от выданного JWT); перезапись или
//     обнуление значения делает прежний токен недействительным;
//   - EmailToken, если не nil, хранит неподтверждённый verification-токен.
type User struct {
	ID            uuid.UUID
	Email         string
	FirstName     string
	LastName      string
	Access        AccessLevel
	RoleID        *uuid.UUID
	PasswordHash  string
	EmailToken    *string
	EmailVerified bool
	RefreshHash   *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Profile — безопасная проекция пользователя для ответов API.
// Никогда не содержит пароль или refresh-хэш.
type Profile struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	FirstName     string     `json:"first_name,omitempty"`
	LastName      string     `json:"last_name,omitempty"`
	Access        string     `json:"access"`
	RoleID        *uuid.UUID `json:"role_id,omitempty"`
	EmailVerified bool       `json:"email_verified"`
}

// ProfileOf строит проекцию из полной модели.
func ProfileOf(u *User) Profile {
	return Profile{
		ID:            u.ID,
		Email:         u.Email,
		FirstName:     u.FirstName,
		LastName:      u.LastName,
		Access:        string(u.Access),
		RoleID:        u.RoleID,
		EmailVerified: u.EmailVerified,
	}
}
