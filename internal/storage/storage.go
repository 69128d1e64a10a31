package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-menu-platform/internal/models"
)

var (
	// ErrNotFound — запись не найдена (пользователь/роль/локация/...).
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists — нарушение уникальности (email/slug/имя роли).
	ErrAlreadyExists = errors.New("already exists")
)

// UserStorage выполняет операции над пользователями и их учётными данными.
// Только этот контракт имеет доступ к хэшам пароля и refresh-токена.
type UserStorage interface {
	// SaveUser создаёт нового пользователя.
	SaveUser(ctx context.Context, user *models.User) error
	// UserByEmail находит пользователя по email.
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	// UserByID находит пользователя по ID.
	UserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	// UserByRefreshHash находит пользователя, на строке которого хранится
	// данный хэш refresh-токена (текущая сессия).
	UserByRefreshHash(ctx context.Context, hash string) (*models.User, error)
	// UserByEmailToken находит пользователя с данным неподтверждённым
	// verification-токеном.
	UserByEmailToken(ctx context.Context, token string) (*models.User, error)
	// ListUsers возвращает всех пользователей.
	ListUsers(ctx context.Context) ([]models.User, error)
	// UpdateUser обновляет изменяемые поля пользователя (имя, доступ, роль,
	// email, хэш пароля).
	UpdateUser(ctx context.Context, user *models.User) error
	// UpdateRefreshHash перезаписывает хэш refresh-токена; nil очищает его.
	UpdateRefreshHash(ctx context.Context, id uuid.UUID, hash *string) error
	// SetEmailToken записывает (или очищает при nil) verification-токен.
	SetEmailToken(ctx context.Context, id uuid.UUID, token *string) error
	// ConfirmEmail одним обновлением очищает verification-токен, выставляет
	// email_verified=true и, если newEmail != nil, меняет email.
	ConfirmEmail(ctx context.Context, id uuid.UUID, newEmail *string) error
	// DeleteUser удаляет пользователя.
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

// RoleStorage выполняет операции над ролями и permissions.
type RoleStorage interface {
	SaveRole(ctx context.Context, role *models.Role) error
	RoleByID(ctx context.Context, id uuid.UUID) (*models.Role, error)
	ListRoles(ctx context.Context) ([]models.Role, error)
	// UpdateRole обновляет имя роли и полностью заменяет её набор permissions.
	UpdateRole(ctx context.Context, role *models.Role) error
	DeleteRole(ctx context.Context, id uuid.UUID) error
	SavePermission(ctx context.Context, perm *models.Permission) error
	ListPermissions(ctx context.Context) ([]models.Permission, error)
	// RolePermissions возвращает имена permissions роли.
	RolePermissions(ctx context.Context, roleID uuid.UUID) ([]string, error)
}

// LocationStorage выполняет операции над локациями.
type LocationStorage interface {
	SaveLocation(ctx context.Context, loc *models.Location) error
	LocationByID(ctx context.Context, id uuid.UUID) (*models.Location, error)
	LocationBySlug(ctx context.Context, slug string) (*models.Location, error)
	LocationsByUser(ctx context.Context, userID uuid.UUID) ([]models.Location, error)
	UpdateLocation(ctx context.Context, loc *models.Location) error
	DeleteLocation(ctx context.Context, id uuid.UUID) error
}

// MenuStorage выполняет операции над меню.
type MenuStorage interface {
	SaveMenu(ctx context.Context, menu *models.Menu) error
	MenuByID(ctx context.Context, id uuid.UUID) (*models.Menu, error)
	MenuByLocation(ctx context.Context, locationID uuid.UUID) (*models.Menu, error)
	UpdateMenu(ctx context.Context, menu *models.Menu) error
}

// ArticleStorage выполняет операции над позициями меню и их категориями.
type ArticleStorage interface {
	SaveArticle(ctx context.Context, a *models.Article) error
	ArticleByID(ctx context.Context, id uuid.UUID) (*models.Article, error)
	ArticlesByMenu(ctx context.Context, menuID uuid.UUID) ([]models.Article, error)
	UpdateArticle(ctx context.Context, a *models.Article) error
	DeleteArticle(ctx context.Context, id uuid.UUID) error
	SaveCategory(ctx context.Context, c *models.ArticleCategory) error
	CategoriesByMenu(ctx context.Context, menuID uuid.UUID) ([]models.ArticleCategory, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

// OrderStorage выполняет операции над заказами.
type OrderStorage interface {
	// SaveOrder сохраняет заказ вместе с позициями.
	SaveOrder(ctx context.Context, o *models.Order) error
	OrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	OrdersByLocation(ctx context.Context, locationID uuid.UUID) ([]models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error
}

// Storage задаёт контракт работы с БД.
type Storage interface {
	UserStorage
	RoleStorage
	LocationStorage
	MenuStorage
	ArticleStorage
	OrderStorage
	Close()
}
