package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-menu-platform/internal/models"
	"github.com/pribylovaa/go-menu-platform/internal/storage"
)

// UpdateUserInput — разрешённые к изменению поля пользователя. Указатель nil
// означает "не трогать". Поля вне этого списка (хэши, таймстемпы, признак
// подтверждения) через обновление недостижимы.
type UpdateUserInput struct {
	FirstName       *string
	LastName        *string
	Access          *models.AccessLevel
	RoleID          *uuid.UUID
	ClearRole       bool
	Email           *string
	Password        *string
	ConfirmPassword *string
}

// UpdateResult — результат обновления пользователя. VerificationPending
// выставляется, когда запрошена смена e-mail и она отложена до подтверждения
// по письму; в этом случае User всё ещё несёт прежний адрес.
type UpdateResult struct {
	User                *models.User
	VerificationPending bool
}

// GetUser возвращает пользователя по идентификатору.
func (s *Service) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	const op = "service.users.GetUser"

	user, err := s.storage.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// ListUsers возвращает всех пользователей.
func (s *Service) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "service.users.ListUsers"

	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return users, nil
}

// CreateUser создаёт пользователя от имени администратора: без письма
// с подтверждением, с заданным уровнем доступа и ролью.
func (s *Service) CreateUser(ctx context.Context, in RegisterInput, access models.AccessLevel, roleID *uuid.UUID) (*models.User, error) {
	const op = "service.users.CreateUser"

	normEmail, err := validateEmail(in.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if err := validatePassword(in.Password); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if in.Password != in.ConfirmPassword {
		return nil, fmt.Errorf("%s: %w", op, ErrPasswordMismatch)
	}

	hashedPassword, err := hashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if access == "" {
		access = models.AccessUser
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Email:        normEmail,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Access:       access,
		RoleID:       roleID,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// UpdateUser применяет частичное обновление по явному списку разрешённых
// полей.
//
// Особые случаи:
//   - смена пароля требует совпадающего подтверждения и отличия от старого;
//   - смена e-mail при включённой доставке почты откладывается: адрес
//     остаётся прежним, на новый адрес уходит письмо с подтверждением,
//     в результате взводится VerificationPending; при выключенной доставке
//     адрес меняется сразу и помечается неподтверждённым.
func (s *Service) UpdateUser(ctx context.Context, id uuid.UUID, in UpdateUserInput) (*UpdateResult, error) {
	const op = "service.users.UpdateUser"

	user, err := s.storage.UserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}
	if in.Access != nil {
		user.Access = *in.Access
	}
	if in.ClearRole {
		user.RoleID = nil
	} else if in.RoleID != nil {
		user.RoleID = in.RoleID
	}

	if in.Password != nil {
		if err := validatePassword(*in.Password); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if in.ConfirmPassword == nil || *in.Password != *in.ConfirmPassword {
			return nil, fmt.Errorf("%s: %w", op, ErrPasswordMismatch)
		}
		if checkPassword(user.PasswordHash, *in.Password) {
			return nil, fmt.Errorf("%s: %w", op, ErrSamePassword)
		}

		hashed, err := hashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		user.PasswordHash = hashed
	}

	verificationPending := false

	if in.Email != nil {
		normEmail, err := validateEmail(*in.Email)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
		}

		if normEmail != user.Email {
			if existing, err := s.storage.UserByEmail(ctx, normEmail); err == nil && existing.ID != user.ID {
				return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
			} else if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return nil, fmt.Errorf("%s: %w", op, err)
			}

			if s.mailCfg.DeliveryEnabled {
				if err := s.sendVerification(ctx, user, &normEmail); err != nil {
					return nil, fmt.Errorf("%s: %w", op, err)
				}
				verificationPending = true
			} else {
				user.Email = normEmail
				user.EmailVerified = false
			}
		}
	}

	user.UpdatedAt = time.Now().UTC()

	if err := s.storage.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &UpdateResult{User: user, VerificationPending: verificationPending}, nil
}

// DeleteUser удаляет пользователя.
func (s *Service) DeleteUser(ctx context.Context, id uuid.UUID) error {
	const op = "service.users.DeleteUser"

	if err := s.storage.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%s: %w", op, ErrUserNotFound)
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
