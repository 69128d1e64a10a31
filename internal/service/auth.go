package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-menu-platform/internal/cache"
	"github.com/pribylovaa/go-menu-platform/internal/models"
	"github.com/pribylovaa/go-menu-platform/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// ValidateCredentials проверяет пару e-mail+пароль и возвращает пользователя.
// Несуществующий адрес и неверный пароль неразличимы для вызывающего:
// обе ветки возвращают ErrInvalidCredentials.
func (s *Service) ValidateCredentials(ctx context.Context, email, password string) (*models.User, error) {
	const op = "service.auth.ValidateCredentials"

	normEmail, err := validateEmail(email)
	if err != nil {
		s.incLoginFailure()
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if len(password) == 0 {
		s.incLoginFailure()
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	user, err := s.storage.UserByEmail(ctx, normEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.incLoginFailure()
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !checkPassword(user.PasswordHash, password) {
		s.incLoginFailure()
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	return user, nil
}

// Login выпускает новую сессию для пользователя: пару access+refresh токенов
// и перезапись хэша refresh-токена на строке пользователя. Прежняя сессия
// при этом инвалидируется; две гонящиеся попытки входа разрешаются
// последней записью, транзакция не используется.
//
// Пользователь перечитывается из хранилища по идентификатору, чтобы выпуск
// сессии опирался на актуальную строку, а не на снимок из проверки пароля.
func (s *Service) Login(ctx context.Context, userID uuid.UUID) (*models.AuthSession, error) {
	const op = "service.auth.Login"

	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()

	accessToken, err := s.issueToken(user.ID, user.Email, models.AccessToken, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	refreshToken, err := s.issueToken(user.ID, user.Email, models.RefreshToken, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	oldHash := user.RefreshHash
	newHash := refreshHash(refreshToken)

	if err := s.storage.UpdateRefreshHash(ctx, user.ID, &newHash); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.rememberSession(ctx, user.ID, oldHash, newHash, now.Add(s.cfg.RefreshTokenTTL))
	s.incLogin()

	return &models.AuthSession{
		User:            models.ProfileOf(user),
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
		AccessExpiresAt: now.Add(s.cfg.AccessTokenTTL),
	}, nil
}

// ValidateAccess проверяет access-токен и возвращает его владельца.
func (s *Service) ValidateAccess(ctx context.Context, accessToken string) (*models.User, error) {
	const op = "service.auth.ValidateAccess"

	claims, err := s.verifyToken(accessToken, models.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	uid, err := claims.subjectID()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.storage.UserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

// Refresh переиздаёт access-токен по предъявленному refresh-токену.
// Refresh-токен НЕ переиздаётся и НЕ перезаписывается: одна и та же сессия
// обслуживает все обновления до своего истечения.
//
// Порядок проверок принципиален:
//  1. поиск сессии по хэшу токена — отсутствие означает "не залогинен"
//     (ErrNoSession), что клиент трактует как Forbidden;
//  2. криптографическая проверка самого токена — просроченная или битая
//     подпись означает Unauthorized (ErrTokenExpired/ErrInvalidToken).
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*models.AuthSession, error) {
	const op = "service.auth.Refresh"

	if refreshToken == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoSession)
	}

	hash := refreshHash(refreshToken)

	// Быстрый отказ по кэшу: уже отозванная сессия не ходит в БД.
	if s.scache != nil {
		if entry, ok, err := s.scache.Get(ctx, hash); err == nil && ok && entry.Revoked {
			return nil, fmt.Errorf("%s: %w", op, ErrNoSession)
		}
	}

	user, err := s.storage.UserByRefreshHash(ctx, hash)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrNoSession)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if _, err := s.verifyToken(refreshToken, models.RefreshToken); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()

	accessToken, err := s.issueToken(user.ID, user.Email, models.AccessToken, now)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.incRefresh()

	return &models.AuthSession{
		User:            models.ProfileOf(user),
		AccessToken:     accessToken,
		AccessExpiresAt: now.Add(s.cfg.AccessTokenTTL),
	}, nil
}

// RefreshTokenMatches сверяет предъявленный refresh-токен с сохранённым хэшем
// пользователя. Несовпадение не является ошибкой: возвращается ok=false.
func (s *Service) RefreshTokenMatches(ctx context.Context, userID uuid.UUID, refreshToken string) (*models.User, bool, error) {
	const op = "service.auth.RefreshTokenMatches"

	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("%s: %w", op, err)
	}

	if user.RefreshHash == nil || *user.RefreshHash != refreshHash(refreshToken) {
		return nil, false, nil
	}

	return user, true, nil
}

// Signout завершает сессию пользователя: хэш refresh-токена обнуляется.
// Операция идемпотентна: повторный вызов для уже завершённой сессии
// успешен и ничего не меняет.
func (s *Service) Signout(ctx context.Context, userID uuid.UUID) error {
	const op = "service.auth.Signout"

	user, err := s.storage.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	if user.RefreshHash == nil {
		return nil
	}

	if s.scache != nil {
		// Ошибка кэша не мешает сбросу: истина в БД.
		_ = s.scache.MarkRevoked(ctx, *user.RefreshHash)
	}

	if err := s.storage.UpdateRefreshHash(ctx, userID, nil); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}

		return fmt.Errorf("%s: %w", op, err)
	}

	s.incSignout()

	return nil
}

// HasPermission отвечает, обладает ли пользователь именованной permission.
// Superuser проходит любую проверку; пользователь без роли не проходит ни одной.
func (s *Service) HasPermission(ctx context.Context, user *models.User, permission string) (bool, error) {
	const op = "service.auth.HasPermission"

	if user.Access == models.AccessSuperuser {
		return true, nil
	}

	if user.RoleID == nil {
		return false, nil
	}

	names, err := s.storage.RolePermissions(ctx, *user.RoleID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return false, nil
		}

		return false, fmt.Errorf("%s: %w", op, err)
	}

	for _, name := range names {
		if name == permission {
			return true, nil
		}
	}

	return false, nil
}

// rememberSession обновляет кэш сессий после логина: прежний хэш помечается
// отозванным, новый сохраняется до истечения refresh-токена. Кэш
// вспомогательный, его ошибки молча игнорируются.
func (s *Service) rememberSession(ctx context.Context, userID uuid.UUID, oldHash *string, newHash string, expiresAt time.Time) {
	if s.scache == nil {
		return
	}

	if oldHash != nil && *oldHash != newHash {
		_ = s.scache.MarkRevoked(ctx, *oldHash)
	}

	entry := &cache.SessionEntry{
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	_ = s.scache.Set(ctx, newHash, entry, time.Until(expiresAt))
}

func (s *Service) incLogin() {
	if s.metrics != nil {
		s.metrics.IncLogin()
	}
}

func (s *Service) incLoginFailure() {
	if s.metrics != nil {
		s.metrics.IncLoginFailure()
	}
}

func (s *Service) incRefresh() {
	if s.metrics != nil {
		s.metrics.IncRefresh()
	}
}

func (s *Service) incSignout() {
	if s.metrics != nil {
		s.metrics.IncSignout()
	}
}

func (s *Service) incMailSent() {
	if s.metrics != nil {
		s.metrics.IncMailSent()
	}
}

func (s *Service) incOrderCreated() {
	if s.metrics != nil {
		s.metrics.IncOrderCreated()
	}
}

// hashPassword хэширует пароль с помощью bcrypt.
func hashPassword(password string) (string, error) {
	const op = "service.auth.hashPassword"

	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return string(bytes), nil
}

// checkPassword сравнивает пароль с хэшем.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// validateEmail проверяет базовый формат email и обрезает пробелы снаружи.
func validateEmail(raw string) (string, error) {
	const op = "service.auth.validateEmail"

	email := strings.TrimSpace(raw)
	if email == "" {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if _, err := mail.ParseAddress(email); err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	return strings.ToLower(email), nil
}

// validatePassword проверяет минимальные требования к паролю.
// Политика по умолчанию: длина >= 8, хотя бы одна строчная, заглавная, цифра и спецсимвол.
func validatePassword(pw string) error {
	const op = "service.auth.validatePassword"

	if len(pw) == 0 {
		return fmt.Errorf("%s: %w", op, ErrEmptyPassword)
	}

	if len([]rune(pw)) < 8 {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	var hasLower, hasUpper, hasDigit, hasSpecial bool
	for _, r := range pw {
		switch {
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	if !(hasLower && hasUpper && hasDigit && hasSpecial) {
		return fmt.Errorf("%s: %w", op, ErrWeakPassword)
	}

	return nil
}
