package service

import (
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pribylovaa/go-menu-platform/internal/models"
)

// Имена сессионных cookie. Обе cookie выставляются на логине; при обновлении
// переиздаётся только access_token.
const (
	AccessCookieName  = "access_token"
	RefreshCookieName = "refresh_token"
)

// tokenClaims — полезная нагрузка всех видов токенов: идентификатор
// пользователя в sub, e-mail в name и вид токена в type. Поле type делает
// виды взаимно непригодными: refresh-токен не пройдёт проверку как access,
// даже если подписан тем же секретом.
type tokenClaims struct {
	Name string `json:"name"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// secretAndTTL возвращает секрет подписи и срок жизни для вида токена.
func (s *Service) secretAndTTL(kind models.TokenKind) ([]byte, time.Duration, error) {
	const op = "service.token.secretAndTTL"

	switch kind {
	case models.AccessToken:
		return []byte(s.cfg.JWTSecret), s.cfg.AccessTokenTTL, nil
	case models.RefreshToken:
		return []byte(s.cfg.RefreshSecret), s.cfg.RefreshTokenTTL, nil
	case models.EmailVerification:
		return []byte(s.cfg.EmailTokenSecret), s.cfg.EmailTokenTTL, nil
	default:
		return nil, 0, fmt.Errorf("%s: %w: %q", op, ErrUnknownTokenKind, kind)
	}
}

// issueToken выпускает подписанный JWT заданного вида.
func (s *Service) issueToken(userID uuid.UUID, email string, kind models.TokenKind, now time.Time) (string, error) {
	const op = "service.token.issueToken"

	secret, ttl, err := s.secretAndTTL(kind)
	if err != nil {
		return "", err
	}

	claims := tokenClaims{
		Name: email,
		Type: string(kind),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    s.cfg.Issuer,
			Subject:   userID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return signed, nil
}

// verifyToken проверяет подпись, срок и вид токена.
// Токен другого вида отклоняется как ErrInvalidToken.
func (s *Service) verifyToken(tokenStr string, kind models.TokenKind) (*tokenClaims, error) {
	const op = "service.token.verifyToken"

	secret, _, err := s.secretAndTTL(kind)
	if err != nil {
		return nil, err
	}

	token, err := jwt.ParseWithClaims(tokenStr, &tokenClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
			}

			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(5*time.Second),
		jwt.WithIssuer(s.cfg.Issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("%s: %w", op, ErrTokenExpired)
		}

		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	if claims.Type != string(kind) {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
	}

	return claims, nil
}

// subjectID извлекает идентификатор пользователя из sub.
func (c *tokenClaims) subjectID() (uuid.UUID, error) {
	id, err := uuid.Parse(c.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	return id, nil
}

// CookieFor строит сессионную cookie для токена указанного вида.
// Cookie — HttpOnly, SameSite=Strict, Path=/; Max-Age равен TTL вида.
func (s *Service) CookieFor(token string, kind models.TokenKind) (*http.Cookie, error) {
	const op = "service.token.CookieFor"

	_, ttl, err := s.secretAndTTL(kind)
	if err != nil {
		return nil, err
	}

	var name string
	switch kind {
	case models.AccessToken:
		name = AccessCookieName
	case models.RefreshToken:
		name = RefreshCookieName
	default:
		return nil, fmt.Errorf("%s: %w: %q", op, ErrUnknownTokenKind, kind)
	}

	return &http.Cookie{
		Name:     name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	}, nil
}

// ExpiredAuthCookies возвращает пару cookie с истёкшим сроком —
// для немедленного сброса сессии в браузере при signout.
func (s *Service) ExpiredAuthCookies() []*http.Cookie {
	expire := func(name string) *http.Cookie {
		return &http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteStrictMode,
		}
	}

	return []*http.Cookie{expire(AccessCookieName), expire(RefreshCookieName)}
}

// refreshHash — детерминированный дайджест refresh-токена для хранения
// и поиска: sha256, закодированный base64url без паддинга.
func refreshHash(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return base64.RawURLEncoding.EncodeToString(sum[:])
}
