package middleware

import (
	"context"
	"net/http"

	"github.com/pribylovaa/go-menu-platform/internal/models"
	"github.com/pribylovaa/go-menu-platform/internal/service"
	"github.com/pribylovaa/go-menu-platform/internal/transport/http/httperr"
)

type ctxUserKey struct{}

// UserFrom достаёт аутентифицированного пользователя из контекста запроса.
func UserFrom(ctx context.Context) (*models.User, bool) {
	u, ok := ctx.Value(ctxUserKey{}).(*models.User)
	return u, ok
}

// WithUser кладёт пользователя в контекст (используется в тестах хендлеров).
func WithUser(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, ctxUserKey{}, u)
}

// Authenticate читает access-токен из cookie, валидирует его и кладёт
// владельца в контекст. Запрос без валидного токена отклоняется ошибкой
// самого токена (401 для битого/просроченного).
func Authenticate(svc *service.Service) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(service.AccessCookieName)
			if err != nil || cookie.Value == "" {
				httperr.WriteError(w, r, service.ErrInvalidToken)
				return
			}

			user, err := svc.ValidateAccess(r.Context(), cookie.Value)
			if err != nil {
				httperr.WriteError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// AuthenticateOptional кладёт пользователя в контекст, если валидный
// access-токен предъявлен, и молча пропускает запрос дальше, если нет.
// Для смешанных маршрутов (владелец видит больше, гость — публичную часть).
func AuthenticateOptional(svc *service.Service) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cookie, err := r.Cookie(service.AccessCookieName); err == nil && cookie.Value != "" {
				if user, err := svc.ValidateAccess(r.Context(), cookie.Value); err == nil {
					r = r.WithContext(WithUser(r.Context(), user))
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission пропускает запрос дальше, только если аутентифицированный
// пользователь обладает именованной permission. Superuser проходит всегда.
func RequirePermission(svc *service.Service, permission string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFrom(r.Context())
			if !ok {
				httperr.WriteError(w, r, service.ErrInvalidToken)
				return
			}

			allowed, err := svc.HasPermission(r.Context(), user, permission)
			if err != nil {
				httperr.WriteError(w, r, err)
				return
			}
			if !allowed {
				httperr.WriteError(w, r, service.ErrPermissionDenied)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
