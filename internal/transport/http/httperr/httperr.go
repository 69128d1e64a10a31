// httperr стандартизирует ответы об ошибках HTTP-слоя.
// На вход он принимает доменную ошибку сервисного слоя, а на выход даёт:
//   - корректный HTTP-статус;
//   - краткое безопасное message без утечки деталей.
//
// Источник истинности по маппингу: сентинелы пакета service.
package httperr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/pribylovaa/go-menu-platform/internal/service"
	"github.com/pribylovaa/go-menu-platform/internal/storage"
)

// ErrBadRequest — локальная ошибка HTTP-слоя: битый JSON, нечитаемый UUID
// в пути и т.п. До сервисного слоя такие запросы не доходят.
var ErrBadRequest = errors.New("invalid argument")

// APIError — единый формат для фронта.
// Code — короткий стабильный код для машиночитаемой обработки на FE.
// Message — безопасное человекочитаемое описание.
// RequestID — прокидывается из X-Request-Id, если есть (для трассировки).
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// ErrorResponse — корневой объект в ответе.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// ToHTTP конвертирует доменную ошибку в HTTP-статус и унифицированный ответ.
//
// Поведение:
//   - err == nil — это программная ошибка вызова: возвращаем 500/internal,
//     чтобы не послать "200 OK" с телом ошибки и не маскировать баг;
//   - ошибки валидации входных данных (учётные данные, пароль, e-mail,
//     уникальность) -> 400; сообщение берётся из сентинела — оно безопасно;
//   - битый или просроченный токен -> 401 (unauthenticated);
//   - отсутствующая сессия и нехватка прав -> 403 (permission_denied):
//     клиент должен понять, что он "не допущен", а не "не представился";
//   - отсутствующая сущность -> 404;
//   - прочее -> 500/internal без деталей.
func ToHTTP(err error) (int, ErrorResponse) {
	if err == nil {
		return http.StatusInternalServerError, response("internal", "internal error")
	}

	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, response("invalid_argument", "invalid argument")

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrWeakPassword),
		errors.Is(err, service.ErrEmptyPassword),
		errors.Is(err, service.ErrPasswordMismatch),
		errors.Is(err, service.ErrSamePassword),
		errors.Is(err, service.ErrEmailTaken),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrEmailAlreadyConfirmed),
		errors.Is(err, service.ErrNameTaken),
		errors.Is(err, service.ErrInvalidOrder),
		errors.Is(err, service.ErrInvalidStatusChange):
		return http.StatusBadRequest, response("invalid_argument", unwrapMessage(err))

	case errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrInvalidToken):
		return http.StatusUnauthorized, response("unauthenticated", unwrapMessage(err))

	case errors.Is(err, service.ErrNoSession),
		errors.Is(err, service.ErrPermissionDenied),
		errors.Is(err, service.ErrUnknownTokenKind):
		return http.StatusForbidden, response("permission_denied", unwrapMessage(err))

	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound, response("not_found", "not found")

	case errors.Is(err, storage.ErrAlreadyExists):
		return http.StatusConflict, response("already_exists", "already exists")

	default:
		return http.StatusInternalServerError, response("internal", "internal error")
	}
}

// WriteError — хелпер для HTTP-хендлеров.
// Пишет корректный статус/тело, добавляет request_id из заголовка, если он есть.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	status, resp := ToHTTP(err)

	// Прокидываем request_id для фронта, чтобы он мог репортить баги с привязкой.
	if rid := r.Header.Get("X-Request-Id"); rid != "" {
		resp.Error.RequestID = rid
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func response(code, msg string) ErrorResponse {
	return ErrorResponse{Error: APIError{Code: code, Message: msg}}
}

// unwrapMessage достаёт текст сентинела без операционных префиксов
// вида "service.auth.Login: ...".
func unwrapMessage(err error) string {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err.Error()
		}
		err = unwrapped
	}
}
