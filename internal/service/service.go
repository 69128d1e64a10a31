// service содержит бизнес-логику платформы: аутентификацию и жизненный цикл
// сессий, подтверждение e-mail, пользователей/роли и сущности меню.
//
// Основные аспекты:
//   - Пакет не хранит состояние запроса внутри Service; экземпляр Service
//     безопасен для конкурентного использования из разных горутин при условии,
//     что переданное хранилище (storage.Storage) потокобезопасно.
//   - Вся истина о сессии живёт в строке пользователя (refresh_hash) и в самих
//     подписанных токенах; явных транзакций вокруг read-then-write нет,
//     гонка двух логинов разрешается по принципу "последняя запись побеждает".
//   - Ошибки возвращаются сентинелами и далее маппятся HTTP-слоем
//     (см. transport/http/httperr).
package service

import (
	"errors"

	"github.com/pribylovaa/go-menu-platform/internal/cache"
	"github.com/pribylovaa/go-menu-platform/internal/config"
	"github.com/pribylovaa/go-menu-platform/internal/mail"
	"github.com/pribylovaa/go-menu-platform/internal/metrics"
	"github.com/pribylovaa/go-menu-platform/internal/storage"
)

var (
	// ErrInvalidCredentials — пара логин/пароль неверна или пользователь не найден.
	// Сообщение одинаково для обоих случаев, чтобы не раскрывать наличие адреса.
	// HTTP 400.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrInvalidToken — токен некорректен по формату/подписи или выписан для
	// другого назначения. HTTP 401.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired — срок действия токена истёк. HTTP 401.
	ErrTokenExpired = errors.New("token expired")

	// ErrNoSession — предъявленный refresh-токен не соответствует ни одной
	// сохранённой сессии. Отличается от ErrInvalidToken: клиент должен понять,
	// что он "не залогинен", а не "не допущен". HTTP 403.
	ErrNoSession = errors.New("no session for refresh token")

	// ErrUnknownTokenKind — запрошен выпуск/проверка токена неизвестного вида.
	// Защитная ветка default. HTTP 403.
	ErrUnknownTokenKind = errors.New("unknown token kind")

	// ErrPermissionDenied — у вызывающего нет требуемой permission. HTTP 403.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrEmailTaken — e-mail уже занят другим пользователем. HTTP 400.
	ErrEmailTaken = errors.New("user with that email already exists")

	// ErrInvalidEmail — e-mail имеет некорректный формат. HTTP 400.
	ErrInvalidEmail = errors.New("invalid email format")

	// ErrWeakPassword — пароль не удовлетворяет политике сложности. HTTP 400.
	ErrWeakPassword = errors.New("password is too weak")

	// ErrEmptyPassword — пароль пустой. HTTP 400.
	ErrEmptyPassword = errors.New("password is empty")

	// ErrPasswordMismatch — пароль и подтверждение не совпадают. HTTP 400.
	ErrPasswordMismatch = errors.New("passwords do not match")

	// ErrSamePassword — новый пароль совпадает со старым. HTTP 400.
	ErrSamePassword = errors.New("new password cannot be the same as the old one")

	// ErrUserNotFound — пользователь по указанному идентификатору не найден
	// (resend-флоу и операции над пользователями). HTTP 400.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyConfirmed — адрес уже подтверждён, повторная отправка
	// не имеет смысла. HTTP 400.
	ErrEmailAlreadyConfirmed = errors.New("email already confirmed")

	// ErrNameTaken — имя локации/категории уже используется владельцем. HTTP 400.
	ErrNameTaken = errors.New("name must be unique")

	// ErrInvalidOrder — заказ ссылается на чужие или несуществующие позиции,
	// либо не содержит ни одной позиции. HTTP 400.
	ErrInvalidOrder = errors.New("invalid order")

	// ErrInvalidStatusChange — недопустимый переход состояния заказа. HTTP 400.
	ErrInvalidStatusChange = errors.New("invalid order status change")
)

// Service описывает бизнес-логику платформы.
type Service struct {
	storage storage.Storage
	mailer  mail.Mailer
	cfg     config.AuthConfig
	mailCfg config.MailConfig
	scache  cache.SessionCache // может быть nil, если кэш не сконфигурирован
	metrics *metrics.Collector // может быть nil
}

// New создаёт новый экземпляр Service.
func New(st storage.Storage, mailer mail.Mailer, cfg config.AuthConfig, mailCfg config.MailConfig) *Service {
	return &Service{
		storage: st,
		mailer:  mailer,
		cfg:     cfg,
		mailCfg: mailCfg,
	}
}

// SetSessionCache устанавливает кэш сессий (опционально).
func (s *Service) SetSessionCache(c cache.SessionCache) {
	s.scache = c
}

// SetMetrics устанавливает сборщик метрик (опционально).
func (s *Service) SetMetrics(m *metrics.Collector) {
	s.metrics = m
}
