package models

import "time"

// TokenKind — назначение выпускаемого токена. Каждый вид подписывается
// собственным секретом и живёт свой срок; токен одного вида не проходит
// проверку для другого.
type TokenKind string

const (
	AccessToken       TokenKind = "ACCESS_TOKEN"
	RefreshToken      TokenKind = "REFRESH_TOKEN"
	EmailVerification TokenKind = "EMAIL_VERIFICATION"
)

// AuthSession — результат логина/обновления: токены плюс безопасная
// проекция пользователя.
//
//   - AccessToken — короткоживущий JWT для доступа к API;
//   - RefreshToken — долгоживущий JWT, по хэшу которого на строке
//     пользователя отслеживается текущая сессия; пустая строка означает,
//     что refresh-токен не переиздавался (сценарий Refresh);
//   - AccessExpiresAt — момент истечения access-токена (UTC).
type AuthSession struct {
	User            Profile
	AccessToken     string
	RefreshToken    string
	AccessExpiresAt time.Time
}
