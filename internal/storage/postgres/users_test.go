package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/pribylovaa/go-menu-platform/internal/models"
	"github.com/pribylovaa/go-menu-platform/internal/storage"
)

// Файл интеграционных тестов для репозитория пользователей (users.go):
// - поднимает реальный PostgreSQL через testcontainers-go (образ postgres:16-alpine);
// - применяет embedded-миграции через RunMigrations;
// - проверяет happy-path (создание и поиск по email/ID/refresh-хэшу/verification-токену),
//   уникальность email (CITEXT, без учёта регистра) и подтверждение адреса;
// - валидирует сценарии отсутствия записей (storage.ErrNotFound) и ошибки контекста.
//
// Запуск локально:
//   GO_TEST_INTEGRATION=1 go test ./internal/storage/postgres -v -race -count=1

// startPostgres — поднимает временный экземпляр PostgreSQL через testcontainers-go,
// применяет миграции и возвращает инициализированное хранилище и функцию очистки.
// Если переменная окружения GO_TEST_INTEGRATION не установлена — тест пропускается.
func startPostgres(t *testing.T) (*Storage, func()) {
	t.Helper()
	if os.Getenv("GO_TEST_INTEGRATION") == "" {
		t.Skip("integration tests are disabled (set GO_TEST_INTEGRATION=1)")
	}

	ctx := context.Background()
	req := tc.ContainerRequest{
		Image:        "postgres:16-alpine",
		Env:          map[string]string{"POSTGRES_USER": "user", "POSTGRES_PASSWORD": "pass", "POSTGRES_DB": "db"},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor:   wait.ForListeningPort("5432/tcp").WithStartupTimeout(60 * time.Second),
	}
	c, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	require.NoError(t, err)

	host, _ := c.Host(ctx)
	port, _ := c.MappedPort(ctx, "5432/tcp")
	dsn := fmt.Sprintf("postgres://user:pass@%s:%s/db?sslmode=disable", host, port.Port())

	require.NoError(t, RunMigrations(dsn))

	st, err := New(ctx, dsn)
	require.NoError(t, err)

	cleanup := func() {
		st.Close()
		_ = c.Terminate(context.Background())
	}
	return st, cleanup
}

func newTestUser(email string) *models.User {
	now := time.Now().UTC()
	return &models.User{
		ID:           uuid.New(),
		Email:        email,
		Access:       models.AccessUser,
		PasswordHash: "hash",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// TestIntegration_SaveUser_And_Lookups_OK — happy-path: сохранение пользователя
// и последующий поиск по email (CITEXT, регистронезависимо) и по ID.
func TestIntegration_SaveUser_And_Lookups_OK(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	u := newTestUser("user@example.com")
	require.NoError(t, st.SaveUser(context.Background(), u))

	gotByEmail, err := st.UserByEmail(context.Background(), "User@Example.Com")
	require.NoError(t, err)
	require.Equal(t, u.ID, gotByEmail.ID)
	require.WithinDuration(t, u.CreatedAt, gotByEmail.CreatedAt, time.Second)

	gotByID, err := st.UserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, u.ID, gotByID.ID)
	require.Equal(t, models.AccessUser, gotByID.Access)
	require.Nil(t, gotByID.RefreshHash)
	require.Nil(t, gotByID.EmailToken)
}

// TestIntegration_SaveUser_UniqueEmail_CaseInsensitive_Violation — конфликт
// уникальности по email при различии только в регистре, ожидаем storage.ErrAlreadyExists.
func TestIntegration_SaveUser_UniqueEmail_CaseInsensitive_Violation(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	require.NoError(t, st.SaveUser(context.Background(), newTestUser("user@example.com")))

	err := st.SaveUser(context.Background(), newTestUser("USER@EXAMPLE.COM"))
	require.Error(t, err)
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

// TestIntegration_RefreshHash_Lifecycle — перезапись и очистка refresh-хэша:
// поиск по хэшу находит единственную строку, очистка делает его непригодным,
// повторная очистка не является ошибкой.
func TestIntegration_RefreshHash_Lifecycle(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	u := newTestUser("session@example.com")
	require.NoError(t, st.SaveUser(context.Background(), u))

	hash := "refresh-hash-value"
	require.NoError(t, st.UpdateRefreshHash(context.Background(), u.ID, &hash))

	got, err := st.UserByRefreshHash(context.Background(), hash)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	require.NoError(t, st.UpdateRefreshHash(context.Background(), u.ID, nil))

	_, err = st.UserByRefreshHash(context.Background(), hash)
	require.ErrorIs(t, err, storage.ErrNotFound)

	// Повторная очистка идемпотентна.
	require.NoError(t, st.UpdateRefreshHash(context.Background(), u.ID, nil))
}

// TestIntegration_ConfirmEmail_ConsumesToken — подтверждение адреса очищает
// verification-токен, выставляет флаг и опционально меняет email.
func TestIntegration_ConfirmEmail_ConsumesToken(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	u := newTestUser("old@example.com")
	require.NoError(t, st.SaveUser(context.Background(), u))

	token := "verification-token"
	require.NoError(t, st.SetEmailToken(context.Background(), u.ID, &token))

	got, err := st.UserByEmailToken(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)

	newEmail := "new@example.com"
	require.NoError(t, st.ConfirmEmail(context.Background(), u.ID, &newEmail))

	got, err = st.UserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.Equal(t, newEmail, got.Email)
	require.True(t, got.EmailVerified)
	require.Nil(t, got.EmailToken)

	// Токен одноразовый: повторный поиск по нему ничего не находит.
	_, err = st.UserByEmailToken(context.Background(), token)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// TestIntegration_ConfirmEmail_TakenEmail_Violation — подтверждение со сменой
// на занятый адрес упирается в уникальность, ожидаем storage.ErrAlreadyExists.
func TestIntegration_ConfirmEmail_TakenEmail_Violation(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	require.NoError(t, st.SaveUser(context.Background(), newTestUser("taken@example.com")))

	u := newTestUser("changing@example.com")
	require.NoError(t, st.SaveUser(context.Background(), u))

	taken := "taken@example.com"
	err := st.ConfirmEmail(context.Background(), u.ID, &taken)
	require.Error(t, err)
	require.ErrorIs(t, err, storage.ErrAlreadyExists)
}

// TestIntegration_UpdateUser_EmailChange_ClearsVerified — смена адреса у
// подтверждённого пользователя через UpdateUser должна сбрасывать флаг
// email_verified в самой БД, а не только в возвращаемой модели.
func TestIntegration_UpdateUser_EmailChange_ClearsVerified(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	u := newTestUser("verified@example.com")
	require.NoError(t, st.SaveUser(context.Background(), u))
	require.NoError(t, st.ConfirmEmail(context.Background(), u.ID, nil))

	got, err := st.UserByID(context.Background(), u.ID)
	require.NoError(t, err)
	require.True(t, got.EmailVerified)

	got.Email = "changed@example.com"
	got.EmailVerified = false
	require.NoError(t, st.UpdateUser(context.Background(), got))

	got, err = st.UserByID(context.Background(), got.ID)
	require.NoError(t, err)
	require.Equal(t, "changed@example.com", got.Email)
	require.False(t, got.EmailVerified)
}

// TestIntegration_UpdateUser_NotFound — обновление несуществующей строки,
// ожидаем storage.ErrNotFound.
func TestIntegration_UpdateUser_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	u := newTestUser("ghost@example.com")
	err := st.UpdateUser(context.Background(), u)
	require.Error(t, err)
	require.ErrorIs(t, err, storage.ErrNotFound)

	err = st.UpdateRefreshHash(context.Background(), uuid.New(), nil)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// TestIntegration_UserLookups_NotFound — поиск отсутствующих записей,
// ожидаем storage.ErrNotFound.
func TestIntegration_UserLookups_NotFound(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	_, err := st.UserByEmail(context.Background(), "absent@example.com")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.UserByID(context.Background(), uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.UserByRefreshHash(context.Background(), "no-such-hash")
	require.ErrorIs(t, err, storage.ErrNotFound)

	_, err = st.UserByEmailToken(context.Background(), "no-such-token")
	require.ErrorIs(t, err, storage.ErrNotFound)
}

// TestIntegration_UserQueries_ContextCanceled — отменённый контекст должен
// «просочиться» в ошибки чтения как context.Canceled.
func TestIntegration_UserQueries_ContextCanceled(t *testing.T) {
	st, cleanup := startPostgres(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := st.UserByEmail(ctx, "user@example.com")
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)

	_, err = st.UserByID(ctx, uuid.New())
	require.Error(t, err)
	require.ErrorIs(t, err, context.Canceled)
}
