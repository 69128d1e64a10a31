package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-menu-platform/internal/config"
	"github.com/pribylovaa/go-menu-platform/internal/models"
	"github.com/pribylovaa/go-menu-platform/internal/storage"
	"github.com/pribylovaa/go-menu-platform/mocks"
)

func testCfg() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:        "unit-access-secret",
		AccessTokenTTL:   30 * time.Second,
		RefreshSecret:    "unit-refresh-secret",
		RefreshTokenTTL:  24 * time.Hour,
		EmailTokenSecret: "unit-email-secret",
		EmailTokenTTL:    time.Hour,
		Issuer:           "menu-platform",
	}
}

func testMailCfg(delivery bool) config.MailConfig {
	return config.MailConfig{
		DeliveryEnabled: delivery,
		ConfirmationURL: "http://localhost:8080/auth/verify-email",
		SuccessURL:      "http://localhost:3000/verified",
		ErrorURL:        "http://localhost:3000/verification-error",
		From:            "no-reply@menu-platform.local",
	}
}

func newSvc(t *testing.T) (*Service, *mocks.MockStorage, *mocks.MockMailer, *gomock.Controller) {
	t.Helper()
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStorage(ctrl)
	mailer := mocks.NewMockMailer(ctrl)
	svc := New(st, mailer, testCfg(), testMailCfg(false))
	return svc, st, mailer, ctrl
}

func newSvcWithMail(t *testing.T) (*Service, *mocks.MockStorage, *mocks.MockMailer, *gomock.Controller) {
	t.Helper()
	ctrl := gomock.NewController(t)
	st := mocks.NewMockStorage(ctrl)
	mailer := mocks.NewMockMailer(ctrl)
	svc := New(st, mailer, testCfg(), testMailCfg(true))
	return svc, st, mailer, ctrl
}

func mustHashPW(t *testing.T, pw string) string {
	t.Helper()
	h, err := hashPassword(pw)
	require.NoError(t, err)
	return h
}

func TestValidateCredentials_OK(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	pw := "Abcdef1!"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "user@example.com",
		PasswordHash: mustHashPW(t, pw),
	}

	st.EXPECT().UserByEmail(gomock.Any(), "user@example.com").Return(user, nil)

	got, err := svc.ValidateCredentials(context.Background(), "User@Example.com", pw)
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
}

// Неизвестный адрес и неверный пароль дают один и тот же сентинел:
// по ответу нельзя понять, существует ли пользователь.
func TestValidateCredentials_NoEnumeration(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	user := &models.User{
		ID:           uuid.New(),
		Email:        "known@example.com",
		PasswordHash: mustHashPW(t, "Abcdef1!"),
	}

	st.EXPECT().UserByEmail(gomock.Any(), "unknown@example.com").
		Return(nil, storage.ErrNotFound)
	st.EXPECT().UserByEmail(gomock.Any(), "known@example.com").
		Return(user, nil)

	_, errUnknown := svc.ValidateCredentials(context.Background(), "unknown@example.com", "Abcdef1!")
	_, errWrongPW := svc.ValidateCredentials(context.Background(), "known@example.com", "Wrong-pass9")

	require.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	require.ErrorIs(t, errWrongPW, ErrInvalidCredentials)
}

func TestValidateCredentials_StorageError_Propagated(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().UserByEmail(gomock.Any(), "user@example.com").
		Return(nil, errors.New("db down"))

	_, err := svc.ValidateCredentials(context.Background(), "user@example.com", "Abcdef1!")
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrInvalidCredentials)
}

// Логин перезаписывает хэш refresh-токена на строке пользователя:
// прежняя сессия инвалидируется последней записью.
func TestLogin_OverwritesRefreshHash(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	oldHash := "old-session-hash"
	user := &models.User{
		ID:          uuid.New(),
		Email:       "user@example.com",
		RefreshHash: &oldHash,
	}

	var savedHash *string
	st.EXPECT().UserByID(gomock.Any(), user.ID).Return(user, nil)
	st.EXPECT().UpdateRefreshHash(gomock.Any(), user.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, hash *string) error {
			savedHash = hash
			return nil
		})

	session, err := svc.Login(context.Background(), user.ID)
	require.NoError(t, err)
	require.NotEmpty(t, session.AccessToken)
	require.NotEmpty(t, session.RefreshToken)
	require.WithinDuration(t, time.Now().Add(svc.cfg.AccessTokenTTL), session.AccessExpiresAt, 2*time.Second)

	require.NotNil(t, savedHash)
	require.NotEqual(t, oldHash, *savedHash)
	require.Equal(t, refreshHash(session.RefreshToken), *savedHash)
}

// Обновление переиздаёт только access-токен; refresh-токен не ротируется.
func TestRefresh_OK_NoRotation(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	user := &models.User{ID: uuid.New(), Email: "user@example.com"}

	refreshToken, err := svc.issueToken(user.ID, user.Email, models.RefreshToken, time.Now().UTC())
	require.NoError(t, err)

	st.EXPECT().UserByRefreshHash(gomock.Any(), refreshHash(refreshToken)).Return(user, nil)

	session, err := svc.Refresh(context.Background(), refreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, session.AccessToken)
	require.Empty(t, session.RefreshToken)
	require.Equal(t, user.ID, session.User.ID)
}

// Токен без сохранённой сессии — это "не залогинен" (ErrNoSession/403),
// а не "битый токен" (401).
func TestRefresh_UnknownToken_NoSession(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().UserByRefreshHash(gomock.Any(), gomock.Any()).
		Return(nil, storage.ErrNotFound)

	_, err := svc.Refresh(context.Background(), "some-unknown-token")
	require.ErrorIs(t, err, ErrNoSession)
}

func TestRefresh_EmptyToken_NoSession(t *testing.T) {
	t.Parallel()

	svc, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	_, err := svc.Refresh(context.Background(), "")
	require.ErrorIs(t, err, ErrNoSession)
}

// Просроченный refresh-токен с живой сессией в БД — Unauthorized, не Forbidden.
func TestRefresh_ExpiredToken_Unauthorized(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	st := mocks.NewMockStorage(ctrl)

	cfg := testCfg()
	cfg.RefreshTokenTTL = -time.Hour
	svc := New(st, mocks.NewMockMailer(ctrl), cfg, testMailCfg(false))

	user := &models.User{ID: uuid.New(), Email: "user@example.com"}
	expired, err := svc.issueToken(user.ID, user.Email, models.RefreshToken, time.Now().UTC())
	require.NoError(t, err)

	st.EXPECT().UserByRefreshHash(gomock.Any(), refreshHash(expired)).Return(user, nil)

	_, err = svc.Refresh(context.Background(), expired)
	require.ErrorIs(t, err, ErrTokenExpired)
}

// Access-токен не принимается на месте refresh-токена даже при живой сессии.
func TestRefresh_AccessTokenRejected(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	user := &models.User{ID: uuid.New(), Email: "user@example.com"}
	accessToken, err := svc.issueToken(user.ID, user.Email, models.AccessToken, time.Now().UTC())
	require.NoError(t, err)

	st.EXPECT().UserByRefreshHash(gomock.Any(), refreshHash(accessToken)).Return(user, nil)

	_, err = svc.Refresh(context.Background(), accessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestSignout_ClearsHash(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	hash := "current-session-hash"
	user := &models.User{ID: uuid.New(), RefreshHash: &hash}

	st.EXPECT().UserByID(gomock.Any(), user.ID).Return(user, nil)
	st.EXPECT().UpdateRefreshHash(gomock.Any(), user.ID, gomock.Nil()).Return(nil)

	require.NoError(t, svc.Signout(context.Background(), user.ID))
}

// Повторный signout без активной сессии успешен и ничего не пишет.
func TestSignout_Idempotent(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	user := &models.User{ID: uuid.New(), RefreshHash: nil}
	st.EXPECT().UserByID(gomock.Any(), user.ID).Return(user, nil)

	require.NoError(t, svc.Signout(context.Background(), user.ID))
}

func TestSignout_UnknownUser_OK(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().UserByID(gomock.Any(), gomock.Any()).Return(nil, storage.ErrNotFound)

	require.NoError(t, svc.Signout(context.Background(), uuid.New()))
}

func TestRefreshTokenMatches(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	token := "candidate-token"
	hash := refreshHash(token)
	user := &models.User{ID: uuid.New(), RefreshHash: &hash}

	st.EXPECT().UserByID(gomock.Any(), user.ID).Return(user, nil).Times(2)

	got, ok, err := svc.RefreshTokenMatches(context.Background(), user.ID, token)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, user.ID, got.ID)

	// Несовпадение — не ошибка.
	_, ok, err = svc.RefreshTokenMatches(context.Background(), user.ID, "other-token")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHasPermission_SuperuserBypass(t *testing.T) {
	t.Parallel()

	svc, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	user := &models.User{ID: uuid.New(), Access: models.AccessSuperuser}

	ok, err := svc.HasPermission(context.Background(), user, "users.manage")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestHasPermission_NoRole(t *testing.T) {
	t.Parallel()

	svc, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	user := &models.User{ID: uuid.New(), Access: models.AccessUser}

	ok, err := svc.HasPermission(context.Background(), user, "users.manage")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestHasPermission_RoleMembership(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	roleID := uuid.New()
	user := &models.User{ID: uuid.New(), Access: models.AccessUser, RoleID: &roleID}

	st.EXPECT().RolePermissions(gomock.Any(), roleID).
		Return([]string{"roles.manage", "users.read"}, nil).Times(2)

	ok, err := svc.HasPermission(context.Background(), user, "users.read")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = svc.HasPermission(context.Background(), user, "users.manage")
	require.NoError(t, err)
	require.False(t, ok)
}
