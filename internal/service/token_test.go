package service

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-menu-platform/internal/models"
	"github.com/pribylovaa/go-menu-platform/mocks"
)

func TestToken_RoundTrip_AllKinds(t *testing.T) {
	t.Parallel()

	svc, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	userID := uuid.New()
	email := "user@example.com"
	now := time.Now().UTC()

	for _, kind := range []models.TokenKind{models.AccessToken, models.RefreshToken, models.EmailVerification} {
		token, err := svc.issueToken(userID, email, kind, now)
		require.NoError(t, err)

		claims, err := svc.verifyToken(token, kind)
		require.NoError(t, err)
		require.Equal(t, userID.String(), claims.Subject)
		require.Equal(t, email, claims.Name)
		require.Equal(t, string(kind), claims.Type)
	}
}

// Даже при одинаковых секретах виды токенов взаимно непригодны:
// изоляцию обеспечивает claim type, а не только ключ подписи.
func TestToken_KindIsolation_SharedSecret(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	cfg := testCfg()
	cfg.JWTSecret = "shared-secret"
	cfg.RefreshSecret = "shared-secret"
	cfg.EmailTokenSecret = "shared-secret"
	svc := New(mocks.NewMockStorage(ctrl), mocks.NewMockMailer(ctrl), cfg, testMailCfg(false))

	token, err := svc.issueToken(uuid.New(), "user@example.com", models.AccessToken, time.Now().UTC())
	require.NoError(t, err)

	_, err = svc.verifyToken(token, models.RefreshToken)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = svc.verifyToken(token, models.EmailVerification)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestToken_WrongSecret_Invalid(t *testing.T) {
	t.Parallel()

	svc, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	token, err := svc.issueToken(uuid.New(), "user@example.com", models.AccessToken, time.Now().UTC())
	require.NoError(t, err)

	other := testCfg()
	other.JWTSecret = "different-secret"
	otherSvc := New(nil, nil, other, testMailCfg(false))

	_, err = otherSvc.verifyToken(token, models.AccessToken)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestToken_UnknownKind(t *testing.T) {
	t.Parallel()

	svc, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	_, err := svc.issueToken(uuid.New(), "user@example.com", models.TokenKind("BOGUS"), time.Now().UTC())
	require.ErrorIs(t, err, ErrUnknownTokenKind)

	_, err = svc.verifyToken("whatever", models.TokenKind("BOGUS"))
	require.ErrorIs(t, err, ErrUnknownTokenKind)
}

func TestCookieFor_Attributes(t *testing.T) {
	t.Parallel()

	svc, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	access, err := svc.CookieFor("token-value", models.AccessToken)
	require.NoError(t, err)
	require.Equal(t, AccessCookieName, access.Name)
	require.Equal(t, "token-value", access.Value)
	require.Equal(t, "/", access.Path)
	require.True(t, access.HttpOnly)
	require.Equal(t, http.SameSiteStrictMode, access.SameSite)
	require.Equal(t, int(svc.cfg.AccessTokenTTL.Seconds()), access.MaxAge)

	refresh, err := svc.CookieFor("token-value", models.RefreshToken)
	require.NoError(t, err)
	require.Equal(t, RefreshCookieName, refresh.Name)
	require.Equal(t, int(svc.cfg.RefreshTokenTTL.Seconds()), refresh.MaxAge)

	// Verification-токен в cookie не кладётся.
	_, err = svc.CookieFor("token-value", models.EmailVerification)
	require.ErrorIs(t, err, ErrUnknownTokenKind)
}

func TestExpiredAuthCookies(t *testing.T) {
	t.Parallel()

	svc, _, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	cookies := svc.ExpiredAuthCookies()
	require.Len(t, cookies, 2)
	for _, c := range cookies {
		require.Empty(t, c.Value)
		require.Negative(t, c.MaxAge)
		require.True(t, c.HttpOnly)
	}
}
