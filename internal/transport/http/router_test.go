package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/go-menu-platform/internal/config"
	"github.com/pribylovaa/go-menu-platform/internal/models"
	"github.com/pribylovaa/go-menu-platform/internal/service"
	"github.com/pribylovaa/go-menu-platform/internal/storage"
	"github.com/pribylovaa/go-menu-platform/mocks"
)

// Тесты роутера ходят через полный HTTP-стек (chi + middleware + хендлеры),
// подменяя только хранилище и почту моками. Токены и cookie настоящие.

func testAuthCfg() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:        "access-secret",
		AccessTokenTTL:   15 * time.Minute,
		RefreshSecret:    "refresh-secret",
		RefreshTokenTTL:  24 * time.Hour,
		EmailTokenSecret: "email-secret",
		EmailTokenTTL:    time.Hour,
		Issuer:           "menu-platform",
	}
}

func testMailCfg() config.MailConfig {
	return config.MailConfig{
		ConfirmationURL: "http://localhost:8080/auth/verify-email",
		SuccessURL:      "http://front.example.com/verified",
		ErrorURL:        "http://front.example.com/verification-error",
	}
}

func newTestRouter(t *testing.T) (http.Handler, *mocks.MockStorage, *gomock.Controller) {
	t.Helper()

	ctrl := gomock.NewController(t)
	st := mocks.NewMockStorage(ctrl)
	svc := service.New(st, mocks.NewMockMailer(ctrl), testAuthCfg(), testMailCfg())

	lg := slog.New(slog.NewTextHandler(io.Discard, nil))
	router := NewRouter(svc, testMailCfg(), Options{Logger: lg, Timeout: 5 * time.Second})
	return router, st, ctrl
}

func mustBcrypt(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

// doLogin выполняет POST /auth/login и возвращает ответ с сессионными cookie.
func doLogin(t *testing.T, router http.Handler, email, password string) *http.Response {
	t.Helper()

	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec.Result()
}

func cookieByName(t *testing.T, resp *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	t.Fatalf("cookie %q not found in response", name)
	return nil
}

func TestRouter_SessionFlow(t *testing.T) {
	t.Parallel()

	router, st, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	user := &models.User{
		ID:           uuid.New(),
		Email:        "owner@example.com",
		Access:       models.AccessUser,
		PasswordHash: mustBcrypt(t, "Abcdef1!"),
	}

	var storedHash *string
	st.EXPECT().UserByEmail(gomock.Any(), user.Email).Return(user, nil)
	st.EXPECT().UserByID(gomock.Any(), user.ID).
		DoAndReturn(func(_ context.Context, _ uuid.UUID) (*models.User, error) {
			u := *user
			u.RefreshHash = storedHash
			return &u, nil
		}).AnyTimes()
	st.EXPECT().UpdateRefreshHash(gomock.Any(), user.ID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ uuid.UUID, hash *string) error {
			storedHash = hash
			return nil
		}).AnyTimes()
	st.EXPECT().UserByRefreshHash(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, hash string) (*models.User, error) {
			if storedHash == nil || *storedHash != hash {
				return nil, storage.ErrNotFound
			}
			u := *user
			u.RefreshHash = storedHash
			return &u, nil
		}).AnyTimes()

	// Логин выставляет обе сессионные cookie.
	loginResp := doLogin(t, router, user.Email, "Abcdef1!")
	require.Equal(t, http.StatusOK, loginResp.StatusCode)

	access := cookieByName(t, loginResp, service.AccessCookieName)
	refresh := cookieByName(t, loginResp, service.RefreshCookieName)
	require.True(t, access.HttpOnly)
	require.True(t, refresh.HttpOnly)
	require.NotEmpty(t, access.Value)
	require.NotEmpty(t, refresh.Value)

	var session struct {
		User models.Profile `json:"user"`
	}
	require.NoError(t, json.NewDecoder(loginResp.Body).Decode(&session))
	require.Equal(t, user.Email, session.User.Email)

	// Под access-cookie доступен текущий пользователь.
	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	req.AddCookie(access)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Refresh переиздаёт только access-cookie; refresh-cookie не трогается.
	req = httptest.NewRequest(http.MethodGet, "/auth/refresh", nil)
	req.AddCookie(refresh)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	refreshResp := rec.Result()
	newAccess := cookieByName(t, refreshResp, service.AccessCookieName)
	require.NotEmpty(t, newAccess.Value)
	for _, c := range refreshResp.Cookies() {
		require.NotEqual(t, service.RefreshCookieName, c.Name)
	}

	// Signout сбрасывает обе cookie.
	req = httptest.NewRequest(http.MethodPost, "/auth/signout", nil)
	req.AddCookie(newAccess)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	signoutResp := rec.Result()
	require.Len(t, signoutResp.Cookies(), 2)
	for _, c := range signoutResp.Cookies() {
		require.Empty(t, c.Value)
		require.Negative(t, c.MaxAge)
	}

	// После signout прежняя сессия мертва: refresh отвечает 403.
	req = httptest.NewRequest(http.MethodGet, "/auth/refresh", nil)
	req.AddCookie(refresh)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_Login_InvalidCredentials(t *testing.T) {
	t.Parallel()

	router, st, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	st.EXPECT().UserByEmail(gomock.Any(), "ghost@example.com").Return(nil, storage.ErrNotFound)

	resp := doLogin(t, router, "ghost@example.com", "Abcdef1!")
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "invalid_argument", body.Error.Code)
}

func TestRouter_Refresh_NoCookie_Forbidden(t *testing.T) {
	t.Parallel()

	router, _, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	req := httptest.NewRequest(http.MethodGet, "/auth/refresh", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_CurrentUser_NoCookie_Unauthorized(t *testing.T) {
	t.Parallel()

	router, _, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	req := httptest.NewRequest(http.MethodGet, "/auth", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

// Обычный пользователь без роли не проходит permission-гейт на /users.
func TestRouter_Users_RequiresPermission(t *testing.T) {
	t.Parallel()

	router, st, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	user := &models.User{
		ID:           uuid.New(),
		Email:        "plain@example.com",
		Access:       models.AccessUser,
		PasswordHash: mustBcrypt(t, "Abcdef1!"),
	}

	st.EXPECT().UserByEmail(gomock.Any(), user.Email).Return(user, nil)
	st.EXPECT().UserByID(gomock.Any(), user.ID).Return(user, nil).AnyTimes()
	st.EXPECT().UpdateRefreshHash(gomock.Any(), user.ID, gomock.Any()).Return(nil)

	loginResp := doLogin(t, router, user.Email, "Abcdef1!")
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	access := cookieByName(t, loginResp, service.AccessCookieName)

	req := httptest.NewRequest(http.MethodGet, "/users", nil)
	req.AddCookie(access)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

// Ошибка подтверждения e-mail уходит редиректом на error-URL
// со структурированными query-параметрами, а не JSON-ответом.
func TestRouter_VerifyEmail_ErrorRedirect(t *testing.T) {
	t.Parallel()

	router, _, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	req := httptest.NewRequest(http.MethodGet, "/auth/verify-email?token=garbage", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	target, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "front.example.com", target.Host)
	require.Equal(t, "/verification-error", target.Path)

	q := target.Query()
	require.Equal(t, strconv.Itoa(http.StatusUnauthorized), q.Get("code"))
	require.Equal(t, "unauthenticated", q.Get("name"))
	require.Equal(t, "garbage", q.Get("token"))
	require.NotEmpty(t, q.Get("message"))
}

// mintEmailToken подписывает verification-токен теми же секретом и claims,
// что и сервис, минуя почтовый канал.
func mintEmailToken(t *testing.T, userID uuid.UUID, email string) string {
	t.Helper()

	now := time.Now()
	claims := jwt.MapClaims{
		"name": email,
		"type": string(models.EmailVerification),
		"iss":  testAuthCfg().Issuer,
		"sub":  userID.String(),
		"iat":  now.Unix(),
		"exp":  now.Add(time.Hour).Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).
		SignedString([]byte(testAuthCfg().EmailTokenSecret))
	require.NoError(t, err)
	return token
}

// Некорректный новый адрес в ссылке подтверждения тоже уходит редиректом:
// по ссылке идёт браузер, показывать ему JSON-ошибку некому.
func TestRouter_VerifyEmail_BadNewEmail_Redirects(t *testing.T) {
	t.Parallel()

	router, st, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	user := &models.User{ID: uuid.New(), Email: "owner@example.com"}
	token := mintEmailToken(t, user.ID, user.Email)

	st.EXPECT().UserByEmailToken(gomock.Any(), token).Return(user, nil)

	target := "/auth/verify-email?token=" + url.QueryEscape(token) +
		"&email=" + url.QueryEscape("not-an-email")
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)

	loc, err := url.Parse(rec.Header().Get("Location"))
	require.NoError(t, err)
	require.Equal(t, "/verification-error", loc.Path)

	q := loc.Query()
	require.Equal(t, strconv.Itoa(http.StatusBadRequest), q.Get("code"))
	require.Equal(t, "invalid_argument", q.Get("name"))
	require.Equal(t, token, q.Get("token"))
}

// Удаление категории доступно владельцу меню и только для категории
// этого меню.
func TestRouter_DeleteCategory_OwnerOnly(t *testing.T) {
	t.Parallel()

	router, st, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	user := &models.User{
		ID:           uuid.New(),
		Email:        "owner@example.com",
		Access:       models.AccessUser,
		PasswordHash: mustBcrypt(t, "Abcdef1!"),
	}
	loc := &models.Location{ID: uuid.New(), UserID: user.ID}
	menu := &models.Menu{ID: uuid.New(), LocationID: loc.ID}
	category := models.ArticleCategory{ID: uuid.New(), MenuID: menu.ID, Name: "Drinks"}

	st.EXPECT().UserByEmail(gomock.Any(), user.Email).Return(user, nil)
	st.EXPECT().UserByID(gomock.Any(), user.ID).Return(user, nil).AnyTimes()
	st.EXPECT().UpdateRefreshHash(gomock.Any(), user.ID, gomock.Any()).Return(nil)
	st.EXPECT().MenuByID(gomock.Any(), menu.ID).Return(menu, nil).AnyTimes()
	st.EXPECT().LocationByID(gomock.Any(), loc.ID).Return(loc, nil).AnyTimes()
	st.EXPECT().CategoriesByMenu(gomock.Any(), menu.ID).
		Return([]models.ArticleCategory{category}, nil).AnyTimes()

	loginResp := doLogin(t, router, user.Email, "Abcdef1!")
	require.Equal(t, http.StatusOK, loginResp.StatusCode)
	access := cookieByName(t, loginResp, service.AccessCookieName)

	// Чужая категория в пути этого меню отвечает 404 и ничего не удаляет.
	foreign := uuid.New()
	req := httptest.NewRequest(http.MethodDelete,
		"/menus/"+menu.ID.String()+"/categories/"+foreign.String(), nil)
	req.AddCookie(access)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Своя категория удаляется.
	st.EXPECT().DeleteCategory(gomock.Any(), category.ID).Return(nil)
	req = httptest.NewRequest(http.MethodDelete,
		"/menus/"+menu.ID.String()+"/categories/"+category.ID.String(), nil)
	req.AddCookie(access)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRouter_StrictDecoding_UnknownField(t *testing.T) {
	t.Parallel()

	router, _, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	req := httptest.NewRequest(http.MethodPost, "/auth/login",
		bytes.NewReader([]byte(`{"email":"a@b.c","password":"x","bogus":true}`)))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_RequestID_Propagated(t *testing.T) {
	t.Parallel()

	router, _, ctrl := newTestRouter(t)
	defer ctrl.Finish()

	req := httptest.NewRequest(http.MethodGet, "/livez", nil)
	req.Header.Set("X-Request-Id", "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "req-42", rec.Header().Get("X-Request-Id"))
}

func TestRouter_Operational(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := service.New(mocks.NewMockStorage(ctrl), mocks.NewMockMailer(ctrl), testAuthCfg(), testMailCfg())
	lg := slog.New(slog.NewTextHandler(io.Discard, nil))

	ready := false
	router := NewRouter(svc, testMailCfg(), Options{Logger: lg, Ready: func() bool { return ready }})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	ready = true
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}
