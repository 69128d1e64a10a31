package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pribylovaa/go-menu-platform/internal/models"
	"github.com/pribylovaa/go-menu-platform/internal/service"
	"github.com/pribylovaa/go-menu-platform/internal/transport/http/httperr"
	"github.com/pribylovaa/go-menu-platform/internal/transport/http/middleware"
)

type registerRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionResponse struct {
	User            models.Profile `json:"user"`
	AccessExpiresAt time.Time      `json:"access_expires_at"`
}

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var in registerRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	user, err := h.Service.Register(r.Context(), service.RegisterInput{
		Email:           in.Email,
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
		FirstName:       in.FirstName,
		LastName:        in.LastName,
	})
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, models.ProfileOf(user))
}

// Login проверяет учётные данные, выпускает сессию и выставляет обе
// сессионные cookie. Прежняя сессия пользователя при этом перетирается.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	user, err := h.Service.ValidateCredentials(r.Context(), in.Email, in.Password)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	session, err := h.Service.Login(r.Context(), user.ID)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	if err := h.setSessionCookies(w, session); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		User:            session.User,
		AccessExpiresAt: session.AccessExpiresAt,
	})
}

// Refresh переиздаёт access-токен по refresh-cookie. Refresh-cookie
// не трогается: та же сессия живёт до своего истечения.
func (h *Handlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var refreshToken string
	if cookie, err := r.Cookie(service.RefreshCookieName); err == nil {
		refreshToken = cookie.Value
	}

	session, err := h.Service.Refresh(r.Context(), refreshToken)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	accessCookie, err := h.Service.CookieFor(session.AccessToken, models.AccessToken)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}
	http.SetCookie(w, accessCookie)

	writeJSON(w, http.StatusOK, sessionResponse{
		User:            session.User,
		AccessExpiresAt: session.AccessExpiresAt,
	})
}

// Signout завершает сессию и сбрасывает обе cookie. Идемпотентен.
func (h *Handlers) Signout(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	if err := h.Service.Signout(r.Context(), user.ID); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	for _, cookie := range h.Service.ExpiredAuthCookies() {
		http.SetCookie(w, cookie)
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "signed_out"})
}

// CurrentUser возвращает проекцию аутентифицированного пользователя.
func (h *Handlers) CurrentUser(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httperr.WriteError(w, r, service.ErrInvalidToken)
		return
	}

	writeJSON(w, http.StatusOK, models.ProfileOf(user))
}

// VerifyEmail подтверждает адрес по ссылке из письма. Канал ошибок здесь
// редиректный, а не JSON: по ссылке идёт браузер, поэтому любая ошибка
// подтверждения уводит на настроенный error-URL со структурированными
// query-параметрами (включая исходный токен для повтора).
func (h *Handlers) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	newEmail := r.URL.Query().Get("email")

	_, err := h.Service.VerifyEmail(r.Context(), token, newEmail)
	if err != nil {
		if errors.Is(err, service.ErrInvalidToken) ||
			errors.Is(err, service.ErrTokenExpired) ||
			errors.Is(err, service.ErrInvalidEmail) ||
			errors.Is(err, service.ErrEmailTaken) {
			h.redirectVerificationError(w, r, token, err)
			return
		}

		httperr.WriteError(w, r, err)
		return
	}

	http.Redirect(w, r, h.MailCfg.SuccessURL, http.StatusSeeOther)
}

type resendRequest struct {
	// Принимаем и e-mail, и ранее выданный verification-токен.
	EmailOrToken string `json:"email_or_token"`
}

func (h *Handlers) ResendVerification(w http.ResponseWriter, r *http.Request) {
	var in resendRequest
	if err := decodeStrict(r, &in); err != nil {
		httperr.WriteError(w, r, httperr.ErrBadRequest)
		return
	}

	if err := h.Service.ResendVerification(r.Context(), in.EmailOrToken); err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "sent"})
}

// setSessionCookies выставляет пару сессионных cookie логина.
func (h *Handlers) setSessionCookies(w http.ResponseWriter, session *models.AuthSession) error {
	accessCookie, err := h.Service.CookieFor(session.AccessToken, models.AccessToken)
	if err != nil {
		return err
	}

	refreshCookie, err := h.Service.CookieFor(session.RefreshToken, models.RefreshToken)
	if err != nil {
		return err
	}

	http.SetCookie(w, accessCookie)
	http.SetCookie(w, refreshCookie)
	return nil
}

// redirectVerificationError строит redirect на error-URL c параметрами
// code/name/message/description/token.
func (h *Handlers) redirectVerificationError(w http.ResponseWriter, r *http.Request, token string, verr error) {
	status, resp := httperr.ToHTTP(verr)

	target, err := url.Parse(h.MailCfg.ErrorURL)
	if err != nil {
		httperr.WriteError(w, r, err)
		return
	}

	q := target.Query()
	q.Set("code", strconv.Itoa(status))
	q.Set("name", resp.Error.Code)
	q.Set("message", resp.Error.Message)
	q.Set("description", "email verification failed")
	q.Set("token", token)
	target.RawQuery = q.Encode()

	http.Redirect(w, r, target.String(), http.StatusSeeOther)
}
