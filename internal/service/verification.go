package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-menu-platform/internal/mail"
	"github.com/pribylovaa/go-menu-platform/internal/models"
	"github.com/pribylovaa/go-menu-platform/internal/pkg/log"
	"github.com/pribylovaa/go-menu-platform/internal/pkg/redact"
	"github.com/pribylovaa/go-menu-platform/internal/storage"
)

// RegisterInput — данные регистрации нового пользователя.
type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
}

// Register создаёт нового пользователя и, если отправка почты включена,
// высылает письмо с подтверждением адреса. Пользователь создаётся
// с email_verified=false независимо от того, ушло письмо или нет.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	const op = "service.verification.Register"

	lg := log.From(ctx)

	normEmail, err := validateEmail(in.Email)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
	}

	if err := validatePassword(in.Password); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if in.Password != in.ConfirmPassword {
		return nil, fmt.Errorf("%s: %w", op, ErrPasswordMismatch)
	}

	_, err = s.storage.UserByEmail(ctx, normEmail)
	if err == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	hashedPassword, err := hashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Email:        normEmail,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Access:       models.AccessUser,
		PasswordHash: hashedPassword,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.storage.SaveUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.mailCfg.DeliveryEnabled {
		if err := s.sendVerification(ctx, user, nil); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	} else {
		lg.Info("verification_mail_skipped",
			slog.String("op", op),
			slog.String("email", redact.Email(user.Email)),
		)
	}

	return user, nil
}

// VerifyEmail подтверждает адрес по verification-токену из письма.
// Если при смене адреса был передан newEmail, адрес меняется этим же шагом.
// Возвращаемые ошибки различают просроченный токен и токен, не привязанный
// ни к одному пользователю.
func (s *Service) VerifyEmail(ctx context.Context, token, newEmail string) (*models.User, error) {
	const op = "service.verification.VerifyEmail"

	if _, err := s.verifyToken(token, models.EmailVerification); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.storage.UserByEmailToken(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidToken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var newEmailPtr *string
	if newEmail != "" {
		norm, err := validateEmail(newEmail)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidEmail)
		}
		newEmailPtr = &norm
	}

	if err := s.storage.ConfirmEmail(ctx, user.ID, newEmailPtr); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrEmailTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user.EmailToken = nil
	user.EmailVerified = true
	if newEmailPtr != nil {
		user.Email = *newEmailPtr
	}

	return user, nil
}

// ResendVerification повторно высылает письмо с подтверждением. Вход —
// e-mail пользователя либо ранее выданный verification-токен (из обоих
// каналов UI). Для уже подтверждённого адреса возвращается
// ErrEmailAlreadyConfirmed.
func (s *Service) ResendVerification(ctx context.Context, emailOrToken string) error {
	const op = "service.verification.ResendVerification"

	var user *models.User

	if norm, err := validateEmail(emailOrToken); err == nil {
		user, err = s.storage.UserByEmail(ctx, norm)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrUserNotFound)
			}

			return fmt.Errorf("%s: %w", op, err)
		}
	} else {
		u, err := s.storage.UserByEmailToken(ctx, emailOrToken)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrUserNotFound)
			}

			return fmt.Errorf("%s: %w", op, err)
		}
		user = u
	}

	if user.EmailVerified {
		return fmt.Errorf("%s: %w", op, ErrEmailAlreadyConfirmed)
	}

	if !s.mailCfg.DeliveryEnabled {
		return nil
	}

	if err := s.sendVerification(ctx, user, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// sendVerification выпускает verification-токен, сохраняет его на строке
// пользователя и отправляет письмо со ссылкой подтверждения. Если newEmail
// задан (смена адреса), письмо уходит на НОВЫЙ адрес, а ссылка несёт его
// в параметре email.
func (s *Service) sendVerification(ctx context.Context, user *models.User, newEmail *string) error {
	const op = "service.verification.sendVerification"

	lg := log.From(ctx)

	token, err := s.issueToken(user.ID, user.Email, models.EmailVerification, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.storage.SetEmailToken(ctx, user.ID, &token); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	link, err := url.Parse(s.mailCfg.ConfirmationURL)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	q := link.Query()
	q.Set("token", token)
	if newEmail != nil {
		q.Set("email", *newEmail)
	}
	link.RawQuery = q.Encode()

	to := user.Email
	if newEmail != nil {
		to = *newEmail
	}

	msg := mail.Message{
		To:      to,
		Subject: "Confirm your email address",
		Text:    "Follow the link to confirm your email address: " + link.String(),
		HTML:    `<p>Follow the link to confirm your email address: <a href="` + link.String() + `">confirm</a></p>`,
	}

	if err := s.mailer.Send(ctx, msg); err != nil {
		lg.Error("verification_mail_failed",
			slog.String("op", op),
			slog.String("email", redact.Email(to)),
			slog.String("err", err.Error()),
		)
		return fmt.Errorf("%s: %w", op, err)
	}

	s.incMailSent()

	return nil
}
