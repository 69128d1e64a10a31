package service

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-menu-platform/internal/models"
	"github.com/pribylovaa/go-menu-platform/internal/storage"
)

func strPtr(s string) *string { return &s }

// Обновление меняет только поля из явного списка; всё остальное на строке
// пользователя остаётся как было.
func TestUpdateUser_AllowListedMerge(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	hash := "session-hash"
	user := &models.User{
		ID:           uuid.New(),
		Email:        "user@example.com",
		FirstName:    "Ada",
		LastName:     "Lovelace",
		Access:       models.AccessUser,
		PasswordHash: mustHashPW(t, "Abcdef1!"),
		RefreshHash:  &hash,
	}

	var saved *models.User
	st.EXPECT().UserByID(gomock.Any(), user.ID).Return(user, nil)
	st.EXPECT().UpdateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *models.User) error {
			saved = u
			return nil
		})

	result, err := svc.UpdateUser(context.Background(), user.ID, UpdateUserInput{
		FirstName: strPtr("Grace"),
	})
	require.NoError(t, err)
	require.False(t, result.VerificationPending)

	require.Equal(t, "Grace", saved.FirstName)
	require.Equal(t, "Lovelace", saved.LastName)
	require.Equal(t, "user@example.com", saved.Email)
	require.Equal(t, &hash, saved.RefreshHash)
}

func TestUpdateUser_PasswordRules(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	user := &models.User{
		ID:           uuid.New(),
		Email:        "user@example.com",
		PasswordHash: mustHashPW(t, "Abcdef1!"),
	}

	st.EXPECT().UserByID(gomock.Any(), user.ID).Return(user, nil).Times(3)

	// Подтверждение не совпало.
	_, err := svc.UpdateUser(context.Background(), user.ID, UpdateUserInput{
		Password:        strPtr("Newpass1!"),
		ConfirmPassword: strPtr("Other1!xx"),
	})
	require.ErrorIs(t, err, ErrPasswordMismatch)

	// Новый пароль совпадает со старым.
	_, err = svc.UpdateUser(context.Background(), user.ID, UpdateUserInput{
		Password:        strPtr("Abcdef1!"),
		ConfirmPassword: strPtr("Abcdef1!"),
	})
	require.ErrorIs(t, err, ErrSamePassword)

	// Слабый пароль.
	_, err = svc.UpdateUser(context.Background(), user.ID, UpdateUserInput{
		Password:        strPtr("weak"),
		ConfirmPassword: strPtr("weak"),
	})
	require.ErrorIs(t, err, ErrWeakPassword)
}

// Смена адреса при включённой доставке откладывается до подтверждения:
// в БД остаётся прежний адрес, письмо уходит на новый.
func TestUpdateUser_EmailChange_DeferredBehindVerification(t *testing.T) {
	t.Parallel()

	svc, st, mailer, ctrl := newSvcWithMail(t)
	defer ctrl.Finish()

	user := &models.User{ID: uuid.New(), Email: "old@example.com", EmailVerified: true}

	var saved *models.User
	st.EXPECT().UserByID(gomock.Any(), user.ID).Return(user, nil)
	st.EXPECT().UserByEmail(gomock.Any(), "new@example.com").Return(nil, storage.ErrNotFound)
	st.EXPECT().SetEmailToken(gomock.Any(), user.ID, gomock.Any()).Return(nil)
	mailer.EXPECT().Send(gomock.Any(), gomock.Any()).Return(nil)
	st.EXPECT().UpdateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *models.User) error {
			saved = u
			return nil
		})

	result, err := svc.UpdateUser(context.Background(), user.ID, UpdateUserInput{
		Email: strPtr("New@Example.com"),
	})
	require.NoError(t, err)
	require.True(t, result.VerificationPending)
	require.Equal(t, "old@example.com", saved.Email)
}

// При выключенной доставке адрес меняется сразу и помечается неподтверждённым.
func TestUpdateUser_EmailChange_Immediate(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	user := &models.User{ID: uuid.New(), Email: "old@example.com", EmailVerified: true}

	var saved *models.User
	st.EXPECT().UserByID(gomock.Any(), user.ID).Return(user, nil)
	st.EXPECT().UserByEmail(gomock.Any(), "new@example.com").Return(nil, storage.ErrNotFound)
	st.EXPECT().UpdateUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *models.User) error {
			saved = u
			return nil
		})

	result, err := svc.UpdateUser(context.Background(), user.ID, UpdateUserInput{
		Email: strPtr("new@example.com"),
	})
	require.NoError(t, err)
	require.False(t, result.VerificationPending)
	require.Equal(t, "new@example.com", saved.Email)
	require.False(t, saved.EmailVerified)
}

func TestUpdateUser_EmailChange_Taken(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	user := &models.User{ID: uuid.New(), Email: "old@example.com"}

	st.EXPECT().UserByID(gomock.Any(), user.ID).Return(user, nil)
	st.EXPECT().UserByEmail(gomock.Any(), "new@example.com").
		Return(&models.User{ID: uuid.New(), Email: "new@example.com"}, nil)

	_, err := svc.UpdateUser(context.Background(), user.ID, UpdateUserInput{
		Email: strPtr("new@example.com"),
	})
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestUpdateUser_NotFound(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	st.EXPECT().UserByID(gomock.Any(), gomock.Any()).Return(nil, storage.ErrNotFound)

	_, err := svc.UpdateUser(context.Background(), uuid.New(), UpdateUserInput{})
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestCreateUser_AdminDefaults(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	var saved *models.User
	st.EXPECT().SaveUser(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, u *models.User) error {
			saved = u
			return nil
		})

	user, err := svc.CreateUser(context.Background(), RegisterInput{
		Email:           "staff@example.com",
		Password:        "Abcdef1!",
		ConfirmPassword: "Abcdef1!",
	}, "", nil)
	require.NoError(t, err)
	require.Equal(t, models.AccessUser, user.Access)
	require.Equal(t, saved.ID, user.ID)
}
