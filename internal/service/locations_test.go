package service

import (
	"context"
	"regexp"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/go-menu-platform/internal/models"
)

// Создание точки заводит и её пустое меню; slug строится из имени.
func TestCreateLocation_CreatesMenu(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	userID := uuid.New()

	st.EXPECT().LocationsByUser(gomock.Any(), userID).Return(nil, nil)
	st.EXPECT().SaveLocation(gomock.Any(), gomock.Any()).Return(nil)
	st.EXPECT().SaveMenu(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, m *models.Menu) error {
			require.NotEqual(t, uuid.Nil, m.LocationID)
			return nil
		})

	loc, err := svc.CreateLocation(context.Background(), userID, "  Corner Cafe  ")
	require.NoError(t, err)

	require.Equal(t, "Corner Cafe", loc.Name)
	require.Equal(t, userID, loc.UserID)
	require.NotNil(t, loc.Menu)
	require.Equal(t, loc.ID, loc.Menu.LocationID)
	require.Regexp(t, regexp.MustCompile(`^corner-cafe-[0-9a-f]{6}$`), loc.Slug)
}

// Имя уникально в пределах владельца без учёта регистра.
func TestCreateLocation_DuplicateName(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	userID := uuid.New()
	st.EXPECT().LocationsByUser(gomock.Any(), userID).
		Return([]models.Location{{ID: uuid.New(), Name: "Corner Cafe", UserID: userID}}, nil)

	_, err := svc.CreateLocation(context.Background(), userID, "corner cafe")
	require.ErrorIs(t, err, ErrNameTaken)
}

// Переименование не трогает slug: публичные ссылки продолжают работать.
func TestRenameLocation_KeepsSlug(t *testing.T) {
	t.Parallel()

	svc, st, _, ctrl := newSvc(t)
	defer ctrl.Finish()

	loc := &models.Location{
		ID:     uuid.New(),
		Name:   "Old Name",
		Slug:   "old-name-aabbcc",
		UserID: uuid.New(),
	}

	st.EXPECT().LocationByID(gomock.Any(), loc.ID).Return(loc, nil)
	st.EXPECT().LocationsByUser(gomock.Any(), loc.UserID).Return([]models.Location{*loc}, nil)
	st.EXPECT().UpdateLocation(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, l *models.Location) error {
			require.Equal(t, "New Name", l.Name)
			require.Equal(t, "old-name-aabbcc", l.Slug)
			return nil
		})

	got, err := svc.RenameLocation(context.Background(), loc.ID, "New Name")
	require.NoError(t, err)
	require.Equal(t, "old-name-aabbcc", got.Slug)
}

func TestGenerateSlug(t *testing.T) {
	t.Parallel()

	slug, err := generateSlug("Ye Olde Pub & Grill!")
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^ye-olde-pub-grill-[0-9a-f]{6}$`), slug)

	// Имя без буквенно-цифровых символов получает фолбэк.
	slug, err = generateSlug("!!!")
	require.NoError(t, err)
	require.Regexp(t, regexp.MustCompile(`^location-[0-9a-f]{6}$`), slug)
}
