package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/pribylovaa/go-menu-platform/internal/models"
	"github.com/pribylovaa/go-menu-platform/internal/storage"
)

// CreateLocation создаёт точку пользователя вместе с пустым меню.
// Имя уникально в пределах владельца; slug генерируется из имени со
// случайным суффиксом и уникален глобально.
func (s *Service) CreateLocation(ctx context.Context, userID uuid.UUID, name string) (*models.Location, error) {
	const op = "service.locations.CreateLocation"

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNameTaken)
	}

	existing, err := s.storage.LocationsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, loc := range existing {
		if strings.EqualFold(loc.Name, name) {
			return nil, fmt.Errorf("%s: %w", op, ErrNameTaken)
		}
	}

	slug, err := generateSlug(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := time.Now().UTC()
	loc := &models.Location{
		ID:        uuid.New(),
		Name:      name,
		Slug:      slug,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.storage.SaveLocation(ctx, loc); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrNameTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	menu := &models.Menu{
		ID:         uuid.New(),
		LocationID: loc.ID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.storage.SaveMenu(ctx, menu); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	loc.Menu = menu

	return loc, nil
}

// GetLocation возвращает точку (с меню) по идентификатору.
func (s *Service) GetLocation(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	const op = "service.locations.GetLocation"

	loc, err := s.storage.LocationByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return loc, nil
}

// GetLocationBySlug возвращает точку по публичному slug.
func (s *Service) GetLocationBySlug(ctx context.Context, slug string) (*models.Location, error) {
	const op = "service.locations.GetLocationBySlug"

	loc, err := s.storage.LocationBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return loc, nil
}

// ListLocations возвращает точки пользователя.
func (s *Service) ListLocations(ctx context.Context, userID uuid.UUID) ([]models.Location, error) {
	const op = "service.locations.ListLocations"

	locs, err := s.storage.LocationsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return locs, nil
}

// RenameLocation меняет имя точки. Slug при переименовании не меняется:
// публичные ссылки продолжают работать.
func (s *Service) RenameLocation(ctx context.Context, id uuid.UUID, name string) (*models.Location, error) {
	const op = "service.locations.RenameLocation"

	loc, err := s.storage.LocationByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	name = strings.TrimSpace(name)
	if name == "" || strings.EqualFold(loc.Name, name) {
		return loc, nil
	}

	siblings, err := s.storage.LocationsByUser(ctx, loc.UserID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for _, sib := range siblings {
		if sib.ID != loc.ID && strings.EqualFold(sib.Name, name) {
			return nil, fmt.Errorf("%s: %w", op, ErrNameTaken)
		}
	}

	loc.Name = name
	loc.UpdatedAt = time.Now().UTC()

	if err := s.storage.UpdateLocation(ctx, loc); err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			return nil, fmt.Errorf("%s: %w", op, ErrNameTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return loc, nil
}

// DeleteLocation удаляет точку вместе с меню и заказами (каскад в БД).
func (s *Service) DeleteLocation(ctx context.Context, id uuid.UUID) error {
	const op = "service.locations.DeleteLocation"

	if err := s.storage.DeleteLocation(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// generateSlug строит публичный идентификатор из имени: приведение к нижнему
// регистру, не-буквенно-цифровые символы схлопываются в дефисы, плюс
// случайный суффикс против коллизий между владельцами.
func generateSlug(name string) (string, error) {
	var b strings.Builder
	prevDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		case !prevDash:
			b.WriteByte('-')
			prevDash = true
		}
	}
	base := strings.Trim(b.String(), "-")
	if base == "" {
		base = "location"
	}

	suffix := make([]byte, 3)
	if _, err := rand.Read(suffix); err != nil {
		return "", err
	}

	return base + "-" + hex.EncodeToString(suffix), nil
}
