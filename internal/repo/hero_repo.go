package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-church-backend/internal/domain"
)

// GetHero fetches the hero settings of page or returns ErrNotFound.
func GetHero(ctx context.Context, db *gorm.DB, page string) (*domain.HeroSettings, error) {
	var h domain.HeroSettings
	if err := db.WithContext(ctx).Where("page = ?", page).First(&h).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

// CreateHero inserts h. A second row for the same page fails with
// ErrDuplicate.
func CreateHero(ctx context.Context, db *gorm.DB, h *domain.HeroSettings) error {
	if h.ID == "" {
		h.ID = domain.NewID()
	}
	if err := db.WithContext(ctx).Create(h).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// SaveHero writes every mutable column of h.
func SaveHero(ctx context.Context, db *gorm.DB, h *domain.HeroSettings) error {
	res := db.WithContext(ctx).Model(h).Select("*").Omit("created_at", "page").Updates(h)
	return rowsOrNotFound(res)
}
