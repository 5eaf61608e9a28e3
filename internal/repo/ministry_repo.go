package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-church-backend/internal/domain"
)

// CreateMinistry inserts m, assigning an ID when missing.
func CreateMinistry(ctx context.Context, db *gorm.DB, m *domain.Ministry) error {
	if m.ID == "" {
		m.ID = domain.NewID()
	}
	return db.WithContext(ctx).Create(m).Error
}

// GetMinistry fetches a ministry by ID or returns ErrNotFound.
func GetMinistry(ctx context.Context, db *gorm.DB, id string) (*domain.Ministry, error) {
	var m domain.Ministry
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMinistries returns ministries by display order, newest first within
// the same order.
func ListMinistries(ctx context.Context, db *gorm.DB, activeOnly bool) ([]domain.Ministry, error) {
	q := db.WithContext(ctx).Model(&domain.Ministry{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []domain.Ministry
	err := q.Order("sort_order asc, created_at desc").Find(&out).Error
	return out, err
}

// SaveMinistry writes every mutable column of m.
func SaveMinistry(ctx context.Context, db *gorm.DB, m *domain.Ministry) error {
	res := db.WithContext(ctx).Model(m).Select("*").Omit("created_at", "created_by").Updates(m)
	return rowsOrNotFound(res)
}

// DeleteMinistry removes a ministry by ID.
func DeleteMinistry(ctx context.Context, db *gorm.DB, id string) error {
	return rowsOrNotFound(db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Ministry{}))
}
