// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-church-backend/internal/domain"
)

// tableStats returns the row count and the greatest updated_at of q.
func tableStats(q *gorm.DB) (count int64, maxUpdatedAt *time.Time, err error) {
	if err = q.Session(&gorm.Session{}).Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}

// SermonsStats returns the number of sermons in the listing and the most
// recent UpdatedAt among them. When there are none, maxUpdatedAt is nil.
func SermonsStats(ctx context.Context, db *gorm.DB, publishedOnly bool) (count int64, maxUpdatedAt *time.Time, err error) {
	return tableStats(sermonScope(db.WithContext(ctx), publishedOnly))
}

// EventsStats is SermonsStats for events.
func EventsStats(ctx context.Context, db *gorm.DB, publishedOnly bool) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.Event{})
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	return tableStats(q)
}
