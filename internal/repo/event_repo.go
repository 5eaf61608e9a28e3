package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-church-backend/internal/domain"
)

// EventFilter narrows ListEvents. Nil pointers mean "don't care".
type EventFilter struct {
	PublishedOnly bool
	Upcoming      *bool
	Featured      *bool
	Category      string
	Now           time.Time
}

// CreateEvent inserts e, assigning an ID when missing.
func CreateEvent(ctx context.Context, db *gorm.DB, e *domain.Event) error {
	if e.ID == "" {
		e.ID = domain.NewID()
	}
	return db.WithContext(ctx).Create(e).Error
}

// GetEvent fetches an event by ID or returns ErrNotFound.
func GetEvent(ctx context.Context, db *gorm.DB, id string) (*domain.Event, error) {
	var e domain.Event
	if err := db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// ListEvents returns events matching f ordered by start date ascending.
func ListEvents(ctx context.Context, db *gorm.DB, f EventFilter) ([]domain.Event, error) {
	q := db.WithContext(ctx).Model(&domain.Event{})
	if f.PublishedOnly {
		q = q.Where("is_published = ?", true)
	}
	if f.Upcoming != nil {
		now := f.Now
		if now.IsZero() {
			now = time.Now().UTC()
		}
		if *f.Upcoming {
			q = q.Where("start_date > ?", now)
		} else {
			q = q.Where("start_date <= ?", now)
		}
	}
	if f.Featured != nil {
		q = q.Where("is_featured = ?", *f.Featured)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	var out []domain.Event
	err := q.Order("start_date asc, id asc").Find(&out).Error
	return out, err
}

// SaveEvent writes every mutable column of e.
func SaveEvent(ctx context.Context, db *gorm.DB, e *domain.Event) error {
	res := db.WithContext(ctx).Model(e).Select("*").Omit("created_at", "created_by").Updates(e)
	return rowsOrNotFound(res)
}

// DeleteEvent removes an event by ID.
func DeleteEvent(ctx context.Context, db *gorm.DB, id string) error {
	return rowsOrNotFound(db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Event{}))
}
