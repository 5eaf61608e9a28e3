// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Sermon model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions. They follow the "thin repository"
// approach: no business logic, only persistence and query composition.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-church-backend/internal/domain"
)

// sermonOrders maps the public sort keys to ORDER BY clauses. The id tie
// breaker keeps pages stable when dates collide.
var sermonOrders = map[string]string{
	"-date":  "date desc, id asc",
	"date":   "date asc, id asc",
	"-likes": "likes desc, date desc, id asc",
	"title":  "title asc, id asc",
}

// SermonSortKeys returns the accepted sort keys.
func SermonSortKeys() []string { return []string{"-date", "date", "-likes", "title"} }

// sermonOrder returns the ORDER BY clause for sort, defaulting to newest first.
func sermonOrder(sort string) string {
	if o, ok := sermonOrders[sort]; ok {
		return o
	}
	return sermonOrders["-date"]
}

func sermonScope(db *gorm.DB, publishedOnly bool) *gorm.DB {
	q := db.Model(&domain.Sermon{})
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	return q
}

// CreateSermon inserts s, assigning an ID and timestamps when missing.
func CreateSermon(ctx context.Context, db *gorm.DB, s *domain.Sermon) error {
	if s.ID == "" {
		s.ID = domain.NewID()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(s).Error
}

// GetSermon fetches a sermon by ID or returns ErrNotFound.
func GetSermon(ctx context.Context, db *gorm.DB, id string) (*domain.Sermon, error) {
	var s domain.Sermon
	if err := db.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

// CountSermons returns the number of sermons, optionally only published ones.
func CountSermons(ctx context.Context, db *gorm.DB, publishedOnly bool) (int64, error) {
	var total int64
	err := sermonScope(db.WithContext(ctx), publishedOnly).Count(&total).Error
	return total, err
}

// ListSermonsPage returns one page of sermons ordered by sort (see
// SermonSortKeys).
func ListSermonsPage(ctx context.Context, db *gorm.DB, publishedOnly bool, sort string, offset, limit int) ([]domain.Sermon, error) {
	var out []domain.Sermon
	err := sermonScope(db.WithContext(ctx), publishedOnly).
		Order(sermonOrder(sort)).
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// SaveSermon writes every column of s. The like counter is excluded: it is
// only ever changed through AdjustSermonLikes.
func SaveSermon(ctx context.Context, db *gorm.DB, s *domain.Sermon) error {
	res := db.WithContext(ctx).Model(s).Select("*").Omit("likes", "created_at", "created_by").Updates(s)
	return rowsOrNotFound(res)
}

// DeleteSermon removes the sermon row. Its likes go with it via the
// foreign key cascade.
func DeleteSermon(ctx context.Context, db *gorm.DB, id string) error {
	return rowsOrNotFound(db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Sermon{}))
}

// AdjustSermonLikes changes the like counter by delta inside the database and
// returns the new value. Decrements are floored at zero. updated_at moves too,
// so list ETags change when counters do.
func AdjustSermonLikes(ctx context.Context, db *gorm.DB, id string, delta int) (int, error) {
	expr := gorm.Expr("likes + ?", delta)
	if delta < 0 {
		expr = gorm.Expr("CASE WHEN likes + ? < 0 THEN 0 ELSE likes + ? END", delta, delta)
	}
	q := db.WithContext(ctx).Model(&domain.Sermon{}).Where("id = ?", id)
	if err := rowsOrNotFound(q.Update("likes", expr)); err != nil {
		return 0, err
	}
	var s domain.Sermon
	if err := db.WithContext(ctx).Select("likes").Where("id = ?", id).First(&s).Error; err != nil {
		return 0, err
	}
	return s.Likes, nil
}

// LockSermon loads a sermon for update inside a transaction. On SQLite the
// locking clause is ignored; writers are already serialized.
func LockSermon(ctx context.Context, tx *gorm.DB, id string) (*domain.Sermon, error) {
	var s domain.Sermon
	q := tx.WithContext(ctx)
	if tx.Dialector.Name() == DriverPostgres {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	if err := q.Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
