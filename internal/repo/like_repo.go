// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for SermonLike
// records. A record is "active" while its expires_at lies in the future;
// expired rows are ignored by every lookup and removed by the purge helpers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-church-backend/internal/domain"
)

// FindActiveLike returns the unexpired like of sermonID by identity, or
// ErrNotFound.
func FindActiveLike(ctx context.Context, db *gorm.DB, sermonID, identity string, now time.Time) (*domain.SermonLike, error) {
	var l domain.SermonLike
	err := db.WithContext(ctx).
		Where("sermon_id = ? AND user_identifier = ? AND expires_at > ?", sermonID, identity, now).
		First(&l).Error
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateLike inserts l and returns ErrDuplicate when the (sermon, identity)
// pair already holds a record.
func CreateLike(ctx context.Context, db *gorm.DB, l *domain.SermonLike) error {
	if l.ID == "" {
		l.ID = domain.NewID()
	}
	if err := db.WithContext(ctx).Omit("Sermon").Create(l).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// DeleteLike removes the like with the given ID.
func DeleteLike(ctx context.Context, db *gorm.DB, id string) error {
	return rowsOrNotFound(db.WithContext(ctx).Where("id = ?", id).Delete(&domain.SermonLike{}))
}

// DeleteSermonLikes removes every like of sermonID.
func DeleteSermonLikes(ctx context.Context, db *gorm.DB, sermonID string) error {
	return db.WithContext(ctx).Where("sermon_id = ?", sermonID).Delete(&domain.SermonLike{}).Error
}

// PurgeExpiredLike removes an expired record for one (sermon, identity) pair
// so that a fresh like can take its slot in the unique index.
func PurgeExpiredLike(ctx context.Context, db *gorm.DB, sermonID, identity string, now time.Time) error {
	return db.WithContext(ctx).
		Where("sermon_id = ? AND user_identifier = ? AND expires_at <= ?", sermonID, identity, now).
		Delete(&domain.SermonLike{}).Error
}

// PurgeExpiredLikes removes every expired like and returns how many rows went.
func PurgeExpiredLikes(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.SermonLike{})
	return res.RowsAffected, res.Error
}
