// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file persists the singleton About document together
// with its embedded sections and leadership entries.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-church-backend/internal/domain"
)

func orderBySort(db *gorm.DB) *gorm.DB { return db.Order("sort_order asc") }

// GetAbout loads the About document with its children, or ErrNotFound.
func GetAbout(ctx context.Context, db *gorm.DB) (*domain.About, error) {
	var a domain.About
	err := db.WithContext(ctx).
		Preload("Sections", orderBySort).
		Preload("Leadership", orderBySort).
		Where("id = ?", domain.AboutSingletonID).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// CreateAbout inserts the About document under the singleton key. A second
// insert fails with ErrDuplicate.
func CreateAbout(ctx context.Context, db *gorm.DB, a *domain.About) error {
	a.ID = domain.AboutSingletonID
	if a.LastUpdated.IsZero() {
		a.LastUpdated = time.Now().UTC()
	}
	if err := db.WithContext(ctx).Create(a).Error; err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// SaveAbout writes the About document and makes the stored children match
// a.Sections and a.Leadership exactly: entries with an ID are updated in
// place, entries without one are inserted with a fresh ID, and stored
// children missing from the document are removed.
func SaveAbout(ctx context.Context, db *gorm.DB, a *domain.About) error {
	a.ID = domain.AboutSingletonID
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// BeforeSave clears placeholder IDs here, ahead of the child writes.
		if err := tx.Omit(clause.Associations).Save(a).Error; err != nil {
			return err
		}
		if err := syncChildren(tx, a.ID, a.Sections, &domain.AboutSection{}, func(s *domain.AboutSection) *string {
			s.AboutID = a.ID
			return &s.ID
		}); err != nil {
			return err
		}
		return syncChildren(tx, a.ID, a.Leadership, &domain.Leader{}, func(l *domain.Leader) *string {
			l.AboutID = a.ID
			return &l.ID
		})
	})
}

// syncChildren replaces the stored children of aboutID with items. bind
// attaches an item to the parent and exposes its ID.
func syncChildren[T any](tx *gorm.DB, aboutID string, items []T, model any, bind func(*T) *string) error {
	keep := make([]string, 0, len(items))
	for i := range items {
		if id := bind(&items[i]); *id != "" {
			keep = append(keep, *id)
		}
	}

	del := tx.Where("about_id = ?", aboutID)
	if len(keep) > 0 {
		del = del.Where("id NOT IN ?", keep)
	}
	if err := del.Delete(model).Error; err != nil {
		return err
	}

	for i := range items {
		item := &items[i]
		if *bind(item) == "" {
			if err := tx.Create(item).Error; err != nil {
				return err
			}
			continue
		}
		if err := tx.Save(item).Error; err != nil {
			return err
		}
	}
	return nil
}
