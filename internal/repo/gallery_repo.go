// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for gallery albums
// and the images they embed. Images are returned in upload order.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-church-backend/internal/domain"
)

func preloadImages(db *gorm.DB) *gorm.DB {
	return db.Order("position asc, uploaded_at asc")
}

// CreateAlbum inserts a and its images in one statement set.
func CreateAlbum(ctx context.Context, db *gorm.DB, a *domain.GalleryAlbum) error {
	if a.ID == "" {
		a.ID = domain.NewID()
	}
	for i := range a.Images {
		a.Images[i].AlbumID = a.ID
		a.Images[i].Position = i
	}
	return db.WithContext(ctx).Create(a).Error
}

// GetAlbum fetches an album with its images or returns ErrNotFound.
func GetAlbum(ctx context.Context, db *gorm.DB, id string) (*domain.GalleryAlbum, error) {
	var a domain.GalleryAlbum
	err := db.WithContext(ctx).Preload("Images", preloadImages).Where("id = ?", id).First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// ListAlbums returns albums newest first, images included.
func ListAlbums(ctx context.Context, db *gorm.DB, publishedOnly bool) ([]domain.GalleryAlbum, error) {
	q := db.WithContext(ctx).Preload("Images", preloadImages)
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	var out []domain.GalleryAlbum
	err := q.Order("date desc, id asc").Find(&out).Error
	return out, err
}

// AppendAlbumImages adds images after the album's current last position.
func AppendAlbumImages(ctx context.Context, db *gorm.DB, albumID string, images []domain.GalleryImage) error {
	if len(images) == 0 {
		return nil
	}
	var next struct{ N int }
	if err := db.WithContext(ctx).Model(&domain.GalleryImage{}).
		Select("COALESCE(MAX(position) + 1, 0) AS n").
		Where("album_id = ?", albumID).
		Scan(&next).Error; err != nil {
		return err
	}
	for i := range images {
		images[i].AlbumID = albumID
		images[i].Position = next.N + i
	}
	return db.WithContext(ctx).Create(&images).Error
}

// SetAlbumCover replaces the album's cover reference.
func SetAlbumCover(ctx context.Context, db *gorm.DB, albumID string, cover domain.ImageRef) error {
	res := db.WithContext(ctx).Model(&domain.GalleryAlbum{}).Where("id = ?", albumID).
		Updates(map[string]any{"cover_url": cover.URL, "cover_public_id": cover.PublicID})
	return rowsOrNotFound(res)
}

// DeleteAlbumImage removes one image from an album by its own ID and returns
// the removed row.
func DeleteAlbumImage(ctx context.Context, db *gorm.DB, albumID, imageID string) (*domain.GalleryImage, error) {
	var img domain.GalleryImage
	if err := db.WithContext(ctx).Where("id = ? AND album_id = ?", imageID, albumID).First(&img).Error; err != nil {
		return nil, err
	}
	if err := rowsOrNotFound(db.WithContext(ctx).Where("id = ?", img.ID).Delete(&domain.GalleryImage{})); err != nil {
		return nil, err
	}
	return &img, nil
}

// DeleteAlbum removes an album; its images cascade.
func DeleteAlbum(ctx context.Context, db *gorm.DB, id string) error {
	if err := db.WithContext(ctx).Where("album_id = ?", id).Delete(&domain.GalleryImage{}).Error; err != nil {
		return err
	}
	return rowsOrNotFound(db.WithContext(ctx).Where("id = ?", id).Delete(&domain.GalleryAlbum{}))
}
