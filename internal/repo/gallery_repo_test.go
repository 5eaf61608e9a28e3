package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-church-backend/internal/domain"
)

func TestGallery_CreateAppendDelete(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	now := time.Now().UTC()

	a := &domain.GalleryAlbum{
		AlbumName: "Picnic", Date: now, IsPublished: true,
		CoverImage: domain.ImageRef{URL: "u1", PublicID: "p1"},
		Images: []domain.GalleryImage{
			{URL: "u1", PublicID: "p1", Caption: "first", UploadedAt: now},
			{URL: "u2", PublicID: "p2", UploadedAt: now},
		},
	}
	if err := CreateAlbum(ctx, db, a); err != nil {
		t.Fatalf("create: %v", err)
	}

	more := []domain.GalleryImage{{URL: "u3", PublicID: "p3", UploadedAt: now}}
	if err := AppendAlbumImages(ctx, db, a.ID, more); err != nil {
		t.Fatalf("append: %v", err)
	}

	got, err := GetAlbum(ctx, db, a.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got.Images) != 3 || got.Images[0].Caption != "first" || got.Images[2].PublicID != "p3" {
		t.Fatalf("images out of order: %+v", got.Images)
	}
	if got.CoverImage.PublicID != "p1" {
		t.Fatalf("cover = %+v", got.CoverImage)
	}

	removed, err := DeleteAlbumImage(ctx, db, a.ID, got.Images[1].ID)
	if err != nil || removed.PublicID != "p2" {
		t.Fatalf("delete image = %+v, %v", removed, err)
	}
	if _, err := DeleteAlbumImage(ctx, db, a.ID, got.Images[1].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v; want ErrNotFound", err)
	}
	// An image ID from another album is not found here.
	if _, err := DeleteAlbumImage(ctx, db, domain.NewID(), got.Images[0].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("cross-album delete err = %v; want ErrNotFound", err)
	}

	list, err := ListAlbums(ctx, db, true)
	if err != nil || len(list) != 1 || len(list[0].Images) != 2 {
		t.Fatalf("list = %+v, %v", list, err)
	}

	if err := DeleteAlbum(ctx, db, a.ID); err != nil {
		t.Fatalf("delete album: %v", err)
	}
	var n int64
	db.Model(&domain.GalleryImage{}).Where("album_id = ?", a.ID).Count(&n)
	if n != 0 {
		t.Fatalf("images left after album delete: %d", n)
	}
}
