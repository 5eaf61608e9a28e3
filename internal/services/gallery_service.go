// Package services – GalleryService
//
// GalleryService manages photo albums. Album images are uploaded together
// (concurrently, all-or-nothing) before the album row is written; the first
// image of a new album doubles as its cover.
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-church-backend/internal/domain"
	"github.com/tbourn/go-church-backend/internal/media"
	"github.com/tbourn/go-church-backend/internal/repo"
	"github.com/tbourn/go-church-backend/internal/validation"
)

const maxCaptionRunes = 200

// ErrCaptionTooLong is returned for an image caption over 200 characters.
var ErrCaptionTooLong = &Error{Kind: KindValidation, Message: "Caption cannot exceed 200 characters"}

// AlbumInput is the payload for creating an album.
type AlbumInput struct {
	AlbumName   string     `json:"albumName" form:"albumName" validate:"notblank,max=100"`
	Description string     `json:"description" form:"description" validate:"max=500"`
	Date        *time.Time `json:"date" form:"date" time_format:"2006-01-02" time_utc:"1"`
	IsPublished *bool      `json:"isPublished" form:"isPublished"`
}

// ImageUpload is one uploaded gallery file with its caption.
type ImageUpload struct {
	Data    []byte
	Caption string
}

// GalleryService implements the gallery use-cases.
type GalleryService struct {
	DB        *gorm.DB
	Images    ImageStore
	MaxImages int
	Now       func() time.Time
}

// NewGalleryService constructs a GalleryService accepting up to maxImages
// files per request (0 means no limit).
func NewGalleryService(db *gorm.DB, images ImageStore, maxImages int) *GalleryService {
	return &GalleryService{DB: db, Images: images, MaxImages: maxImages}
}

// Create uploads files and inserts a new album holding them.
func (s *GalleryService) Create(ctx context.Context, in AlbumInput, files []ImageUpload, createdBy string) (*domain.GalleryAlbum, error) {
	ctx, span := otel.Tracer("services/GalleryService").Start(ctx, "Create",
		trace.WithAttributes(attribute.Int("images", len(files))),
	)
	defer span.End()

	in.AlbumName = strings.TrimSpace(in.AlbumName)
	in.Description = strings.TrimSpace(in.Description)
	if err := validation.Struct(&in); err != nil {
		return nil, invalid(err)
	}
	images, err := s.uploadAll(ctx, files)
	if err != nil {
		return nil, err
	}

	album := &domain.GalleryAlbum{
		AlbumName:   in.AlbumName,
		Description: in.Description,
		CoverImage:  domain.ImageRef{URL: images[0].URL, PublicID: images[0].PublicID},
		Images:      images,
		IsPublished: true,
		CreatedBy:   createdBy,
	}
	if in.Date != nil && !in.Date.IsZero() {
		album.Date = in.Date.UTC()
	} else {
		album.Date = nowUTC(s.Now)
	}
	if in.IsPublished != nil {
		album.IsPublished = *in.IsPublished
	}
	if err := repo.CreateAlbum(ctx, s.DB, album); err != nil {
		s.Images.DeleteQuietly(cleanupCtx(ctx), publicIDs(images)...)
		return nil, err
	}
	return album, nil
}

// Get returns an album with its images.
func (s *GalleryService) Get(ctx context.Context, id string) (*domain.GalleryAlbum, error) {
	ctx, span := otel.Tracer("services/GalleryService").Start(ctx, "Get",
		trace.WithAttributes(attribute.String("album.id", id)),
	)
	defer span.End()

	album, err := repo.GetAlbum(ctx, s.DB, id)
	if err != nil {
		return nil, notFound(err, ErrAlbumNotFound)
	}
	return album, nil
}

// List returns the published albums, newest first.
func (s *GalleryService) List(ctx context.Context) ([]domain.GalleryAlbum, error) {
	ctx, span := otel.Tracer("services/GalleryService").Start(ctx, "List")
	defer span.End()

	out, err := repo.ListAlbums(ctx, s.DB, true)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.GalleryAlbum{}
	}
	return out, nil
}

// AddImages uploads files and appends them to the album.
func (s *GalleryService) AddImages(ctx context.Context, albumID string, files []ImageUpload) (*domain.GalleryAlbum, error) {
	ctx, span := otel.Tracer("services/GalleryService").Start(ctx, "AddImages",
		trace.WithAttributes(
			attribute.String("album.id", albumID),
			attribute.Int("images", len(files)),
		),
	)
	defer span.End()

	album, err := repo.GetAlbum(ctx, s.DB, albumID)
	if err != nil {
		return nil, notFound(err, ErrAlbumNotFound)
	}
	images, err := s.uploadAll(ctx, files)
	if err != nil {
		return nil, err
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.AppendAlbumImages(ctx, tx, albumID, images); err != nil {
			return err
		}
		if album.CoverImage.PublicID == "" {
			return repo.SetAlbumCover(ctx, tx, albumID, domain.ImageRef{URL: images[0].URL, PublicID: images[0].PublicID})
		}
		return nil
	})
	if err != nil {
		s.Images.DeleteQuietly(cleanupCtx(ctx), publicIDs(images)...)
		return nil, err
	}
	return s.Get(ctx, albumID)
}

// DeleteImage removes one image from an album by its own ID. When it was
// the cover, the next remaining image becomes the cover.
func (s *GalleryService) DeleteImage(ctx context.Context, albumID, imageID string) (*domain.GalleryAlbum, error) {
	ctx, span := otel.Tracer("services/GalleryService").Start(ctx, "DeleteImage",
		trace.WithAttributes(
			attribute.String("album.id", albumID),
			attribute.String("image.id", imageID),
		),
	)
	defer span.End()

	var removed *domain.GalleryImage
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		album, err := repo.GetAlbum(ctx, tx, albumID)
		if err != nil {
			return notFound(err, ErrAlbumNotFound)
		}
		removed, err = repo.DeleteAlbumImage(ctx, tx, albumID, imageID)
		if err != nil {
			return notFound(err, ErrImageNotFound)
		}
		if album.CoverImage.PublicID != removed.PublicID {
			return nil
		}
		cover := domain.ImageRef{}
		for _, img := range album.Images {
			if img.ID != removed.ID {
				cover = domain.ImageRef{URL: img.URL, PublicID: img.PublicID}
				break
			}
		}
		return repo.SetAlbumCover(ctx, tx, albumID, cover)
	})
	if err != nil {
		return nil, err
	}
	s.Images.DeleteQuietly(cleanupCtx(ctx), removed.PublicID)
	return s.Get(ctx, albumID)
}

// Delete removes the album and every image it references.
func (s *GalleryService) Delete(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("services/GalleryService").Start(ctx, "Delete",
		trace.WithAttributes(attribute.String("album.id", id)),
	)
	defer span.End()

	album, err := repo.GetAlbum(ctx, s.DB, id)
	if err != nil {
		return notFound(err, ErrAlbumNotFound)
	}
	if err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return repo.DeleteAlbum(ctx, tx, id)
	}); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrAlbumNotFound
		}
		return err
	}

	ids := append(publicIDs(album.Images), album.CoverImage.PublicID)
	s.Images.DeleteQuietly(cleanupCtx(ctx), dedupe(ids)...)
	return nil
}

// uploadAll checks the file count and uploads every file, returning the
// gallery images in input order.
func (s *GalleryService) uploadAll(ctx context.Context, files []ImageUpload) ([]domain.GalleryImage, error) {
	if len(files) == 0 {
		return nil, ErrImagesRequired
	}
	if s.MaxImages > 0 && len(files) > s.MaxImages {
		return nil, ErrTooManyImages
	}
	data := make([][]byte, len(files))
	for i, f := range files {
		if utf8.RuneCountInString(strings.TrimSpace(f.Caption)) > maxCaptionRunes {
			return nil, ErrCaptionTooLong
		}
		data[i] = f.Data
	}
	assets, err := s.Images.UploadMany(ctx, data, media.FolderGallery)
	if err != nil {
		return nil, imageError(err)
	}
	now := nowUTC(s.Now)
	images := make([]domain.GalleryImage, len(assets))
	for i, a := range assets {
		images[i] = domain.GalleryImage{
			URL:        a.URL,
			PublicID:   a.PublicID,
			Caption:    strings.TrimSpace(files[i].Caption),
			UploadedAt: now,
		}
	}
	return images, nil
}

func publicIDs(images []domain.GalleryImage) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		out = append(out, img.PublicID)
	}
	return out
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok || id == "" {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
