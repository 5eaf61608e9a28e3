// Package services – SermonService
//
// SermonService owns the sermon lifecycle: validated creation with an
// uploaded cover image and a YouTube recording, paginated public listing,
// partial updates, and deletion together with the sermon's likes and image.
//
// Image handling follows one rule throughout: the image is stored before the
// sermon row references it, and an image that ends up unreferenced (failed
// write, replaced, or deleted sermon) is removed best-effort.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-church-backend/internal/domain"
	"github.com/tbourn/go-church-backend/internal/media"
	"github.com/tbourn/go-church-backend/internal/repo"
	"github.com/tbourn/go-church-backend/internal/utils"
	"github.com/tbourn/go-church-backend/internal/validation"
)

const defaultPastor = "Pastor"

// SermonInput is the payload for creating a sermon.
type SermonInput struct {
	Title       string     `json:"title" form:"title" validate:"notblank,max=200"`
	Description string     `json:"description" form:"description" validate:"notblank"`
	Scripture   string     `json:"scripture" form:"scripture" validate:"notblank,max=100"`
	YouTubeURL  string     `json:"youtubeUrl" form:"youtubeUrl" validate:"notblank"`
	Date        *time.Time `json:"date" form:"date" time_format:"2006-01-02" time_utc:"1"`
	Pastor      string     `json:"pastor" form:"pastor" validate:"max=100"`
	IsPublished *bool      `json:"isPublished" form:"isPublished"`
}

// SermonPatch is a partial sermon update; nil fields are left unchanged.
type SermonPatch struct {
	Title       *string    `json:"title" form:"title" validate:"omitnil,notblank,max=200"`
	Description *string    `json:"description" form:"description" validate:"omitnil,notblank"`
	Scripture   *string    `json:"scripture" form:"scripture" validate:"omitnil,notblank,max=100"`
	YouTubeURL  *string    `json:"youtubeUrl" form:"youtubeUrl" validate:"omitempty,youtube_url"`
	Date        *time.Time `json:"date" form:"date" time_format:"2006-01-02" time_utc:"1"`
	Pastor      *string    `json:"pastor" form:"pastor" validate:"omitempty,max=100"`
	IsPublished *bool      `json:"isPublished" form:"isPublished"`
}

// SermonListParams selects a page of the public listing.
type SermonListParams struct {
	Page  int
	Limit int
	Sort  string
}

// SermonService implements the sermon use-cases.
type SermonService struct {
	DB     *gorm.DB
	Images ImageStore
	Now    func() time.Time
}

// NewSermonService constructs a SermonService.
func NewSermonService(db *gorm.DB, images ImageStore) *SermonService {
	return &SermonService{DB: db, Images: images}
}

// Create validates in, stores image, and inserts the sermon. When the
// YouTube URL yields no video id, or the insert fails, the image is deleted
// again.
func (s *SermonService) Create(ctx context.Context, in SermonInput, image []byte, createdBy string) (*domain.Sermon, error) {
	ctx, span := otel.Tracer("services/SermonService").Start(ctx, "Create")
	defer span.End()

	trimSermonInput(&in)
	if err := validation.Struct(&in); err != nil {
		return nil, invalid(err)
	}
	if len(image) == 0 {
		return nil, ErrImageRequired
	}

	asset, err := s.Images.Upload(ctx, image, media.FolderSermons)
	if err != nil {
		return nil, imageError(err)
	}

	sermon := &domain.Sermon{
		Title:         in.Title,
		Description:   in.Description,
		Scripture:     in.Scripture,
		ImageURL:      asset.URL,
		ImagePublicID: asset.PublicID,
		Pastor:        in.Pastor,
		IsPublished:   true,
		CreatedBy:     createdBy,
	}
	if err := sermon.SetYouTubeURL(in.YouTubeURL); err != nil {
		s.Images.DeleteQuietly(cleanupCtx(ctx), asset.PublicID)
		return nil, ErrInvalidYouTubeURL
	}
	if in.Date != nil && !in.Date.IsZero() {
		sermon.Date = in.Date.UTC()
	} else {
		sermon.Date = nowUTC(s.Now)
	}
	if sermon.Pastor == "" {
		sermon.Pastor = defaultPastor
	}
	if in.IsPublished != nil {
		sermon.IsPublished = *in.IsPublished
	}

	if err := repo.CreateSermon(ctx, s.DB, sermon); err != nil {
		s.Images.DeleteQuietly(cleanupCtx(ctx), asset.PublicID)
		return nil, err
	}
	span.SetAttributes(attribute.String("sermon.id", sermon.ID))
	return sermon, nil
}

// Get returns a sermon by ID.
func (s *SermonService) Get(ctx context.Context, id string) (*domain.Sermon, error) {
	ctx, span := otel.Tracer("services/SermonService").Start(ctx, "Get",
		trace.WithAttributes(attribute.String("sermon.id", id)),
	)
	defer span.End()

	sermon, err := repo.GetSermon(ctx, s.DB, id)
	if err != nil {
		return nil, notFound(err, ErrSermonNotFound)
	}
	return sermon, nil
}

// List returns one page of published sermons.
func (s *SermonService) List(ctx context.Context, p SermonListParams) (PageResult[domain.Sermon], error) {
	ctx, span := otel.Tracer("services/SermonService").Start(ctx, "List",
		trace.WithAttributes(
			attribute.Int("page", p.Page),
			attribute.Int("limit", p.Limit),
			attribute.String("sort", p.Sort),
		),
	)
	defer span.End()

	page := utils.NewPage(p.Page, p.Limit, DefaultPageSize, MaxPageSize)
	total, err := repo.CountSermons(ctx, s.DB, true)
	if err != nil {
		return PageResult[domain.Sermon]{}, err
	}
	if total == 0 {
		return newPageResult[domain.Sermon](nil, 0, page), nil
	}
	items, err := repo.ListSermonsPage(ctx, s.DB, true, p.Sort, page.Offset(), page.Size)
	if err != nil {
		return PageResult[domain.Sermon]{}, err
	}
	return newPageResult(items, total, page), nil
}

// Stats summarizes the published listing for ETag computation.
func (s *SermonService) Stats(ctx context.Context) (ListStats, error) {
	n, latest, err := repo.SermonsStats(ctx, s.DB, true)
	return ListStats{Count: n, MaxUpdatedAt: latest}, err
}

// Update applies patch to the sermon and optionally replaces its image. A
// changed YouTube URL must yield a video id. The old image is deleted only
// after the new state has been written.
func (s *SermonService) Update(ctx context.Context, id string, patch SermonPatch, image []byte) (*domain.Sermon, error) {
	ctx, span := otel.Tracer("services/SermonService").Start(ctx, "Update",
		trace.WithAttributes(attribute.String("sermon.id", id)),
	)
	defer span.End()

	if err := validation.Struct(&patch); err != nil {
		return nil, invalid(err)
	}
	sermon, err := repo.GetSermon(ctx, s.DB, id)
	if err != nil {
		return nil, notFound(err, ErrSermonNotFound)
	}

	if patch.Title != nil {
		sermon.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		sermon.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Scripture != nil {
		sermon.Scripture = strings.TrimSpace(*patch.Scripture)
	}
	if patch.YouTubeURL != nil {
		if err := sermon.SetYouTubeURL(*patch.YouTubeURL); err != nil {
			return nil, ErrInvalidYouTubeURL
		}
	}
	if patch.Date != nil && !patch.Date.IsZero() {
		sermon.Date = patch.Date.UTC()
	}
	if patch.Pastor != nil {
		sermon.Pastor = strings.TrimSpace(*patch.Pastor)
		if sermon.Pastor == "" {
			sermon.Pastor = defaultPastor
		}
	}
	if patch.IsPublished != nil {
		sermon.IsPublished = *patch.IsPublished
	}

	oldImage := ""
	if len(image) > 0 {
		asset, err := s.Images.Upload(ctx, image, media.FolderSermons)
		if err != nil {
			return nil, imageError(err)
		}
		oldImage = sermon.ImagePublicID
		sermon.ImageURL, sermon.ImagePublicID = asset.URL, asset.PublicID
	}

	if err := repo.SaveSermon(ctx, s.DB, sermon); err != nil {
		if len(image) > 0 {
			s.Images.DeleteQuietly(cleanupCtx(ctx), sermon.ImagePublicID)
		}
		return nil, notFound(err, ErrSermonNotFound)
	}
	s.Images.DeleteQuietly(cleanupCtx(ctx), oldImage)

	// Re-read so the like counter reflects concurrent toggles.
	return s.Get(ctx, id)
}

// Delete removes the sermon, its likes and its image.
func (s *SermonService) Delete(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("services/SermonService").Start(ctx, "Delete",
		trace.WithAttributes(attribute.String("sermon.id", id)),
	)
	defer span.End()

	var imageID string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sermon, err := repo.GetSermon(ctx, tx, id)
		if err != nil {
			return err
		}
		imageID = sermon.ImagePublicID
		if err := repo.DeleteSermonLikes(ctx, tx, id); err != nil {
			return err
		}
		return repo.DeleteSermon(ctx, tx, id)
	})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrSermonNotFound
		}
		return err
	}
	s.Images.DeleteQuietly(cleanupCtx(ctx), imageID)
	return nil
}

func trimSermonInput(in *SermonInput) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Scripture = strings.TrimSpace(in.Scripture)
	in.YouTubeURL = strings.TrimSpace(in.YouTubeURL)
	in.Pastor = strings.TrimSpace(in.Pastor)
}
