// Package services – EventService
//
// EventService manages church events: creation with a required image,
// filtered public listing, partial updates, and deletion. An event never
// ends before it starts.
package services

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-church-backend/internal/domain"
	"github.com/tbourn/go-church-backend/internal/media"
	"github.com/tbourn/go-church-backend/internal/repo"
	"github.com/tbourn/go-church-backend/internal/validation"
)

// ErrEventEndsBeforeStart is returned when a write would leave EndDate
// before StartDate.
var ErrEventEndsBeforeStart = &Error{Kind: KindValidation, Message: "endDate must not be before startDate"}

// EventInput is the payload for creating an event.
type EventInput struct {
	Title       string    `json:"title" form:"title" validate:"notblank,max=200"`
	Description string    `json:"description" form:"description" validate:"notblank"`
	StartDate   time.Time `json:"startDate" form:"startDate" time_format:"2006-01-02T15:04" time_utc:"1" validate:"required"`
	EndDate     time.Time `json:"endDate" form:"endDate" time_format:"2006-01-02T15:04" time_utc:"1" validate:"required,gtefield=StartDate"`
	Location    string    `json:"location" form:"location" validate:"notblank,max=200"`
	Category    string    `json:"category" form:"category" validate:"omitempty,oneof=worship bible-study youth outreach fellowship other"`
	IsFeatured  bool      `json:"isFeatured" form:"isFeatured"`
	IsPublished *bool     `json:"isPublished" form:"isPublished"`
}

// EventPatch is a partial event update; nil fields are left unchanged.
type EventPatch struct {
	Title       *string    `json:"title" form:"title" validate:"omitnil,notblank,max=200"`
	Description *string    `json:"description" form:"description" validate:"omitnil,notblank"`
	StartDate   *time.Time `json:"startDate" form:"startDate" time_format:"2006-01-02T15:04" time_utc:"1"`
	EndDate     *time.Time `json:"endDate" form:"endDate" time_format:"2006-01-02T15:04" time_utc:"1"`
	Location    *string    `json:"location" form:"location" validate:"omitnil,notblank,max=200"`
	Category    *string    `json:"category" form:"category" validate:"omitempty,oneof=worship bible-study youth outreach fellowship other"`
	IsFeatured  *bool      `json:"isFeatured" form:"isFeatured"`
	IsPublished *bool      `json:"isPublished" form:"isPublished"`
}

// EventListParams are the public listing filters. Nil means no filter.
type EventListParams struct {
	Upcoming *bool
	Featured *bool
	Category string
}

// EventService implements the event use-cases.
type EventService struct {
	DB     *gorm.DB
	Images ImageStore
	Now    func() time.Time
}

// NewEventService constructs an EventService.
func NewEventService(db *gorm.DB, images ImageStore) *EventService {
	return &EventService{DB: db, Images: images}
}

// Create validates in, stores image, and inserts the event.
func (s *EventService) Create(ctx context.Context, in EventInput, image []byte, createdBy string) (*domain.Event, error) {
	ctx, span := otel.Tracer("services/EventService").Start(ctx, "Create")
	defer span.End()

	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	in.Category = strings.TrimSpace(in.Category)
	if err := validation.Struct(&in); err != nil {
		return nil, invalid(err)
	}
	if len(image) == 0 {
		return nil, ErrImageRequired
	}
	asset, err := s.Images.Upload(ctx, image, media.FolderEvents)
	if err != nil {
		return nil, imageError(err)
	}

	ev := &domain.Event{
		Title:         in.Title,
		Description:   in.Description,
		ImageURL:      asset.URL,
		ImagePublicID: asset.PublicID,
		StartDate:     in.StartDate.UTC(),
		EndDate:       in.EndDate.UTC(),
		Location:      in.Location,
		Category:      in.Category,
		IsFeatured:    in.IsFeatured,
		IsPublished:   true,
		CreatedBy:     createdBy,
	}
	if ev.Category == "" {
		ev.Category = domain.CategoryOther
	}
	if in.IsPublished != nil {
		ev.IsPublished = *in.IsPublished
	}
	if err := repo.CreateEvent(ctx, s.DB, ev); err != nil {
		s.Images.DeleteQuietly(cleanupCtx(ctx), asset.PublicID)
		return nil, err
	}
	ev.IsUpcoming = ev.StartDate.After(nowUTC(s.Now))
	return ev, nil
}

// Get returns an event by ID.
func (s *EventService) Get(ctx context.Context, id string) (*domain.Event, error) {
	ctx, span := otel.Tracer("services/EventService").Start(ctx, "Get",
		trace.WithAttributes(attribute.String("event.id", id)),
	)
	defer span.End()

	ev, err := repo.GetEvent(ctx, s.DB, id)
	if err != nil {
		return nil, notFound(err, ErrEventNotFound)
	}
	return ev, nil
}

// List returns published events matching p, earliest first.
func (s *EventService) List(ctx context.Context, p EventListParams) ([]domain.Event, error) {
	ctx, span := otel.Tracer("services/EventService").Start(ctx, "List")
	defer span.End()

	events, err := repo.ListEvents(ctx, s.DB, repo.EventFilter{
		PublishedOnly: true,
		Upcoming:      p.Upcoming,
		Featured:      p.Featured,
		Category:      p.Category,
		Now:           nowUTC(s.Now),
	})
	if err != nil {
		return nil, err
	}
	if events == nil {
		events = []domain.Event{}
	}
	return events, nil
}

// Stats summarizes the published listing for ETag computation.
func (s *EventService) Stats(ctx context.Context) (ListStats, error) {
	n, latest, err := repo.EventsStats(ctx, s.DB, true)
	return ListStats{Count: n, MaxUpdatedAt: latest}, err
}

// Update applies patch and optionally replaces the image.
func (s *EventService) Update(ctx context.Context, id string, patch EventPatch, image []byte) (*domain.Event, error) {
	ctx, span := otel.Tracer("services/EventService").Start(ctx, "Update",
		trace.WithAttributes(attribute.String("event.id", id)),
	)
	defer span.End()

	if err := validation.Struct(&patch); err != nil {
		return nil, invalid(err)
	}
	ev, err := repo.GetEvent(ctx, s.DB, id)
	if err != nil {
		return nil, notFound(err, ErrEventNotFound)
	}

	if patch.Title != nil {
		ev.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Description != nil {
		ev.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.StartDate != nil && !patch.StartDate.IsZero() {
		ev.StartDate = patch.StartDate.UTC()
	}
	if patch.EndDate != nil && !patch.EndDate.IsZero() {
		ev.EndDate = patch.EndDate.UTC()
	}
	if patch.Location != nil {
		ev.Location = strings.TrimSpace(*patch.Location)
	}
	if patch.Category != nil {
		ev.Category = *patch.Category
	}
	if patch.IsFeatured != nil {
		ev.IsFeatured = *patch.IsFeatured
	}
	if patch.IsPublished != nil {
		ev.IsPublished = *patch.IsPublished
	}
	if ev.EndDate.Before(ev.StartDate) {
		return nil, ErrEventEndsBeforeStart
	}

	oldImage := ""
	if len(image) > 0 {
		asset, err := s.Images.Upload(ctx, image, media.FolderEvents)
		if err != nil {
			return nil, imageError(err)
		}
		oldImage = ev.ImagePublicID
		ev.ImageURL, ev.ImagePublicID = asset.URL, asset.PublicID
	}
	if err := repo.SaveEvent(ctx, s.DB, ev); err != nil {
		if len(image) > 0 {
			s.Images.DeleteQuietly(cleanupCtx(ctx), ev.ImagePublicID)
		}
		return nil, notFound(err, ErrEventNotFound)
	}
	s.Images.DeleteQuietly(cleanupCtx(ctx), oldImage)
	ev.IsUpcoming = ev.StartDate.After(nowUTC(s.Now))
	return ev, nil
}

// Delete removes the event and its image.
func (s *EventService) Delete(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("services/EventService").Start(ctx, "Delete",
		trace.WithAttributes(attribute.String("event.id", id)),
	)
	defer span.End()

	ev, err := repo.GetEvent(ctx, s.DB, id)
	if err != nil {
		return notFound(err, ErrEventNotFound)
	}
	if err := repo.DeleteEvent(ctx, s.DB, id); err != nil {
		return notFound(err, ErrEventNotFound)
	}
	s.Images.DeleteQuietly(cleanupCtx(ctx), ev.ImagePublicID)
	return nil
}
