// Package services – MinistryService
//
// MinistryService manages the church's ministries, listed by display order.
package services

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-church-backend/internal/domain"
	"github.com/tbourn/go-church-backend/internal/media"
	"github.com/tbourn/go-church-backend/internal/repo"
	"github.com/tbourn/go-church-backend/internal/validation"
)

// MinistryInput is the payload for creating a ministry.
type MinistryInput struct {
	Name          string `json:"name" form:"name" validate:"notblank,max=100"`
	Description   string `json:"description" form:"description" validate:"notblank"`
	ContactPerson string `json:"contactPerson" form:"contactPerson" validate:"max=100"`
	ContactEmail  string `json:"contactEmail" form:"contactEmail" validate:"omitempty,email"`
	ContactPhone  string `json:"contactPhone" form:"contactPhone" validate:"max=20"`
	Schedule      string `json:"schedule" form:"schedule" validate:"max=200"`
	Order         int    `json:"order" form:"order"`
	IsActive      *bool  `json:"isActive" form:"isActive"`
}

// MinistryPatch is a partial ministry update; nil fields are left unchanged.
type MinistryPatch struct {
	Name          *string `json:"name" form:"name" validate:"omitnil,notblank,max=100"`
	Description   *string `json:"description" form:"description" validate:"omitnil,notblank"`
	ContactPerson *string `json:"contactPerson" form:"contactPerson" validate:"omitempty,max=100"`
	ContactEmail  *string `json:"contactEmail" form:"contactEmail" validate:"omitempty,email"`
	ContactPhone  *string `json:"contactPhone" form:"contactPhone" validate:"omitempty,max=20"`
	Schedule      *string `json:"schedule" form:"schedule" validate:"omitempty,max=200"`
	Order         *int    `json:"order" form:"order"`
	IsActive      *bool   `json:"isActive" form:"isActive"`
}

// MinistryService implements the ministry use-cases.
type MinistryService struct {
	DB     *gorm.DB
	Images ImageStore
}

// NewMinistryService constructs a MinistryService.
func NewMinistryService(db *gorm.DB, images ImageStore) *MinistryService {
	return &MinistryService{DB: db, Images: images}
}

// Create validates in, stores image, and inserts the ministry.
func (s *MinistryService) Create(ctx context.Context, in MinistryInput, image []byte, createdBy string) (*domain.Ministry, error) {
	ctx, span := otel.Tracer("services/MinistryService").Start(ctx, "Create")
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.ContactPerson = strings.TrimSpace(in.ContactPerson)
	in.ContactEmail = strings.TrimSpace(in.ContactEmail)
	in.ContactPhone = strings.TrimSpace(in.ContactPhone)
	in.Schedule = strings.TrimSpace(in.Schedule)
	if err := validation.Struct(&in); err != nil {
		return nil, invalid(err)
	}
	if len(image) == 0 {
		return nil, ErrImageRequired
	}
	asset, err := s.Images.Upload(ctx, image, media.FolderMinistries)
	if err != nil {
		return nil, imageError(err)
	}

	m := &domain.Ministry{
		Name:          in.Name,
		Description:   in.Description,
		ImageURL:      asset.URL,
		ImagePublicID: asset.PublicID,
		ContactPerson: in.ContactPerson,
		ContactEmail:  in.ContactEmail,
		ContactPhone:  in.ContactPhone,
		Schedule:      in.Schedule,
		Order:         in.Order,
		IsActive:      true,
		CreatedBy:     createdBy,
	}
	if in.IsActive != nil {
		m.IsActive = *in.IsActive
	}
	if err := repo.CreateMinistry(ctx, s.DB, m); err != nil {
		s.Images.DeleteQuietly(cleanupCtx(ctx), asset.PublicID)
		return nil, err
	}
	return m, nil
}

// Get returns a ministry by ID.
func (s *MinistryService) Get(ctx context.Context, id string) (*domain.Ministry, error) {
	ctx, span := otel.Tracer("services/MinistryService").Start(ctx, "Get",
		trace.WithAttributes(attribute.String("ministry.id", id)),
	)
	defer span.End()

	m, err := repo.GetMinistry(ctx, s.DB, id)
	if err != nil {
		return nil, notFound(err, ErrMinistryNotFound)
	}
	return m, nil
}

// List returns the active ministries in display order.
func (s *MinistryService) List(ctx context.Context) ([]domain.Ministry, error) {
	ctx, span := otel.Tracer("services/MinistryService").Start(ctx, "List")
	defer span.End()

	out, err := repo.ListMinistries(ctx, s.DB, true)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Ministry{}
	}
	return out, nil
}

// Update applies patch and optionally replaces the image.
func (s *MinistryService) Update(ctx context.Context, id string, patch MinistryPatch, image []byte) (*domain.Ministry, error) {
	ctx, span := otel.Tracer("services/MinistryService").Start(ctx, "Update",
		trace.WithAttributes(attribute.String("ministry.id", id)),
	)
	defer span.End()

	if err := validation.Struct(&patch); err != nil {
		return nil, invalid(err)
	}
	m, err := repo.GetMinistry(ctx, s.DB, id)
	if err != nil {
		return nil, notFound(err, ErrMinistryNotFound)
	}

	setTrimmed(&m.Name, patch.Name)
	setTrimmed(&m.Description, patch.Description)
	setTrimmed(&m.ContactPerson, patch.ContactPerson)
	setTrimmed(&m.ContactEmail, patch.ContactEmail)
	setTrimmed(&m.ContactPhone, patch.ContactPhone)
	setTrimmed(&m.Schedule, patch.Schedule)
	if patch.Order != nil {
		m.Order = *patch.Order
	}
	if patch.IsActive != nil {
		m.IsActive = *patch.IsActive
	}

	oldImage := ""
	if len(image) > 0 {
		asset, err := s.Images.Upload(ctx, image, media.FolderMinistries)
		if err != nil {
			return nil, imageError(err)
		}
		oldImage = m.ImagePublicID
		m.ImageURL, m.ImagePublicID = asset.URL, asset.PublicID
	}
	if err := repo.SaveMinistry(ctx, s.DB, m); err != nil {
		if len(image) > 0 {
			s.Images.DeleteQuietly(cleanupCtx(ctx), m.ImagePublicID)
		}
		return nil, notFound(err, ErrMinistryNotFound)
	}
	s.Images.DeleteQuietly(cleanupCtx(ctx), oldImage)
	return m, nil
}

// Delete removes the ministry and its image.
func (s *MinistryService) Delete(ctx context.Context, id string) error {
	ctx, span := otel.Tracer("services/MinistryService").Start(ctx, "Delete",
		trace.WithAttributes(attribute.String("ministry.id", id)),
	)
	defer span.End()

	m, err := repo.GetMinistry(ctx, s.DB, id)
	if err != nil {
		return notFound(err, ErrMinistryNotFound)
	}
	if err := repo.DeleteMinistry(ctx, s.DB, id); err != nil {
		return notFound(err, ErrMinistryNotFound)
	}
	s.Images.DeleteQuietly(cleanupCtx(ctx), m.ImagePublicID)
	return nil
}

func setTrimmed(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
