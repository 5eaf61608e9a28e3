// Content HTTP handlers.
//
// Handlers are transport-thin: they parse path, query, JSON and multipart
// input, call the content services, and translate results into the response
// envelopes of response.go. Authentication and role checks happen in the
// router's middleware before a handler runs.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-church-backend/internal/domain"
	"github.com/tbourn/go-church-backend/internal/http/middleware"
	"github.com/tbourn/go-church-backend/internal/media"
	"github.com/tbourn/go-church-backend/internal/services"
	"github.com/tbourn/go-church-backend/internal/sysutil"
)

//
// Service contracts (context-aware)
//

// SermonService defines the sermon operations consumed by the handlers.
type SermonService interface {
	Create(ctx context.Context, in services.SermonInput, image []byte, createdBy string) (*domain.Sermon, error)
	Get(ctx context.Context, id string) (*domain.Sermon, error)
	List(ctx context.Context, p services.SermonListParams) (services.PageResult[domain.Sermon], error)
	Stats(ctx context.Context) (services.ListStats, error)
	Update(ctx context.Context, id string, patch services.SermonPatch, image []byte) (*domain.Sermon, error)
	Delete(ctx context.Context, id string) error
}

// LikeService toggles and reports sermon likes per caller identity.
type LikeService interface {
	Toggle(ctx context.Context, sermonID, identity, originIP string) (services.LikeResult, error)
	Status(ctx context.Context, sermonID, identity string) (bool, error)
}

// EventService defines the event operations consumed by the handlers.
type EventService interface {
	Create(ctx context.Context, in services.EventInput, image []byte, createdBy string) (*domain.Event, error)
	Get(ctx context.Context, id string) (*domain.Event, error)
	List(ctx context.Context, p services.EventListParams) ([]domain.Event, error)
	Stats(ctx context.Context) (services.ListStats, error)
	Update(ctx context.Context, id string, patch services.EventPatch, image []byte) (*domain.Event, error)
	Delete(ctx context.Context, id string) error
}

// MinistryService defines the ministry operations consumed by the handlers.
type MinistryService interface {
	Create(ctx context.Context, in services.MinistryInput, image []byte, createdBy string) (*domain.Ministry, error)
	Get(ctx context.Context, id string) (*domain.Ministry, error)
	List(ctx context.Context) ([]domain.Ministry, error)
	Update(ctx context.Context, id string, patch services.MinistryPatch, image []byte) (*domain.Ministry, error)
	Delete(ctx context.Context, id string) error
}

// GalleryService defines the album operations consumed by the handlers.
type GalleryService interface {
	Create(ctx context.Context, in services.AlbumInput, files []services.ImageUpload, createdBy string) (*domain.GalleryAlbum, error)
	Get(ctx context.Context, id string) (*domain.GalleryAlbum, error)
	List(ctx context.Context) ([]domain.GalleryAlbum, error)
	AddImages(ctx context.Context, albumID string, files []services.ImageUpload) (*domain.GalleryAlbum, error)
	DeleteImage(ctx context.Context, albumID, imageID string) (*domain.GalleryAlbum, error)
	Delete(ctx context.Context, id string) error
}

// AboutService defines the about-page operations consumed by the handlers.
type AboutService interface {
	Get(ctx context.Context) (*domain.About, error)
	Update(ctx context.Context, in services.AboutInput, image []byte, updatedBy string) (*domain.About, error)
	UploadSectionImage(ctx context.Context, image []byte) (media.Asset, error)
	UploadLeaderImage(ctx context.Context, image []byte) (media.Asset, error)
	DeleteImage(ctx context.Context, publicID string) error
}

// HeroService defines the hero banner operations consumed by the handlers.
type HeroService interface {
	Get(ctx context.Context, page string) (*domain.HeroSettings, error)
	Update(ctx context.Context, page string, patch services.HeroPatch, image []byte, updatedBy string) (*domain.HeroSettings, error)
}

// ContactService defines the contact-form operations consumed by the handlers.
type ContactService interface {
	Submit(ctx context.Context, in services.ContactInput, clientID, ip, idemKey string) (*domain.ContactMessage, bool, error)
	List(ctx context.Context, p services.ContactListParams) (services.PageResult[domain.ContactMessage], error)
	Open(ctx context.Context, id string) (*domain.ContactMessage, error)
	Update(ctx context.Context, id string, patch services.ContactPatch) (*domain.ContactMessage, error)
	Delete(ctx context.Context, id string) error
}

//
// Handler wiring
//

// Services bundles the dependencies of Handlers. Nil services are allowed
// as long as their routes are not mounted.
type Services struct {
	Sermons    SermonService
	Likes      LikeService
	Events     EventService
	Ministries MinistryService
	Gallery    GalleryService
	About      AboutService
	Hero       HeroService
	Contact    ContactService
}

// Options tunes request parsing and error rendering.
type Options struct {
	// MaxUploadBytes caps each uploaded file. Defaults to 10 MiB.
	MaxUploadBytes int64
	// MaxUploadFiles caps the files of one gallery upload. Defaults to 10.
	MaxUploadFiles int
	// Development adds stack traces to error responses.
	Development bool
}

// Handlers groups the HTTP endpoints of all content resources.
type Handlers struct {
	svc  Services
	opts Options
}

// New constructs Handlers bound to svc.
func New(svc Services, opts Options) *Handlers {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.MaxUploadFiles <= 0 {
		opts.MaxUploadFiles = 10
	}
	return &Handlers{svc: svc, opts: opts}
}

//
// Helpers
//

// pathID returns the named path parameter when it is a storage identifier.
// Otherwise it answers 400 and returns ok=false.
func pathID(c *gin.Context, name string) (string, bool) {
	id := c.Param(name)
	if !domain.IsStorageID(id) {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "Invalid ID format")
		return "", false
	}
	return id, true
}

// likeIdentity names the caller a like is recorded for: the X-User-ID header
// when sent, else the client address, else "anonymous". The header is client
// controlled; likes are a popularity signal, not a vote.
func likeIdentity(c *gin.Context) string {
	return strings.TrimSpace(sysutil.FirstNonEmpty(c.GetHeader("X-User-ID"), c.ClientIP(), "anonymous"))
}

// actor returns the authenticated subject recorded as createdBy/updatedBy.
func actor(c *gin.Context) string { return middleware.UserID(c) }
