// Package services – HeroService
//
// HeroService manages the banner shown at the top of each site page. Every
// page has exactly one settings row, created with defaults on first read.
package services

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/tbourn/go-church-backend/internal/domain"
	"github.com/tbourn/go-church-backend/internal/media"
	"github.com/tbourn/go-church-backend/internal/repo"
	"github.com/tbourn/go-church-backend/internal/validation"
)

const (
	defaultHeroSubtitle = "Join us in worship and fellowship"
	defaultHeroOpacity  = 0.6
)

var defaultHeroTitles = map[string]string{
	"home":       "Welcome to Our Church",
	"ministries": "Our Ministries",
	"gallery":    "Photo Gallery",
	"about":      "About Us",
	"contact":    "Contact Us",
}

// DefaultHeroTitle returns the title a page's banner starts with. Pages
// without a curated title use their name in title case.
func DefaultHeroTitle(page string) string {
	if t, ok := defaultHeroTitles[page]; ok {
		return t
	}
	return cases.Title(language.English).String(page)
}

// HeroPatch is a partial banner update; nil fields are left unchanged.
type HeroPatch struct {
	Title          *string  `json:"title" form:"title" validate:"omitnil,notblank,max=200"`
	Subtitle       *string  `json:"subtitle" form:"subtitle" validate:"omitempty,max=300"`
	OverlayOpacity *float64 `json:"overlayOpacity" form:"overlayOpacity" validate:"omitempty,gte=0,lte=1"`
}

// HeroService implements the hero banner use-cases.
type HeroService struct {
	DB     *gorm.DB
	Images ImageStore
	Cache  *cache.Cache
}

// NewHeroService constructs a HeroService whose reads are cached for ttl.
func NewHeroService(db *gorm.DB, images ImageStore, ttl time.Duration) *HeroService {
	return &HeroService{DB: db, Images: images, Cache: cache.New(ttl, 2*ttl)}
}

// ValidHeroPage reports whether page has a banner.
func ValidHeroPage(page string) bool { return slices.Contains(domain.HeroPages, page) }

// Get returns the page's banner, creating the default one on first use.
func (s *HeroService) Get(ctx context.Context, page string) (*domain.HeroSettings, error) {
	ctx, span := otel.Tracer("services/HeroService").Start(ctx, "Get",
		trace.WithAttributes(attribute.String("hero.page", page)),
	)
	defer span.End()

	page = normalizePage(page)
	if !ValidHeroPage(page) {
		return nil, ErrInvalidHeroPage
	}
	if s.Cache != nil {
		if v, ok := s.Cache.Get(page); ok {
			h := *v.(*domain.HeroSettings)
			return &h, nil
		}
	}
	h, err := s.load(ctx, page)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		c := *h
		s.Cache.SetDefault(page, &c)
	}
	return h, nil
}

func (s *HeroService) load(ctx context.Context, page string) (*domain.HeroSettings, error) {
	h, err := repo.GetHero(ctx, s.DB, page)
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}
	h = &domain.HeroSettings{
		Page:           page,
		Title:          DefaultHeroTitle(page),
		Subtitle:       defaultHeroSubtitle,
		OverlayOpacity: defaultHeroOpacity,
	}
	if err := repo.CreateHero(ctx, s.DB, h); err != nil {
		if !errors.Is(err, repo.ErrDuplicate) {
			return nil, err
		}
		return repo.GetHero(ctx, s.DB, page)
	}
	return h, nil
}

// Update applies patch to the page's banner and optionally replaces the
// background image. A page without settings yet starts from the defaults.
func (s *HeroService) Update(ctx context.Context, page string, patch HeroPatch, image []byte, updatedBy string) (*domain.HeroSettings, error) {
	ctx, span := otel.Tracer("services/HeroService").Start(ctx, "Update",
		trace.WithAttributes(attribute.String("hero.page", page)),
	)
	defer span.End()

	page = normalizePage(page)
	if !ValidHeroPage(page) {
		return nil, ErrInvalidHeroPage
	}
	if err := validation.Struct(&patch); err != nil {
		return nil, invalid(err)
	}
	h, err := s.load(ctx, page)
	if err != nil {
		return nil, err
	}

	setTrimmed(&h.Title, patch.Title)
	setTrimmed(&h.Subtitle, patch.Subtitle)
	if patch.OverlayOpacity != nil {
		h.OverlayOpacity = *patch.OverlayOpacity
	}
	if updatedBy != "" {
		h.UpdatedBy = updatedBy
	}

	oldImage := ""
	if len(image) > 0 {
		asset, err := s.Images.Upload(ctx, image, media.FolderHero)
		if err != nil {
			return nil, imageError(err)
		}
		oldImage = h.BackgroundImagePublicID
		h.BackgroundImageURL, h.BackgroundImagePublicID = asset.URL, asset.PublicID
	}
	if err := repo.SaveHero(ctx, s.DB, h); err != nil {
		if len(image) > 0 {
			s.Images.DeleteQuietly(cleanupCtx(ctx), h.BackgroundImagePublicID)
		}
		return nil, err
	}
	if s.Cache != nil {
		s.Cache.Delete(page)
	}
	s.Images.DeleteQuietly(cleanupCtx(ctx), oldImage)
	return h, nil
}

// normalizePage lower-cases and trims a page name from a URL.
func normalizePage(page string) string { return strings.ToLower(strings.TrimSpace(page)) }
