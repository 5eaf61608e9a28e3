// Package services – AboutService
//
// AboutService manages the singleton about-page document. Reads go through a
// short-lived in-process cache; every write invalidates it.
//
// Updates reconcile the embedded sections and leadership against the stored
// document (see Reconcile). Client-side placeholder identifiers are stripped
// from the payload here and again by the model's save hook, so a placeholder
// never reaches the store on either path.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"gorm.io/gorm"

	"github.com/tbourn/go-church-backend/internal/domain"
	"github.com/tbourn/go-church-backend/internal/media"
	"github.com/tbourn/go-church-backend/internal/repo"
	"github.com/tbourn/go-church-backend/internal/validation"
)

const (
	aboutCacheKey         = "about"
	defaultWelcomeMessage = "Welcome to our church family"
)

// ErrInvalidImageRef is returned when an image handle outside the about
// folders is passed to DeleteImage.
var ErrInvalidImageRef = &Error{Kind: KindValidation, Message: "Invalid image reference"}

// AboutInput is a partial update of the about page. Nil fields and nil
// collections are left unchanged; an empty collection removes every entry.
type AboutInput struct {
	WelcomeMessage   *string               `json:"welcomeMessage" form:"welcomeMessage" validate:"omitnil,notblank"`
	MissionStatement *string               `json:"missionStatement" form:"missionStatement"`
	VisionStatement  *string               `json:"visionStatement" form:"visionStatement"`
	CoreValues       StringList            `json:"coreValues" form:"coreValues"`
	Sections         SectionList           `json:"sections" form:"sections" validate:"omitempty,dive"`
	Leadership       LeaderList            `json:"leadership" form:"leadership" validate:"omitempty,dive"`
}

// The admin UI sends the about collections as JSON text inside its
// multipart form. These list types decode that form field for gin's form
// binding; JSON bodies decode them as ordinary arrays.
type (
	StringList  []string
	SectionList []domain.AboutSection
	LeaderList  []domain.Leader
)

// UnmarshalParam accepts a JSON array or a single bare value.
func (l *StringList) UnmarshalParam(param string) error {
	if p := strings.TrimSpace(param); p != "" && !strings.HasPrefix(p, "[") {
		*l = StringList{p}
		return nil
	}
	return unmarshalFormJSON(param, (*[]string)(l))
}

// UnmarshalParam decodes a JSON array of sections.
func (l *SectionList) UnmarshalParam(param string) error {
	return unmarshalFormJSON(param, (*[]domain.AboutSection)(l))
}

// UnmarshalParam decodes a JSON array of leaders.
func (l *LeaderList) UnmarshalParam(param string) error {
	return unmarshalFormJSON(param, (*[]domain.Leader)(l))
}

// unmarshalFormJSON leaves dst unchanged for a blank field.
func unmarshalFormJSON(param string, dst any) error {
	if strings.TrimSpace(param) == "" {
		return nil
	}
	return json.Unmarshal([]byte(param), dst)
}

// AboutService implements the about-page use-cases.
type AboutService struct {
	DB     *gorm.DB
	Images ImageStore
	Cache  *cache.Cache
	Now    func() time.Time
}

// NewAboutService constructs an AboutService whose reads are cached for ttl.
func NewAboutService(db *gorm.DB, images ImageStore, ttl time.Duration) *AboutService {
	return &AboutService{DB: db, Images: images, Cache: cache.New(ttl, 2*ttl)}
}

// Get returns the about page, creating the default document on first use.
func (s *AboutService) Get(ctx context.Context) (*domain.About, error) {
	ctx, span := otel.Tracer("services/AboutService").Start(ctx, "Get")
	defer span.End()

	if s.Cache != nil {
		if v, ok := s.Cache.Get(aboutCacheKey); ok {
			return cloneAbout(v.(*domain.About)), nil
		}
	}

	about, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if s.Cache != nil {
		s.Cache.SetDefault(aboutCacheKey, cloneAbout(about))
	}
	return about, nil
}

func (s *AboutService) load(ctx context.Context) (*domain.About, error) {
	about, err := repo.GetAbout(ctx, s.DB)
	if err == nil {
		return about, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, err
	}

	about = &domain.About{
		WelcomeMessage: defaultWelcomeMessage,
		Sections:       []domain.AboutSection{},
		Leadership:     []domain.Leader{},
		CoreValues:     []string{},
		LastUpdated:    nowUTC(s.Now),
	}
	if err := repo.CreateAbout(ctx, s.DB, about); err != nil {
		if !errors.Is(err, repo.ErrDuplicate) {
			return nil, err
		}
		// Another request created it first.
		return repo.GetAbout(ctx, s.DB)
	}
	return about, nil
}

// Update applies in to the about page and optionally replaces the welcome
// image. See Reconcile for how sections and leadership are merged.
func (s *AboutService) Update(ctx context.Context, in AboutInput, image []byte, updatedBy string) (*domain.About, error) {
	ctx, span := otel.Tracer("services/AboutService").Start(ctx, "Update")
	defer span.End()

	if err := validation.Struct(&in); err != nil {
		return nil, invalid(err)
	}
	existing, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	merged, err := Reconcile(existing, in)
	if err != nil {
		return nil, err
	}

	oldImage := ""
	if len(image) > 0 {
		asset, err := s.Images.Upload(ctx, image, media.FolderAbout)
		if err != nil {
			return nil, imageError(err)
		}
		oldImage = existing.WelcomeImagePublicID
		merged.WelcomeImageURL, merged.WelcomeImagePublicID = asset.URL, asset.PublicID
	}
	merged.LastUpdated = nowUTC(s.Now)
	if updatedBy != "" {
		merged.UpdatedBy = updatedBy
	}

	if err := repo.SaveAbout(ctx, s.DB, merged); err != nil {
		if len(image) > 0 {
			s.Images.DeleteQuietly(cleanupCtx(ctx), merged.WelcomeImagePublicID)
		}
		return nil, err
	}
	s.invalidate()
	s.Images.DeleteQuietly(cleanupCtx(ctx), oldImage)

	return repo.GetAbout(ctx, s.DB)
}

// UploadSectionImage stores an image for a section and returns its handle.
func (s *AboutService) UploadSectionImage(ctx context.Context, image []byte) (media.Asset, error) {
	return s.upload(ctx, image, media.FolderAbout)
}

// UploadLeaderImage stores a leader portrait and returns its handle.
func (s *AboutService) UploadLeaderImage(ctx context.Context, image []byte) (media.Asset, error) {
	return s.upload(ctx, image, media.FolderLeaders)
}

func (s *AboutService) upload(ctx context.Context, image []byte, folder string) (media.Asset, error) {
	if len(image) == 0 {
		return media.Asset{}, ErrImageRequired
	}
	asset, err := s.Images.Upload(ctx, image, folder)
	if err != nil {
		return media.Asset{}, imageError(err)
	}
	return asset, nil
}

// DeleteImage removes an about-page image by its public ID. Only handles
// under the about folder are accepted; the delete itself is best-effort.
func (s *AboutService) DeleteImage(ctx context.Context, publicID string) error {
	publicID = strings.Trim(publicID, "/")
	if !strings.HasPrefix(publicID, media.FolderAbout+"/") || strings.Contains(publicID, "..") {
		return ErrInvalidImageRef
	}
	s.Images.DeleteQuietly(ctx, publicID)
	return nil
}

func (s *AboutService) invalidate() {
	if s.Cache != nil {
		s.Cache.Delete(aboutCacheKey)
	}
}

// Reconcile merges in into existing and returns the result; existing is not
// modified. For each embedded collection present in the payload:
//
//   - identifiers that are not storage identifiers are cleared, so the
//     element is inserted as new;
//   - an element whose identifier matches a stored child replaces that child
//     and keeps its identifier;
//   - an element with a well-formed identifier that matches no stored child
//     fails the whole update with ErrSubdocumentNotFound;
//   - a stored identifier listed twice fails with ErrDuplicateSubdocument;
//   - stored children missing from the payload are dropped.
//
// Reconcile is idempotent on payloads that carry only stored identifiers.
func Reconcile(existing *domain.About, in AboutInput) (*domain.About, error) {
	out := cloneAbout(existing)

	if in.WelcomeMessage != nil {
		out.WelcomeMessage = strings.TrimSpace(*in.WelcomeMessage)
	}
	if in.MissionStatement != nil {
		out.MissionStatement = strings.TrimSpace(*in.MissionStatement)
	}
	if in.VisionStatement != nil {
		out.VisionStatement = strings.TrimSpace(*in.VisionStatement)
	}
	if in.CoreValues != nil {
		out.CoreValues = append([]string{}, in.CoreValues...)
	}

	domain.SanitizeSubdocuments(&domain.About{Sections: in.Sections, Leadership: in.Leadership})

	if in.Sections != nil {
		sections, err := reconcileChildren(existing.Sections, []domain.AboutSection(in.Sections), func(s *domain.AboutSection) string { return s.ID })
		if err != nil {
			return nil, err
		}
		out.Sections = sections
	}
	if in.Leadership != nil {
		leaders, err := reconcileChildren(existing.Leadership, []domain.Leader(in.Leadership), func(l *domain.Leader) string { return l.ID })
		if err != nil {
			return nil, err
		}
		out.Leadership = leaders
	}
	return out, nil
}

func reconcileChildren[T any](existing, incoming []T, id func(*T) string) ([]T, error) {
	stored := make(map[string]struct{}, len(existing))
	for i := range existing {
		stored[id(&existing[i])] = struct{}{}
	}
	seen := make(map[string]struct{}, len(incoming))
	out := make([]T, 0, len(incoming))
	for i := range incoming {
		item := incoming[i]
		if ref := id(&item); ref != "" {
			if _, ok := stored[ref]; !ok {
				return nil, ErrSubdocumentNotFound
			}
			if _, dup := seen[ref]; dup {
				return nil, ErrDuplicateSubdocument
			}
			seen[ref] = struct{}{}
		}
		out = append(out, item)
	}
	return out, nil
}

func cloneAbout(a *domain.About) *domain.About {
	c := *a
	c.Sections = append([]domain.AboutSection(nil), a.Sections...)
	c.Leadership = append([]domain.Leader(nil), a.Leadership...)
	c.CoreValues = append([]string(nil), a.CoreValues...)
	if c.Sections == nil {
		c.Sections = []domain.AboutSection{}
	}
	if c.Leadership == nil {
		c.Leadership = []domain.Leader{}
	}
	if c.CoreValues == nil {
		c.CoreValues = []string{}
	}
	return &c
}
