package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-church-backend/internal/domain"
	"github.com/tbourn/go-church-backend/internal/media"
	"github.com/tbourn/go-church-backend/internal/services"
)

const (
	testID  = "3f1c2b9e-8a7d-4c55-9a0e-2f5b6c7d8e9f"
	testID2 = "9a8b7c6d-5e4f-4a3b-8c2d-1e0f9a8b7c6d"
)

// ---------- stub services ----------

type stubSermons struct {
	create func(context.Context, services.SermonInput, []byte, string) (*domain.Sermon, error)
	get    func(context.Context, string) (*domain.Sermon, error)
	list   func(context.Context, services.SermonListParams) (services.PageResult[domain.Sermon], error)
	stats  func(context.Context) (services.ListStats, error)
	update func(context.Context, string, services.SermonPatch, []byte) (*domain.Sermon, error)
	del    func(context.Context, string) error
}

func (s stubSermons) Create(ctx context.Context, in services.SermonInput, img []byte, by string) (*domain.Sermon, error) {
	return s.create(ctx, in, img, by)
}

func (s stubSermons) Get(ctx context.Context, id string) (*domain.Sermon, error) {
	return s.get(ctx, id)
}

func (s stubSermons) List(ctx context.Context, p services.SermonListParams) (services.PageResult[domain.Sermon], error) {
	return s.list(ctx, p)
}

func (s stubSermons) Stats(ctx context.Context) (services.ListStats, error) {
	if s.stats == nil {
		return services.ListStats{}, nil
	}
	return s.stats(ctx)
}

func (s stubSermons) Update(ctx context.Context, id string, p services.SermonPatch, img []byte) (*domain.Sermon, error) {
	return s.update(ctx, id, p, img)
}

func (s stubSermons) Delete(ctx context.Context, id string) error { return s.del(ctx, id) }

type stubLikes struct {
	toggle func(ctx context.Context, sermonID, identity, ip string) (services.LikeResult, error)
	status func(ctx context.Context, sermonID, identity string) (bool, error)
}

func (s stubLikes) Toggle(ctx context.Context, sermonID, identity, ip string) (services.LikeResult, error) {
	return s.toggle(ctx, sermonID, identity, ip)
}

func (s stubLikes) Status(ctx context.Context, sermonID, identity string) (bool, error) {
	return s.status(ctx, sermonID, identity)
}

type stubEvents struct {
	list func(context.Context, services.EventListParams) ([]domain.Event, error)
}

func (stubEvents) Create(context.Context, services.EventInput, []byte, string) (*domain.Event, error) {
	return &domain.Event{ID: testID}, nil
}
func (stubEvents) Get(_ context.Context, id string) (*domain.Event, error) {
	return nil, services.ErrEventNotFound
}
func (s stubEvents) List(ctx context.Context, p services.EventListParams) ([]domain.Event, error) {
	return s.list(ctx, p)
}
func (stubEvents) Stats(context.Context) (services.ListStats, error) { return services.ListStats{}, nil }
func (stubEvents) Update(context.Context, string, services.EventPatch, []byte) (*domain.Event, error) {
	return nil, services.ErrEventEndsBeforeStart
}
func (stubEvents) Delete(context.Context, string) error { return nil }

type stubGallery struct {
	create    func(context.Context, services.AlbumInput, []services.ImageUpload, string) (*domain.GalleryAlbum, error)
	delImage  func(ctx context.Context, albumID, imageID string) (*domain.GalleryAlbum, error)
	addImages func(context.Context, string, []services.ImageUpload) (*domain.GalleryAlbum, error)
}

func (s stubGallery) Create(ctx context.Context, in services.AlbumInput, f []services.ImageUpload, by string) (*domain.GalleryAlbum, error) {
	return s.create(ctx, in, f, by)
}
func (stubGallery) Get(context.Context, string) (*domain.GalleryAlbum, error) {
	return nil, services.ErrAlbumNotFound
}
func (stubGallery) List(context.Context) ([]domain.GalleryAlbum, error) { return nil, nil }
func (s stubGallery) AddImages(ctx context.Context, id string, f []services.ImageUpload) (*domain.GalleryAlbum, error) {
	return s.addImages(ctx, id, f)
}
func (s stubGallery) DeleteImage(ctx context.Context, albumID, imageID string) (*domain.GalleryAlbum, error) {
	return s.delImage(ctx, albumID, imageID)
}
func (stubGallery) Delete(context.Context, string) error { return nil }

type stubAbout struct {
	update    func(context.Context, services.AboutInput, []byte, string) (*domain.About, error)
	deleteImg func(context.Context, string) error
}

func (stubAbout) Get(context.Context) (*domain.About, error) {
	return &domain.About{ID: domain.AboutSingletonID, WelcomeMessage: "Welcome"}, nil
}
func (s stubAbout) Update(ctx context.Context, in services.AboutInput, img []byte, by string) (*domain.About, error) {
	return s.update(ctx, in, img, by)
}
func (stubAbout) UploadSectionImage(_ context.Context, img []byte) (media.Asset, error) {
	if len(img) == 0 {
		return media.Asset{}, services.ErrImageRequired
	}
	return media.Asset{URL: "https://img.test/church-website/about/a.jpg", PublicID: "church-website/about/a"}, nil
}
func (stubAbout) UploadLeaderImage(context.Context, []byte) (media.Asset, error) {
	return media.Asset{PublicID: "church-website/about/leaders/b"}, nil
}
func (s stubAbout) DeleteImage(ctx context.Context, publicID string) error {
	return s.deleteImg(ctx, publicID)
}

type stubHero struct {
	update func(context.Context, string, services.HeroPatch, []byte, string) (*domain.HeroSettings, error)
}

func (stubHero) Get(_ context.Context, page string) (*domain.HeroSettings, error) {
	if page != "home" {
		return nil, services.ErrInvalidHeroPage
	}
	return &domain.HeroSettings{Page: page, Title: "Welcome to Our Church"}, nil
}
func (s stubHero) Update(ctx context.Context, page string, p services.HeroPatch, img []byte, by string) (*domain.HeroSettings, error) {
	return s.update(ctx, page, p, img, by)
}

type stubContact struct {
	submit func(ctx context.Context, in services.ContactInput, clientID, ip, key string) (*domain.ContactMessage, bool, error)
	list   func(context.Context, services.ContactListParams) (services.PageResult[domain.ContactMessage], error)
}

func (s stubContact) Submit(ctx context.Context, in services.ContactInput, clientID, ip, key string) (*domain.ContactMessage, bool, error) {
	return s.submit(ctx, in, clientID, ip, key)
}
func (s stubContact) List(ctx context.Context, p services.ContactListParams) (services.PageResult[domain.ContactMessage], error) {
	return s.list(ctx, p)
}
func (stubContact) Open(_ context.Context, id string) (*domain.ContactMessage, error) {
	return &domain.ContactMessage{ID: id, Status: domain.ContactStatusRead}, nil
}
func (stubContact) Update(context.Context, string, services.ContactPatch) (*domain.ContactMessage, error) {
	return nil, services.ErrMessageNotFound
}
func (stubContact) Delete(context.Context, string) error { return nil }

// ---------- request helpers ----------

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(method, target, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type upload struct {
	field, name string
	data        []byte
}

func multipartRequest(t *testing.T, method, target string, fields map[string]string, files ...upload) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("field: %v", err)
		}
	}
	for _, f := range files {
		fw, err := mw.CreateFormFile(f.field, f.name)
		if err != nil {
			t.Fatalf("file: %v", err)
		}
		if _, err := io.Copy(fw, bytes.NewReader(f.data)); err != nil {
			t.Fatalf("copy: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return m
}
