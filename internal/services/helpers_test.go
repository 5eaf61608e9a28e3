package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-church-backend/internal/domain"
	"github.com/tbourn/go-church-backend/internal/media"
	"github.com/tbourn/go-church-backend/internal/repo"
)

// newTestDB opens a migrated in-memory database unique to the test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// newImages returns an uploader over a fresh memory store.
func newImages() (*media.Uploader, *media.MemoryStore) {
	store := media.NewMemoryStore("")
	return media.NewUploader(store, media.Optimizer{MaxDimension: 64, Quality: 80}), store
}

// pngBytes encodes a small opaque PNG.
func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: uint8(x * 20), B: 40, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

// downStore fails every write.
type downStore struct{}

func (downStore) Put(context.Context, string, []byte, string) error {
	return errors.New("bucket unreachable")
}
func (downStore) Delete(context.Context, string) error { return errors.New("bucket unreachable") }
func (downStore) URL(key string) string { return "down://" + key }

// fixedClock returns a settable clock.
func fixedClock(t0 time.Time) (*time.Time, func() time.Time) {
	now := t0
	return &now, func() time.Time { return now }
}

func seedSermon(t *testing.T, db *gorm.DB) *domain.Sermon {
	t.Helper()
	s := &domain.Sermon{
		Title: "Grace", Description: "d", Scripture: "Eph 2:8",
		ImageURL: "memory://images/x", ImagePublicID: "church-website/sermons/x",
		YouTubeURL: "https://youtu.be/abc123", YouTubeVideoID: "abc123",
		Date: time.Now().UTC(), Pastor: "Pastor", IsPublished: true,
	}
	if err := repo.CreateSermon(context.Background(), db, s); err != nil {
		t.Fatalf("seed sermon: %v", err)
	}
	return s
}

func wantKind(t *testing.T, err error, kind Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("want %s error, got nil", kind)
	}
	if got := KindOf(err); got != kind {
		t.Fatalf("kind = %s (%v); want %s", got, err, kind)
	}
}
