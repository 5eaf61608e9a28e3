package repo

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/go-church-backend/internal/domain"
)

// newTestDB opens a unique in-memory database per test. Passing migrate=true
// creates the full schema.
func newTestDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", t.Name())
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
	if migrate {
		if err := AutoMigrate(db); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func seedSermon(t *testing.T, db *gorm.DB, title string, date time.Time, published bool) *domain.Sermon {
	t.Helper()
	s := &domain.Sermon{
		ID: domain.NewID(), Title: title, Description: "d", Scripture: "John 3:16",
		ImageURL: "https://cdn/x.jpg", ImagePublicID: "church-website/sermons/x",
		YouTubeURL: "https://youtu.be/abc", YouTubeVideoID: "abc",
		Date: date, Pastor: "Pastor", IsPublished: published,
	}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("seed sermon: %v", err)
	}
	return s
}
