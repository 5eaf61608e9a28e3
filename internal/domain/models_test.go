package domain

import (
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newDomainDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func migrateAll(t *testing.T, db *gorm.DB) {
	t.Helper()
	if err := db.AutoMigrate(
		&Sermon{}, &SermonLike{}, &Event{}, &Ministry{},
		&GalleryAlbum{}, &GalleryImage{},
		&About{}, &AboutSection{}, &Leader{},
		&HeroSettings{}, &ContactMessage{}, &Idempotency{},
	); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
}

func TestTableNames(t *testing.T) {
	cases := map[string]string{
		(Sermon{}).TableName():         "sermons",
		(SermonLike{}).TableName():     "sermon_likes",
		(Event{}).TableName():          "events",
		(Ministry{}).TableName():       "ministries",
		(GalleryAlbum{}).TableName():   "gallery_albums",
		(GalleryImage{}).TableName():   "gallery_images",
		(About{}).TableName():          "about",
		(AboutSection{}).TableName():   "about_sections",
		(Leader{}).TableName():         "about_leaders",
		(HeroSettings{}).TableName():   "hero_settings",
		(ContactMessage{}).TableName(): "contacts",
		(Idempotency{}).TableName():    "idempotency",
	}
	for got, want := range cases {
		if got != want {
			t.Fatalf("TableName() = %q; want %q", got, want)
		}
	}
}

func TestMigrations_LikeIdentityIsUnique(t *testing.T) {
	db := newDomainDB(t)
	migrateAll(t, db)

	if !db.Migrator().HasIndex(&SermonLike{}, "ux_sermon_like_identity") {
		t.Fatalf("expected unique index ux_sermon_like_identity on sermon_likes")
	}

	now := time.Now().UTC()
	s := &Sermon{ID: NewID(), Title: "T", Description: "D", Scripture: "John 3:16",
		ImageURL: "u", ImagePublicID: "p", YouTubeURL: "https://youtu.be/abc", YouTubeVideoID: "abc",
		Date: now, Pastor: "P"}
	if err := db.Create(s).Error; err != nil {
		t.Fatalf("insert sermon: %v", err)
	}

	like := func() *SermonLike {
		return &SermonLike{ID: NewID(), SermonID: s.ID, UserIdentifier: "u1", IPAddress: "1.2.3.4",
			CreatedAt: now, ExpiresAt: now.Add(90 * 24 * time.Hour)}
	}
	if err := db.Omit("Sermon").Create(like()).Error; err != nil {
		t.Fatalf("insert like: %v", err)
	}
	if err := db.Omit("Sermon").Create(like()).Error; err == nil {
		t.Fatalf("expected UNIQUE violation on (sermon_id, user_identifier)")
	}

	// Deleting the sermon cascades to its likes.
	if err := db.Delete(&Sermon{}, "id = ?", s.ID).Error; err != nil {
		t.Fatalf("delete sermon: %v", err)
	}
	var cnt int64
	db.Model(&SermonLike{}).Where("sermon_id = ?", s.ID).Count(&cnt)
	if cnt != 0 {
		t.Fatalf("expected likes to cascade-delete, got %d", cnt)
	}
}

func TestMigrations_NegativeLikesRejected(t *testing.T) {
	db := newDomainDB(t)
	migrateAll(t, db)

	s := &Sermon{ID: NewID(), Title: "T", Description: "D", Scripture: "S", ImageURL: "u",
		ImagePublicID: "p", YouTubeURL: "y", YouTubeVideoID: "v", Date: time.Now(), Pastor: "P", Likes: -1}
	if err := db.Create(s).Error; err == nil {
		t.Fatalf("expected check constraint to reject negative likes")
	}
}

func TestMigrations_GalleryImagesCascade(t *testing.T) {
	db := newDomainDB(t)
	migrateAll(t, db)

	now := time.Now().UTC()
	a := &GalleryAlbum{
		ID: NewID(), AlbumName: "Picnic", Date: now,
		Images: []GalleryImage{
			{URL: "u1", PublicID: "p1", UploadedAt: now},
			{URL: "u2", PublicID: "p2", UploadedAt: now, Position: 1},
		},
	}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("insert album: %v", err)
	}
	for _, img := range a.Images {
		if !IsStorageID(img.ID) {
			t.Fatalf("image id not allocated: %q", img.ID)
		}
	}

	if err := db.Delete(&GalleryAlbum{}, "id = ?", a.ID).Error; err != nil {
		t.Fatalf("delete album: %v", err)
	}
	var cnt int64
	db.Model(&GalleryImage{}).Where("album_id = ?", a.ID).Count(&cnt)
	if cnt != 0 {
		t.Fatalf("expected images to cascade-delete, got %d", cnt)
	}
}

func TestAbout_SaveNeverPersistsPlaceholderIDs(t *testing.T) {
	db := newDomainDB(t)
	migrateAll(t, db)

	keep := NewID()
	a := &About{
		ID:             AboutSingletonID,
		WelcomeMessage: "hi",
		Sections: []AboutSection{
			{ID: keep, Title: "History", Content: "c"},
			{ID: "temp-99", Title: "New", Content: "c", Order: 1},
		},
		Leadership: []Leader{{ID: "new-1700000000", Name: "N", Title: "Pastor"}},
		CoreValues: []string{"Faith", "Hope"},
	}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("create about: %v", err)
	}

	var got About
	if err := db.Preload("Sections").Preload("Leadership").First(&got, "id = ?", AboutSingletonID).Error; err != nil {
		t.Fatalf("load about: %v", err)
	}
	if len(got.Sections) != 2 || len(got.Leadership) != 1 {
		t.Fatalf("unexpected children: %+v", got)
	}
	for _, s := range got.Sections {
		if !IsStorageID(s.ID) {
			t.Fatalf("section persisted with placeholder id %q", s.ID)
		}
	}
	if !IsStorageID(got.Leadership[0].ID) {
		t.Fatalf("leader persisted with placeholder id %q", got.Leadership[0].ID)
	}
	if len(got.CoreValues) != 2 || got.CoreValues[1] != "Hope" {
		t.Fatalf("core values not round-tripped: %v", got.CoreValues)
	}
}

func TestEvent_AfterFindSetsUpcoming(t *testing.T) {
	db := newDomainDB(t)
	migrateAll(t, db)

	now := time.Now().UTC()
	for i, start := range []time.Time{now.Add(48 * time.Hour), now.Add(-48 * time.Hour)} {
		e := &Event{ID: NewID(), Title: fmt.Sprintf("e%d", i), Description: "d", ImageURL: "u",
			ImagePublicID: "p", StartDate: start, EndDate: start.Add(time.Hour), Location: "Hall",
			Category: CategoryWorship}
		if err := db.Create(e).Error; err != nil {
			t.Fatalf("insert event: %v", err)
		}
	}
	var events []Event
	if err := db.Order("start_date desc").Find(&events).Error; err != nil {
		t.Fatalf("find: %v", err)
	}
	if !events[0].IsUpcoming || events[1].IsUpcoming {
		t.Fatalf("IsUpcoming not derived: %+v", events)
	}

	bad := &Event{ID: NewID(), Title: "x", Description: "d", ImageURL: "u", ImagePublicID: "p",
		StartDate: now, EndDate: now, Location: "L", Category: "party"}
	if err := db.Create(bad).Error; err == nil {
		t.Fatalf("expected category check to reject %q", bad.Category)
	}
}
