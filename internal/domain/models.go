// Package domain defines the persistence models for the church website content:
// sermons and their likes, events, ministries, gallery albums, the about page,
// hero banners, and contact messages. These types are mapped with GORM and form
// the core data layer of the backend.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// ImageRef points at an asset held by the image store.
type ImageRef struct {
	URL      string `json:"url"      gorm:"type:text"`
	PublicID string `json:"publicId" gorm:"type:varchar(255)"`
}

// Sermon is a published (or draft) sermon with an attached cover image and a
// YouTube recording. Likes is a denormalized counter of SermonLike rows that
// is kept in step with them by the like service.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - YouTubeURL / YouTubeVideoID: the raw URL as entered and the canonical
//     video id derived from it (see SetYouTubeURL).
//   - Date: sermon date, indexed for the default "newest first" listing.
//   - Likes: never negative (DB check constraint).
//   - IsPublished: only published sermons appear in public listings.
type Sermon struct {
	ID             string    `json:"id"             gorm:"type:char(36);primaryKey"`
	Title          string    `json:"title"          gorm:"type:varchar(200);not null"`
	Description    string    `json:"description"    gorm:"type:text;not null"`
	Scripture      string    `json:"scripture"      gorm:"type:varchar(100);not null"`
	ImageURL       string    `json:"imageUrl"       gorm:"type:text;not null"`
	ImagePublicID  string    `json:"imagePublicId"  gorm:"type:varchar(255);not null"`
	YouTubeURL     string    `json:"youtubeUrl"     gorm:"type:text;not null"`
	YouTubeVideoID string    `json:"youtubeVideoId" gorm:"type:varchar(64);not null"`
	Date           time.Time `json:"date"           gorm:"not null;index:idx_sermons_date"`
	Pastor         string    `json:"pastor"         gorm:"type:varchar(100);not null"`
	Likes          int       `json:"likes"          gorm:"not null;check:likes >= 0"`
	IsPublished    bool      `json:"isPublished"    gorm:"not null;index"`
	CreatedBy      string    `json:"createdBy,omitempty" gorm:"type:varchar(64)"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TableName returns the database table name for Sermon.
func (Sermon) TableName() string { return "sermons" }

// SermonLike records one like of a sermon by one caller identity. A given
// (sermon_id, user_identifier) pair may appear at most once (unique index).
//
// UserIdentifier is whatever the caller presented (X-User-ID header or client
// address); it is not an authenticated identity. Rows stop being visible once
// ExpiresAt has passed and are purged by the like sweeper.
type SermonLike struct {
	ID             string    `json:"id"             gorm:"type:char(36);primaryKey"`
	SermonID       string    `json:"sermonId"       gorm:"type:char(36);not null;uniqueIndex:ux_sermon_like_identity,priority:1"`
	UserIdentifier string    `json:"userIdentifier" gorm:"type:varchar(255);not null;index;uniqueIndex:ux_sermon_like_identity,priority:2"`
	IPAddress      string    `json:"ipAddress"      gorm:"type:varchar(64);not null"`
	CreatedAt      time.Time `json:"createdAt"      gorm:"not null"`
	ExpiresAt      time.Time `json:"expiresAt"      gorm:"not null;index"`

	Sermon Sermon `json:"-" gorm:"foreignKey:SermonID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for SermonLike.
func (SermonLike) TableName() string { return "sermon_likes" }

// Event categories.
const (
	CategoryWorship    = "worship"
	CategoryBibleStudy = "bible-study"
	CategoryYouth      = "youth"
	CategoryOutreach   = "outreach"
	CategoryFellowship = "fellowship"
	CategoryOther      = "other"
)

// EventCategories lists the accepted Event.Category values.
var EventCategories = []string{
	CategoryWorship, CategoryBibleStudy, CategoryYouth,
	CategoryOutreach, CategoryFellowship, CategoryOther,
}

// Event is a dated church event. IsUpcoming is computed on load.
type Event struct {
	ID            string    `json:"id"            gorm:"type:char(36);primaryKey"`
	Title         string    `json:"title"         gorm:"type:varchar(200);not null"`
	Description   string    `json:"description"   gorm:"type:text;not null"`
	ImageURL      string    `json:"imageUrl"      gorm:"type:text;not null"`
	ImagePublicID string    `json:"imagePublicId" gorm:"type:varchar(255);not null"`
	StartDate     time.Time `json:"startDate"     gorm:"not null;index:idx_events_start,priority:1"`
	EndDate       time.Time `json:"endDate"       gorm:"not null"`
	Location      string    `json:"location"      gorm:"type:varchar(200);not null"`
	Category      string    `json:"category"      gorm:"type:varchar(32);not null;check:category IN ('worship','bible-study','youth','outreach','fellowship','other')"`
	IsPublished   bool      `json:"isPublished"   gorm:"not null;index:idx_events_start,priority:2"`
	IsFeatured    bool      `json:"isFeatured"    gorm:"not null"`
	CreatedBy     string    `json:"createdBy,omitempty" gorm:"type:varchar(64)"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	IsUpcoming bool `json:"isUpcoming" gorm:"-"`
}

// TableName returns the database table name for Event.
func (Event) TableName() string { return "events" }

// AfterFind derives IsUpcoming from StartDate.
func (e *Event) AfterFind(*gorm.DB) error {
	e.IsUpcoming = e.StartDate.After(time.Now())
	return nil
}

// Ministry is one of the church's ministries, displayed in Order.
type Ministry struct {
	ID            string    `json:"id"            gorm:"type:char(36);primaryKey"`
	Name          string    `json:"name"          gorm:"type:varchar(100);not null"`
	Description   string    `json:"description"   gorm:"type:text;not null"`
	ImageURL      string    `json:"imageUrl"      gorm:"type:text;not null"`
	ImagePublicID string    `json:"imagePublicId" gorm:"type:varchar(255);not null"`
	ContactPerson string    `json:"contactPerson,omitempty" gorm:"type:varchar(100)"`
	ContactEmail  string    `json:"contactEmail,omitempty"  gorm:"type:varchar(255)"`
	ContactPhone  string    `json:"contactPhone,omitempty"  gorm:"type:varchar(20)"`
	Schedule      string    `json:"schedule,omitempty"      gorm:"type:varchar(200)"`
	IsActive      bool      `json:"isActive"      gorm:"not null;index:idx_ministries_order,priority:2"`
	Order         int       `json:"order"         gorm:"column:sort_order;not null;index:idx_ministries_order,priority:1"`
	CreatedBy     string    `json:"createdBy,omitempty" gorm:"type:varchar(64)"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// TableName returns the database table name for Ministry.
func (Ministry) TableName() string { return "ministries" }

// GalleryAlbum groups photos. The first uploaded image doubles as the cover.
type GalleryAlbum struct {
	ID          string         `json:"id"          gorm:"type:char(36);primaryKey"`
	AlbumName   string         `json:"albumName"   gorm:"type:varchar(100);not null"`
	Description string         `json:"description,omitempty" gorm:"type:varchar(500)"`
	CoverImage  ImageRef       `json:"coverImage"  gorm:"embedded;embeddedPrefix:cover_"`
	Images      []GalleryImage `json:"images"      gorm:"foreignKey:AlbumID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Date        time.Time      `json:"date"        gorm:"not null;index:idx_gallery_date,priority:1"`
	IsPublished bool           `json:"isPublished" gorm:"not null;index:idx_gallery_date,priority:2"`
	CreatedBy   string         `json:"createdBy,omitempty" gorm:"type:varchar(64)"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// TableName returns the database table name for GalleryAlbum.
func (GalleryAlbum) TableName() string { return "gallery_albums" }

// GalleryImage is a photo inside an album, addressed by its own ID.
type GalleryImage struct {
	ID         string    `json:"id"         gorm:"type:char(36);primaryKey"`
	AlbumID    string    `json:"-"          gorm:"type:char(36);not null;index:idx_gallery_images_album,priority:1"`
	URL        string    `json:"url"        gorm:"type:text;not null"`
	PublicID   string    `json:"publicId"   gorm:"type:varchar(255);not null"`
	Caption    string    `json:"caption"    gorm:"type:varchar(200)"`
	Position   int       `json:"-"          gorm:"not null;index:idx_gallery_images_album,priority:2"`
	UploadedAt time.Time `json:"uploadedAt" gorm:"not null"`
}

// TableName returns the database table name for GalleryImage.
func (GalleryImage) TableName() string { return "gallery_images" }

// BeforeCreate lets the store allocate identifiers for new images.
func (i *GalleryImage) BeforeCreate(*gorm.DB) error {
	if i.ID == "" {
		i.ID = NewID()
	}
	return nil
}

// Hero banner pages.
var HeroPages = []string{"home", "sermons", "ministries", "events", "gallery", "about", "contact"}

// HeroSettings configures the banner shown at the top of one site page.
// Page is unique.
type HeroSettings struct {
	ID                      string    `json:"id"                      gorm:"type:char(36);primaryKey"`
	Page                    string    `json:"page"                    gorm:"type:varchar(32);not null;uniqueIndex;check:page IN ('home','sermons','ministries','events','gallery','about','contact')"`
	BackgroundImageURL      string    `json:"backgroundImageUrl"      gorm:"type:text"`
	BackgroundImagePublicID string    `json:"backgroundImagePublicId" gorm:"type:varchar(255)"`
	Title                   string    `json:"title"                   gorm:"type:varchar(200);not null"`
	Subtitle                string    `json:"subtitle"                gorm:"type:varchar(300)"`
	OverlayOpacity          float64   `json:"overlayOpacity"          gorm:"not null;check:overlay_opacity >= 0 AND overlay_opacity <= 1"`
	UpdatedBy               string    `json:"updatedBy,omitempty"     gorm:"type:varchar(64)"`
	CreatedAt               time.Time `json:"createdAt"`
	UpdatedAt               time.Time `json:"updatedAt"`
}

// TableName returns the database table name for HeroSettings.
func (HeroSettings) TableName() string { return "hero_settings" }

// Contact message statuses.
const (
	ContactStatusNew      = "new"
	ContactStatusRead     = "read"
	ContactStatusReplied  = "replied"
	ContactStatusArchived = "archived"
)

// ContactMessage is a message submitted through the public contact form.
type ContactMessage struct {
	ID        string     `json:"id"        gorm:"type:char(36);primaryKey"`
	Name      string     `json:"name"      gorm:"type:varchar(100);not null"`
	Email     string     `json:"email"     gorm:"type:varchar(255);not null"`
	Phone     string     `json:"phone,omitempty"   gorm:"type:varchar(20)"`
	Subject   string     `json:"subject,omitempty" gorm:"type:varchar(200)"`
	Message   string     `json:"message"   gorm:"type:varchar(2000);not null"`
	Status    string     `json:"status"    gorm:"type:varchar(16);not null;index:idx_contacts_created_status,priority:2;check:status IN ('new','read','replied','archived')"`
	IPAddress string     `json:"ipAddress,omitempty" gorm:"type:varchar(64)"`
	IsRead    bool       `json:"isRead"    gorm:"not null;index"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	Notes     string     `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt time.Time  `json:"createdAt" gorm:"index:idx_contacts_created_status,priority:1"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// TableName returns the database table name for ContactMessage.
func (ContactMessage) TableName() string { return "contacts" }
