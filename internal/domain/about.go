package domain

import (
	"time"

	"gorm.io/gorm"
)

// AboutSingletonID is the fixed primary key of the one About row. Storing the
// page under a well-known key makes a second About document impossible.
const AboutSingletonID = "about"

// About is the about-page document. It embeds two ordered collections,
// Sections and Leadership, whose entries carry their own identifiers.
type About struct {
	ID                   string         `json:"id"                   gorm:"type:varchar(16);primaryKey"`
	WelcomeMessage       string         `json:"welcomeMessage"       gorm:"type:text;not null"`
	WelcomeImageURL      string         `json:"welcomeImageUrl,omitempty"      gorm:"type:text"`
	WelcomeImagePublicID string         `json:"welcomeImagePublicId,omitempty" gorm:"type:varchar(255)"`
	Sections             []AboutSection `json:"sections"             gorm:"foreignKey:AboutID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Leadership           []Leader       `json:"leadership"           gorm:"foreignKey:AboutID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	MissionStatement     string         `json:"missionStatement"     gorm:"type:text"`
	VisionStatement      string         `json:"visionStatement"      gorm:"type:text"`
	CoreValues           []string       `json:"coreValues"           gorm:"type:text;serializer:json"`
	LastUpdated          time.Time      `json:"lastUpdated"`
	UpdatedBy            string         `json:"updatedBy,omitempty"  gorm:"type:varchar(64)"`
	CreatedAt            time.Time      `json:"createdAt"`
	UpdatedAt            time.Time      `json:"updatedAt"`
}

// TableName returns the database table name for About.
func (About) TableName() string { return "about" }

// BeforeSave is the last line of defence before the document reaches the
// store: placeholder identifiers on embedded records are cleared so the
// children are inserted as new rows.
func (a *About) BeforeSave(*gorm.DB) error {
	SanitizeSubdocuments(a)
	return nil
}

// AboutSection is one titled block of about-page content.
type AboutSection struct {
	ID            string `json:"id"            gorm:"type:char(36);primaryKey"`
	AboutID       string `json:"-"             gorm:"type:varchar(16);not null;index"`
	Title         string `json:"title"         gorm:"type:varchar(200);not null" validate:"notblank,max=200"`
	Content       string `json:"content"       gorm:"type:text;not null"         validate:"notblank"`
	ImageURL      string `json:"imageUrl,omitempty"      gorm:"type:text"`
	ImagePublicID string `json:"imagePublicId,omitempty" gorm:"type:varchar(255)"`
	Order         int    `json:"order"         gorm:"column:sort_order;not null"`
}

// TableName returns the database table name for AboutSection.
func (AboutSection) TableName() string { return "about_sections" }

// BeforeCreate lets the store allocate identifiers for new sections.
func (s *AboutSection) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = NewID()
	}
	return nil
}

func (s *AboutSection) subdocumentID() *string { return &s.ID }

// Leader is a member of the church leadership shown on the about page.
type Leader struct {
	ID            string `json:"id"            gorm:"type:char(36);primaryKey"`
	AboutID       string `json:"-"             gorm:"type:varchar(16);not null;index"`
	Name          string `json:"name"          gorm:"type:varchar(100);not null" validate:"notblank,max=100"`
	Title         string `json:"title"         gorm:"type:varchar(100);not null" validate:"notblank,max=100"`
	Bio           string `json:"bio,omitempty" gorm:"type:text"`
	ImageURL      string `json:"imageUrl,omitempty"      gorm:"type:text"`
	ImagePublicID string `json:"imagePublicId,omitempty" gorm:"type:varchar(255)"`
	Order         int    `json:"order"         gorm:"column:sort_order;not null"`
}

// TableName returns the database table name for Leader.
func (Leader) TableName() string { return "about_leaders" }

// BeforeCreate lets the store allocate identifiers for new leaders.
func (l *Leader) BeforeCreate(*gorm.DB) error {
	if l.ID == "" {
		l.ID = NewID()
	}
	return nil
}

func (l *Leader) subdocumentID() *string { return &l.ID }
