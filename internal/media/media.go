// Package media stores the site's images. A Store persists raw objects
// (S3-compatible bucket or memory); the Uploader in front of it optimizes
// incoming images, names them under a folder, and fans multi-file uploads out
// concurrently.
package media

import (
	"context"
	"errors"
)

// Asset identifies a stored image. PublicID is the handle used to delete it.
type Asset struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// Store persists objects under a key.
type Store interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Image folders used by the content services.
const (
	FolderSermons    = "church-website/sermons"
	FolderEvents     = "church-website/events"
	FolderMinistries = "church-website/ministries"
	FolderGallery    = "church-website/gallery"
	FolderAbout      = "church-website/about"
	FolderLeaders    = "church-website/about/leaders"
	FolderHero       = "church-website/hero-backgrounds"
)

var (
	// ErrUnsupportedImage is returned for payloads that are not JPEG, PNG or WebP.
	ErrUnsupportedImage = errors.New("unsupported image format")

	// ErrObjectNotFound is returned by Delete for an unknown key.
	ErrObjectNotFound = errors.New("object not found")
)
