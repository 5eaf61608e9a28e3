// Package services defines the business logic for the church website content:
// sermons and likes, events, ministries, gallery albums, the about page, hero
// banners and contact messages. This file centralizes the service-level error
// type so that handlers can translate failures into HTTP results by kind
// rather than by matching individual values.
package services

import (
	"errors"

	"github.com/tbourn/go-church-backend/internal/media"
	"github.com/tbourn/go-church-backend/internal/repo"
	"github.com/tbourn/go-church-backend/internal/validation"
)

// Kind classifies a service error.
type Kind string

const (
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindUpstream   Kind = "upstream"
	KindInternal   Kind = "internal"
)

// Error is a classified service error. Message is safe to show to clients;
// Err, when set, is the underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the kind of err, or KindInternal for unclassified errors.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	return KindInternal
}

// Not found.
var (
	ErrSermonNotFound      = &Error{Kind: KindNotFound, Message: "Sermon not found"}
	ErrEventNotFound       = &Error{Kind: KindNotFound, Message: "Event not found"}
	ErrMinistryNotFound    = &Error{Kind: KindNotFound, Message: "Ministry not found"}
	ErrAlbumNotFound       = &Error{Kind: KindNotFound, Message: "Album not found"}
	ErrImageNotFound       = &Error{Kind: KindNotFound, Message: "Image not found"}
	ErrMessageNotFound     = &Error{Kind: KindNotFound, Message: "Message not found"}
	ErrSubdocumentNotFound = &Error{Kind: KindNotFound, Message: "Referenced section or leader does not exist"}
)

// Validation.
var (
	ErrInvalidYouTubeURL = &Error{Kind: KindValidation, Message: "Invalid YouTube URL"}
	ErrImageRequired     = &Error{Kind: KindValidation, Message: "Please upload an image"}
	ErrImagesRequired    = &Error{Kind: KindValidation, Message: "Please upload at least one image"}
	ErrTooManyImages     = &Error{Kind: KindValidation, Message: "Too many images"}
	ErrUnsupportedImage  = &Error{Kind: KindValidation, Message: "Only image files are allowed (jpeg, jpg, png, webp)", Err: media.ErrUnsupportedImage}
	ErrInvalidHeroPage   = &Error{Kind: KindValidation, Message: "Invalid page"}
	ErrInvalidStatus     = &Error{Kind: KindValidation, Message: "Invalid status"}

	ErrDuplicateSubdocument = &Error{Kind: KindValidation, Message: "A section or leader is listed more than once"}
)

// Conflict and upstream.
var (
	ErrLikeConflict          = &Error{Kind: KindConflict, Message: "Like is being updated concurrently; retry"}
	ErrImageStoreUnavailable = &Error{Kind: KindUpstream, Message: "Image storage is unavailable"}
)

// invalid wraps a validation failure.
func invalid(err error) error {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return &Error{Kind: KindValidation, Message: verr.Error(), Err: err}
	}
	return err
}

// imageError classifies an upload failure.
func imageError(err error) error {
	if errors.Is(err, media.ErrUnsupportedImage) {
		return ErrUnsupportedImage
	}
	if media.IsUnavailable(err) {
		return &Error{Kind: KindUpstream, Message: "Image storage is temporarily unavailable, try again later", Err: err}
	}
	return &Error{Kind: KindUpstream, Message: ErrImageStoreUnavailable.Message, Err: err}
}

// notFound maps repo.ErrNotFound to nf and passes other errors through.
func notFound(err error, nf *Error) error {
	if errors.Is(err, repo.ErrNotFound) {
		return nf
	}
	return err
}
