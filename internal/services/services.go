package services

import (
	"context"
	"time"

	"github.com/tbourn/go-church-backend/internal/media"
	"github.com/tbourn/go-church-backend/internal/utils"
)

// ImageStore is the image contract the content services depend on.
// *media.Uploader implements it.
type ImageStore interface {
	Upload(ctx context.Context, data []byte, folder string) (media.Asset, error)
	UploadMany(ctx context.Context, files [][]byte, folder string) ([]media.Asset, error)
	DeleteQuietly(ctx context.Context, publicIDs ...string)
}

// Listing defaults shared by the paginated endpoints.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// PageResult is one page of a listing.
type PageResult[T any] struct {
	Items      []T
	Total      int64
	Page       int
	TotalPages int
}

func newPageResult[T any](items []T, total int64, p utils.Page) PageResult[T] {
	if items == nil {
		items = []T{}
	}
	return PageResult[T]{Items: items, Total: total, Page: p.Number, TotalPages: p.TotalPages(total)}
}

// ListStats summarizes a listing for conditional responses.
type ListStats struct {
	Count        int64
	MaxUpdatedAt *time.Time
}

// nowUTC returns the current time from now, or the wall clock when now is nil.
func nowUTC(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}

// cleanupCtx detaches ctx from cancellation so that compensating deletes
// still run after the client has gone away.
func cleanupCtx(ctx context.Context) context.Context { return context.WithoutCancel(ctx) }
