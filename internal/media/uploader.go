package media

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/tbourn/go-church-backend/internal/observability"
)

// uploadConcurrency caps parallel object writes per UploadMany call.
const uploadConcurrency = 4

// Uploader is the image service used by the content services.
type Uploader struct {
	Store     Store
	Optimizer Optimizer
}

// NewUploader returns an Uploader writing to store.
func NewUploader(store Store, opt Optimizer) *Uploader {
	return &Uploader{Store: store, Optimizer: opt}
}

// Upload optimizes data and stores it under folder with a fresh name.
func (u *Uploader) Upload(ctx context.Context, data []byte, folder string) (Asset, error) {
	body, contentType, err := u.Optimizer.Optimize(data)
	if err != nil {
		observability.ImageOps.WithLabelValues("upload", "rejected").Inc()
		return Asset{}, err
	}

	publicID := strings.Trim(folder, "/") + "/" + uuid.NewString()
	if err := u.Store.Put(ctx, publicID, body, contentType); err != nil {
		observability.ImageOps.WithLabelValues("upload", "error").Inc()
		return Asset{}, err
	}
	observability.ImageOps.WithLabelValues("upload", "ok").Inc()
	observability.ImageBytes.Observe(float64(len(body)))
	return Asset{URL: u.Store.URL(publicID), PublicID: publicID}, nil
}

// UploadMany uploads every file concurrently and returns the assets in input
// order. If any upload fails, the ones that succeeded are deleted again and
// the first error is returned.
func (u *Uploader) UploadMany(ctx context.Context, files [][]byte, folder string) ([]Asset, error) {
	assets := make([]Asset, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for i, data := range files {
		g.Go(func() error {
			a, err := u.Upload(gctx, data, folder)
			if err != nil {
				return err
			}
			assets[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, a := range assets {
			if a.PublicID != "" {
				u.DeleteQuietly(context.WithoutCancel(ctx), a.PublicID)
			}
		}
		return nil, err
	}
	return assets, nil
}

// Delete removes the image with publicID.
func (u *Uploader) Delete(ctx context.Context, publicID string) error {
	if err := u.Store.Delete(ctx, publicID); err != nil {
		observability.ImageOps.WithLabelValues("delete", "error").Inc()
		return err
	}
	observability.ImageOps.WithLabelValues("delete", "ok").Inc()
	return nil
}

// DeleteQuietly is Delete for cleanup paths: failures are logged, never
// returned.
func (u *Uploader) DeleteQuietly(ctx context.Context, publicIDs ...string) {
	for _, id := range publicIDs {
		if id == "" {
			continue
		}
		if err := u.Delete(ctx, id); err != nil {
			log.Ctx(ctx).Warn().Err(err).Str("public_id", id).Msg("image cleanup failed")
		}
	}
}
