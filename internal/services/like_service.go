// Package services – LikeService
//
// LikeService toggles a caller's like on a sermon and answers whether the
// caller currently likes it. The caller identity is whatever the HTTP layer
// derived (X-User-ID header, client address, or "anonymous"); it is not
// authenticated, so a caller that changes either can like again.
//
// A toggle is one transaction: the sermon row is locked (where the dialect
// supports it), an expired record for the pair is cleared, the active record
// is looked up, and the record and the sermon's counter change together. The
// counter is adjusted with SQL expressions and never drops below zero.
//
// Like records expire after TTL. Expired records are invisible to Toggle and
// Status and are removed by PurgeExpired; expiry does not change the counter.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-church-backend/internal/domain"
	"github.com/tbourn/go-church-backend/internal/observability"
	"github.com/tbourn/go-church-backend/internal/repo"
)

// DefaultLikeTTL is the lifetime of a like record when none is configured.
const DefaultLikeTTL = 90 * 24 * time.Hour

// LikeResult is the state after a toggle.
type LikeResult struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

// LikeService implements the like toggle.
type LikeService struct {
	DB  *gorm.DB
	TTL time.Duration
	Now func() time.Time
}

// NewLikeService constructs a LikeService with the given record lifetime.
func NewLikeService(db *gorm.DB, ttl time.Duration) *LikeService {
	if ttl <= 0 {
		ttl = DefaultLikeTTL
	}
	return &LikeService{DB: db, TTL: ttl}
}

func (s *LikeService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultLikeTTL
	}
	return s.TTL
}

// Toggle likes the sermon for identity when it holds no active like, and
// unlikes it otherwise. originIP is stored with new records.
//
// Errors: ErrSermonNotFound when the sermon does not exist (nothing changes);
// ErrLikeConflict when a concurrent toggle for the same pair won the insert.
func (s *LikeService) Toggle(ctx context.Context, sermonID, identity, originIP string) (LikeResult, error) {
	ctx, span := otel.Tracer("services/LikeService").Start(ctx, "Toggle",
		trace.WithAttributes(attribute.String("sermon.id", sermonID)),
	)
	defer span.End()

	now := nowUTC(s.Now)
	var res LikeResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.LockSermon(ctx, tx, sermonID); err != nil {
			return notFound(err, ErrSermonNotFound)
		}
		if err := repo.PurgeExpiredLike(ctx, tx, sermonID, identity, now); err != nil {
			return err
		}

		existing, err := repo.FindActiveLike(ctx, tx, sermonID, identity, now)
		switch {
		case err == nil:
			if err := repo.DeleteLike(ctx, tx, existing.ID); err != nil {
				return err
			}
			likes, err := repo.AdjustSermonLikes(ctx, tx, sermonID, -1)
			if err != nil {
				return err
			}
			res = LikeResult{Liked: false, Likes: likes}
			return nil
		case errors.Is(err, repo.ErrNotFound):
			like := &domain.SermonLike{
				SermonID:       sermonID,
				UserIdentifier: identity,
				IPAddress:      originIP,
				CreatedAt:      now,
				ExpiresAt:      now.Add(s.ttl()),
			}
			if err := repo.CreateLike(ctx, tx, like); err != nil {
				if errors.Is(err, repo.ErrDuplicate) {
					return ErrLikeConflict
				}
				return err
			}
			likes, err := repo.AdjustSermonLikes(ctx, tx, sermonID, 1)
			if err != nil {
				return err
			}
			res = LikeResult{Liked: true, Likes: likes}
			return nil
		default:
			return err
		}
	})
	if err != nil {
		if errors.Is(err, ErrLikeConflict) {
			observability.LikeToggles.WithLabelValues("conflict").Inc()
		}
		return LikeResult{}, err
	}

	outcome := "unliked"
	if res.Liked {
		outcome = "liked"
	}
	observability.LikeToggles.WithLabelValues(outcome).Inc()
	span.SetAttributes(attribute.Bool("like.liked", res.Liked), attribute.Int("like.count", res.Likes))
	return res, nil
}

// Status reports whether identity holds an active like on the sermon. An
// unknown sermon simply has no likes.
func (s *LikeService) Status(ctx context.Context, sermonID, identity string) (bool, error) {
	ctx, span := otel.Tracer("services/LikeService").Start(ctx, "Status",
		trace.WithAttributes(attribute.String("sermon.id", sermonID)),
	)
	defer span.End()

	_, err := repo.FindActiveLike(ctx, s.DB, sermonID, identity, nowUTC(s.Now))
	if errors.Is(err, repo.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// PurgeExpired removes every expired like record and returns the count.
func (s *LikeService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := repo.PurgeExpiredLikes(ctx, s.DB, nowUTC(s.Now))
	if err != nil {
		return 0, err
	}
	observability.LikesPurged.Add(float64(n))
	return n, nil
}

// Sweep calls PurgeExpired every interval until ctx is done.
func (s *LikeService) Sweep(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := s.PurgeExpired(ctx)
			if err != nil {
				if ctx.Err() == nil {
					log.Warn().Err(err).Msg("like sweep failed")
				}
				continue
			}
			if n > 0 {
				log.Debug().Int64("purged", n).Msg("expired likes purged")
			}
		}
	}
}
