package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-church-backend/internal/domain"
	"github.com/tbourn/go-church-backend/internal/repo"
)

func TestLikeToggle_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	sermon := seedSermon(t, db)
	svc := NewLikeService(db, 0)
	ctx := context.Background()

	res, err := svc.Toggle(ctx, sermon.ID, "user-a", "10.0.0.1")
	if err != nil {
		t.Fatalf("like: %v", err)
	}
	if !res.Liked || res.Likes != 1 {
		t.Fatalf("after like = %+v; want liked with 1", res)
	}
	if ok, _ := svc.Status(ctx, sermon.ID, "user-a"); !ok {
		t.Fatal("status must report liked")
	}
	if ok, _ := svc.Status(ctx, sermon.ID, "user-b"); ok {
		t.Fatal("other identities are independent")
	}

	res, err = svc.Toggle(ctx, sermon.ID, "user-a", "10.0.0.1")
	if err != nil {
		t.Fatalf("unlike: %v", err)
	}
	if res.Liked || res.Likes != 0 {
		t.Fatalf("after unlike = %+v; want unliked with 0", res)
	}
	if ok, _ := svc.Status(ctx, sermon.ID, "user-a"); ok {
		t.Fatal("status must report not liked")
	}

	var n int64
	db.Model(&domain.SermonLike{}).Count(&n)
	if n != 0 {
		t.Fatalf("like rows = %d; want 0", n)
	}
}

func TestLikeToggle_CountsAcrossIdentities(t *testing.T) {
	db := newTestDB(t)
	sermon := seedSermon(t, db)
	svc := NewLikeService(db, time.Hour)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if _, err := svc.Toggle(ctx, sermon.ID, id, "ip"); err != nil {
			t.Fatalf("toggle %s: %v", id, err)
		}
	}
	res, err := svc.Toggle(ctx, sermon.ID, "b", "ip")
	if err != nil {
		t.Fatal(err)
	}
	if res.Liked || res.Likes != 2 {
		t.Fatalf("got %+v; want unliked with 2", res)
	}
	got, _ := repo.GetSermon(ctx, db, sermon.ID)
	if got.Likes != 2 {
		t.Fatalf("stored counter = %d; want 2", got.Likes)
	}
}

func TestLikeToggle_MissingSermon(t *testing.T) {
	db := newTestDB(t)
	svc := NewLikeService(db, time.Hour)

	_, err := svc.Toggle(context.Background(), domain.NewID(), "a", "ip")
	if !errors.Is(err, ErrSermonNotFound) {
		t.Fatalf("err = %v; want ErrSermonNotFound", err)
	}
	var n int64
	db.Model(&domain.SermonLike{}).Count(&n)
	if n != 0 {
		t.Fatal("no like may be stored for a missing sermon")
	}

	ok, err := svc.Status(context.Background(), domain.NewID(), "a")
	if err != nil || ok {
		t.Fatalf("status on missing sermon = %v, %v; want false, nil", ok, err)
	}
}

func TestLikeToggle_FloorsAtZero(t *testing.T) {
	db := newTestDB(t)
	sermon := seedSermon(t, db)
	ctx := context.Background()

	// A record exists while the counter already reads zero.
	now := time.Now().UTC()
	if err := repo.CreateLike(ctx, db, &domain.SermonLike{
		SermonID: sermon.ID, UserIdentifier: "a", IPAddress: "ip",
		CreatedAt: now, ExpiresAt: now.Add(time.Hour),
	}); err != nil {
		t.Fatal(err)
	}

	res, err := NewLikeService(db, time.Hour).Toggle(ctx, sermon.ID, "a", "ip")
	if err != nil {
		t.Fatal(err)
	}
	if res.Liked || res.Likes != 0 {
		t.Fatalf("got %+v; want unliked with 0", res)
	}
}

func TestLikeToggle_ExpiredRecordsAreForgotten(t *testing.T) {
	db := newTestDB(t)
	sermon := seedSermon(t, db)
	ctx := context.Background()

	t0 := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	now, clock := fixedClock(t0)
	svc := NewLikeService(db, 90*24*time.Hour)
	svc.Now = clock

	if _, err := svc.Toggle(ctx, sermon.ID, "a", "ip"); err != nil {
		t.Fatal(err)
	}

	*now = t0.Add(91 * 24 * time.Hour)
	if ok, _ := svc.Status(ctx, sermon.ID, "a"); ok {
		t.Fatal("expired like must not count as liked")
	}

	// The expired record is cleared and the toggle likes again. Expiry
	// itself never decremented the counter.
	res, err := svc.Toggle(ctx, sermon.ID, "a", "ip")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Liked || res.Likes != 2 {
		t.Fatalf("got %+v; want liked with 2", res)
	}
	var n int64
	db.Model(&domain.SermonLike{}).Where("sermon_id = ?", sermon.ID).Count(&n)
	if n != 1 {
		t.Fatalf("like rows = %d; want 1", n)
	}
}

func TestLikePurgeExpired(t *testing.T) {
	db := newTestDB(t)
	sermon := seedSermon(t, db)
	ctx := context.Background()

	t0 := time.Now().UTC()
	now, clock := fixedClock(t0)
	svc := NewLikeService(db, time.Hour)
	svc.Now = clock

	for _, id := range []string{"a", "b"} {
		if _, err := svc.Toggle(ctx, sermon.ID, id, "ip"); err != nil {
			t.Fatal(err)
		}
	}
	*now = t0.Add(2 * time.Hour)
	if _, err := svc.Toggle(ctx, sermon.ID, "c", "ip"); err != nil {
		t.Fatal(err)
	}

	n, err := svc.PurgeExpired(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("purged = %d; want 2", n)
	}
	if ok, _ := svc.Status(ctx, sermon.ID, "c"); !ok {
		t.Fatal("fresh like must survive the purge")
	}
}

func TestLikeSweep_StopsWithContext(t *testing.T) {
	db := newTestDB(t)
	svc := NewLikeService(db, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Sweep(ctx, 5*time.Millisecond)
		close(done)
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestLikeToggle_ReplacesExpiredRecord(t *testing.T) {
	db := newTestDB(t)
	sermon := seedSermon(t, db)
	ctx := context.Background()

	// An expired record for the pair is invisible to the lookup but still
	// holds the unique slot until purged; the toggle purges it first.
	t0 := time.Now().UTC()
	if err := repo.CreateLike(ctx, db, &domain.SermonLike{
		SermonID: sermon.ID, UserIdentifier: "a", IPAddress: "ip",
		CreatedAt: t0.Add(-2 * time.Hour), ExpiresAt: t0.Add(-time.Hour),
	}); err != nil {
		t.Fatal(err)
	}
	res, err := NewLikeService(db, time.Hour).Toggle(ctx, sermon.ID, "a", "ip")
	if err != nil {
		t.Fatalf("toggle over expired record: %v", err)
	}
	if !res.Liked {
		t.Fatalf("got %+v; want liked", res)
	}

	// A raw duplicate insert maps to ErrDuplicate, which Toggle reports as a
	// conflict.
	err = repo.CreateLike(ctx, db, &domain.SermonLike{
		SermonID: sermon.ID, UserIdentifier: "a", IPAddress: "ip",
		CreatedAt: t0, ExpiresAt: t0.Add(time.Hour),
	})
	if !errors.Is(err, repo.ErrDuplicate) {
		t.Fatalf("duplicate insert err = %v", err)
	}
}
