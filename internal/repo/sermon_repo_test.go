package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-church-backend/internal/domain"
)

func TestListSermonsPage_SortAndPublishedFilter(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)

	a := seedSermon(t, db, "Bravo", base, true)
	b := seedSermon(t, db, "Alpha", base.Add(24*time.Hour), true)
	seedSermon(t, db, "Draft", base.Add(48*time.Hour), false)

	if _, err := AdjustSermonLikes(ctx, db, a.ID, 3); err != nil {
		t.Fatalf("adjust: %v", err)
	}

	total, err := CountSermons(ctx, db, true)
	if err != nil || total != 2 {
		t.Fatalf("CountSermons = %d, %v; want 2", total, err)
	}

	cases := map[string][]string{
		"-date":  {b.ID, a.ID},
		"date":   {a.ID, b.ID},
		"-likes": {a.ID, b.ID},
		"title":  {b.ID, a.ID},
		"bogus":  {b.ID, a.ID},
	}
	for sort, want := range cases {
		got, err := ListSermonsPage(ctx, db, true, sort, 0, 10)
		if err != nil {
			t.Fatalf("list %s: %v", sort, err)
		}
		if len(got) != len(want) {
			t.Fatalf("sort %s: got %d rows", sort, len(got))
		}
		for i := range want {
			if got[i].ID != want[i] {
				t.Fatalf("sort %s: row %d = %s; want %s", sort, i, got[i].Title, want[i])
			}
		}
	}

	page, err := ListSermonsPage(ctx, db, false, "-date", 1, 1)
	if err != nil || len(page) != 1 || page[0].ID != b.ID {
		t.Fatalf("offset page = %+v, %v", page, err)
	}
}

func TestAdjustSermonLikes_FloorsAtZero(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	s := seedSermon(t, db, "S", time.Now().UTC(), true)

	n, err := AdjustSermonLikes(ctx, db, s.ID, 1)
	if err != nil || n != 1 {
		t.Fatalf("increment = %d, %v", n, err)
	}
	n, err = AdjustSermonLikes(ctx, db, s.ID, -1)
	if err != nil || n != 0 {
		t.Fatalf("decrement = %d, %v", n, err)
	}
	n, err = AdjustSermonLikes(ctx, db, s.ID, -1)
	if err != nil || n != 0 {
		t.Fatalf("decrement below zero = %d, %v; want 0", n, err)
	}

	if _, err := AdjustSermonLikes(ctx, db, domain.NewID(), 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing sermon err = %v; want ErrNotFound", err)
	}
}

func TestSaveSermon_KeepsLikeCounter(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	s := seedSermon(t, db, "Old", time.Now().UTC(), true)
	if _, err := AdjustSermonLikes(ctx, db, s.ID, 5); err != nil {
		t.Fatalf("adjust: %v", err)
	}

	// s still carries Likes=0 in memory; saving must not clobber the counter.
	s.Title = "New"
	s.IsPublished = false
	if err := SaveSermon(ctx, db, s); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := GetSermon(ctx, db, s.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "New" || got.IsPublished || got.Likes != 5 {
		t.Fatalf("unexpected sermon after save: %+v", got)
	}

	missing := &domain.Sermon{ID: domain.NewID(), Title: "x"}
	if err := SaveSermon(ctx, db, missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("save missing err = %v; want ErrNotFound", err)
	}
}

func TestDeleteSermon_CascadesLikes(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	now := time.Now().UTC()
	s := seedSermon(t, db, "S", now, true)

	if err := CreateLike(ctx, db, &domain.SermonLike{SermonID: s.ID, UserIdentifier: "u1", IPAddress: "ip",
		CreatedAt: now, ExpiresAt: now.Add(time.Hour)}); err != nil {
		t.Fatalf("create like: %v", err)
	}
	if err := DeleteSermon(ctx, db, s.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := FindActiveLike(ctx, db, s.ID, "u1", now); !errors.Is(err, ErrNotFound) {
		t.Fatalf("like should be gone, err = %v", err)
	}
	if err := DeleteSermon(ctx, db, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete err = %v; want ErrNotFound", err)
	}
}
