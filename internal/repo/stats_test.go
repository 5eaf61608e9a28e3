package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/go-church-backend/internal/domain"
)

func TestSermonsStats_CountError_NoTable(t *testing.T) {
	db := newTestDB(t, false)
	if _, _, err := SermonsStats(context.Background(), db, true); err == nil {
		t.Fatalf("expected error due to missing sermons table")
	}
}

func TestSermonsStats_ZeroRows(t *testing.T) {
	db := newTestDB(t, true)
	count, maxAt, err := SermonsStats(context.Background(), db, true)
	if err != nil {
		t.Fatalf("SermonsStats error: %v", err)
	}
	if count != 0 || maxAt != nil {
		t.Fatalf("expected (0, nil), got (%d, %v)", count, maxAt)
	}
}

func TestSermonsStats_Success_FilterAndMax(t *testing.T) {
	db := newTestDB(t, true)
	now := time.Now().UTC()
	seedSermon(t, db, "a", now, true)
	seedSermon(t, db, "b", now, true)
	draft := seedSermon(t, db, "c", now, false)

	t2 := time.Date(2030, 3, 4, 10, 30, 0, 0, time.UTC)
	if err := db.Model(&domain.Sermon{}).Where("id = ?", draft.ID).UpdateColumn("updated_at", t2).Error; err != nil {
		t.Fatalf("touch draft: %v", err)
	}

	count, maxAt, err := SermonsStats(context.Background(), db, true)
	if err != nil {
		t.Fatalf("SermonsStats error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}
	if maxAt == nil || maxAt.Equal(t2) {
		t.Fatalf("draft must not drive the published max, got %v", maxAt)
	}

	count, maxAt, _ = SermonsStats(context.Background(), db, false)
	if count != 3 || maxAt == nil || !maxAt.Equal(t2) {
		t.Fatalf("expected (3, %v), got (%d, %v)", t2, count, maxAt)
	}
}

// Force the second query (SELECT updated_at ...) to fail by renaming the column.
func TestEventsStats_SelectLatest_ErrorPath(t *testing.T) {
	db := newTestDB(t, true)
	now := time.Now().UTC()
	if err := CreateEvent(context.Background(), db, &domain.Event{Title: "x", Description: "d", ImageURL: "u",
		ImagePublicID: "p", StartDate: now, EndDate: now, Location: "L", Category: domain.CategoryOther,
		IsPublished: true}); err != nil {
		t.Fatalf("seed event: %v", err)
	}

	if err := db.Exec(`ALTER TABLE events RENAME COLUMN updated_at TO updated_at_old`).Error; err != nil {
		t.Fatalf("rename column: %v", err)
	}
	if _, _, err := EventsStats(context.Background(), db, true); err == nil {
		t.Fatalf("expected error from latest-updated select after column rename")
	}
}
