package repo

import (
	"context"
	"testing"
	"time"

	"github.com/tbourn/go-church-backend/internal/domain"
)

func TestGetIdempotency_BlankKey_ReturnsNotFound(t *testing.T) {
	db := newTestDB(t, true)
	rec, err := GetIdempotency(context.Background(), db, "1.2.3.4", "contact", "   ", time.Now().UTC())
	if rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for blank key, got (%v, %v)", rec, err)
	}
}

func TestGetIdempotency_ExpiredOrMissing_ReturnsNotFound(t *testing.T) {
	db := newTestDB(t, true)
	now := time.Now().UTC()

	exp := &domain.Idempotency{
		ID: "expired", Identity: "ip", Scope: "contact", Key: "k1", ResourceID: "m1", Status: 201,
		CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour),
	}
	if err := db.Create(exp).Error; err != nil {
		t.Fatalf("seed expired: %v", err)
	}

	rec, err := GetIdempotency(context.Background(), db, "ip", "contact", "k1", now)
	if rec != nil || err != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for expired, got (%v, %v)", rec, err)
	}
	rec2, err2 := GetIdempotency(context.Background(), db, "ip", "contact", "missing", now)
	if rec2 != nil || err2 != ErrNotFound {
		t.Fatalf("expected (nil, ErrNotFound) for missing, got (%v, %v)", rec2, err2)
	}
}

func TestCreateIdempotency_SuccessDuplicateAndExpiredReplace(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	ttl := 90 * time.Minute
	start := time.Now().UTC()

	rec, err := CreateIdempotency(ctx, db, "ip9", "contact", "k9", "m9", 201, ttl)
	if err != nil {
		t.Fatalf("CreateIdempotency error: %v", err)
	}
	if rec == nil || rec.ID == "" || rec.ResourceID != "m9" || rec.Status != 201 {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if !(rec.ExpiresAt.After(start) && rec.ExpiresAt.Before(start.Add(2*time.Hour))) {
		t.Fatalf("unexpected ExpiresAt: %v", rec.ExpiresAt)
	}

	got, err := GetIdempotency(ctx, db, "ip9", "contact", "k9", time.Now().UTC())
	if err != nil || got.ResourceID != "m9" {
		t.Fatalf("readback = %+v, %v", got, err)
	}

	if _, err := CreateIdempotency(ctx, db, "ip9", "contact", "k9", "mX", 201, ttl); err != ErrDuplicate {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// Once the record has expired the key may be reused.
	db.Model(&domain.Idempotency{}).Where("key = ?", "k9").Update("expires_at", start.Add(-time.Minute))
	again, err := CreateIdempotency(ctx, db, "ip9", "contact", "k9", "mY", 201, ttl)
	if err != nil || again.ResourceID != "mY" {
		t.Fatalf("reuse after expiry = %+v, %v", again, err)
	}
}

func TestCreateIdempotency_Error_NoTable(t *testing.T) {
	db := newTestDB(t, false)
	_, err := CreateIdempotency(context.Background(), db, "ip", "contact", "k", "m", 201, time.Minute)
	if err == nil {
		t.Fatalf("expected error when table is missing")
	}
	if err == ErrDuplicate {
		t.Fatalf("expected non-duplicate error, got ErrDuplicate")
	}
}

func TestDeleteIdempotency_ReleasesKey(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()

	if _, err := CreateIdempotency(ctx, db, "ip", "contact", "k", "m1", 201, time.Hour); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := DeleteIdempotency(ctx, db, "ip", "contact", "k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := GetIdempotency(ctx, db, "ip", "contact", "k", time.Now().UTC()); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := CreateIdempotency(ctx, db, "ip", "contact", "k", "m2", 201, time.Hour); err != nil {
		t.Fatalf("re-create: %v", err)
	}
}
