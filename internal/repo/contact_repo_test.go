package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-church-backend/internal/domain"
)

func seedContact(t *testing.T, db *gorm.DB, status string, at time.Time) *domain.ContactMessage {
	t.Helper()
	m := &domain.ContactMessage{Name: "n", Email: "a@b.c", Message: "hello", Status: status, CreatedAt: at}
	if err := CreateContact(context.Background(), db, m); err != nil {
		t.Fatalf("seed contact: %v", err)
	}
	return m
}

func TestContacts_ListFilterAndPaging(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)

	m1 := seedContact(t, db, domain.ContactStatusNew, base)
	m2 := seedContact(t, db, domain.ContactStatusNew, base.Add(time.Hour))
	seedContact(t, db, domain.ContactStatusArchived, base.Add(2*time.Hour))

	n, err := CountContacts(ctx, db, domain.ContactStatusNew)
	if err != nil || n != 2 {
		t.Fatalf("count new = %d, %v", n, err)
	}
	all, _ := CountContacts(ctx, db, "")
	if all != 3 {
		t.Fatalf("count all = %d", all)
	}

	page, err := ListContactsPage(ctx, db, domain.ContactStatusNew, 0, 1)
	if err != nil || len(page) != 1 || page[0].ID != m2.ID {
		t.Fatalf("page 1 = %+v, %v", page, err)
	}
	page, _ = ListContactsPage(ctx, db, domain.ContactStatusNew, 1, 1)
	if len(page) != 1 || page[0].ID != m1.ID {
		t.Fatalf("page 2 = %+v", page)
	}
}

func TestMarkContactRead_OnlyOnce(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	m := seedContact(t, db, domain.ContactStatusNew, time.Now().UTC())

	first := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := MarkContactRead(ctx, db, m.ID, first); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := MarkContactRead(ctx, db, m.ID, first.Add(time.Hour)); err != nil {
		t.Fatalf("mark again: %v", err)
	}
	got, err := GetContact(ctx, db, m.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.IsRead || got.Status != domain.ContactStatusRead || got.ReadAt == nil || !got.ReadAt.Equal(first) {
		t.Fatalf("unexpected read state: %+v", got)
	}
}

func TestUpdateAndDeleteContact(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	m := seedContact(t, db, domain.ContactStatusNew, time.Now().UTC())

	if err := UpdateContact(ctx, db, m.ID, map[string]any{"status": domain.ContactStatusReplied, "notes": "called back"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := GetContact(ctx, db, m.ID)
	if got.Status != domain.ContactStatusReplied || got.Notes != "called back" {
		t.Fatalf("unexpected: %+v", got)
	}
	if err := UpdateContact(ctx, db, domain.NewID(), map[string]any{"notes": "x"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update missing err = %v", err)
	}
	if err := DeleteContact(ctx, db, m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := GetContact(ctx, db, m.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete err = %v", err)
	}
}
