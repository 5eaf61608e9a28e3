package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tbourn/go-church-backend/internal/domain"
)

func newEvent(title, category string, start time.Time, published, featured bool) *domain.Event {
	return &domain.Event{Title: title, Description: "d", ImageURL: "u", ImagePublicID: "p",
		StartDate: start, EndDate: start.Add(time.Hour), Location: "Hall", Category: category,
		IsPublished: published, IsFeatured: featured}
}

func TestListEvents_Filters(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	now := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	past := newEvent("past", domain.CategoryWorship, now.Add(-24*time.Hour), true, false)
	soon := newEvent("soon", domain.CategoryYouth, now.Add(24*time.Hour), true, true)
	later := newEvent("later", domain.CategoryWorship, now.Add(72*time.Hour), true, false)
	draft := newEvent("draft", domain.CategoryWorship, now.Add(48*time.Hour), false, true)
	for _, e := range []*domain.Event{later, past, soon, draft} {
		if err := CreateEvent(ctx, db, e); err != nil {
			t.Fatalf("seed %s: %v", e.Title, err)
		}
	}

	yes, no := true, false
	titles := func(f EventFilter) []string {
		f.Now = now
		out, err := ListEvents(ctx, db, f)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		var ts []string
		for _, e := range out {
			ts = append(ts, e.Title)
		}
		return ts
	}
	check := func(name string, got []string, want ...string) {
		t.Helper()
		if len(got) != len(want) {
			t.Fatalf("%s: got %v; want %v", name, got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("%s: got %v; want %v", name, got, want)
			}
		}
	}

	check("published", titles(EventFilter{PublishedOnly: true}), "past", "soon", "later")
	check("upcoming", titles(EventFilter{PublishedOnly: true, Upcoming: &yes}), "soon", "later")
	check("past only", titles(EventFilter{PublishedOnly: true, Upcoming: &no}), "past")
	check("featured", titles(EventFilter{PublishedOnly: true, Featured: &yes}), "soon")
	check("category", titles(EventFilter{PublishedOnly: true, Category: domain.CategoryWorship}), "past", "later")
	check("all", titles(EventFilter{}), "past", "soon", "draft", "later")
}

func TestMinistries_OrderAndActive(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mk := func(name string, order int, active bool, created time.Time) *domain.Ministry {
		m := &domain.Ministry{Name: name, Description: "d", ImageURL: "u", ImagePublicID: "p",
			Order: order, IsActive: active, CreatedAt: created}
		if err := CreateMinistry(ctx, db, m); err != nil {
			t.Fatalf("seed %s: %v", name, err)
		}
		return m
	}
	mk("choir", 1, true, base)
	mk("youth", 0, true, base)
	mk("kids", 1, true, base.Add(time.Hour))
	hidden := mk("hidden", 0, false, base)

	got, err := ListMinistries(ctx, db, true)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"youth", "kids", "choir"}
	if len(got) != len(want) {
		t.Fatalf("got %d ministries", len(got))
	}
	for i, w := range want {
		if got[i].Name != w {
			t.Fatalf("row %d = %s; want %s", i, got[i].Name, w)
		}
	}

	hidden.IsActive = true
	if err := SaveMinistry(ctx, db, hidden); err != nil {
		t.Fatalf("save: %v", err)
	}
	all, _ := ListMinistries(ctx, db, true)
	if len(all) != 4 {
		t.Fatalf("activated ministry missing: %d", len(all))
	}
	if err := DeleteMinistry(ctx, db, hidden.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := GetMinistry(ctx, db, hidden.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete = %v", err)
	}
}

func TestHero_UniquePerPage(t *testing.T) {
	db := newTestDB(t, true)
	ctx := context.Background()

	h := &domain.HeroSettings{Page: "home", Title: "Welcome", OverlayOpacity: 0.6}
	if err := CreateHero(ctx, db, h); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := CreateHero(ctx, db, &domain.HeroSettings{Page: "home", Title: "Again"}); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("second create err = %v; want ErrDuplicate", err)
	}
	if err := CreateHero(ctx, db, &domain.HeroSettings{Page: "blog", Title: "x"}); err == nil {
		t.Fatalf("expected check constraint to reject unknown page")
	}

	h.Title = "Hello"
	h.OverlayOpacity = 0
	if err := SaveHero(ctx, db, h); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := GetHero(ctx, db, "home")
	if err != nil || got.Title != "Hello" || got.OverlayOpacity != 0 {
		t.Fatalf("get = %+v, %v", got, err)
	}
	if _, err := GetHero(ctx, db, "events"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing page err = %v", err)
	}
}
