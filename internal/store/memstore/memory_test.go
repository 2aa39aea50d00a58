package memstore

import (
	"errors"
	"testing"
	"time"

	"github.com/yiblet/pix/internal/store"
)

func TestMemoryStore_Basic(t *testing.T) {
	var _ store.Store = NewMemoryStore()

	st := NewMemoryStore()
	if st.Pages() == nil || st.History() == nil {
		t.Fatal("expected sub-stores to be non-nil")
	}
	if err := st.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestPageStore_PutGet(t *testing.T) {
	st := NewMemoryStore()

	in := &store.CachedPage{
		Query:     "fox",
		Page:      1,
		TotalHits: 24,
		Images:    []store.Image{{ID: 1, Tags: "fox"}, {ID: 2, Tags: "red fox"}},
	}
	if err := st.Pages().Put(in); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if in.FetchedAt.IsZero() {
		t.Error("expected FetchedAt to be defaulted")
	}

	// Mutating the caller's slice must not reach the store
	in.Images[0].Tags = "changed"

	out, err := st.Pages().Get("", "fox", 1)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if out.Images[0].Tags != "fox" {
		t.Errorf("stored page aliased caller slice: %q", out.Images[0].Tags)
	}

	// Mutating the returned slice must not reach the store either
	out.Images[1].Tags = "changed"
	again, _ := st.Pages().Get("", "fox", 1)
	if again.Images[1].Tags != "red fox" {
		t.Errorf("stored page aliased returned slice: %q", again.Images[1].Tags)
	}

	if _, err := st.Pages().Get("", "fox", 2); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPageStore_ParamsArePartOfKey(t *testing.T) {
	st := NewMemoryStore()

	st.Pages().Put(&store.CachedPage{Params: "per_page=3", Query: "fox", Page: 1, Images: []store.Image{{ID: 1}}})
	st.Pages().Put(&store.CachedPage{Params: "per_page=5", Query: "fox", Page: 1, Images: []store.Image{{ID: 1}, {ID: 2}}})

	count, _ := st.Pages().Count()
	if count != 2 {
		t.Errorf("expected 2 pages, got %d", count)
	}

	page, err := st.Pages().Get("per_page=5", "fox", 1)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(page.Images) != 2 {
		t.Errorf("expected 2 images, got %d", len(page.Images))
	}

	if _, err := st.Pages().Get("", "fox", 1); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPageStore_DeleteOlderThanAndClear(t *testing.T) {
	st := NewMemoryStore()
	now := time.Now()

	st.Pages().Put(&store.CachedPage{Query: "fox", Page: 1, FetchedAt: now.Add(-2 * time.Hour)})
	st.Pages().Put(&store.CachedPage{Query: "fox", Page: 2, FetchedAt: now})

	removed, err := st.Pages().DeleteOlderThan(now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("DeleteOlderThan() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 removed, got %d", removed)
	}

	count, _ := st.Pages().Count()
	if count != 1 {
		t.Errorf("expected 1 page, got %d", count)
	}

	st.Pages().Clear()
	count, _ = st.Pages().Count()
	if count != 0 {
		t.Errorf("expected 0 pages, got %d", count)
	}
}

func TestHistoryStore_RecordAndList(t *testing.T) {
	st := NewMemoryStore()
	base := time.Now().Add(-time.Hour)

	for i, q := range []string{"fox", "owl", "cat"} {
		if _, err := st.History().Record(q, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	rec, err := st.History().Record("fox", base.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if rec.Count != 2 {
		t.Errorf("expected count=2, got %d", rec.Count)
	}

	records, err := st.History().List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"fox", "cat", "owl"}
	if len(records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(records))
	}
	for i, q := range want {
		if records[i].Query != q {
			t.Errorf("position %d: expected %s, got %s", i, q, records[i].Query)
		}
	}

	limited, _ := st.History().List(1)
	if len(limited) != 1 || limited[0].Query != "fox" {
		t.Errorf("unexpected limited list: %v", limited)
	}
}

func TestHistoryStore_Delete(t *testing.T) {
	st := NewMemoryStore()

	rec, _ := st.History().Record("fox", time.Now())
	if err := st.History().Delete(rec.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := st.History().Delete(rec.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// The query can be recorded again from scratch
	again, _ := st.History().Record("fox", time.Now())
	if again.Count != 1 {
		t.Errorf("expected fresh record, got count=%d", again.Count)
	}
}

func TestHistoryStore_DeleteOldest(t *testing.T) {
	st := NewMemoryStore()
	base := time.Now().Add(-time.Hour)

	for i, q := range []string{"a", "b", "c", "d"} {
		st.History().Record(q, base.Add(time.Duration(i)*time.Minute))
	}

	if err := st.History().DeleteOldest(3); err != nil {
		t.Fatalf("DeleteOldest() error = %v", err)
	}

	records, _ := st.History().List(0)
	if len(records) != 1 || records[0].Query != "d" {
		t.Errorf("expected only d to remain, got %v", records)
	}

	if err := st.History().DeleteOldest(10); err != nil {
		t.Errorf("DeleteOldest() past size error = %v", err)
	}
	count, _ := st.History().Count()
	if count != 0 {
		t.Errorf("expected 0 records, got %d", count)
	}
}

func TestHistoryStore_SearchAndClear(t *testing.T) {
	st := NewMemoryStore()
	base := time.Now().Add(-time.Hour)

	for i, q := range []string{"red fox", "Arctic Fox", "owl"} {
		st.History().Record(q, base.Add(time.Duration(i)*time.Minute))
	}

	results, err := st.History().Search(&store.SearchQuery{Pattern: "fox"})
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(results) != 2 || results[0].Query != "Arctic Fox" {
		t.Errorf("unexpected results: %v", results)
	}

	if _, err := st.History().Search(&store.SearchQuery{Pattern: "["}); err == nil {
		t.Error("expected error for invalid pattern")
	}

	st.History().Clear()
	count, _ := st.History().Count()
	if count != 0 {
		t.Errorf("expected 0 records, got %d", count)
	}
}
