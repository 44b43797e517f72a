package jobs

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *BoltStore {
	t.Helper()
	store, err := NewBoltStore(filepath.Join(t.TempDir(), "jobs.db"))
	if err != nil {
		t.Fatalf("NewBoltStore() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStorePutGet(t *testing.T) {
	store := newTestStore(t)

	job := &Job{
		ID:        "j1",
		Kind:      "video",
		Status:    StatusPending,
		CreatedAt: time.Now().Truncate(time.Second),
		UpdatedAt: time.Now().Truncate(time.Second),
	}
	if err := store.Put(job); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := store.Get("j1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got == nil {
		t.Fatal("Get() = nil")
	}
	if got.ID != "j1" || got.Kind != "video" || got.Status != StatusPending {
		t.Errorf("Get() = %+v", got)
	}

	missing, err := store.Get("nope")
	if err != nil {
		t.Fatalf("Get(missing) error = %v", err)
	}
	if missing != nil {
		t.Errorf("Get(missing) = %+v, want nil", missing)
	}
}

func TestStoreList(t *testing.T) {
	store := newTestStore(t)

	base := time.Now()
	seed := []*Job{
		{ID: "a", Kind: "video", Status: StatusCompleted, CreatedAt: base.Add(-3 * time.Hour)},
		{ID: "b", Kind: "research", Status: StatusProcessing, CreatedAt: base.Add(-2 * time.Hour)},
		{ID: "c", Kind: "video", Status: StatusProcessing, CreatedAt: base.Add(-1 * time.Hour)},
	}
	for _, j := range seed {
		if err := store.Put(j); err != nil {
			t.Fatalf("Put(%s) error = %v", j.ID, err)
		}
	}

	all, err := store.List(ListFilter{})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	// Newest first
	if all[0].ID != "c" || all[1].ID != "b" || all[2].ID != "a" {
		t.Errorf("order = %s,%s,%s", all[0].ID, all[1].ID, all[2].ID)
	}

	videos, err := store.List(ListFilter{Kind: "video"})
	if err != nil {
		t.Fatalf("List(kind) error = %v", err)
	}
	if len(videos) != 2 {
		t.Errorf("kind filter len = %d, want 2", len(videos))
	}

	processing, err := store.List(ListFilter{Status: StatusProcessing})
	if err != nil {
		t.Fatalf("List(status) error = %v", err)
	}
	if len(processing) != 2 {
		t.Errorf("status filter len = %d, want 2", len(processing))
	}

	limited, err := store.List(ListFilter{Limit: 1})
	if err != nil {
		t.Fatalf("List(limit) error = %v", err)
	}
	if len(limited) != 1 || limited[0].ID != "c" {
		t.Errorf("limit filter = %+v", limited)
	}
}

func TestStoreDelete(t *testing.T) {
	store := newTestStore(t)

	if err := store.Put(&Job{ID: "j1", Status: StatusPending}); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if err := store.Delete("j1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	got, err := store.Get("j1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != nil {
		t.Errorf("Get() = %+v after delete", got)
	}
}

func TestStorePurge(t *testing.T) {
	store := newTestStore(t)

	old := time.Now().Add(-48 * time.Hour)
	recent := time.Now()
	seed := []*Job{
		{ID: "old-done", Status: StatusCompleted, CreatedAt: old, UpdatedAt: old},
		{ID: "old-failed", Status: StatusFailed, CreatedAt: old, UpdatedAt: old},
		{ID: "old-running", Status: StatusProcessing, CreatedAt: old, UpdatedAt: old},
		{ID: "fresh-done", Status: StatusCompleted, CreatedAt: recent, UpdatedAt: recent},
	}
	for _, j := range seed {
		if err := store.Put(j); err != nil {
			t.Fatalf("Put(%s) error = %v", j.ID, err)
		}
	}

	deleted, err := store.Purge(24 * time.Hour)
	if err != nil {
		t.Fatalf("Purge() error = %v", err)
	}
	if deleted != 2 {
		t.Errorf("deleted = %d, want 2", deleted)
	}

	// In-flight jobs survive regardless of age.
	if got, _ := store.Get("old-running"); got == nil {
		t.Error("old-running was purged")
	}
	if got, _ := store.Get("fresh-done"); got == nil {
		t.Error("fresh-done was purged")
	}
	if got, _ := store.Get("old-done"); got != nil {
		t.Error("old-done survived purge")
	}

	// Zero retention disables purging.
	deleted, err = store.Purge(0)
	if err != nil || deleted != 0 {
		t.Errorf("Purge(0) = %d, %v; want 0, nil", deleted, err)
	}
}
