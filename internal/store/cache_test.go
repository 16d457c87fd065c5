package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/santican/clinic-intake/internal/domain/patient"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	return NewCache(filepath.Join(t.TempDir(), "patients.json"), nil)
}

func TestCacheLoadMissingFile(t *testing.T) {
	c := newTestCache(t)
	records, err := c.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected empty cache, got %d records", len(records))
	}
}

func TestCacheAppendAndLoad(t *testing.T) {
	c := newTestCache(t)

	if err := c.Append(&patient.Record{ID: "1", Type: patient.TypeGuest, SavedBy: "nurse1"}); err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if err := c.Append(&patient.Record{ID: "2", Type: patient.TypeEmployee, SavedBy: "nurse1"}); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	records, err := c.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "1" || records[1].ID != "2" {
		t.Fatalf("append order not preserved: %v, %v", records[0].ID, records[1].ID)
	}
}

func TestCacheRemoveByID(t *testing.T) {
	c := newTestCache(t)
	c.Append(&patient.Record{ID: "1"})
	c.Append(&patient.Record{ID: "2"})

	if err := c.RemoveByID("1"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	records, _ := c.Load()
	if len(records) != 1 || records[0].ID != "2" {
		t.Fatalf("unexpected records after removal: %+v", records)
	}

	// Removing an unknown id is a no-op, not an error.
	if err := c.RemoveByID("missing"); err != nil {
		t.Fatalf("remove of missing id errored: %v", err)
	}
}

func TestCacheRemoveWhere(t *testing.T) {
	c := newTestCache(t)
	c.Append(&patient.Record{ID: "1", Type: patient.TypeGuest, SavedBy: "a"})
	c.Append(&patient.Record{ID: "2", Type: patient.TypeEmployee, SavedBy: "a"})
	c.Append(&patient.Record{ID: "3", Type: patient.TypeGuest, SavedBy: "b"})

	err := c.RemoveWhere(func(r *patient.Record) bool {
		return r.Type == patient.TypeGuest && r.SavedBy == "a"
	})
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	records, _ := c.Load()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	for _, r := range records {
		if r.ID == "1" {
			t.Fatal("record 1 should have been removed")
		}
	}
}

func TestCacheFullRewriteOnMutation(t *testing.T) {
	c := newTestCache(t)
	c.Append(&patient.Record{ID: "1"})
	c.Append(&patient.Record{ID: "2"})
	c.RemoveByID("1")

	// The file holds exactly the surviving set as one JSON array.
	data, err := os.ReadFile(c.path)
	if err != nil {
		t.Fatalf("read cache file: %v", err)
	}
	want := `[{"id":"2","type":""}]`
	if string(data) != want {
		t.Fatalf("cache file = %s, want %s", data, want)
	}
}
