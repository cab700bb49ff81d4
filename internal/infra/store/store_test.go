package store_test

import (
	"path/filepath"
	"testing"

	"github.com/chorusfm/chorus-backend/internal/infra/store"
)

func openTestDB(t *testing.T) *store.DB {
	t.Helper()
	db := store.NewDB(filepath.Join(t.TempDir(), "library.db"))
	if err := db.Open(); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestGetMissingKey(t *testing.T) {
	db := openTestDB(t)

	_, ok, err := db.Get("library.likes")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if ok {
		t.Error("expected missing key")
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	db := openTestDB(t)

	doc := []byte(`[{"videoId":"abc"}]`)
	if err := db.Put("library.likes", doc); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, ok, err := db.Get("library.likes")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !ok {
		t.Fatal("expected key to exist")
	}
	if string(got) != string(doc) {
		t.Errorf("Get = %s, want %s", got, doc)
	}
}

func TestPutOverwrites(t *testing.T) {
	db := openTestDB(t)

	if err := db.Put("k", []byte(`"old"`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := db.Put("k", []byte(`"new"`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	got, _, err := db.Get("k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != `"new"` {
		t.Errorf("Get = %s, want %q", got, `"new"`)
	}
}

func TestDelete(t *testing.T) {
	db := openTestDB(t)

	if err := db.Put("k", []byte(`1`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	if err := db.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := db.Get("k"); ok {
		t.Error("expected key gone after delete")
	}

	// Deleting again is fine.
	if err := db.Delete("k"); err != nil {
		t.Errorf("Delete of missing key failed: %v", err)
	}
}

func TestReopenPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")

	db := store.NewDB(path)
	if err := db.Open(); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := db.Put("k", []byte(`42`)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}
	db.Close()

	db2 := store.NewDB(path)
	if err := db2.Open(); err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer db2.Close()

	got, ok, err := db2.Get("k")
	if err != nil || !ok {
		t.Fatalf("Get after reopen: ok=%v err=%v", ok, err)
	}
	if string(got) != "42" {
		t.Errorf("Get = %s, want 42", got)
	}
}

func TestClosedStoreErrors(t *testing.T) {
	db := store.NewDB(filepath.Join(t.TempDir(), "library.db"))

	if err := db.Put("k", []byte(`1`)); err == nil {
		t.Error("Put on an unopened store should fail")
	}
	if _, _, err := db.Get("k"); err == nil {
		t.Error("Get on an unopened store should fail")
	}
}
