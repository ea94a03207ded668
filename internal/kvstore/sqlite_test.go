package kvstore

import (
	"context"
	"os"
	"testing"
)

func testSQLite(t *testing.T) *SQLite {
	t.Helper()
	f, err := os.CreateTemp("", "sprout-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := OpenSQLite(f.Name())
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSQLite_SchemaCreation(t *testing.T) {
	db := testSQLite(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM kv`).Scan(&count); err != nil {
		t.Fatalf("kv table missing: %v", err)
	}
}

func TestSQLite_SetGetOverwrite(t *testing.T) {
	db := testSQLite(t)
	ctx := context.Background()

	if err := db.Set(ctx, KeyFormData, `{"experience":"beginner"}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := db.Set(ctx, KeyFormData, `{"experience":"expert"}`); err != nil {
		t.Fatalf("Set again: %v", err)
	}
	got, ok, err := db.Get(ctx, KeyFormData)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got != `{"experience":"expert"}` {
		t.Errorf("value = %q, want last write", got)
	}
}

func TestSQLite_GetMissing(t *testing.T) {
	db := testSQLite(t)
	got, ok, err := db.Get(context.Background(), "nonexistent")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok || got != "" {
		t.Errorf("expected missing key, got %q", got)
	}
}

func TestSQLite_Delete(t *testing.T) {
	db := testSQLite(t)
	ctx := context.Background()
	_ = db.Set(ctx, KeyHasCompletedForm, "true")
	if err := db.Delete(ctx, KeyHasCompletedForm); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := db.Get(ctx, KeyHasCompletedForm); ok {
		t.Error("key still present after delete")
	}
}

func TestOpen_SQLiteDriver(t *testing.T) {
	path := t.TempDir() + "/sprout.db"
	s, err := Open(DriverSQLite, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if err := s.Set(context.Background(), KeySavedPlants, "[]"); err != nil {
		t.Fatalf("Set: %v", err)
	}
}
