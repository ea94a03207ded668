package kvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func tempFS(t *testing.T) *FS {
	t.Helper()
	s, err := NewFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return s
}

func TestFS_SetAndGet(t *testing.T) {
	s := tempFS(t)
	ctx := context.Background()
	if err := s.Set(ctx, KeySavedPlants, `[{"name":"A"}]`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, ok, err := s.Get(ctx, KeySavedPlants)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got != `[{"name":"A"}]` {
		t.Errorf("value = %q", got)
	}
}

func TestFS_GetMissing(t *testing.T) {
	s := tempFS(t)
	got, ok, err := s.Get(context.Background(), KeyFormData)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok || got != "" {
		t.Errorf("missing key returned %q, %v", got, ok)
	}
}

func TestFS_Delete(t *testing.T) {
	s := tempFS(t)
	ctx := context.Background()
	_ = s.Set(ctx, KeyHasCompletedForm, "true")
	if err := s.Delete(ctx, KeyHasCompletedForm); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, KeyHasCompletedForm); ok {
		t.Error("key still present after delete")
	}
	if err := s.Delete(ctx, KeyHasCompletedForm); err != nil {
		t.Errorf("deleting a missing key should succeed: %v", err)
	}
}

func TestFS_InvalidKeys(t *testing.T) {
	s := tempFS(t)
	ctx := context.Background()
	for _, k := range []string{"", "../escape", "/etc/passwd", "a/b", "."} {
		if err := s.Set(ctx, k, "x"); err == nil {
			t.Errorf("expected error for key %q", k)
		}
		if _, _, err := s.Get(ctx, k); err == nil {
			t.Errorf("expected error reading key %q", k)
		}
	}
}

func TestFS_AtomicWriteLeavesNoTempFiles(t *testing.T) {
	s := tempFS(t)
	ctx := context.Background()
	_ = s.Set(ctx, KeySavedPlants, "[]")
	if err := s.Set(ctx, KeySavedPlants, `[{"name":"B"}]`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, _, _ := s.Get(ctx, KeySavedPlants)
	if got != `[{"name":"B"}]` {
		t.Errorf("expected updated content, got %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(s.root, tmpPrefix+"*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestFS_KeyFromPath(t *testing.T) {
	s := tempFS(t)
	if k, ok := s.KeyFromPath(filepath.Join(s.root, KeySavedPlants)); !ok || k != KeySavedPlants {
		t.Errorf("KeyFromPath = %q, %v", k, ok)
	}
	if _, ok := s.KeyFromPath(filepath.Join(s.root, tmpPrefix+"123")); ok {
		t.Error("temp files are not keys")
	}
	if _, ok := s.KeyFromPath(filepath.Join(s.root, "sub", "x")); ok {
		t.Error("nested files are not keys")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp("", "sprout-test-*")
	_ = f.Close()
	defer os.Remove(f.Name())
	if _, err := NewFS(f.Name()); err == nil {
		t.Error("expected error when root is a file")
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	if _, err := Open("redis", t.TempDir()); err == nil {
		t.Error("expected error for unknown driver")
	}
}
