package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if _, found, err := s.Get(ctx, UsersKey); err != nil || found {
		t.Fatalf("fresh store should miss: found=%v err=%v", found, err)
	}

	blob := []byte(`[{"email":"test@example.com"}]`)
	if err := s.Set(ctx, UsersKey, blob); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, found, err := s.Get(ctx, UsersKey)
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if string(got) != string(blob) {
		t.Fatalf("got %s, want %s", got, blob)
	}

	if err := s.Delete(ctx, UsersKey); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, found, _ := s.Get(ctx, UsersKey); found {
		t.Fatal("deleted key should miss")
	}
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	if err := s.Set(ctx, "k", []byte(`"value"`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, _, _ := s.Get(ctx, "k")
	got[1] = 'X'
	again, _, _ := s.Get(ctx, "k")
	if string(again) != `"value"` {
		t.Fatalf("store content mutated through Get: %s", again)
	}
}

func TestMemoryStoreFileMirror(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "piggybank.json")

	s := NewMemoryFromFile(path)
	if err := s.Set(ctx, SessionKey, []byte(`{"email":"test@example.com"}`)); err != nil {
		t.Fatalf("set: %v", err)
	}

	// A new store over the same file sees the write
	reloaded := NewMemoryFromFile(path)
	blob, found, err := reloaded.Get(ctx, SessionKey)
	if err != nil || !found {
		t.Fatalf("reload: found=%v err=%v", found, err)
	}
	if string(blob) != `{"email":"test@example.com"}` {
		t.Fatalf("unexpected blob after reload: %s", blob)
	}
}

func TestMemoryStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	s := NewMemoryFromFile(path)
	if _, found, err := s.Get(context.Background(), UsersKey); err != nil || found {
		t.Fatalf("corrupt file should yield an empty store: found=%v err=%v", found, err)
	}
}
