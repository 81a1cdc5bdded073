package backend

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"piggybank/internal/config"
	"piggybank/internal/core"
	"piggybank/internal/storage"
)

func TestOpenMemorySeedsDemoLedger(t *testing.T) {
	dataFile := filepath.Join(t.TempDir(), "piggybank.json")
	cfg := &config.Config{DataBackend: "memory", DataFile: dataFile}

	result, err := Open(cfg, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if result.Cleanup != nil {
		t.Error("memory backend should not need cleanup")
	}

	blob, found, err := result.Store.Get(context.Background(), storage.UsersKey)
	if err != nil || !found {
		t.Fatalf("Get(users) = found %v, err %v", found, err)
	}
	var users []core.User
	if err := json.Unmarshal(blob, &users); err != nil {
		t.Fatalf("unmarshal seeded users: %v", err)
	}
	if len(users) != 1 || len(users[0].Transactions) != 4 {
		t.Fatalf("seed = %d users, want 1 with 4 transactions", len(users))
	}
	if users[0].Email != "demo@piggybank.local" {
		t.Errorf("seed email = %q", users[0].Email)
	}

	var balance core.Money
	for _, tx := range users[0].Transactions {
		balance = balance.Add(tx.Amount)
	}
	if balance.Cents != -3241400 {
		t.Errorf("seed balance cents = %d, want -3241400", balance.Cents)
	}
}

func TestOpenMemoryKeepsExistingDataFile(t *testing.T) {
	dataFile := filepath.Join(t.TempDir(), "piggybank.json")
	if err := os.WriteFile(dataFile, []byte(`{"financial_tracker_users": []}`), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := &config.Config{DataBackend: "memory", DataFile: dataFile}

	result, err := Open(cfg, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	blob, found, err := result.Store.Get(context.Background(), storage.UsersKey)
	if err != nil || !found {
		t.Fatalf("Get(users) = found %v, err %v", found, err)
	}
	if string(blob) != "[]" {
		t.Errorf("existing data file overwritten, got %s", blob)
	}
}

func TestOpenUnknownBackend(t *testing.T) {
	if _, err := Open(&config.Config{DataBackend: "redis"}, nil); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestTypeIsValid(t *testing.T) {
	for _, tc := range []struct {
		t    Type
		want bool
	}{
		{MemoryBackend, true},
		{SQLiteBackend, true},
		{Type("sheets"), false},
		{Type(""), false},
	} {
		if got := tc.t.IsValid(); got != tc.want {
			t.Errorf("IsValid(%q) = %v, want %v", tc.t, got, tc.want)
		}
	}
}
